// Package authsdk is the Go client for the accounts service.
//
// SDKClient covers the unauthenticated routes: registration, email
// confirmation, login, two-factor verification and token refresh. A
// successful login yields a Session, which attaches the bearer token to
// account routes and refreshes it shortly before it expires.
//
//	client := authsdk.NewSDKClient("https://accounts.example.com")
//	res, err := client.Login(ctx, "alice", "hunter22")
//	if err != nil {
//		return err
//	}
//	if res.TwoFactorRequired {
//		tokens, err := client.VerifyTwoFactor(ctx, "alice", code)
//		...
//	}
//
// Errors returned by the server are *APIError values and can be matched
// with errors.Is against the predefined errors, e.g. ErrInvalidCredentials.
package authsdk
