package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/metrics"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// PasswordHasher hashes and verifies passwords. *cryptox.PasswordHasher
// implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
	NeedsUpgrade(encodedHash string) bool
}

// Notifier delivers secrets out of band. Implementations must not log the
// token or code they are given.
type Notifier interface {
	SendEmailConfirmation(ctx context.Context, email, token string) error
	SendTwoFactorCode(ctx context.Context, email, code string, expiresAt time.Time) error
}

// AuthService runs the credential and session lifecycle: registration,
// email confirmation, login, two-factor verification and refresh rotation.
type AuthService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Tokens   *TokenIssuer
	Notifier Notifier
	Policy   TwoFactorPolicy
	Metrics  *metrics.Metrics

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an unconfirmed account and sends its confirmation link.
// A failed notification is logged; the account is kept either way.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (err error) {
	ctx, end := begin(ctx, s.Metrics, "register")
	defer end(&err)

	l := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	if _, lookupErr := accounts.GetAccountByUsername(ctx, username); lookupErr == nil {
		return ErrConflict
	} else if !errors.Is(lookupErr, store.ErrNotFound) {
		return internalError(CodeStoreFailed, "register", lookupErr)
	}
	if _, lookupErr := accounts.GetAccountByEmail(ctx, email); lookupErr == nil {
		return ErrConflict
	} else if !errors.Is(lookupErr, store.ErrNotFound) {
		return internalError(CodeStoreFailed, "register", lookupErr)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return internalError(CodeHashFailed, "register", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return internalError(CodeTokenFailed, "register", err)
	}

	account := domain.NewAccount(username, email, hash, cryptox.FingerprintToken(token), s.now())
	id, err := accounts.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrConflict
		}
		return internalError(CodeStoreFailed, "register", err)
	}
	l.Info("account registered", slog.Int64("account_id", id), slog.String("username", username))

	if notifyErr := s.Notifier.SendEmailConfirmation(ctx, email, token); notifyErr != nil {
		l.Error("failed to send email confirmation", slog.Int64("account_id", id), slog.Any("error", notifyErr))
	}
	return nil
}

// ConfirmEmail confirms the account registered under email when token is
// its outstanding confirmation token. A token confirms at most once.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, token string) (err error) {
	ctx, end := begin(ctx, s.Metrics, "confirm_email")
	defer end(&err)

	accounts := s.Store.Accounts()
	account, err := accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return internalError(CodeStoreFailed, "confirm_email", err)
	}

	if account.EmailConfirmed || account.ConfirmationTokenHash == nil {
		return ErrInvalidToken
	}
	fp := cryptox.FingerprintToken(token)
	if !cryptox.FingerprintsEqual(fp, *account.ConfirmationTokenHash) {
		return ErrInvalidToken
	}

	if err := accounts.ConfirmEmail(ctx, account.ID, fp); err != nil {
		if errors.Is(err, store.ErrStale) {
			return ErrInvalidToken
		}
		return internalError(CodeStoreFailed, "confirm_email", err)
	}

	slogx.FromContext(ctx).Info("email confirmed", slog.Int64("account_id", account.ID))
	return nil
}

// Login checks the password of username and reports how the login proceeds.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (result domain.LoginResult, err error) {
	ctx, end := begin(ctx, s.Metrics, "login")
	defer end(&err)

	l := slogx.FromContext(ctx)
	now := s.now()
	accounts := s.Store.Accounts()

	account, err := accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same work as a real verification so timing does not reveal
			// whether the username exists.
			s.Hasher.Verify(password, cryptox.DummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, internalError(CodeStoreFailed, "login", err)
	}

	if !s.Hasher.Verify(password, account.PasswordHash) {
		l.Info("login rejected", slog.Int64("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}

	if s.Hasher.NeedsUpgrade(account.PasswordHash) {
		s.upgradeHash(ctx, account, password)
	}

	if !account.EmailConfirmed {
		return domain.EmailConfirmationRequired{}, nil
	}

	if account.TwoFactorEnabled {
		if s.Policy.Dispatch == DispatchExternal {
			return domain.TwoFactorRequired{}, nil
		}

		expiresAt, err := s.sendChallenge(ctx, account, now)
		if err != nil {
			return nil, err
		}
		return domain.TwoFactorRequired{CodeSent: true, ExpiresAt: expiresAt}, nil
	}

	pair, session, err := s.newPair(account, now)
	if err != nil {
		return nil, err
	}
	if err := accounts.SetRefreshSession(ctx, account.ID, &session); err != nil {
		return nil, internalError(CodeStoreFailed, "login", err)
	}

	l.Info("login succeeded", slog.Int64("account_id", account.ID))
	return domain.Authenticated{Tokens: pair}, nil
}

// VerifyTwoFactor exchanges the outstanding two-factor code of username for
// a token pair. A code is accepted at most once and only before it expires.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, username, code string) (pair domain.TokenPair, err error) {
	ctx, end := begin(ctx, s.Metrics, "verify_two_factor")
	defer end(&err)

	l := slogx.FromContext(ctx)
	now := s.now()
	accounts := s.Store.Accounts()

	account, err := accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCode
		}
		return domain.TokenPair{}, internalError(CodeStoreFailed, "verify_two_factor", err)
	}

	challenge := account.TwoFactor
	if !account.TwoFactorEnabled || challenge == nil {
		return domain.TokenPair{}, ErrInvalidCode
	}

	if challenge.Expired(now) || challenge.Attempts >= s.Policy.MaxAttempts {
		s.discardChallenge(ctx, account.ID, challenge.CodeHash)
		return domain.TokenPair{}, ErrInvalidCode
	}

	fp := cryptox.FingerprintToken(code)
	if !cryptox.FingerprintsEqual(fp, challenge.CodeHash) {
		attempts, err := accounts.RecordTwoFactorFailure(ctx, account.ID, challenge.CodeHash)
		switch {
		case errors.Is(err, store.ErrStale):
		case err != nil:
			return domain.TokenPair{}, internalError(CodeStoreFailed, "verify_two_factor", err)
		case attempts >= s.Policy.MaxAttempts:
			l.Warn("two-factor challenge exhausted", slog.Int64("account_id", account.ID))
			s.discardChallenge(ctx, account.ID, challenge.CodeHash)
		}
		return domain.TokenPair{}, ErrInvalidCode
	}

	pair, session, err := s.newPair(account, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().ConsumeTwoFactorChallenge(ctx, account.ID, challenge.CodeHash); err != nil {
			return err
		}
		return tx.Accounts().SetRefreshSession(ctx, account.ID, &session)
	})
	if err != nil {
		if errors.Is(err, store.ErrStale) {
			return domain.TokenPair{}, ErrInvalidCode
		}
		return domain.TokenPair{}, internalError(CodeStoreFailed, "verify_two_factor", err)
	}

	l.Info("two-factor login succeeded", slog.Int64("account_id", account.ID))
	return pair, nil
}

// RefreshToken rotates the refresh session identified by accessToken, which
// may be expired, and refreshToken. The presented refresh token is never
// valid again afterwards.
func (s *AuthService) RefreshToken(ctx context.Context, accessToken, refreshToken string) (pair domain.TokenPair, err error) {
	ctx, end := begin(ctx, s.Metrics, "refresh")
	defer end(&err)

	now := s.now()
	claims, err := s.Tokens.ValidateExpiredAllowed(accessToken)
	if err != nil {
		slogx.FromContext(ctx).Info("refresh rejected access token", slog.Any("error", err))
		return domain.TokenPair{}, ErrInvalidToken
	}

	accounts := s.Store.Accounts()
	account, err := accounts.GetAccountByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, internalError(CodeStoreFailed, "refresh", err)
	}

	// A username freed by a rename and taken by another account must not
	// inherit the old token.
	if claims.AccountID != 0 && claims.AccountID != account.ID {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	current := account.Refresh
	if current == nil || current.Expired(now) ||
		!cryptox.FingerprintsEqual(cryptox.FingerprintToken(refreshToken), current.TokenHash) {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, session, err := s.newPair(account, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := accounts.RotateRefreshSession(ctx, account.ID, current.TokenHash, session); err != nil {
		if errors.Is(err, store.ErrStale) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, internalError(CodeStoreFailed, "refresh", err)
	}
	return pair, nil
}

// EnableTwoFactor turns two-factor on for username. It is idempotent.
func (s *AuthService) EnableTwoFactor(ctx context.Context, username string) (err error) {
	ctx, end := begin(ctx, s.Metrics, "enable_two_factor")
	defer end(&err)
	return s.setTwoFactor(ctx, username, true)
}

// DisableTwoFactor turns two-factor off for username and discards any
// outstanding challenge. It is idempotent.
func (s *AuthService) DisableTwoFactor(ctx context.Context, username string) (err error) {
	ctx, end := begin(ctx, s.Metrics, "disable_two_factor")
	defer end(&err)
	return s.setTwoFactor(ctx, username, false)
}

func (s *AuthService) setTwoFactor(ctx context.Context, username string, enabled bool) error {
	accounts := s.Store.Accounts()
	account, err := accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return internalError(CodeStoreFailed, "set_two_factor", err)
	}

	if err := accounts.SetTwoFactorEnabled(ctx, account.ID, enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return internalError(CodeStoreFailed, "set_two_factor", err)
	}

	slogx.FromContext(ctx).Info("two-factor updated",
		slog.Int64("account_id", account.ID), slog.Bool("enabled", enabled))
	return nil
}

// IssueTwoFactorChallenge replaces the outstanding challenge of username and
// returns the new code for delivery by the caller. It is the entry point for
// DispatchExternal. ErrNotFound is returned when the account does not exist
// or has two-factor disabled.
func (s *AuthService) IssueTwoFactorChallenge(ctx context.Context, username string) (code string, expiresAt time.Time, err error) {
	ctx, end := begin(ctx, s.Metrics, "issue_two_factor_challenge")
	defer end(&err)

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", time.Time{}, ErrNotFound
		}
		return "", time.Time{}, internalError(CodeStoreFailed, "issue_two_factor_challenge", err)
	}
	if !account.TwoFactorEnabled {
		return "", time.Time{}, ErrNotFound
	}

	return s.newChallenge(ctx, account, s.now())
}

// Logout ends the refresh session of username.
func (s *AuthService) Logout(ctx context.Context, username string) (err error) {
	ctx, end := begin(ctx, s.Metrics, "logout")
	defer end(&err)

	accounts := s.Store.Accounts()
	account, err := accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return internalError(CodeStoreFailed, "logout", err)
	}

	if err := accounts.SetRefreshSession(ctx, account.ID, nil); err != nil {
		return internalError(CodeStoreFailed, "logout", err)
	}
	return nil
}

func (s *AuthService) newPair(account domain.Account, now time.Time) (domain.TokenPair, domain.RefreshSession, error) {
	access, err := s.Tokens.IssueAccessToken(account, now)
	if err != nil {
		return domain.TokenPair{}, domain.RefreshSession{}, internalError(CodeTokenFailed, "issue_tokens", err)
	}
	refresh, session, err := s.Tokens.IssueRefreshToken(now)
	if err != nil {
		return domain.TokenPair{}, domain.RefreshSession{}, internalError(CodeTokenFailed, "issue_tokens", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		ExpiresIn:    s.Tokens.AccessTTL(),
	}, session, nil
}

func (s *AuthService) newChallenge(ctx context.Context, account domain.Account, now time.Time) (string, time.Time, error) {
	code, err := cryptox.GenerateOneTimeCode(s.Policy.Digits)
	if err != nil {
		return "", time.Time{}, internalError(CodeTokenFailed, "new_challenge", err)
	}

	challenge := &domain.TwoFactorChallenge{
		CodeHash:  cryptox.FingerprintToken(code),
		ExpiresAt: now.Add(s.Policy.CodeTTL),
	}
	if err := s.Store.Accounts().SetTwoFactorChallenge(ctx, account.ID, challenge); err != nil {
		return "", time.Time{}, internalError(CodeStoreFailed, "new_challenge", err)
	}
	return code, challenge.ExpiresAt, nil
}

func (s *AuthService) sendChallenge(ctx context.Context, account domain.Account, now time.Time) (time.Time, error) {
	code, expiresAt, err := s.newChallenge(ctx, account, now)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.Notifier.SendTwoFactorCode(ctx, account.Email, code, expiresAt); err != nil {
		return time.Time{}, internalError(CodeNotifyFailed, "send_two_factor_code", err)
	}
	return expiresAt, nil
}

// discardChallenge drops the challenge only if it is still codeHash.
func (s *AuthService) discardChallenge(ctx context.Context, accountID int64, codeHash string) {
	err := s.Store.Accounts().ConsumeTwoFactorChallenge(ctx, accountID, codeHash)
	if err != nil && !errors.Is(err, store.ErrStale) {
		slogx.FromContext(ctx).Error("failed to discard two-factor challenge",
			slog.Int64("account_id", accountID), slog.Any("error", err))
	}
}

func (s *AuthService) upgradeHash(ctx context.Context, account domain.Account, password string) {
	l := slogx.FromContext(ctx)
	hash, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Store.Accounts().UpdatePasswordHash(ctx, account.ID, hash)
	}
	if err != nil {
		l.Warn("failed to upgrade password hash", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return
	}
	l.Info("password hash upgraded", slog.Int64("account_id", account.ID))
}
