package domain

import "time"

// Account is the aggregate root of the credential lifecycle. Secrets are
// held as fingerprints only: ConfirmationTokenHash, the challenge CodeHash
// and the refresh session TokenHash never contain the raw value.
type Account struct {
	ID                    int64
	Username              string
	Email                 string
	PasswordHash          string  // argon2id PHC string, or a legacy bcrypt hash
	EmailConfirmed        bool    // login is refused until true
	ConfirmationTokenHash *string // set only while unconfirmed
	TwoFactorEnabled      bool
	TwoFactor             *TwoFactorChallenge // set only during an active challenge
	Refresh               *RefreshSession     // set only after a full login
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewAccount returns an unconfirmed account with two-factor disabled and no
// session, awaiting confirmation of confirmationHash.
func NewAccount(username, email, passwordHash, confirmationHash string, now time.Time) Account {
	return Account{
		Username:              username,
		Email:                 email,
		PasswordHash:          passwordHash,
		ConfirmationTokenHash: &confirmationHash,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// Profile is the self-service view of an account.
type Profile struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	EmailConfirmed   bool   `json:"email_confirmed"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// Profile projects the account onto its public fields.
func (a Account) Profile() Profile {
	return Profile{
		ID:               a.ID,
		Username:         a.Username,
		Email:            a.Email,
		EmailConfirmed:   a.EmailConfirmed,
		TwoFactorEnabled: a.TwoFactorEnabled,
	}
}
