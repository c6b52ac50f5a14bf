package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by compare-and-swap updates when the expected
	// value was no longer current, i.e. another request consumed it first.
	ErrStale = errors.New("store: stale value")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories hang off it as methods so that a Tx-scoped
// store exposes the same repositories and nested transactions are refused.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts persists account records. Secrets are passed in and compared as
// fingerprints; the store never sees a raw token or code.
type Accounts interface {
	GetAccountByID(ctx context.Context, id int64) (domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)
	GetAccountByConfirmationToken(ctx context.Context, tokenHash string) (domain.Account, error)

	// CreateAccount inserts a new account and returns its assigned id.
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateAccount(ctx context.Context, a domain.Account) (int64, error)

	// UpdateProfile renames the account. The refresh session is dropped
	// because refresh identity is the username.
	UpdateProfile(ctx context.Context, id int64, username, email string) error

	// UpdatePasswordHash replaces the stored digest, e.g. after a rehash.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// ConfirmEmail marks the email confirmed and clears the token, but only
	// while tokenHash is still the pending token. Returns ErrStale otherwise.
	ConfirmEmail(ctx context.Context, id int64, tokenHash string) error

	// SetTwoFactorEnabled toggles two-factor. Disabling also clears any
	// outstanding challenge.
	SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error

	// SetTwoFactorChallenge replaces the outstanding challenge; nil clears it.
	SetTwoFactorChallenge(ctx context.Context, id int64, c *domain.TwoFactorChallenge) error

	// RecordTwoFactorFailure bumps the attempt counter of the challenge
	// identified by codeHash and returns the new count. Returns ErrStale if
	// that challenge is gone.
	RecordTwoFactorFailure(ctx context.Context, id int64, codeHash string) (int, error)

	// ConsumeTwoFactorChallenge clears the challenge only while codeHash is
	// still the outstanding one. Returns ErrStale otherwise.
	ConsumeTwoFactorChallenge(ctx context.Context, id int64, codeHash string) error

	// SetRefreshSession replaces the refresh session; nil clears it.
	SetRefreshSession(ctx context.Context, id int64, s *domain.RefreshSession) error

	// RotateRefreshSession swaps the refresh session for next only while
	// previousHash is still the stored token. Returns ErrStale otherwise.
	RotateRefreshSession(ctx context.Context, id int64, previousHash string, next domain.RefreshSession) error

	// DeleteExpiredRefreshSessions clears refresh sessions that expired at or
	// before now and reports how many were cleared.
	DeleteExpiredRefreshSessions(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpiredTwoFactorChallenges clears challenges that expired at or
	// before now and reports how many were cleared.
	DeleteExpiredTwoFactorChallenges(ctx context.Context, now time.Time) (int64, error)
}
