package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, username, email, password_hash, email_confirmed, confirmation_token_hash,
	two_factor_enabled, two_factor_code_hash, two_factor_expires_at, two_factor_attempts,
	refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

type accountsRepo struct {
	db querier
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a                domain.Account
		codeHash         *string
		codeExpiresAt    *time.Time
		attempts         int
		refreshHash      *string
		refreshExpiresAt *time.Time
	)

	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.EmailConfirmed, &a.ConfirmationTokenHash,
		&a.TwoFactorEnabled, &codeHash, &codeExpiresAt, &attempts,
		&refreshHash, &refreshExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	if codeHash != nil && codeExpiresAt != nil {
		a.TwoFactor = &domain.TwoFactorChallenge{
			CodeHash:  *codeHash,
			ExpiresAt: codeExpiresAt.UTC(),
			Attempts:  attempts,
		}
	}
	if refreshHash != nil && refreshExpiresAt != nil {
		a.Refresh = &domain.RefreshSession{
			TokenHash: *refreshHash,
			ExpiresAt: refreshExpiresAt.UTC(),
		}
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) getBy(ctx context.Context, column string, value any) (domain.Account, error) {
	// column is always one of the fixed names below, never caller input.
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = $1`, value))
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getBy(ctx, "username", username)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *accountsRepo) GetAccountByConfirmationToken(ctx context.Context, tokenHash string) (domain.Account, error) {
	return r.getBy(ctx, "confirmation_token_hash", tokenHash)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) (int64, error) {
	now := time.Now().UTC()
	created := a.CreatedAt
	if created.IsZero() {
		created = now
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (
			username, email, password_hash, email_confirmed, confirmation_token_hash,
			two_factor_enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		a.Username, a.Email, a.PasswordHash, a.EmailConfirmed, a.ConfirmationTokenHash,
		a.TwoFactorEnabled, created.UTC(), now,
	).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, id int64, username, email string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET username = $1, email = $2,
		    refresh_token_hash = CASE WHEN username = $1 THEN refresh_token_hash END,
		    refresh_token_expires_at = CASE WHEN username = $1 THEN refresh_token_expires_at END,
		    updated_at = $3
		WHERE id = $4`,
		username, email, time.Now().UTC(), id,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(tag, nil, store.ErrNotFound)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now().UTC(), id,
	)
	return expectOne(tag, err, store.ErrNotFound)
}

func (r *accountsRepo) ConfirmEmail(ctx context.Context, id int64, tokenHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email_confirmed = TRUE, confirmation_token_hash = NULL, updated_at = $1
		WHERE id = $2 AND NOT email_confirmed AND confirmation_token_hash = $3`,
		time.Now().UTC(), id, tokenHash,
	)
	return expectOne(tag, err, store.ErrStale)
}

func (r *accountsRepo) SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET two_factor_enabled = $1,
		    two_factor_code_hash = CASE WHEN $1 THEN two_factor_code_hash END,
		    two_factor_expires_at = CASE WHEN $1 THEN two_factor_expires_at END,
		    two_factor_attempts = CASE WHEN $1 THEN two_factor_attempts ELSE 0 END,
		    updated_at = $2
		WHERE id = $3`,
		enabled, time.Now().UTC(), id,
	)
	return expectOne(tag, err, store.ErrNotFound)
}

func (r *accountsRepo) SetTwoFactorChallenge(ctx context.Context, id int64, c *domain.TwoFactorChallenge) error {
	var (
		codeHash  *string
		expiresAt *time.Time
	)
	if c != nil {
		exp := c.ExpiresAt.UTC()
		codeHash, expiresAt = &c.CodeHash, &exp
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = $1, two_factor_expires_at = $2, two_factor_attempts = 0, updated_at = $3
		WHERE id = $4`,
		codeHash, expiresAt, time.Now().UTC(), id,
	)
	return expectOne(tag, err, store.ErrNotFound)
}

func (r *accountsRepo) RecordTwoFactorFailure(ctx context.Context, id int64, codeHash string) (int, error) {
	var attempts int
	err := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET two_factor_attempts = two_factor_attempts + 1, updated_at = $1
		WHERE id = $2 AND two_factor_code_hash = $3
		RETURNING two_factor_attempts`,
		time.Now().UTC(), id, codeHash,
	).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, store.ErrStale
	}
	return attempts, err
}

func (r *accountsRepo) ConsumeTwoFactorChallenge(ctx context.Context, id int64, codeHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = NULL, two_factor_expires_at = NULL, two_factor_attempts = 0, updated_at = $1
		WHERE id = $2 AND two_factor_code_hash = $3`,
		time.Now().UTC(), id, codeHash,
	)
	return expectOne(tag, err, store.ErrStale)
}

func (r *accountsRepo) SetRefreshSession(ctx context.Context, id int64, s *domain.RefreshSession) error {
	var (
		tokenHash *string
		expiresAt *time.Time
	)
	if s != nil {
		exp := s.ExpiresAt.UTC()
		tokenHash, expiresAt = &s.TokenHash, &exp
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET refresh_token_hash = $1, refresh_token_expires_at = $2, updated_at = $3
		WHERE id = $4`,
		tokenHash, expiresAt, time.Now().UTC(), id,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(tag, nil, store.ErrNotFound)
}

func (r *accountsRepo) RotateRefreshSession(
	ctx context.Context,
	id int64,
	previousHash string,
	next domain.RefreshSession,
) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET refresh_token_hash = $1, refresh_token_expires_at = $2, updated_at = $3
		WHERE id = $4 AND refresh_token_hash = $5`,
		next.TokenHash, next.ExpiresAt.UTC(), time.Now().UTC(), id, previousHash,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(tag, nil, store.ErrStale)
}

func (r *accountsRepo) DeleteExpiredRefreshSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token_expires_at <= $1`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *accountsRepo) DeleteExpiredTwoFactorChallenges(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = NULL, two_factor_expires_at = NULL, two_factor_attempts = 0
		WHERE two_factor_expires_at <= $1`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
