package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
)

const accountColumns = `
	id, username, email, password_hash, email_confirmed, confirmation_token_hash,
	two_factor_enabled, two_factor_code_hash, two_factor_expires_at, two_factor_attempts,
	refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

type accountsRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a                domain.Account
		confirmationHash sql.NullString
		codeHash         sql.NullString
		codeExpiresAt    sql.NullTime
		attempts         int
		refreshHash      sql.NullString
		refreshExpiresAt sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.EmailConfirmed, &confirmationHash,
		&a.TwoFactorEnabled, &codeHash, &codeExpiresAt, &attempts,
		&refreshHash, &refreshExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	if confirmationHash.Valid {
		a.ConfirmationTokenHash = &confirmationHash.String
	}
	if codeHash.Valid && codeExpiresAt.Valid {
		a.TwoFactor = &domain.TwoFactorChallenge{
			CodeHash:  codeHash.String,
			ExpiresAt: codeExpiresAt.Time.UTC(),
			Attempts:  attempts,
		}
	}
	if refreshHash.Valid && refreshExpiresAt.Valid {
		a.Refresh = &domain.RefreshSession{
			TokenHash: refreshHash.String,
			ExpiresAt: refreshExpiresAt.Time.UTC(),
		}
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) getBy(ctx context.Context, column string, value any) (domain.Account, error) {
	// column is always one of the fixed names below, never caller input.
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = ?`, value)
	return scanAccount(row)
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
	now := nowUTC()
	created := a.CreatedAt
	if created.IsZero() {
		created = now
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			username, email, password_hash, email_confirmed, confirmation_token_hash,
			two_factor_enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.Email, a.PasswordHash, a.EmailConfirmed, nullString(a.ConfirmationTokenHash),
		a.TwoFactorEnabled, created.UTC(), now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, id int64, username, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET username = ?, email = ?,
		    refresh_token_hash = CASE WHEN username = ? THEN refresh_token_hash ELSE NULL END,
		    refresh_token_expires_at = CASE WHEN username = ? THEN refresh_token_expires_at ELSE NULL END,
		    updated_at = ?
		WHERE id = ?`,
		username, email, username, username, nowUTC(), id,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(res, nil, store.ErrNotFound)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, nowUTC(), id,
	)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *accountsRepo) ConfirmEmail(ctx context.Context, id int64, tokenHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email_confirmed = 1, confirmation_token_hash = NULL, updated_at = ?
		WHERE id = ? AND email_confirmed = 0 AND confirmation_token_hash = ?`,
		nowUTC(), id, tokenHash,
	)
	return expectOne(res, err, store.ErrStale)
}

func (r *accountsRepo) SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error {
	query := `UPDATE accounts SET two_factor_enabled = 1, updated_at = ? WHERE id = ?`
	if !enabled {
		query = `
			UPDATE accounts
			SET two_factor_enabled = 0,
			    two_factor_code_hash = NULL, two_factor_expires_at = NULL, two_factor_attempts = 0,
			    updated_at = ?
			WHERE id = ?`
	}
	res, err := r.db.ExecContext(ctx, query, nowUTC(), id)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *accountsRepo) SetTwoFactorChallenge(ctx context.Context, id int64, c *domain.TwoFactorChallenge) error {
	var (
		codeHash  sql.NullString
		expiresAt sql.NullTime
	)
	if c != nil {
		codeHash = sql.NullString{String: c.CodeHash, Valid: true}
		expiresAt = sql.NullTime{Time: c.ExpiresAt.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = ?, two_factor_expires_at = ?, two_factor_attempts = 0, updated_at = ?
		WHERE id = ?`,
		codeHash, expiresAt, nowUTC(), id,
	)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *accountsRepo) RecordTwoFactorFailure(ctx context.Context, id int64, codeHash string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET two_factor_attempts = two_factor_attempts + 1, updated_at = ?
		WHERE id = ? AND two_factor_code_hash = ?
		RETURNING two_factor_attempts`,
		nowUTC(), id, codeHash,
	).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrStale
	}
	return attempts, err
}

func (r *accountsRepo) ConsumeTwoFactorChallenge(ctx context.Context, id int64, codeHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = NULL, two_factor_expires_at = NULL, two_factor_attempts = 0, updated_at = ?
		WHERE id = ? AND two_factor_code_hash = ?`,
		nowUTC(), id, codeHash,
	)
	return expectOne(res, err, store.ErrStale)
}

func (r *accountsRepo) SetRefreshSession(ctx context.Context, id int64, s *domain.RefreshSession) error {
	var (
		tokenHash sql.NullString
		expiresAt sql.NullTime
	)
	if s != nil {
		tokenHash = sql.NullString{String: s.TokenHash, Valid: true}
		expiresAt = sql.NullTime{Time: s.ExpiresAt.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET refresh_token_hash = ?, refresh_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expiresAt, nowUTC(), id,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(res, nil, store.ErrNotFound)
}

func (r *accountsRepo) RotateRefreshSession(
	ctx context.Context,
	id int64,
	previousHash string,
	next domain.RefreshSession,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET refresh_token_hash = ?, refresh_token_expires_at = ?, updated_at = ?
		WHERE id = ? AND refresh_token_hash = ?`,
		next.TokenHash, next.ExpiresAt.UTC(), nowUTC(), id, previousHash,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return expectOne(res, nil, store.ErrStale)
}

func (r *accountsRepo) DeleteExpiredRefreshSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at <= ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) DeleteExpiredTwoFactorChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET two_factor_code_hash = NULL, two_factor_expires_at = NULL, two_factor_attempts = 0
		WHERE two_factor_expires_at IS NOT NULL AND two_factor_expires_at <= ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nowUTC() time.Time { return time.Now().UTC() }
