package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/metrics"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type ProfileService struct {
	Store   store.Store
	Metrics *metrics.Metrics
}

// GetProfile fetches the profile of username.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (p domain.Profile, err error) {
	ctx, end := begin(ctx, s.Metrics, "get_profile")
	defer end(&err)

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, internalError(CodeStoreFailed, "get_profile", err)
	}
	return account.Profile(), nil
}

// UpdateProfile changes the username and email of username. Renaming ends
// the current refresh session, since refresh identity is the username.
func (s *ProfileService) UpdateProfile(ctx context.Context, username, newUsername, newEmail string) (p domain.Profile, err error) {
	ctx, end := begin(ctx, s.Metrics, "update_profile")
	defer end(&err)

	var updated domain.Account
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		accounts := tx.Accounts()
		account, err := accounts.GetAccountByUsername(ctx, username)
		if err != nil {
			return err
		}

		if err := accounts.UpdateProfile(ctx, account.ID, newUsername, newEmail); err != nil {
			return err
		}

		updated, err = accounts.GetAccountByID(ctx, account.ID)
		return err
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Profile{}, ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Profile{}, ErrConflict
	case err != nil:
		return domain.Profile{}, internalError(CodeStoreFailed, "update_profile", err)
	}

	slogx.FromContext(ctx).Info("profile updated",
		slog.Int64("account_id", updated.ID),
		slog.Bool("renamed", updated.Username != username))
	return updated.Profile(), nil
}
