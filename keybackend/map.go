// Package keybackend loads the seed site accounts of the dev server.
package keybackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sagarc03/neocities"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func accountValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("sitename", func(fl validator.FieldLevel) bool {
			return neocities.IsValidSitename(fl.Field().String())
		})
	})
	return validate
}

// ValidateAccount checks the fields of a seed account.
func ValidateAccount(a SiteAccount) error {
	if err := accountValidator().Struct(a); err != nil {
		return fmt.Errorf("validate account %q: %w: %w", a.Sitename, neocities.ErrInvalidInput, err)
	}
	return nil
}

// SiteCreator creates sites. *neocities.SiteService satisfies it.
type SiteCreator interface {
	CreateSite(ctx context.Context, ns neocities.NewSite) (neocities.Site, error)
}

// MapAccountStore keeps seed accounts in an in-memory map keyed by sitename.
type MapAccountStore struct {
	accounts map[string]SiteAccount
}

// NewMapAccountStore creates a new map-based account store.
func NewMapAccountStore(accounts map[string]SiteAccount) *MapAccountStore {
	return &MapAccountStore{accounts: accounts}
}

// Lookup returns the seed account for sitename.
func (s *MapAccountStore) Lookup(sitename string) (SiteAccount, error) {
	a, found := s.accounts[sitename]
	if !found {
		return SiteAccount{}, fmt.Errorf("%s: %w", sitename, ErrAccountNotFound)
	}
	return a, nil
}

// Accounts returns every account ordered by sitename.
func (s *MapAccountStore) Accounts() []SiteAccount {
	out := make([]SiteAccount, 0, len(s.accounts))
	for _, name := range slices.Sorted(maps.Keys(s.accounts)) {
		out = append(out, s.accounts[name])
	}
	return out
}

// Seed creates every account that doesn't exist yet. Existing sites are
// left untouched. It returns the number of sites created.
func (s *MapAccountStore) Seed(ctx context.Context, creator SiteCreator) (int, error) {
	created := 0
	for _, a := range s.Accounts() {
		_, err := creator.CreateSite(ctx, neocities.NewSite{
			Sitename: a.Sitename,
			Password: a.Password,
			APIKey:   a.APIKey,
			Domain:   a.Domain,
			Tags:     a.Tags,
		})
		if errors.Is(err, neocities.ErrSiteExists) {
			slog.Debug("seed site already exists", "sitename", a.Sitename)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.Sitename, err)
		}
		slog.Info("seeded site", "sitename", a.Sitename)
		created++
	}
	return created, nil
}
