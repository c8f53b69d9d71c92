// Package bank resolves and validates payout destinations: a bank code from
// the platform's bank-code registry plus a 10-digit NUBAN account number.
package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gatepass-ng/gatepass/internal/domain"
	redisrepo "github.com/gatepass-ng/gatepass/internal/repository/redis"
)

var (
	ErrUnknownBankCode  = errors.New("unknown bank code")
	ErrBadAccountNumber = errors.New("account number must be exactly 10 digits")
)

const accountNumberLen = 10

// ValidAccountNumber reports whether s is exactly 10 numeric digits.
func ValidAccountNumber(s string) bool {
	if len(s) != accountNumberLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type Config struct {
	URL      string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// Registry serves the enumerated set of banks a seller can be paid into.
// The upstream list changes rarely, so it is cached in Redis between fetches.
type Registry struct {
	cfg    Config
	client *http.Client
	cache  *redisrepo.Cache
}

func NewRegistry(cfg Config, cache *redisrepo.Cache) *Registry {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 6 * time.Hour
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Registry{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}
}

// Banks returns the registry's bank list, from cache when warm.
func (r *Registry) Banks(ctx context.Context) ([]domain.Bank, error) {
	const op = "bank.Registry.Banks"

	if r.cache == nil {
		banks, err := r.fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return banks, nil
	}

	banks, err := redisrepo.GetOrSetJSON(
		ctx,
		r.cache,
		redisrepo.KeyBankCodes(),
		r.cfg.CacheTTL,
		r.fetch,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return banks, nil
}

// ValidatePayout checks a payout destination against the registry. Account
// number shape is checked first so an obviously bad request never triggers a
// registry fetch.
func (r *Registry) ValidatePayout(ctx context.Context, bankCode, accountNumber string) error {
	const op = "bank.Registry.ValidatePayout"

	if !ValidAccountNumber(accountNumber) {
		return fmt.Errorf("%s:%w", op, ErrBadAccountNumber)
	}

	banks, err := r.Banks(ctx)
	if err != nil {
		return err
	}

	for _, b := range banks {
		if b.Code == bankCode {
			return nil
		}
	}

	return fmt.Errorf("%s:%w", op, ErrUnknownBankCode)
}

func (r *Registry) fetch(ctx context.Context) ([]domain.Bank, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank registry returned %d", resp.StatusCode)
	}

	var banks []domain.Bank
	if err := json.NewDecoder(resp.Body).Decode(&banks); err != nil {
		return nil, err
	}

	return banks, nil
}
