// Package redisstore provides a Redis-backed implementation of the
// mailauth.UserStore interface. Accounts are stored as JSON under a
// per-email key, with a secondary index from API key to email so that
// uniqueness checks and key lookups stay O(1).
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentivox/mailauth"
)

const (
	defaultKeyPrefix = "svx"

	accountKeySegment = "acct"
	apiKeyKeySegment  = "key"

	// createMaxRetries bounds optimistic-lock retries when a concurrent
	// writer touches the watched keys.
	createMaxRetries = 4
)

// ErrAPIKeyConflict is returned when a create races another writer onto
// the same API key. The engine retries issuance with a fresh key.
var ErrAPIKeyConflict = errors.New("api key already indexed")

var errRedisUnavailable = errors.New("redis unavailable")

type accountRecord struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	JoinDate int64  `json:"join_date"`
}

// Store implements mailauth.UserStore on top of a Redis client.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store. An empty prefix selects the default "svx"
// namespace.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) accountKey(email string) string {
	return s.prefix + ":" + accountKeySegment + ":" + email
}

func (s *Store) apiKeyKey(apiKey string) string {
	return s.prefix + ":" + apiKeyKeySegment + ":" + apiKey
}

// GetAccountByEmail implements mailauth.UserStore.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (mailauth.Account, error) {
	data, err := s.redis.Get(ctx, s.accountKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return mailauth.Account{}, mailauth.ErrAccountNotFound
		}
		return mailauth.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	var record accountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return mailauth.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return record.account(), nil
}

// IsAPIKeyUnique implements mailauth.UserStore.
func (s *Store) IsAPIKeyUnique(ctx context.Context, apiKey string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.apiKeyKey(apiKey)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return n == 0, nil
}

// CreateAccount implements mailauth.UserStore. The account record and
// the API key index entry are written in one transaction, watching both
// keys so a concurrent create on either fails cleanly.
func (s *Store) CreateAccount(ctx context.Context, input mailauth.CreateAccountInput) (mailauth.Account, error) {
	record := accountRecord{
		Email:    input.Email,
		Name:     input.Name,
		APIKey:   input.APIKey,
		JoinDate: input.JoinDate.Unix(),
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return mailauth.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	acctKey := s.accountKey(input.Email)
	idxKey := s.apiKeyKey(input.APIKey)

	for i := 0; i < createMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, acctKey).Result()
			if err != nil {
				return err
			}
			if exists > 0 {
				return mailauth.ErrAccountExists
			}

			taken, err := tx.Exists(ctx, idxKey).Result()
			if err != nil {
				return err
			}
			if taken > 0 {
				return ErrAPIKeyConflict
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, acctKey, encoded, 0)
				pipe.Set(ctx, idxKey, input.Email, 0)
				return nil
			})
			return err
		}, acctKey, idxKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, mailauth.ErrAccountExists), errors.Is(err, ErrAPIKeyConflict):
				return mailauth.Account{}, err
			default:
				return mailauth.Account{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
			}
		}

		return record.account(), nil
	}

	return mailauth.Account{}, fmt.Errorf("%w: transaction contention", errRedisUnavailable)
}

func (r accountRecord) account() mailauth.Account {
	return mailauth.Account{
		Email:    r.Email,
		Name:     r.Name,
		APIKey:   r.APIKey,
		JoinDate: time.Unix(r.JoinDate, 0).UTC(),
	}
}
