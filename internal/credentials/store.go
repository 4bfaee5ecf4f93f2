// Package credentials persists per-user provider credentials in Redis.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"template-migrator/internal/common/database"
	"template-migrator/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const (
	ProviderHubSpot = "hubspot"
	ProviderSFMC    = "sfmc"
)

// ErrNotConnected distinguishes "this user never connected the provider"
// from a store access failure. Callers surface the two differently.
var ErrNotConnected = errors.New("provider not connected for user")

// Stored holds whatever a provider connection saved for a user. HubSpot
// connections carry AccessToken; SFMC connections carry the provisioning
// triple used to mint a token per run.
type Stored struct {
	AccessToken  string `json:"accessToken,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Subdomain    string `json:"subdomain,omitempty"`
}

// HasSFMCProvisioning reports whether the stored blob can mint an SFMC token.
func (s *Stored) HasSFMCProvisioning() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.Subdomain != ""
}

type Store struct {
	redis  *database.RedisClient
	logger logger.Logger
}

func NewStore(redisClient *database.RedisClient, log logger.Logger) *Store {
	return &Store{
		redis:  redisClient,
		logger: log,
	}
}

func credentialKey(userID, provider string) string {
	return fmt.Sprintf("credentials:%s:%s", userID, provider)
}

// Get retrieves stored credentials for (userID, provider). A missing key
// returns ErrNotConnected; any other failure is a store error.
func (s *Store) Get(ctx context.Context, userID, provider string) (*Stored, error) {
	raw, err := s.redis.Get(ctx, credentialKey(userID, provider))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotConnected
		}
		return nil, fmt.Errorf("credential lookup for %s/%s: %w", userID, provider, err)
	}

	var stored Stored
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode stored credentials for %s/%s: %w", userID, provider, err)
	}

	s.logger.Debug("Resolved stored credentials", map[string]interface{}{
		"userId":   userID,
		"provider": provider,
	})

	return &stored, nil
}

// Put saves credentials for (userID, provider). A zero expiration keeps the
// entry until explicitly disconnected.
func (s *Store) Put(ctx context.Context, userID, provider string, creds *Stored, expiration time.Duration) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials for %s/%s: %w", userID, provider, err)
	}

	if err := s.redis.Set(ctx, credentialKey(userID, provider), string(raw), expiration); err != nil {
		return fmt.Errorf("store credentials for %s/%s: %w", userID, provider, err)
	}

	return nil
}

// Delete removes a provider connection for a user.
func (s *Store) Delete(ctx context.Context, userID, provider string) error {
	return s.redis.Del(ctx, credentialKey(userID, provider))
}
