// Package store persists the integration's config record: API credentials,
// the registered callback URL, the remote webhook subscription id and the
// OAuth token. The record is read and written as a whole.
package store

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
)

// Record is the persisted state of the integration.
type Record struct {
	model.SubscriptionConfig
	Token *oauth2.Token `json:"token,omitempty"`
}

// Store reads and writes the config record atomically.
type Store interface {
	// Load returns the current record. A missing backing file yields a
	// zero record, not an error.
	Load(ctx context.Context) (Record, error)

	// Save replaces the whole record.
	Save(ctx context.Context, rec Record) error
}

// LoadConfig returns the subscription part of the record.
func (s *FileStore) LoadConfig(ctx context.Context) (model.SubscriptionConfig, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return model.SubscriptionConfig{}, err
	}
	return rec.SubscriptionConfig, nil
}

// SaveConfig replaces the subscription part of the record, leaving the
// token untouched.
func (s *FileStore) SaveConfig(ctx context.Context, cfg model.SubscriptionConfig) error {
	rec, err := s.Load(ctx)
	if err != nil {
		return err
	}
	rec.SubscriptionConfig = cfg
	return s.Save(ctx, rec)
}

// SaveToken replaces the token part of the record, leaving the
// subscription config untouched.
func (s *FileStore) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	rec, err := s.Load(ctx)
	if err != nil {
		return err
	}
	rec.Token = tok
	return s.Save(ctx, rec)
}
