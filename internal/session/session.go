// Package session tracks revoked tokens and fans out identity changes to
// subscribers of the session stream.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/pkg/types"
)

// EventType names an identity change
type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is published whenever a user's session state changes
type Event struct {
	Type     EventType       `json:"type"`
	UserID   uuid.UUID       `json:"userId"`
	Identity *types.Identity `json:"identity"`
	At       time.Time       `json:"at"`
}

// Store is the shared session state behind the auth service
type Store interface {
	// Revoke marks a token id as unusable until ttl elapses
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Publish(ctx context.Context, event Event) error
	// Subscribe delivers events for userID until ctx ends or the returned
	// cancel func is called; the channel is closed afterwards.
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, func())
}

const subscriberBuffer = 8
