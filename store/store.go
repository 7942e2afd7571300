package store

import (
	"context"
	"time"
)

// Record is one persisted value together with its write history.
type Record struct {
	Key          string
	Value        string
	Created      time.Time
	LastModified time.Time
}

// Connector is a namespaced key-value store of raw text.
//
// Fetch returns (nil, nil) when the key is absent. Save overwrites any existing
// value, keeping its creation time.
type Connector interface {
	Fetch(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, key, value string) error
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
