package storage

import (
	"context"
	"errors"
)

var (
	ErrClosed         = errors.New("storage: closed")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Keys under which the core persists its JSON blobs.
const (
	KeyWakeTarget      = "wake-target"
	KeyWakeRecords     = "wake-records"
	KeyMorningSession  = "morning-session"
	KeyAlarms          = "good-morning-alarms"
	KeyNotificationIDs = "notification-ids"
)

// KV stores opaque string values by key. Load reports false for a missing key.
type KV interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
