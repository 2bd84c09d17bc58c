package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendBolt, BackendPostgres}

type Options struct {
	Backend     string
	DataDir     string
	PostgresDSN string
}

func Open(ctx context.Context, opts Options) (KV, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend != BackendMemory && backend != BackendPostgres {
		if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	switch backend {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendFile:
		return NewFileKV(filepath.Join(opts.DataDir, "goodmorning.json"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(opts.DataDir, "goodmorning.db"))
	case BackendBolt:
		return OpenBolt(filepath.Join(opts.DataDir, "goodmorning.bolt"))
	case BackendPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
