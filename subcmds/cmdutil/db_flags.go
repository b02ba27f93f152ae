// Copyright (c) 2025 BVK Chaitanya

// Package cmdutil holds flag helpers shared by the subcommands.
package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
)

// DBFlags locates and opens the checkpoint database on disk.
type DBFlags struct {
	dataDir string
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "Path to the database directory")
}

func (f *DBFlags) DataDir() (string, error) {
	if len(f.dataDir) == 0 {
		f.dataDir = filepath.Join(os.Getenv("HOME"), ".inflight")
	}
	return filepath.Abs(f.dataDir)
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// GetDatabase locks the data directory and opens the badger database in it.
// The returned closer releases both.
func (f *DBFlags) GetDatabase(ctx context.Context) (kv.Database, func(), error) {
	dataDir, err := f.DataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine data-dir absolute path: %w", err)
	}
	if _, err := os.Stat(dataDir); err != nil {
		return nil, nil, fmt.Errorf("could not stat data directory %q: %w", dataDir, err)
	}

	lockPath := filepath.Join(dataDir, "inflight.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return nil, nil, fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
	}

	bopts := badger.DefaultOptions(dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		flock.Unlock()
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}

	closer := func() {
		bdb.Close()
		flock.Unlock()
	}
	return kvbadger.New(bdb, isGoodKey), closer, nil
}
