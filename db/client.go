package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type Client interface {
	// Init applies any pending schema migrations. It must be called once
	// before the first Read or Write and is idempotent.
	Init(ctx context.Context) error

	Read(ctx context.Context, op func(context.Context, ReadOnly) error) error

	// Write runs op inside a transaction. If op returns an error or panics,
	// every mutation performed through the Transaction is rolled back.
	Write(ctx context.Context, op func(context.Context, Transaction) error) error

	Close() error
}

type ClientInterface interface {
	New(dir string) (Client, bool, error)
	Delete(dir string) error
}

func DeleteDB(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing database directory %v: %w", filepath.Clean(dir), err)
	}

	return nil
}
