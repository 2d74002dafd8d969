package storage

import (
	"context"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// DBFile is the database file name inside the data directory
const DBFile = "fxboard.db"

var bucketFxboard = []byte("fxboard")

// BoltMedium implements Medium on a single BoltDB bucket
type BoltMedium struct {
	db *bolt.DB
}

// NewBoltMedium opens (or creates) <dataDir>/fxboard.db
func NewBoltMedium(dataDir string) (*BoltMedium, error) {
	dbPath := filepath.Join(dataDir, DBFile)

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketFxboard); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketFxboard, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltMedium{db: db}, nil
}

// Path returns the database file path
func (m *BoltMedium) Path() string {
	return m.db.Path()
}

// Close closes the database
func (m *BoltMedium) Close() error {
	return m.db.Close()
}

func (m *BoltMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFxboard).Get([]byte(key))
		if v != nil {
			// v is only valid for the life of the transaction
			data = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, closedOr(err)
	}
	return data, nil
}

func (m *BoltMedium) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFxboard).Put([]byte(key), data)
	})
	return closedOr(err)
}

func (m *BoltMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFxboard).Delete([]byte(key))
	})
	return closedOr(err)
}

func closedOr(err error) error {
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}
