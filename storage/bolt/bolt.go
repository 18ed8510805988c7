// Package bolt is a storage.Store backed by a BoltDB file.
package bolt

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/storage"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"
)

var configsBucket = []byte("configs")

// Store keeps configs, as YAML, in one bucket.
type Store struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStore(filename string) (*Store, error) {
	return &Store{
		filename: filename,
	}, nil
}

func (s *Store) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(configsBucket)
		return err
	}); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Store."+format, args...)
	}
}

func (s *Store) Put(ctx context.Context, name string, c *core.Config) error {
	s.logf("Put %s", name)
	bs, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configsBucket).Put([]byte(name), bs)
	})
}

func (s *Store) Get(ctx context.Context, name string) (*core.Config, error) {
	s.logf("Get %s", name)
	var bs []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// The value is only good during the transaction.
		if v := tx.Bucket(configsBucket).Get([]byte(name)); v != nil {
			bs = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if bs == nil {
		return nil, fmt.Errorf("config %q: %w", name, storage.NotFound)
	}
	return core.ParseConfig(bs)
}

func (s *Store) Rem(ctx context.Context, name string) error {
	s.logf("Rem %s", name)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(configsBucket)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("config %q: %w", name, storage.NotFound)
		}
		return b.Delete([]byte(name))
	})
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(configsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("List found %d configs", len(acc))
	return acc, nil
}
