package storage

import (
	"encoding/json"
	"path/filepath"

	"github.com/cuemby/siloflow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var bucketSchemas = []byte("schemas")

// BoltStore implements SchemaStore using BoltDB, one bucket for the
// schema table with JSON-encoded values keyed by schema id.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) a BoltDB file under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "siloflow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, types.Wrap(types.KindPermanentIO, "open boltdb", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSchemas)
		return err
	})
	if err != nil {
		db.Close()
		return nil, types.Wrap(types.KindPermanentIO, "create schema bucket", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutSchema writes schema unconditionally; callers enforce put-new-only
// semantics above this layer.
func (s *BoltStore) PutSchema(schema types.Schema) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSchemas)
		data, err := json.Marshal(schema)
		if err != nil {
			return types.Wrap(types.KindInternal, "marshal schema", err)
		}
		return b.Put([]byte(schema.ID), data)
	})
}

// GetSchema returns NotFound if id is absent.
func (s *BoltStore) GetSchema(id string) (types.Schema, error) {
	var schema types.Schema
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSchemas)
		data := b.Get([]byte(id))
		if data == nil {
			return types.New(types.KindNotFound, "schema "+id).WithContext("", "", id)
		}
		return json.Unmarshal(data, &schema)
	})
	return schema, err
}

// HasSchema reports whether id has a persisted schema.
func (s *BoltStore) HasSchema(id string) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSchemas)
		found = b.Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// ListSchemas returns every persisted schema, order unspecified.
func (s *BoltStore) ListSchemas() ([]types.Schema, error) {
	var schemas []types.Schema
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSchemas)
		return b.ForEach(func(k, v []byte) error {
			var schema types.Schema
			if err := json.Unmarshal(v, &schema); err != nil {
				return err
			}
			schemas = append(schemas, schema)
			return nil
		})
	})
	return schemas, err
}
