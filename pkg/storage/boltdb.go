package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketObjects  = []byte("objects")
	bucketPackages = []byte("packages")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "vigil.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketObjects,
			bucketPackages,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func objectKey(typeName, fullName string) []byte {
	return []byte(typeName + "/" + fullName)
}

// Object operations
func (s *BoltStore) PutObject(rec *ObjectRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(objectKey(rec.Type, rec.FullName), data)
	})
}

func (s *BoltStore) GetObject(typeName, fullName string) (*ObjectRecord, error) {
	var rec ObjectRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		data := b.Get(objectKey(typeName, fullName))
		if data == nil {
			return fmt.Errorf("object record not found: %s/%s", typeName, fullName)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltStore) ListObjects() ([]*ObjectRecord, error) {
	var recs []*ObjectRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		return b.ForEach(func(k, v []byte) error {
			var rec ObjectRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	return recs, err
}

func (s *BoltStore) DeleteObject(typeName, fullName string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		return b.Delete(objectKey(typeName, fullName))
	})
}

// Package operations
func (s *BoltStore) PutPackage(rec *PackageRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPackages)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Name), data)
	})
}

func (s *BoltStore) ListPackages() ([]*PackageRecord, error) {
	var recs []*PackageRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPackages)
		return b.ForEach(func(k, v []byte) error {
			var rec PackageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	return recs, err
}

// ListMissingFiles returns index records whose backing config file has
// vanished: a delete interrupted between file removal and record removal, or
// a file removed out of band.
func (s *BoltStore) ListMissingFiles() ([]*ObjectRecord, error) {
	recs, err := s.ListObjects()
	if err != nil {
		return nil, err
	}

	var missing []*ObjectRecord
	for _, rec := range recs {
		if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
			missing = append(missing, rec)
		}
	}
	return missing, nil
}
