package boltdb

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	DefaultDatabasePermissions = 0600
	DefaultOpenTimeout         = 2 * time.Second
)

func GetDatabase(path string, timeout time.Duration) (*bolt.DB, error) {
	if timeout == 0 {
		timeout = DefaultOpenTimeout
	}
	database, err := bolt.Open(path, DefaultDatabasePermissions, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return database, nil
}

// bucket returns the collection bucket, creating it when create is set and
// the transaction is writable. A nil bucket with a nil error means the
// collection has never been written to.
func bucket(tx *bolt.Tx, name []byte, create bool) (*bolt.Bucket, error) {
	if create {
		return tx.CreateBucketIfNotExists(name)
	}
	return tx.Bucket(name), nil
}
