package save

import (
	"context"
	"fmt"
	"time"

	"github.com/decker502/worldstate/pkg/utils"
	"go.etcd.io/bbolt"
)

const recordBucket = "records"

// BoltBackend 基于 BoltDB 的存储后端
type BoltBackend struct {
	db *bbolt.DB
}

// OpenBoltBackend 打开 BoltDB 存档数据库
func OpenBoltBackend(path string) (*BoltBackend, error) {
	cleanPath, err := utils.PrepareDatabasePath(path)
	if err != nil {
		return nil, err
	}
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	b := &BoltBackend{db: db}
	if err := b.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// Close 关闭数据库
func (b *BoltBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *BoltBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b == nil || b.db == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	found := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		found = bucket.Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

func (b *BoltBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || b.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var payload []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return ErrNotFound
		}
		// 事务结束后 value 失效，需要复制
		payload = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *BoltBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return bucket.Put([]byte(key), data)
	})
}

func (b *BoltBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("record bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
}

func (b *BoltBackend) ensureBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(recordBucket)); err != nil {
			return fmt.Errorf("create record bucket: %w", err)
		}
		return nil
	})
}
