package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
)

// EmbeddingCache persists encoded label vectors keyed by a content hash, so a
// restart with an unchanged catalog and model skips re-encoding.
type EmbeddingCache struct {
	db *bbolt.DB
}

func OpenEmbeddingCache(path string) (*EmbeddingCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &EmbeddingCache{db: db}, nil
}

// GetMany returns the cached vectors for the keys that are present.
func (c *EmbeddingCache) GetMany(keys []string) (map[string][]float32, error) {
	found := make(map[string][]float32)
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, k := range keys {
			data := b.Get([]byte(k))
			if data == nil {
				continue
			}
			vec, err := decodeVector(data)
			if err != nil {
				continue // Treat corrupted entries as misses
			}
			found[k] = vec
		}
		return nil
	})
	return found, err
}

// PutMany stores vectors in a single transaction.
func (c *EmbeddingCache) PutMany(entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for k, vec := range entries {
			if err := b.Put([]byte(k), encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *EmbeddingCache) Count() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketVectors).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *EmbeddingCache) Close() error {
	return c.db.Close()
}

// encodeVector writes a length prefix followed by little-endian float32 bits.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("vector entry too small")
	}
	n := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != n*4 {
		return nil, fmt.Errorf("vector length mismatch")
	}
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}
