package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when changing how vectors or keys are encoded.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyModelHash     = []byte("model_hash")
)

// SchemaInfo stores schema version and the hash of the model that produced
// the cached vectors.
type SchemaInfo struct {
	Version   int    `json:"version"`
	ModelHash string `json:"model_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (c *EmbeddingCache) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 0
			}
		}
		if hashData := b.Get(keyModelHash); hashData != nil {
			info.ModelHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (c *EmbeddingCache) SetSchemaInfo(info *SchemaInfo) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}
		return b.Put(keyModelHash, []byte(info.ModelHash))
	})
}

// ComputeModelHash identifies an encoder. Vectors from different models or
// dimensions must never be mixed.
func ComputeModelHash(model string, dimension int) string {
	hash := sha256.Sum256([]byte(model + "|" + strconv.Itoa(dimension)))
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsRebuild bool
	OldVersion   int
	NewVersion   int
	Reason       string
}

// CheckMigration reports whether the cached vectors are usable with the
// given encoder.
func (c *EmbeddingCache) CheckMigration(model string, dimension int) (*MigrationResult, error) {
	info, err := c.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.Reason = "initializing schema version"
	case info.Version != CurrentSchemaVersion:
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("schema v%d does not match v%d", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	newHash := ComputeModelHash(model, dimension)
	if info.ModelHash != "" && info.ModelHash != newHash {
		result.NeedsRebuild = true
		result.Reason = "embedding model changed"
	}

	return result, nil
}

// Prepare clears stale vectors when needed and stamps the current schema
// and model. It returns the reason for a clear, or "" when nothing was dropped.
func (c *EmbeddingCache) Prepare(model string, dimension int) (string, error) {
	result, err := c.CheckMigration(model, dimension)
	if err != nil {
		return "", err
	}

	reason := ""
	if result.NeedsRebuild {
		if err := c.Clear(); err != nil {
			return "", fmt.Errorf("clear embedding cache: %w", err)
		}
		reason = result.Reason
	}

	return reason, c.SetSchemaInfo(&SchemaInfo{
		Version:   CurrentSchemaVersion,
		ModelHash: ComputeModelHash(model, dimension),
	})
}

// Clear removes all cached vectors, keeping the meta bucket.
func (c *EmbeddingCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketVectors)
		return err
	})
}
