// Package boltdb stores checkpoints in a local bolt database file.
package boltdb

import (
	"context"
	"iter"

	"github.com/boltdb/bolt"
	"go.llib.dev/frameless/pkg/jsonkit"
	"go.llib.dev/frameless/port/codec"
	"go.llib.dev/frameless/port/crud"

	"go.llib.dev/treewalk/port/checkpoint"
)

const DefaultBucket = "checkpoints"

func NewCheckpointRepository[T any](path string) (*CheckpointRepository[T], error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &CheckpointRepository[T]{DB: db}, nil
}

type CheckpointRepository[T any] struct {
	DB *bolt.DB
	// Bucket is the name of the bucket where checkpoints are kept.
	//
	// Default: DefaultBucket
	Bucket string
	// Codec encodes the stored checkpoints.
	//
	// Default: jsonkit.Codec
	Codec codec.Codec
}

var _ checkpoint.Repository[string] = (*CheckpointRepository[string])(nil)

// Close the database and release the file lock.
func (r *CheckpointRepository[T]) Close() error {
	return r.DB.Close()
}

func (r *CheckpointRepository[T]) Save(ctx context.Context, ptr *checkpoint.Checkpoint[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ptr.ID == "" {
		return checkpoint.ErrMissingID
	}
	value, err := r.codec().Marshal(ptr)
	if err != nil {
		return err
	}
	return r.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(r.bucketName())
		if err != nil {
			return err
		}
		return bucket.Put([]byte(ptr.ID), value)
	})
}

func (r *CheckpointRepository[T]) FindByID(ctx context.Context, id string) (checkpoint.Checkpoint[T], bool, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint[T]{}, false, err
	}
	var (
		cp    checkpoint.Checkpoint[T]
		found bool
	)
	err := r.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(r.bucketName())
		if bucket == nil {
			return nil
		}
		value := bucket.Get([]byte(id))
		if value == nil {
			return nil
		}
		found = true
		return r.codec().Unmarshal(value, &cp)
	})
	if err != nil || !found {
		return checkpoint.Checkpoint[T]{}, false, err
	}
	return cp, true, nil
}

func (r *CheckpointRepository[T]) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(r.bucketName())
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return crud.ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// FindAll yields the checkpoints in the order of their ids.
// The values are copied out in a read transaction before the first yield,
// so the caller may write the repository during the iteration.
func (r *CheckpointRepository[T]) FindAll(ctx context.Context) iter.Seq2[checkpoint.Checkpoint[T], error] {
	return func(yield func(checkpoint.Checkpoint[T], error) bool) {
		if err := ctx.Err(); err != nil {
			yield(checkpoint.Checkpoint[T]{}, err)
			return
		}
		var values [][]byte
		err := r.DB.View(func(tx *bolt.Tx) error {
			bucket := tx.Bucket(r.bucketName())
			if bucket == nil {
				return nil
			}
			return bucket.ForEach(func(_, value []byte) error {
				// bolt owns the value's memory only until the transaction ends
				values = append(values, append([]byte(nil), value...))
				return nil
			})
		})
		if err != nil {
			yield(checkpoint.Checkpoint[T]{}, err)
			return
		}
		for _, value := range values {
			var cp checkpoint.Checkpoint[T]
			if err := r.codec().Unmarshal(value, &cp); err != nil {
				if !yield(cp, err) {
					return
				}
				continue
			}
			if !yield(cp, nil) {
				return
			}
		}
	}
}

func (r *CheckpointRepository[T]) bucketName() []byte {
	if r.Bucket == "" {
		return []byte(DefaultBucket)
	}
	return []byte(r.Bucket)
}

func (r *CheckpointRepository[T]) codec() codec.Codec {
	if r.Codec == nil {
		return jsonkit.Codec{}
	}
	return r.Codec
}
