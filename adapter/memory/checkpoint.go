// Package memory has in-process adapters, mostly for tests and short lived runs.
package memory

import (
	"context"
	"iter"
	"sort"
	"sync"

	"go.llib.dev/frameless/port/crud"

	"go.llib.dev/treewalk/port/checkpoint"
)

// CheckpointRepository keeps checkpoints in a map.
// Stored values are cloned on the way in and out,
// so the caller never shares traversal state with the repository.
type CheckpointRepository[T any] struct {
	mutex sync.RWMutex
	items map[string]checkpoint.Checkpoint[T]
}

var _ checkpoint.Repository[string] = (*CheckpointRepository[string])(nil)

func (r *CheckpointRepository[T]) Save(ctx context.Context, ptr *checkpoint.Checkpoint[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ptr.ID == "" {
		return checkpoint.ErrMissingID
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.items == nil {
		r.items = make(map[string]checkpoint.Checkpoint[T])
	}
	r.items[ptr.ID] = ptr.Clone()
	return nil
}

func (r *CheckpointRepository[T]) FindByID(ctx context.Context, id string) (checkpoint.Checkpoint[T], bool, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Checkpoint[T]{}, false, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	cp, ok := r.items[id]
	if !ok {
		return checkpoint.Checkpoint[T]{}, false, nil
	}
	return cp.Clone(), true, nil
}

func (r *CheckpointRepository[T]) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.items[id]; !ok {
		return crud.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// FindAll yields the checkpoints ordered by their creation time.
func (r *CheckpointRepository[T]) FindAll(ctx context.Context) iter.Seq2[checkpoint.Checkpoint[T], error] {
	return func(yield func(checkpoint.Checkpoint[T], error) bool) {
		if err := ctx.Err(); err != nil {
			yield(checkpoint.Checkpoint[T]{}, err)
			return
		}
		r.mutex.RLock()
		list := make([]checkpoint.Checkpoint[T], 0, len(r.items))
		for _, cp := range r.items {
			list = append(list, cp.Clone())
		}
		r.mutex.RUnlock()
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID < list[j].ID
			}
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
		for _, cp := range list {
			if !yield(cp, nil) {
				return
			}
		}
	}
}
