// Package checkpoint persists suspended traversals,
// so a long walk can be done in several sessions, even across process restarts.
//
// A Checkpoint stores the traversal Context together with the root and the iteration mode.
// Each Session.Resume call continues the traversal from the stored Context,
// and saves back the Context where it stopped.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satori/go.uuid"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/port/crud"
	"go.llib.dev/testcase/clock"

	"go.llib.dev/treewalk/pkg/treewalk"
)

const (
	ErrMissingID    errorkit.Error = "checkpoint id is missing"
	ErrInvalidLimit errorkit.Error = "resume limit must not be negative"
)

type Checkpoint[T any] struct {
	ID        string              `ext:"id" json:"id"`
	Root      T                   `json:"root"`
	Mode      treewalk.Status     `json:"mode"`
	Context   treewalk.Context[T] `json:"context"`
	Yields    int                 `json:"yields"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Clone returns a copy which shares no traversal state with the original.
func (cp Checkpoint[T]) Clone() Checkpoint[T] {
	cp.Context = *cp.Context.Clone()
	return cp
}

type Repository[T any] interface {
	crud.Saver[Checkpoint[T]]
	crud.ByIDFinder[Checkpoint[T], string]
	crud.ByIDDeleter[string]
	crud.AllFinder[Checkpoint[T]]
}

// Session drives checkpointed traversals.
type Session[T any] struct {
	Repository Repository[T]
	// Callbacks makes the traversal callbacks for the root of a checkpoint.
	Callbacks func(root T) treewalk.AsyncCallbacks[T]
}

// Start registers a new traversal from root, without taking any step.
// A None mode falls back to treewalk.Leaf.
func (s Session[T]) Start(ctx context.Context, root T, mode treewalk.Status) (Checkpoint[T], error) {
	if mode == treewalk.None {
		mode = treewalk.Leaf
	}
	now := clock.Now().UTC()
	cp := Checkpoint[T]{
		ID:        uuid.NewV4().String(),
		Root:      root,
		Mode:      mode,
		Context:   *treewalk.NewContext[T](),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repository.Save(ctx, &cp); err != nil {
		return Checkpoint[T]{}, err
	}
	logger.Debug(ctx, "traversal checkpoint started",
		logging.Field("checkpoint_id", cp.ID),
		logging.Field("mode", mode.String()))
	return cp, nil
}

// Resume continues the traversal of the checkpoint, and calls fn for each yielded step.
// It stops after limit yields, where a zero limit means no limit.
//
// When the traversal is exhausted, the checkpoint is deleted and done is true.
// Otherwise, the position is saved, and the next Resume continues from there.
// If fn or a traversal callback fails, the checkpoint is left as it was,
// thus the steps since the last save are repeated on the next Resume.
// A cancelled ctx is the exception: the position before the interrupted step is saved,
// so only the interrupted step is repeated on the next Resume.
func (s Session[T]) Resume(ctx context.Context, id string, limit int, fn func(context.Context, *treewalk.Context[T]) error) (done bool, _ error) {
	if id == "" {
		return false, ErrMissingID
	}
	if limit < 0 {
		return false, ErrInvalidLimit.F("%d", limit)
	}
	cp, found, err := s.Repository.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("%w: checkpoint %s", crud.ErrNotFound, id)
	}
	cb := s.Callbacks(cp.Root)
	if cb.First == nil || cb.Next == nil {
		return false, treewalk.ErrMissingLookup
	}

	var (
		wc     = cp.Context.Clone()
		w      = treewalk.NewAsyncWalker(wc, cb.Before, cb.After)
		yields int
	)
	for limit == 0 || yields < limit {
		// a failing callback leaves wc mid-step
		prev := wc.Clone()
		alive, err := w.Step(ctx, cb.Lookup(wc))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return false, errorkit.Merge(err, s.save(context.WithoutCancel(ctx), cp, prev, yields))
			}
			return false, err
		}
		if !alive {
			if err := s.finish(ctx, cp, yields); err != nil {
				return false, err
			}
			return true, nil
		}
		if !wc.Status.Is(cp.Mode) {
			continue
		}
		if fn != nil {
			if err := fn(ctx, wc); err != nil {
				return false, err
			}
		}
		yields++
	}
	return false, s.save(ctx, cp, wc, yields)
}

func (s Session[T]) finish(ctx context.Context, cp Checkpoint[T], yields int) error {
	if err := s.Repository.DeleteByID(ctx, cp.ID); err != nil {
		return err
	}
	logger.Debug(ctx, "traversal checkpoint finished",
		logging.Field("checkpoint_id", cp.ID),
		logging.Field("yields", cp.Yields+yields))
	return nil
}

func (s Session[T]) save(ctx context.Context, cp Checkpoint[T], wc *treewalk.Context[T], yields int) error {
	cp.Context = *wc
	cp.Yields += yields
	cp.UpdatedAt = clock.Now().UTC()
	if err := s.Repository.Save(ctx, &cp); err != nil {
		return err
	}
	logger.Debug(ctx, "traversal checkpoint saved",
		logging.Field("checkpoint_id", cp.ID),
		logging.Field("yields", cp.Yields),
		logging.Field("depth", wc.Depth()))
	return nil
}

// List returns every stored checkpoint.
func (s Session[T]) List(ctx context.Context) ([]Checkpoint[T], error) {
	var out []Checkpoint[T]
	for cp, err := range s.Repository.FindAll(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}
