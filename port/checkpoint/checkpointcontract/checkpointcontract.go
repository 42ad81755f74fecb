package checkpointcontract

import (
	"context"
	"testing"
	"time"

	"go.llib.dev/frameless/port/contract"
	"go.llib.dev/frameless/port/crud"
	"go.llib.dev/frameless/port/option"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
	"go.llib.dev/testcase/let"

	"go.llib.dev/treewalk/pkg/treewalk"
	"go.llib.dev/treewalk/port/checkpoint"
)

type Option[T any] interface {
	option.Option[Config[T]]
}

type Config[T any] struct {
	MakeContext func(testing.TB) context.Context
	// MakeNode makes a random node value for the stored traversal context.
	//
	// Default: a random value made by testcase's Random.Make
	MakeNode func(testing.TB) T
}

func (c *Config[T]) Init() {
	c.MakeContext = func(testing.TB) context.Context { return context.Background() }
	c.MakeNode = func(tb testing.TB) T {
		var zero T
		return testcase.ToT(&tb).Random.Make(zero).(T)
	}
}

func (c Config[T]) Configure(o *Config[T]) {
	if c.MakeContext != nil {
		o.MakeContext = c.MakeContext
	}
	if c.MakeNode != nil {
		o.MakeNode = c.MakeNode
	}
}

func Repository[T any](subject checkpoint.Repository[T], opts ...Option[T]) contract.Contract {
	s := testcase.NewSpec(nil)
	c := option.ToConfig[Config[T]](opts)

	var (
		ctx = let.Var(s, func(t *testcase.T) context.Context {
			return c.MakeContext(t)
		})
		makeCheckpoint = func(t *testcase.T) checkpoint.Checkpoint[T] {
			now := t.Random.Time().UTC().Truncate(time.Second)
			return checkpoint.Checkpoint[T]{
				ID:   t.Random.UUID(),
				Root: c.MakeNode(t),
				Mode: treewalk.Status(t.Random.IntBetween(1, int(treewalk.Enter|treewalk.Exit))),
				Context: treewalk.Context[T]{
					Stack:   []T{c.MakeNode(t), c.MakeNode(t)},
					Current: c.MakeNode(t),
					Status:  t.Random.Pick([]treewalk.Status{treewalk.First, treewalk.Next, treewalk.Leaf, treewalk.Last}).(treewalk.Status),
				},
				Yields:    t.Random.IntBetween(0, 1024),
				CreatedAt: now,
				UpdatedAt: now.Add(time.Duration(t.Random.IntBetween(1, 60)) * time.Second),
			}
		}
		ptr = let.Var(s, func(t *testcase.T) *checkpoint.Checkpoint[T] {
			cp := makeCheckpoint(t)
			t.Cleanup(func() { _ = subject.DeleteByID(context.Background(), cp.ID) })
			return &cp
		})
	)

	s.Describe(".Save", func(s *testcase.Spec) {
		act := func(t *testcase.T) error {
			return subject.Save(ctx.Get(t), ptr.Get(t))
		}

		s.Then("the checkpoint can be found by its id", func(t *testcase.T) {
			assert.NoError(t, act(t))

			got, found, err := subject.FindByID(ctx.Get(t), ptr.Get(t).ID)
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, *ptr.Get(t), got)
		})

		s.Then("later changes on the saved value are not persisted", func(t *testcase.T) {
			assert.NoError(t, act(t))
			exp := ptr.Get(t).Clone()

			ptr.Get(t).Context.Stack[0] = c.MakeNode(t)
			ptr.Get(t).Context.Stack = append(ptr.Get(t).Context.Stack, c.MakeNode(t))

			got, found, err := subject.FindByID(ctx.Get(t), exp.ID)
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, exp, got)
		})

		s.When("the checkpoint is already stored", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				t.Must.NoError(subject.Save(ctx.Get(t), ptr.Get(t)))
				ptr.Get(t).Yields++
				ptr.Get(t).Context.Stack = ptr.Get(t).Context.Stack[:1]
				ptr.Get(t).UpdatedAt = ptr.Get(t).UpdatedAt.Add(time.Minute)
			})

			s.Then("it is updated", func(t *testcase.T) {
				assert.NoError(t, act(t))

				got, found, err := subject.FindByID(ctx.Get(t), ptr.Get(t).ID)
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, *ptr.Get(t), got)
			})
		})

		s.When("the id is missing", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) { ptr.Get(t).ID = "" })

			s.Then("it is rejected", func(t *testcase.T) {
				assert.ErrorIs(t, checkpoint.ErrMissingID, act(t))
			})
		})

		s.When("the context is cancelled", func(s *testcase.Spec) {
			ctx.Let(s, func(t *testcase.T) context.Context {
				c, cancel := context.WithCancel(ctx.Super(t))
				cancel()
				return c
			})

			s.Then("the context error is returned", func(t *testcase.T) {
				assert.ErrorIs(t, context.Canceled, act(t))
			})
		})
	})

	s.Describe(".FindByID", func(s *testcase.Spec) {
		s.Then("an unknown id is reported as not found", func(t *testcase.T) {
			_, found, err := subject.FindByID(ctx.Get(t), t.Random.UUID())
			assert.NoError(t, err)
			assert.False(t, found)
		})
	})

	s.Describe(".DeleteByID", func(s *testcase.Spec) {
		s.Then("a stored checkpoint is removed", func(t *testcase.T) {
			t.Must.NoError(subject.Save(ctx.Get(t), ptr.Get(t)))
			assert.NoError(t, subject.DeleteByID(ctx.Get(t), ptr.Get(t).ID))

			_, found, err := subject.FindByID(ctx.Get(t), ptr.Get(t).ID)
			assert.NoError(t, err)
			assert.False(t, found)
		})

		s.Then("an unknown id yields crud.ErrNotFound", func(t *testcase.T) {
			assert.ErrorIs(t, crud.ErrNotFound, subject.DeleteByID(ctx.Get(t), t.Random.UUID()))
		})
	})

	s.Describe(".FindAll", func(s *testcase.Spec) {
		s.Then("every stored checkpoint is listed", func(t *testcase.T) {
			var exp []checkpoint.Checkpoint[T]
			for range t.Random.IntBetween(1, 5) {
				cp := makeCheckpoint(t)
				t.Must.NoError(subject.Save(ctx.Get(t), &cp))
				t.Cleanup(func() { _ = subject.DeleteByID(context.Background(), cp.ID) })
				exp = append(exp, cp)
			}

			var got []checkpoint.Checkpoint[T]
			for cp, err := range subject.FindAll(ctx.Get(t)) {
				assert.NoError(t, err)
				got = append(got, cp)
			}
			for _, cp := range exp {
				assert.Contain(t, got, cp)
			}
		})
	})

	return s.AsSuite("checkpoint.Repository")
}
