// Package outline renders a traversal as an indented trace:
//
//	<a>
//	  <b>
//	  [b]
//	  </b>
//	[a]
//	</a>
//
// "<name>" is printed when a node is entered, "</name>" when it is left,
// and "[name]" when the node is yielded by the iterator.
package outline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"go.llib.dev/treewalk/pkg/treewalk"
)

const DefaultIndent = "  "

type Printer[T any] struct {
	Out io.Writer
	// Name formats a node.
	//
	// Default: fmt.Sprint
	Name func(T) string
	// Indent is repeated once per depth level.
	//
	// Default: DefaultIndent
	Indent string
}

func (p Printer[T]) Before(c *treewalk.Context[T]) error { return p.print(c, "<%s>") }

func (p Printer[T]) After(c *treewalk.Context[T]) error { return p.print(c, "</%s>") }

func (p Printer[T]) Yield(c *treewalk.Context[T]) error { return p.print(c, "[%s]") }

// Wrap returns cb with the printer's Before and After hooked in front of the original ones.
func (p Printer[T]) Wrap(cb treewalk.Callbacks[T]) treewalk.Callbacks[T] {
	before, after := cb.Before, cb.After
	cb.Before = func(c *treewalk.Context[T]) error {
		if err := p.Before(c); err != nil {
			return err
		}
		if before == nil {
			return nil
		}
		return before(c)
	}
	cb.After = func(c *treewalk.Context[T]) error {
		if err := p.After(c); err != nil {
			return err
		}
		if after == nil {
			return nil
		}
		return after(c)
	}
	return cb
}

// WrapAsync is the suspendable form of Wrap.
func (p Printer[T]) WrapAsync(cb treewalk.AsyncCallbacks[T]) treewalk.AsyncCallbacks[T] {
	before, after := cb.Before, cb.After
	cb.Before = func(ctx context.Context, c *treewalk.Context[T]) error {
		if err := p.Before(c); err != nil {
			return err
		}
		if before == nil {
			return nil
		}
		return before(ctx, c)
	}
	cb.After = func(ctx context.Context, c *treewalk.Context[T]) error {
		if err := p.After(c); err != nil {
			return err
		}
		if after == nil {
			return nil
		}
		return after(ctx, c)
	}
	return cb
}

func (p Printer[T]) print(c *treewalk.Context[T], format string) error {
	var name string
	if p.Name != nil {
		name = p.Name(c.Current)
	} else {
		name = fmt.Sprint(c.Current)
	}
	indent := p.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	_, err := fmt.Fprintf(p.Out, "%s"+format+"\n", strings.Repeat(indent, c.Depth()), name)
	return err
}

// Stats counts the steps of a traversal by their outcome.
// For a fully walked tree, First+Next is the number of nodes,
// Leaf is the number of childless nodes, and Last is the number of the rest.
type Stats struct {
	First int
	Next  int
	Leaf  int
	Last  int
}

func (s *Stats) Add(status treewalk.Status) {
	switch status {
	case treewalk.First:
		s.First++
	case treewalk.Next:
		s.Next++
	case treewalk.Leaf:
		s.Leaf++
	case treewalk.Last:
		s.Last++
	}
}

func (s Stats) Nodes() int { return s.First + s.Next }

func (s Stats) Steps() int { return s.First + s.Next + s.Leaf + s.Last }

// Render writes the stats as a table.
func (s Stats) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"step", "count"})
	table.SetFooter([]string{"total", strconv.Itoa(s.Steps())})
	table.SetAutoFormatHeaders(false)
	for _, row := range []struct {
		Status treewalk.Status
		N      int
	}{
		{treewalk.First, s.First},
		{treewalk.Next, s.Next},
		{treewalk.Leaf, s.Leaf},
		{treewalk.Last, s.Last},
	} {
		table.Append([]string{row.Status.String(), strconv.Itoa(row.N)})
	}
	table.Render()
}
