package treewalk_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pallinder/go-randomdata"
	"go.llib.dev/testcase"

	"go.llib.dev/treewalk/pkg/treewalk"
)

type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

func N(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// exampleTree is a -> [b1 -> [c1, c2, c3], b2, b3 -> [d -> [e -> [f]]]]
func exampleTree() *Node {
	return N("a",
		N("b1", N("c1"), N("c2"), N("c3")),
		N("b2"),
		N("b3", N("d", N("e", N("f")))),
	)
}

// first and next locate nodes by name, so they keep working on a Context restored from JSON,
// where the pointers are no longer the same as in the tree.
func first(root *Node) treewalk.Lookup[*Node] {
	return func(c *treewalk.Context[*Node]) (*Node, bool, error) {
		current, ok := c.Lookup()
		if !ok {
			return root, true, nil
		}
		if len(current.Children) == 0 {
			return nil, false, nil
		}
		return current.Children[0], true, nil
	}
}

func next(c *treewalk.Context[*Node]) (*Node, bool, error) {
	parent, ok := c.Parent()
	if !ok {
		return nil, false, nil
	}
	for i, child := range parent.Children {
		if child.Name == c.Current.Name && i+1 < len(parent.Children) {
			return parent.Children[i+1], true, nil
		}
	}
	return nil, false, nil
}

// randomTree builds a tree with unique node names,
// up to maxDepth levels deep and with at most maxWidth children per node.
func randomTree(t *testcase.T, maxDepth, maxWidth int) *Node {
	var (
		seq  int
		grow func(depth int) *Node
	)
	grow = func(depth int) *Node {
		seq++
		n := N(fmt.Sprintf("%s-%d", randomdata.SillyName(), seq))
		if depth == maxDepth {
			return n
		}
		for range t.Random.IntBetween(0, maxWidth) {
			n.Children = append(n.Children, grow(depth+1))
		}
		return n
	}
	return grow(0)
}

type Tracer struct {
	Lines []string
}

func (tr *Tracer) Print(c *treewalk.Context[*Node], format string) {
	tr.Lines = append(tr.Lines, strings.Repeat("  ", c.Depth())+fmt.Sprintf(format, c.Current.Name))
}

func (tr *Tracer) Callbacks(root *Node) treewalk.Callbacks[*Node] {
	return treewalk.Callbacks[*Node]{
		First: first(root),
		Next:  next,
		Before: func(c *treewalk.Context[*Node]) error {
			tr.Print(c, "<%s>")
			return nil
		},
		After: func(c *treewalk.Context[*Node]) error {
			tr.Print(c, "</%s>")
			return nil
		},
	}
}

// AsyncCallbacks simulates remote lookups, which block until the ctx allows them to continue.
func (tr *Tracer) AsyncCallbacks(root *Node) treewalk.AsyncCallbacks[*Node] {
	cb := tr.Callbacks(root)
	return treewalk.AsyncCallbacks[*Node]{
		First: func(ctx context.Context, c *treewalk.Context[*Node]) (*Node, bool, error) {
			if err := remoteCall(ctx); err != nil {
				return nil, false, err
			}
			return cb.First(c)
		},
		Next: func(ctx context.Context, c *treewalk.Context[*Node]) (*Node, bool, error) {
			if err := remoteCall(ctx); err != nil {
				return nil, false, err
			}
			return cb.Next(c)
		},
		Before: func(ctx context.Context, c *treewalk.Context[*Node]) error {
			if err := remoteCall(ctx); err != nil {
				return err
			}
			return cb.Before(c)
		},
		After: func(ctx context.Context, c *treewalk.Context[*Node]) error {
			if err := remoteCall(ctx); err != nil {
				return err
			}
			return cb.After(c)
		},
	}
}

func remoteCall(ctx context.Context) error {
	done := make(chan struct{})
	go func() { close(done) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// preOrder and postOrder are the recursive reference implementations.
func preOrder(n *Node) []string {
	out := []string{n.Name}
	for _, child := range n.Children {
		out = append(out, preOrder(child)...)
	}
	return out
}

func postOrder(n *Node) []string {
	var out []string
	for _, child := range n.Children {
		out = append(out, postOrder(child)...)
	}
	return append(out, n.Name)
}

func leaves(n *Node) []string {
	if len(n.Children) == 0 {
		return []string{n.Name}
	}
	var out []string
	for _, child := range n.Children {
		out = append(out, leaves(child)...)
	}
	return out
}

func depths(n *Node, depth int, m map[string]int) map[string]int {
	if m == nil {
		m = make(map[string]int)
	}
	m[n.Name] = depth
	for _, child := range n.Children {
		depths(child, depth+1, m)
	}
	return m
}

var traceEnter = []string{
	"<a>",
	"[a]",
	"  <b1>",
	"  [b1]",
	"    <c1>",
	"    [c1]",
	"    </c1>",
	"    <c2>",
	"    [c2]",
	"    </c2>",
	"    <c3>",
	"    [c3]",
	"    </c3>",
	"  </b1>",
	"  <b2>",
	"  [b2]",
	"  </b2>",
	"  <b3>",
	"  [b3]",
	"    <d>",
	"    [d]",
	"      <e>",
	"      [e]",
	"        <f>",
	"        [f]",
	"        </f>",
	"      </e>",
	"    </d>",
	"  </b3>",
	"</a>",
}

var traceLeaf = []string{
	"<a>",
	"  <b1>",
	"    <c1>",
	"    [c1]",
	"    </c1>",
	"    <c2>",
	"    [c2]",
	"    </c2>",
	"    <c3>",
	"    [c3]",
	"    </c3>",
	"  </b1>",
	"  <b2>",
	"  [b2]",
	"  </b2>",
	"  <b3>",
	"    <d>",
	"      <e>",
	"        <f>",
	"        [f]",
	"        </f>",
	"      </e>",
	"    </d>",
	"  </b3>",
	"</a>",
}

var traceExit = []string{
	"<a>",
	"  <b1>",
	"    <c1>",
	"    [c1]",
	"    </c1>",
	"    <c2>",
	"    [c2]",
	"    </c2>",
	"    <c3>",
	"    [c3]",
	"    </c3>",
	"  [b1]",
	"  </b1>",
	"  <b2>",
	"  [b2]",
	"  </b2>",
	"  <b3>",
	"    <d>",
	"      <e>",
	"        <f>",
	"        [f]",
	"        </f>",
	"      [e]",
	"      </e>",
	"    [d]",
	"    </d>",
	"  [b3]",
	"  </b3>",
	"[a]",
	"</a>",
}

var traceEnterExit = []string{
	"<a>",
	"[a]",
	"  <b1>",
	"  [b1]",
	"    <c1>",
	"    [c1]",
	"    [c1]",
	"    </c1>",
	"    <c2>",
	"    [c2]",
	"    [c2]",
	"    </c2>",
	"    <c3>",
	"    [c3]",
	"    [c3]",
	"    </c3>",
	"  [b1]",
	"  </b1>",
	"  <b2>",
	"  [b2]",
	"  [b2]",
	"  </b2>",
	"  <b3>",
	"  [b3]",
	"    <d>",
	"    [d]",
	"      <e>",
	"      [e]",
	"        <f>",
	"        [f]",
	"        [f]",
	"        </f>",
	"      [e]",
	"      </e>",
	"    [d]",
	"    </d>",
	"  [b3]",
	"  </b3>",
	"[a]",
	"</a>",
}
