// Package nametree is the tree document format of named nodes,
// where every node has a name and an ordered list of children.
//
//	name: a
//	children:
//	  - name: b1
//	  - name: b2
package nametree

import (
	"io"
	"path"
	"strings"

	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/jsonkit"
	"go.llib.dev/frameless/port/codec"
	"gopkg.in/yaml.v3"

	"go.llib.dev/treewalk/pkg/treewalk"
)

const (
	ErrUnknownFormat errorkit.Error = "unknown tree document format"
	ErrDuplicateName errorkit.Error = "duplicate node name under the same parent"
	ErrUnknownPath   errorkit.Error = "path is not part of the tree"
)

type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var codecs = map[Format]codec.Codec{
	JSON: jsonkit.Codec{},
	YAML: yamlCodec{},
}

// FormatOf tells the document format from a file name extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", ErrUnknownFormat.F("%q", name)
	}
}

// Decode reads a whole tree document from r.
func Decode(r io.Reader, format Format) (*Node, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, ErrUnknownFormat.F("%q", format)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var root Node
	if err := c.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Encode writes the tree document to w.
func Encode(w io.Writer, format Format, root *Node) error {
	c, ok := codecs[format]
	if !ok {
		return ErrUnknownFormat.F("%q", format)
	}
	data, err := c.Marshal(root)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Callbacks walks the tree through its node pointers.
func Callbacks(root *Node) treewalk.Callbacks[*Node] {
	return treewalk.FromChildren(root, func(n *Node) ([]*Node, error) {
		return n.Children, nil
	})
}

// Path walks the tree with slash separated name paths as nodes.
// Unlike Callbacks, the traversal Context is made of plain strings,
// so it stays valid after it was persisted and loaded back,
// as long as the document itself is unchanged.
func Path(root *Node) (treewalk.Callbacks[string], error) {
	index := make(map[string][]string)
	var build func(p string, n *Node) error
	build = func(p string, n *Node) error {
		seen := make(map[string]struct{}, len(n.Children))
		children := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if _, ok := seen[child.Name]; ok {
				return ErrDuplicateName.F("%q in %q", child.Name, p)
			}
			seen[child.Name] = struct{}{}
			cp := p + "/" + child.Name
			children = append(children, cp)
			if err := build(cp, child); err != nil {
				return err
			}
		}
		index[p] = children
		return nil
	}
	if err := build(root.Name, root); err != nil {
		return treewalk.Callbacks[string]{}, err
	}
	return treewalk.FromChildren(root.Name, func(p string) ([]string, error) {
		children, ok := index[p]
		if !ok {
			return nil, ErrUnknownPath.F("%q", p)
		}
		return children, nil
	}), nil
}

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (yamlCodec) Unmarshal(data []byte, ptr any) error { return yaml.Unmarshal(data, ptr) }
