// Package fstree walks a directory tree lazily.
// A directory is only listed when the traversal enters it,
// which allows suspending the walk of a large tree and continuing it later.
package fstree

import (
	"context"
	"path"
	"strings"
	"sync"

	"go.llib.dev/frameless/port/filesystem"

	"go.llib.dev/treewalk/pkg/treewalk"
)

// Callbacks walks fsys from root, with slash separated paths as nodes.
// Entries of a directory are visited in name order.
//
// The listings of the directories on the current path are kept,
// so moving to the next sibling doesn't read the parent directory again.
// Changes made to an open directory during the walk are therefore not seen.
func Callbacks(fsys filesystem.FileSystem, root string) treewalk.AsyncCallbacks[string] {
	l := &lister{fsys: fsys}
	return treewalk.FromChildrenCtx(path.Clean(root), l.children)
}

type lister struct {
	fsys  filesystem.FileSystem
	mutex sync.Mutex
	open  map[string][]string
}

func (l *lister) children(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if children, ok := l.open[dir]; ok {
		return children, nil
	}
	children, err := l.list(dir)
	if err != nil {
		return nil, err
	}
	if l.open == nil {
		l.open = make(map[string][]string)
	}
	for name := range l.open {
		if !isAncestor(name, dir) {
			delete(l.open, name)
		}
	}
	l.open[dir] = children
	return children, nil
}

func (l *lister) list(dir string) ([]string, error) {
	info, err := l.fsys.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}
	entries, err := filesystem.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, err
	}
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, path.Join(dir, entry.Name()))
	}
	return children, nil
}

func isAncestor(ancestor, p string) bool {
	if ancestor == "." {
		return !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "..")
	}
	return strings.HasPrefix(p, strings.TrimSuffix(ancestor, "/")+"/")
}

// Name is the base name of a path node.
func Name(p string) string { return path.Base(p) }
