// Package commands is the command line surface of treewalk.
package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.llib.dev/frameless/pkg/cli"
	"go.llib.dev/frameless/pkg/env"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/port/filesystem"

	"go.llib.dev/treewalk/adapter/boltdb"
	"go.llib.dev/treewalk/pkg/fstree"
	"go.llib.dev/treewalk/pkg/nametree"
	"go.llib.dev/treewalk/pkg/outline"
	"go.llib.dev/treewalk/pkg/treewalk"
	"go.llib.dev/treewalk/port/checkpoint"
)

const ErrNotDirectory errorkit.Error = "not a directory"

// Config is the environment level configuration.
// Command flags take precedence over it.
type Config struct {
	// Mode is the default iteration mode, like "leaf" or "enter|exit".
	Mode string `env:"TREEWALK_MODE" default:"leaf"`
	// DB is the path of the bolt database file where checkpoints are kept.
	DB string `env:"TREEWALK_DB" default:"treewalk.db"`
	// Limit is the default number of yields per resume, zero means no limit.
	Limit    int           `env:"TREEWALK_LIMIT" default:"0"`
	LogLevel logging.Level `env:"TREEWALK_LOG_LEVEL" default:"info"`
}

func LoadConfig() (Config, error) {
	var c Config
	return c, env.Load(&c)
}

// Deps are the resources the commands work with.
type Deps struct {
	Config Config
	FS     filesystem.FileSystem
	// Repository is optional,
	// without it a bolt database is opened at Config.DB for each command that needs one.
	Repository checkpoint.Repository[string]
}

func NewMux(deps Deps) *cli.Mux {
	var m cli.Mux
	m.Handle("outline", OutlineCommand{deps: deps})
	m.Handle("fs", FSCommand{deps: deps})
	m.Handle("stats", StatsCommand{deps: deps})
	m.Handle("start", StartCommand{deps: deps})
	m.Handle("resume", ResumeCommand{deps: deps})
	m.Handle("list", ListCommand{deps: deps})
	return &m
}

func (d Deps) mode(flag string) (treewalk.Status, error) {
	raw := flag
	if raw == "" {
		raw = d.Config.Mode
	}
	mode, err := treewalk.ParseStatus(raw)
	if err != nil {
		return treewalk.None, err
	}
	if mode == treewalk.None {
		return treewalk.Leaf, nil
	}
	return mode, nil
}

func (d Deps) readTree(name, format string) (_ *nametree.Node, returnErr error) {
	f := nametree.Format(format)
	if format == "" {
		var err error
		f, err = nametree.FormatOf(name)
		if err != nil {
			return nil, err
		}
	}
	file, err := filesystem.Open(d.FS, name)
	if err != nil {
		return nil, err
	}
	defer errorkit.Finish(&returnErr, file.Close)
	return nametree.Decode(file, f)
}

func (d Deps) session(ctx context.Context) (checkpoint.Session[string], func() error, error) {
	var (
		repo      = d.Repository
		closeRepo = func() error { return nil }
	)
	if repo == nil {
		bolt, err := boltdb.NewCheckpointRepository[string](d.Config.DB)
		if err != nil {
			return checkpoint.Session[string]{}, nil, err
		}
		logger.Debug(ctx, "checkpoint database opened", logging.Field("path", d.Config.DB))
		repo, closeRepo = bolt, bolt.Close
	}
	return checkpoint.Session[string]{
		Repository: repo,
		Callbacks: func(root string) treewalk.AsyncCallbacks[string] {
			return fstree.Callbacks(d.FS, root)
		},
	}, closeRepo, nil
}

type OutlineCommand struct {
	Mode   string `flag:"mode,m" desc:"the steps to mark with [name], e.g. leaf, enter, exit or enter|exit"`
	Format string `flag:"format,f" enum:"json,yaml," desc:"the document format, guessed from the file extension by default"`
	File   string `arg:"0" required:"true" desc:"a tree document with name and children fields"`

	deps Deps
}

func (cmd OutlineCommand) Summary() string { return "print the traversal trace of a tree document" }

func (cmd OutlineCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd OutlineCommand) serve(w io.Writer, r *cli.Request) error {
	mode, err := cmd.deps.mode(cmd.Mode)
	if err != nil {
		return err
	}
	root, err := cmd.deps.readTree(cmd.File, cmd.Format)
	if err != nil {
		return err
	}
	p := outline.Printer[*nametree.Node]{Out: w, Name: func(n *nametree.Node) string { return n.Name }}
	for c, err := range treewalk.Iterate(nil, p.Wrap(nametree.Callbacks(root)), treewalk.WithMode(mode)) {
		if err != nil {
			return err
		}
		if err := p.Yield(c); err != nil {
			return err
		}
	}
	return nil
}

type FSCommand struct {
	Mode string `flag:"mode,m" desc:"the steps to mark with [name]"`
	Dir  string `arg:"0" default:"." desc:"the directory to walk"`

	deps Deps
}

func (cmd FSCommand) Summary() string { return "print the traversal trace of a directory tree" }

func (cmd FSCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd FSCommand) serve(w io.Writer, r *cli.Request) error {
	mode, err := cmd.deps.mode(cmd.Mode)
	if err != nil {
		return err
	}
	p := outline.Printer[string]{Out: w, Name: fstree.Name}
	cb := p.WrapAsync(fstree.Callbacks(cmd.deps.FS, cmd.Dir))
	for c, err := range treewalk.AsyncIterate(r.Context(), nil, cb, treewalk.WithMode(mode)) {
		if err != nil {
			return err
		}
		if err := p.Yield(c); err != nil {
			return err
		}
	}
	return nil
}

type StatsCommand struct {
	Format string `flag:"format,f" enum:"json,yaml," desc:"the document format, guessed from the file extension by default"`
	File   string `arg:"0" required:"true" desc:"a tree document with name and children fields"`

	deps Deps
}

func (cmd StatsCommand) Summary() string { return "count the traversal steps of a tree document" }

func (cmd StatsCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd StatsCommand) serve(w io.Writer, r *cli.Request) error {
	root, err := cmd.deps.readTree(cmd.File, cmd.Format)
	if err != nil {
		return err
	}
	var stats outline.Stats
	for c, err := range treewalk.Iterate(nil, nametree.Callbacks(root), treewalk.WithMode(treewalk.Enter|treewalk.Exit)) {
		if err != nil {
			return err
		}
		stats.Add(c.Status)
	}
	stats.Render(w)
	return nil
}

type StartCommand struct {
	Mode string `flag:"mode,m" desc:"the steps the later resumes will yield"`
	Dir  string `arg:"0" required:"true" desc:"the directory to walk"`

	deps Deps
}

func (cmd StartCommand) Summary() string { return "register a resumable directory traversal" }

func (cmd StartCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd StartCommand) serve(w io.Writer, r *cli.Request) (returnErr error) {
	mode, err := cmd.deps.mode(cmd.Mode)
	if err != nil {
		return err
	}
	info, err := cmd.deps.FS.Stat(cmd.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory.F("%q", cmd.Dir)
	}
	session, closeRepo, err := cmd.deps.session(r.Context())
	if err != nil {
		return err
	}
	defer errorkit.Finish(&returnErr, closeRepo)
	cp, err := session.Start(r.Context(), cmd.Dir, mode)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, cp.ID)
	return err
}

const unsetLimit = -1

type ResumeCommand struct {
	Limit int    `flag:"limit,n" default:"-1" desc:"stop after this many yields, 0 means to walk until the end, -1 uses TREEWALK_LIMIT"`
	ID    string `arg:"0" required:"true" desc:"the checkpoint id printed by start"`

	deps Deps
}

func (cmd ResumeCommand) Summary() string { return "continue a directory traversal" }

func (cmd ResumeCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd ResumeCommand) serve(w io.Writer, r *cli.Request) (returnErr error) {
	limit := cmd.Limit
	if limit == unsetLimit {
		limit = cmd.deps.Config.Limit
	}
	session, closeRepo, err := cmd.deps.session(r.Context())
	if err != nil {
		return err
	}
	defer errorkit.Finish(&returnErr, closeRepo)
	done, err := session.Resume(r.Context(), cmd.ID, limit, func(ctx context.Context, c *treewalk.Context[string]) error {
		_, err := fmt.Fprintf(w, "%s\t%s\n", c.Status, c.Current)
		return err
	})
	if err != nil {
		return err
	}
	if done {
		_, err = fmt.Fprintln(w, "done")
	}
	return err
}

type ListCommand struct {
	deps Deps
}

func (cmd ListCommand) Summary() string { return "list the unfinished directory traversals" }

func (cmd ListCommand) ServeCLI(w cli.Response, r *cli.Request) {
	cli.HandleError(w, r, cmd.serve(w, r))
}

func (cmd ListCommand) serve(w io.Writer, r *cli.Request) (returnErr error) {
	session, closeRepo, err := cmd.deps.session(r.Context())
	if err != nil {
		return err
	}
	defer errorkit.Finish(&returnErr, closeRepo)
	list, err := session.List(r.Context())
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "root", "mode", "yields", "position", "updated"})
	table.SetAutoFormatHeaders(false)
	for _, cp := range list {
		position := "-"
		if cur, ok := cp.Context.Lookup(); ok {
			position = cur
		}
		table.Append([]string{
			cp.ID,
			cp.Root,
			cp.Mode.String(),
			strconv.Itoa(cp.Yields),
			position,
			cp.UpdatedAt.Format(time.RFC3339),
		})
	}
	table.Render()
	return nil
}
