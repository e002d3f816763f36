// Package seek implements the version-seek engine: it classifies a Debian
// source tree into a storage variant, lists the versions recorded in its
// history, and force-checks-out the working tree to any of them, reversibly.
//
// The engine owns exactly one piece of durable state, a symbolic ref
// (VERSEEK_HEAD by default) remembering the branch that was current before
// the first seek of a sequence. Operations are synchronous and must not run
// concurrently against the same tree.
package seek

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/turnkeylinux/verseek/internal/autoversion"
	"github.com/turnkeylinux/verseek/internal/git"
)

const (
	changelogPath = "debian/changelog"
	controlPath   = "debian/control"

	// DefaultMarkerRef is the symbolic ref recording the pre-seek branch.
	DefaultMarkerRef = "VERSEEK_HEAD"
)

// Backend is the per-variant capability set. Seek with an empty version
// undoes the current seek sequence (unseek).
type Backend interface {
	ListVersions() ([]string, error)
	Seek(version string) error
}

type options struct {
	logger         *zap.Logger
	markerRef      string
	mapper         autoversion.Mapper
	autoversionBin string
}

// Option configures backend construction.
type Option func(*options)

// WithLogger attaches a logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMarkerRef overrides the seek marker ref name.
func WithMarkerRef(name string) Option {
	return func(o *options) { o.markerRef = name }
}

// WithMapper replaces the commit/version oracle used by single-package
// trees. The default shells out to autoversion.
func WithMapper(m autoversion.Mapper) Option {
	return func(o *options) { o.mapper = m }
}

// WithAutoversionBinary overrides the autoversion binary name used when no
// explicit mapper is set.
func WithAutoversionBinary(bin string) Option {
	return func(o *options) { o.autoversionBin = bin }
}

// Base carries what every variant needs: the tree path and a filesystem
// rooted at it for the debian/ files.
type Base struct {
	// Path is the source tree directory.
	Path string

	fs  billy.Filesystem
	log *zap.Logger
}

func newBase(path string, o *options) (Base, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Base{}, fmt.Errorf("resolving %q: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return Base{}, fmt.Errorf("no such directory %q: %w", path, ErrNotADirectory)
	}

	b := Base{Path: abs, fs: osfs.New(abs), log: o.logger}
	if _, err := b.fs.Stat(controlPath); err != nil {
		return Base{}, fmt.Errorf("%w at %q", ErrMissingControlFile, filepath.Join(abs, controlPath))
	}
	return b, nil
}

// New inspects path and returns the backend variant that matches how the
// tree is stored:
//
//   - no enclosing git repository: Plain
//   - repository root is itself a Debian package: GitSingle
//   - repository root carries an arena.internals overlay: Sumo (legacy)
//   - anything else: Git
//
// The choice is made once; it is not re-evaluated per call.
func New(path string, opts ...Option) (Backend, error) {
	root, found := git.FindRoot(path)
	if !found {
		return NewPlain(path, opts...)
	}
	if _, err := os.Stat(filepath.Join(root, controlPath)); err == nil {
		return NewGitSingle(path, opts...)
	}
	if fi, err := os.Stat(filepath.Join(root, "arena.internals")); err == nil && fi.IsDir() {
		return NewSumo(path, opts...)
	}
	return NewGit(path, opts...)
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:         zap.NewNop(),
		markerRef:      DefaultMarkerRef,
		autoversionBin: "autoversion",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
