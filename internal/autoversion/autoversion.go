// Package autoversion adapts the external autoversion tool, which maps
// commits to version strings (and back) for git trees that carry a single
// Debian package. The mapping is deterministic for a given history, so
// results are safe to cache for the lifetime of an instance.
package autoversion

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrUnknownVersion reports a version the tool cannot map to a commit.
var ErrUnknownVersion = errors.New("unknown version")

// Mapper is the oracle the seek engine consumes. Both directions are total
// over commits reachable from the tracked branch; VersionToCommit fails
// with ErrUnknownVersion for versions outside the mapping.
type Mapper interface {
	CommitToVersion(commit string) (string, error)
	VersionToCommit(version string) (string, error)
}

// Autoversion runs the autoversion binary with the working directory set to
// the package tree, one batch per direction, memoizing every answer.
type Autoversion struct {
	path string
	bin  string

	commitToVersion map[string]string
	versionToCommit map[string]string
}

// Option configures an Autoversion.
type Option func(*Autoversion)

// WithBinary overrides the binary name (default "autoversion").
func WithBinary(bin string) Option {
	return func(a *Autoversion) { a.bin = bin }
}

// WithPrecache seeds the cache by mapping every listed commit up front in a
// single invocation. Options run in order, so it must come after WithBinary.
func WithPrecache(commits []string) Option {
	return func(a *Autoversion) {
		versions, err := a.run(commits...)
		if err != nil || len(versions) != len(commits) {
			return // fall back to per-commit lookups
		}
		for i, c := range commits {
			a.commitToVersion[c] = versions[i]
			a.versionToCommit[versions[i]] = c
		}
	}
}

// New returns an Autoversion for the package tree at path.
func New(path string, opts ...Option) *Autoversion {
	a := &Autoversion{
		path:            path,
		bin:             "autoversion",
		commitToVersion: map[string]string{},
		versionToCommit: map[string]string{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run invokes the tool and returns its output lines.
func (a *Autoversion) run(args ...string) ([]string, error) {
	cmd := exec.Command(a.bin, args...)
	cmd.Dir = a.path
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", a.bin, strings.Join(args, " "), err)
	}
	return strings.Split(strings.TrimRight(string(out), "\n"), "\n"), nil
}

// CommitToVersion maps a commit id to its version string.
func (a *Autoversion) CommitToVersion(commit string) (string, error) {
	if v, ok := a.commitToVersion[commit]; ok {
		return v, nil
	}
	lines, err := a.run(commit)
	if err != nil || len(lines) == 0 || lines[0] == "" {
		return "", fmt.Errorf("mapping commit %q to a version: %w", commit, err)
	}
	a.commitToVersion[commit] = lines[0]
	a.versionToCommit[lines[0]] = commit
	return lines[0], nil
}

// VersionToCommit maps a version string back to its commit id.
func (a *Autoversion) VersionToCommit(version string) (string, error) {
	if c, ok := a.versionToCommit[version]; ok {
		return c, nil
	}
	lines, err := a.run("-r", version)
	if err != nil || len(lines) == 0 || lines[0] == "" {
		return "", fmt.Errorf("mapping version %q to a commit: %w", version, ErrUnknownVersion)
	}
	a.versionToCommit[version] = lines[0]
	a.commitToVersion[lines[0]] = version
	return lines[0], nil
}
