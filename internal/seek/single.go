package seek

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/turnkeylinux/verseek/internal/autoversion"
	"github.com/turnkeylinux/verseek/internal/debian"
)

// GitSingle handles a git repository that is itself a single Debian
// package. Such trees usually carry no committed changelog at all: versions
// come from the autoversion oracle, one per commit, and on every seek a
// one-entry changelog is synthesized so Debian tooling sees the version the
// tree was seeked to.
type GitSingle struct {
	*Git

	mapper autoversion.Mapper
}

// NewGitSingle builds the GitSingle backend for the tree at path.
func NewGitSingle(path string, opts ...Option) (*GitSingle, error) {
	o := buildOptions(opts)
	g, err := NewGit(path, opts...)
	if err != nil {
		return nil, err
	}
	mapper := o.mapper
	if mapper == nil {
		mapper = autoversion.New(g.Path, autoversion.WithBinary(o.autoversionBin))
	}
	return &GitSingle{Git: g, mapper: mapper}, nil
}

// ListVersions maps every commit reachable from the branch through the
// oracle; unlike the changelog-backed variants, every revision counts.
func (g *GitSingle) ListVersions() ([]string, error) {
	branch, err := g.branch()
	if err != nil {
		return nil, err
	}
	revs, err := g.repo.RevList(branch)
	if err != nil {
		return nil, err
	}

	versions := make([]string, len(revs))
	for i, rev := range revs {
		versions[i], err = g.mapper.CommitToVersion(rev.String())
		if err != nil {
			return nil, err
		}
	}
	return versions, nil
}

// synthesizeChangelog replaces debian/changelog with a single entry for
// version, dated with the target commit's own timestamp so the output is
// identical across hosts.
func (g *GitSingle) synthesizeChangelog(version string, rev plumbing.Hash) error {
	when, err := g.repo.CommitTime(rev)
	if err != nil {
		return err
	}
	control, err := debian.ParseControl(g.fs, controlPath)
	if err != nil {
		return err
	}
	for _, field := range []string{"Source", "Maintainer"} {
		if control[field] == "" {
			return fmt.Errorf("control file %q has no %s field",
				filepath.Join(g.Path, controlPath), field)
		}
	}

	entry := debian.Entry{
		Source:     control["Source"],
		Version:    version,
		Maintainer: control["Maintainer"],
		Date:       when,
	}
	return entry.Write(g.fs, changelogPath)
}

// Seek resolves version through the oracle, checks the commit out and
// synthesizes the changelog. An empty version removes the synthesized
// changelog and restores the pre-seek branch.
func (g *GitSingle) Seek(version string) error {
	if version == "" {
		if err := g.fs.Remove(changelogPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing synthesized changelog: %w", err)
		}
		return g.restore()
	}

	commit, err := g.mapper.VersionToCommit(version)
	if err != nil {
		if errors.Is(err, autoversion.ErrUnknownVersion) {
			return fmt.Errorf("%w %q", ErrUnknownVersion, version)
		}
		return err
	}
	if err := g.seekRevision(commit); err != nil {
		return err
	}
	return g.synthesizeChangelog(version, plumbing.NewHash(commit))
}

var _ Backend = (*GitSingle)(nil)
