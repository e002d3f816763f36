package seek

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/turnkeylinux/verseek/internal/debian"
	"github.com/turnkeylinux/verseek/internal/git"
)

// versionPair ties a changelog version to the revision it was read from.
// Versions are not unique; ordering follows rev-list order, newest first.
type versionPair struct {
	version string
	rev     plumbing.Hash
}

// Git handles a source tree inside a git repository holding many packages.
// Versions come from the history of the tree's debian/changelog; seeking is
// a forced checkout with a marker ref remembering the branch to come back
// to.
type Git struct {
	Base

	repo      *git.Repo
	markerRef string

	// Variant hooks. Sumo swaps both; everything else in the state machine
	// is shared.
	list     func() ([]versionPair, error)
	checkout func(arg string) error
}

// NewGit builds the Git backend for the tree at path.
func NewGit(path string, opts ...Option) (*Git, error) {
	o := buildOptions(opts)
	b, err := newBase(path, o)
	if err != nil {
		return nil, err
	}

	root, found := git.FindRoot(b.Path)
	if !found {
		return nil, fmt.Errorf("no git repository above %q", b.Path)
	}
	repo, err := git.Open(root)
	if err != nil {
		return nil, err
	}

	g := &Git{Base: b, repo: repo, markerRef: o.markerRef}
	g.list = g.changelogPairs
	g.checkout = g.repo.Checkout
	return g, nil
}

// head returns the full ref name HEAD points at, e.g. "refs/heads/master".
func (g *Git) head() (string, error) {
	target, err := g.repo.SymbolicRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDetachedHead, err)
	}
	return target, nil
}

// marker returns the seek marker target, or false when the tree is not
// seeked.
func (g *Git) marker() (string, bool) {
	target, err := g.repo.SymbolicRef(g.markerRef)
	if err != nil {
		return "", false
	}
	return target, true
}

// branch is the short name of the branch the listers walk: the marker's
// target while seeked, HEAD's otherwise.
func (g *Git) branch() (string, error) {
	if target, ok := g.marker(); ok {
		return path.Base(target), nil
	}
	target, err := g.head()
	if err != nil {
		return "", err
	}
	return path.Base(target), nil
}

// changelogRel is the tree's changelog path relative to the repository
// root, slash separated, as git wants it.
func (g *Git) changelogRel() (string, error) {
	rel, err := filepath.Rel(g.repo.Root, filepath.Join(g.Path, changelogPath))
	if err != nil {
		return "", fmt.Errorf("locating changelog under %q: %w", g.repo.Root, err)
	}
	return filepath.ToSlash(rel), nil
}

// changelogPairs walks the revisions that touched the changelog and parses
// each snapshot. Revisions where the changelog is absent or unparsable are
// dropped, not errors.
func (g *Git) changelogPairs() ([]versionPair, error) {
	branch, err := g.branch()
	if err != nil {
		return nil, err
	}
	rel, err := g.changelogRel()
	if err != nil {
		return nil, err
	}

	return g.pairsFor(branch, rel)
}

// pairsFor runs the shared rev-list/blob/parse sequence for one branch and
// one changelog path.
func (g *Git) pairsFor(branch, changelogRel string) ([]versionPair, error) {
	revs, err := g.repo.RevList(branch, changelogRel)
	if err != nil {
		return nil, err
	}

	var pairs []versionPair
	for _, rev := range revs {
		blob, err := g.repo.CatBlob(rev, changelogRel)
		if err != nil {
			continue
		}
		if version := debian.ParseChangelog(string(blob)); version != "" {
			pairs = append(pairs, versionPair{version: version, rev: rev})
		}
	}
	return pairs, nil
}

// ListVersions returns every version recorded in the changelog's history,
// newest first, duplicates preserved.
func (g *Git) ListVersions() ([]string, error) {
	pairs, err := g.list()
	if err != nil {
		return nil, err
	}
	versions := make([]string, len(pairs))
	for i, p := range pairs {
		versions[i] = p.version
	}
	return versions, nil
}

// resolve maps a version to its revision. When a version appears more than
// once the oldest occurrence wins, matching historic behavior.
func (g *Git) resolve(version string) (plumbing.Hash, error) {
	pairs, err := g.list()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	byVersion := map[string]plumbing.Hash{}
	for _, p := range pairs {
		byVersion[p.version] = p.rev
	}
	rev, ok := byVersion[version]
	if !ok {
		return plumbing.ZeroHash, fmt.Errorf("%w %q", ErrUnknownVersion, version)
	}
	return rev, nil
}

// seekRevision records the marker on the first seek of a sequence, then
// checks out rev. Subsequent seeks leave the marker untouched.
func (g *Git) seekRevision(rev string) error {
	if _, seeked := g.marker(); !seeked {
		head, err := g.head()
		if err != nil {
			return err
		}
		if err := g.repo.SetSymbolicRef(g.markerRef, head); err != nil {
			return err
		}
		g.log.Debug("seek marker set", zap.String("ref", g.markerRef), zap.String("target", head))
	}
	g.log.Info("checking out", zap.String("rev", rev))
	return g.checkout(rev)
}

// restore undoes the seek sequence: back to the marker's branch, then the
// marker goes away.
func (g *Git) restore() error {
	target, seeked := g.marker()
	if !seeked {
		return ErrNoSeekToRestore
	}
	if err := g.checkout(path.Base(target)); err != nil {
		return err
	}
	if err := g.repo.DeleteSymbolicRef(g.markerRef); err != nil {
		return err
	}
	g.log.Info("restored", zap.String("branch", path.Base(target)))
	return nil
}

// Seek checks out the revision recording version, or restores the pre-seek
// branch when version is empty. Resolution failures happen strictly before
// any mutation.
func (g *Git) Seek(version string) error {
	if version == "" {
		return g.restore()
	}
	rev, err := g.resolve(version)
	if err != nil {
		return err
	}
	return g.seekRevision(rev.String())
}

var _ Backend = (*Git)(nil)
