// Package git is the revision-control adapter verseek drives. It exposes
// the five capabilities the seek engine needs (rev-list, blob read, commit
// timestamp, symbolic refs, force checkout) over a go-git repository, so
// the engine never interprets git internals itself.
package git

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotSymbolic reports that a ref exists but points at a hash instead of
// another ref (a detached HEAD, typically).
var ErrNotSymbolic = errors.New("ref is not symbolic")

// Repo wraps a repository opened at its worktree root.
type Repo struct {
	// Root is the directory containing .git.
	Root string

	repo *gogit.Repository
}

// FindRoot walks upward from dir looking for a directory that contains a
// .git entry. The second return is false when the filesystem root is
// reached without finding one.
func FindRoot(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, ".git")); err == nil && fi.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Open opens the repository rooted at root.
func Open(root string) (*Repo, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %q: %w", root, err)
	}
	return &Repo{Root: root, repo: repo}, nil
}

// resolveBranch turns a short branch name into the commit it points at.
func (r *Repo) resolveBranch(branch string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving branch %q: %w", branch, err)
	}
	return ref.Hash(), nil
}

// RevList returns the commits reachable from branch, newest first. When a
// path is given, only commits that touch that path (relative to Root, slash
// separated) are returned.
func (r *Repo) RevList(branch string, paths ...string) ([]plumbing.Hash, error) {
	from, err := r.resolveBranch(branch)
	if err != nil {
		return nil, err
	}

	opts := &gogit.LogOptions{From: from}
	if len(paths) > 0 {
		filter := map[string]bool{}
		for _, p := range paths {
			filter[p] = true
		}
		opts.PathFilter = func(p string) bool { return filter[p] }
	}

	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("rev-list %q: %w", branch, err)
	}
	defer iter.Close()

	var revs []plumbing.Hash
	err = iter.ForEach(func(c *object.Commit) error {
		revs = append(revs, c.Hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rev-list %q: %w", branch, err)
	}
	return revs, nil
}

// CatBlob returns the content of path as of rev. Returns
// object.ErrFileNotFound (wrapped) when the file does not exist at that
// revision.
func (r *Repo) CatBlob(rev plumbing.Hash, path string) ([]byte, error) {
	commit, err := r.repo.CommitObject(rev)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	file, err := commit.File(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q at %s: %w", path, rev, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("reading %q at %s: %w", path, rev, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %q at %s: %w", path, rev, err)
	}
	return data, nil
}

// CommitTime returns the author timestamp embedded in rev, in UTC.
func (r *Repo) CommitTime(rev plumbing.Hash) (time.Time, error) {
	commit, err := r.repo.CommitObject(rev)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	return commit.Author.When.UTC(), nil
}

// SymbolicRef returns the target ref name of the symbolic ref called name.
// Missing refs surface plumbing.ErrReferenceNotFound; a ref that holds a
// hash rather than a target surfaces ErrNotSymbolic.
func (r *Repo) SymbolicRef(name string) (string, error) {
	ref, err := r.repo.Storer.Reference(plumbing.ReferenceName(name))
	if err != nil {
		return "", fmt.Errorf("reading ref %q: %w", name, err)
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", fmt.Errorf("reading ref %q: %w", name, ErrNotSymbolic)
	}
	return ref.Target().String(), nil
}

// SetSymbolicRef points the symbolic ref called name at target.
func (r *Repo) SetSymbolicRef(name, target string) error {
	ref := plumbing.NewSymbolicReference(plumbing.ReferenceName(name), plumbing.ReferenceName(target))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("writing ref %q: %w", name, err)
	}
	return nil
}

// DeleteSymbolicRef removes the ref called name. Removing a ref that does
// not exist is not an error.
func (r *Repo) DeleteSymbolicRef(name string) error {
	if err := r.repo.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return fmt.Errorf("deleting ref %q: %w", name, err)
	}
	return nil
}

// Checkout force-checks-out arg, discarding local modifications. A 40-char
// hex arg is treated as a commit (detached HEAD); anything else as a branch
// name.
func (r *Repo) Checkout(arg string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("checkout %q: %w", arg, err)
	}

	opts := &gogit.CheckoutOptions{Force: true}
	if plumbing.IsHash(arg) {
		opts.Hash = plumbing.NewHash(arg)
	} else {
		opts.Branch = plumbing.NewBranchReferenceName(arg)
	}
	if err := w.Checkout(opts); err != nil {
		return fmt.Errorf("checkout %q: %w", arg, err)
	}
	return nil
}
