package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, path, content, msg string, when time.Time) plumbing.Hash {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(path)
	require.NoError(t, err)

	hash, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
	return hash
}

var t0 = time.Date(2024, 10, 2, 10, 15, 0, 0, time.UTC)

func TestFindRoot(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	root, found := FindRoot(sub)
	require.True(t, found)
	require.Equal(t, dir, root)

	root, found = FindRoot(dir)
	require.True(t, found)
	require.Equal(t, dir, root)

	_, found = FindRoot(t.TempDir())
	require.False(t, found)
}

func TestRevList(t *testing.T) {
	dir, repo := initRepo(t)
	c1 := commitFile(t, repo, dir, "pkg/debian/changelog", "one", "c1", t0)
	c2 := commitFile(t, repo, dir, "other.txt", "x", "c2", t0.Add(time.Minute))
	c3 := commitFile(t, repo, dir, "pkg/debian/changelog", "two", "c3", t0.Add(2*time.Minute))

	r, err := Open(dir)
	require.NoError(t, err)

	all, err := r.RevList("master")
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{c3, c2, c1}, all)

	touching, err := r.RevList("master", "pkg/debian/changelog")
	require.NoError(t, err)
	require.Equal(t, []plumbing.Hash{c3, c1}, touching)

	_, err = r.RevList("no-such-branch")
	require.Error(t, err)
}

func TestCatBlob(t *testing.T) {
	dir, repo := initRepo(t)
	c1 := commitFile(t, repo, dir, "pkg/debian/changelog", "one", "c1", t0)
	c2 := commitFile(t, repo, dir, "pkg/debian/changelog", "two", "c2", t0.Add(time.Minute))

	r, err := Open(dir)
	require.NoError(t, err)

	data, err := r.CatBlob(c1, "pkg/debian/changelog")
	require.NoError(t, err)
	require.Equal(t, "one", string(data))

	data, err = r.CatBlob(c2, "pkg/debian/changelog")
	require.NoError(t, err)
	require.Equal(t, "two", string(data))

	_, err = r.CatBlob(c1, "never/existed")
	require.Error(t, err)
}

func TestCommitTime(t *testing.T) {
	dir, repo := initRepo(t)
	when := time.Date(2023, 5, 1, 12, 0, 0, 0, time.FixedZone("ELSEWHERE", 7200))
	c1 := commitFile(t, repo, dir, "f", "x", "c1", when)

	r, err := Open(dir)
	require.NoError(t, err)

	got, err := r.CommitTime(c1)
	require.NoError(t, err)
	require.True(t, got.Equal(when))
	require.Equal(t, time.UTC, got.Location())
}

func TestSymbolicRefs(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "f", "x", "c1", t0)

	r, err := Open(dir)
	require.NoError(t, err)

	head, err := r.SymbolicRef("HEAD")
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", head)

	_, err = r.SymbolicRef("VERSEEK_HEAD")
	require.Error(t, err)

	require.NoError(t, r.SetSymbolicRef("VERSEEK_HEAD", "refs/heads/master"))
	target, err := r.SymbolicRef("VERSEEK_HEAD")
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", target)

	// The marker has to survive process restarts: a fresh open sees it.
	r2, err := Open(dir)
	require.NoError(t, err)
	target, err = r2.SymbolicRef("VERSEEK_HEAD")
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", target)

	require.NoError(t, r.DeleteSymbolicRef("VERSEEK_HEAD"))
	_, err = r.SymbolicRef("VERSEEK_HEAD")
	require.Error(t, err)
}

func TestSymbolicRefDetached(t *testing.T) {
	dir, repo := initRepo(t)
	c1 := commitFile(t, repo, dir, "f", "x", "c1", t0)

	r, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, r.Checkout(c1.String()))

	_, err = r.SymbolicRef("HEAD")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotSymbolic))
}

func TestCheckout(t *testing.T) {
	dir, repo := initRepo(t)
	c1 := commitFile(t, repo, dir, "f", "v1", "c1", t0)
	commitFile(t, repo, dir, "f", "v2", "c2", t0.Add(time.Minute))

	r, err := Open(dir)
	require.NoError(t, err)

	// Detached checkout of an old commit.
	require.NoError(t, r.Checkout(c1.String()))
	data, err := os.ReadFile(filepath.Join(dir, "f"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(data))

	// Local modifications are discarded by the forced branch checkout.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("dirty"), 0644))
	require.NoError(t, r.Checkout("master"))
	data, err = os.ReadFile(filepath.Join(dir, "f"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))

	head, err := r.SymbolicRef("HEAD")
	require.NoError(t, err)
	require.Equal(t, "refs/heads/master", head)
}
