package seek

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/turnkeylinux/verseek/internal/debian"
)

var t0 = time.Date(2024, 10, 2, 10, 15, 0, 0, time.UTC)

const controlFixture = "Source: core\nMaintainer: Jane Doe <jane@example.com>\n"

func changelogFixture(version string) string {
	return "core (" + version + ") unstable; urgency=low\n\n  * stuff\n"
}

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func writeFile(t *testing.T, dir, path, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func commitFiles(t *testing.T, repo *gogit.Repository, dir, msg string, when time.Time, files map[string]string) plumbing.Hash {
	t.Helper()
	w, err := repo.Worktree()
	require.NoError(t, err)
	for path, content := range files {
		writeFile(t, dir, path, content)
		_, err = w.Add(path)
		require.NoError(t, err)
	}
	hash, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
	return hash
}

// multiPackageRepo builds the reference scenario: a repository holding a
// package under pkg/ whose changelog records 1.0 (R1) then 1.1 (R2), with a
// later commit R3 that does not touch the changelog.
func multiPackageRepo(t *testing.T) (root, pkg string, r1, r2, r3 plumbing.Hash) {
	t.Helper()
	root, repo := initRepo(t)
	pkg = filepath.Join(root, "pkg")

	r1 = commitFiles(t, repo, root, "release 1.0", t0, map[string]string{
		"pkg/debian/control":   controlFixture,
		"pkg/debian/changelog": changelogFixture("1.0"),
	})
	r2 = commitFiles(t, repo, root, "release 1.1", t0.Add(time.Minute), map[string]string{
		"pkg/debian/changelog": changelogFixture("1.1"),
	})
	r3 = commitFiles(t, repo, root, "unrelated", t0.Add(2*time.Minute), map[string]string{
		"other.txt": "x",
	})
	return root, pkg, r1, r2, r3
}

func markerTarget(t *testing.T, root string) (string, bool) {
	t.Helper()
	repo, err := gogit.PlainOpen(root)
	require.NoError(t, err)
	ref, err := repo.Storer.Reference(plumbing.ReferenceName(DefaultMarkerRef))
	if err != nil {
		return "", false
	}
	return ref.Target().String(), true
}

func headState(t *testing.T, root string) *plumbing.Reference {
	t.Helper()
	repo, err := gogit.PlainOpen(root)
	require.NoError(t, err)
	ref, err := repo.Storer.Reference(plumbing.HEAD)
	require.NoError(t, err)
	return ref
}

func headCommit(t *testing.T, root string) plumbing.Hash {
	t.Helper()
	repo, err := gogit.PlainOpen(root)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	return ref.Hash()
}

func readVersion(t *testing.T, pkg string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(pkg, "debian", "changelog"))
	require.NoError(t, err)
	v := debian.ParseChangelog(string(data))
	require.NotEmpty(t, v)
	return v
}
