package seek

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// Sumo handles the legacy sumo overlay storage layout: package trees live
// under arena.union, their real history under arena.internals/overlay, and
// each branch has a thin twin carrying that overlay. Listing remaps the
// changelog path through the overlay and walks the thin branch; checkouts
// go through the external sumo-checkout tool.
type Sumo struct {
	*Git
}

// NewSumo builds the Sumo backend for the tree at path.
func NewSumo(path string, opts ...Option) (*Sumo, error) {
	g, err := NewGit(path, opts...)
	if err != nil {
		return nil, err
	}
	s := &Sumo{Git: g}
	s.list = s.overlayPairs
	s.checkout = s.sumoCheckout
	return s, nil
}

// overlayChangelogRel maps the tree's changelog to its storage path inside
// arena.internals/overlay, relative to the repository root.
func (s *Sumo) overlayChangelogRel() (string, error) {
	union := filepath.Join(s.repo.Root, "arena.union")
	rel, err := filepath.Rel(union, filepath.Join(s.Path, changelogPath))
	if err != nil {
		return "", fmt.Errorf("locating changelog under %q: %w", union, err)
	}
	overlay := filepath.Join(s.repo.Root, "arena.internals", "overlay", rel)
	rel, err = filepath.Rel(s.repo.Root, overlay)
	if err != nil {
		return "", fmt.Errorf("locating changelog under %q: %w", s.repo.Root, err)
	}
	return filepath.ToSlash(rel), nil
}

func (s *Sumo) overlayPairs() ([]versionPair, error) {
	branch, err := s.branch()
	if err != nil {
		return nil, err
	}
	rel, err := s.overlayChangelogRel()
	if err != nil {
		return nil, err
	}
	return s.pairsFor(branch+"-thin", rel)
}

func (s *Sumo) sumoCheckout(arg string) error {
	cmd := exec.Command("sumo-checkout", arg)
	cmd.Dir = s.repo.Root
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("sumo-checkout %s: %w: %s", arg, err, out)
	}
	return nil
}

var _ Backend = (*Sumo)(nil)
