package seek

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"

	"github.com/turnkeylinux/verseek/internal/debian"
)

// Plain handles a bare directory with no version control. There is no
// history to walk: the only known version is whatever the working changelog
// says, and seeking is a no-op that merely validates the request.
type Plain struct {
	Base
}

// NewPlain builds the Plain backend for the tree at path.
func NewPlain(path string, opts ...Option) (*Plain, error) {
	b, err := newBase(path, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Plain{Base: b}, nil
}

func (p *Plain) currentVersion() (string, error) {
	data, err := util.ReadFile(p.fs, changelogPath)
	if err != nil {
		return "", fmt.Errorf("%w: no such file %q", ErrChangelog, filepath.Join(p.Path, changelogPath))
	}
	version := debian.ParseChangelog(string(data))
	if version == "" {
		return "", fmt.Errorf("%w: can't parse version from %q", ErrChangelog, filepath.Join(p.Path, changelogPath))
	}
	return version, nil
}

// ListVersions returns the single version named by the working changelog.
func (p *Plain) ListVersions() ([]string, error) {
	version, err := p.currentVersion()
	if err != nil {
		return nil, err
	}
	return []string{version}, nil
}

// Seek succeeds only for the version the tree already holds. Unseek is a
// no-op.
func (p *Plain) Seek(version string) error {
	if version == "" {
		return nil
	}
	current, err := p.currentVersion()
	if err != nil {
		return err
	}
	if current != version {
		return fmt.Errorf("can't seek to nonexistent version %q: %w", version, ErrUnknownVersion)
	}
	return nil
}
