// Package debian reads and writes the debian/ metadata files verseek
// cares about: the changelog (version history) and the control file
// (package name and maintainer).
package debian

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Matches the first line of a changelog entry, e.g.
// "core (1.2.3) unstable; urgency=low". The version is the first capture.
var changelogHeader = regexp.MustCompile(`(?i)^\w[-+0-9a-z.]* \(([^() \t]+)\)(?:\s+[-+0-9a-z.]+)+;`)

// ParseChangelog scans changelog text line by line and returns the version
// named by the first entry header it finds, or "" when no line matches.
func ParseChangelog(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := changelogHeader.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// Entry is a single synthesized changelog entry. verseek writes one when a
// single-package tree is seeked to a version that never had a changelog of
// its own.
type Entry struct {
	Source     string
	Version    string
	Maintainer string
	Date       time.Time
}

// rfc2822 is the trailer date layout used by dch/dpkg. Go's reference-time
// formatting always emits English day/month names, so the output does not
// depend on the host locale. The zone is pinned by converting to UTC first.
const rfc2822 = "Mon, 02 Jan 2006 15:04:05 -0700"

// String renders the entry in the exact byte layout dpkg-parsechangelog
// accepts: header, blank, change note, blank, maintainer trailer.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) UNRELEASED; urgency=low\n", e.Source, e.Version)
	b.WriteString("\n")
	b.WriteString("  * undocumented\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, " --  %s  %s\n", e.Maintainer, e.Date.UTC().Format(rfc2822))
	return b.String()
}

// Write replaces the file at path with this entry.
func (e Entry) Write(fs billy.Filesystem, path string) error {
	if err := util.WriteFile(fs, path, []byte(e.String()), 0644); err != nil {
		return fmt.Errorf("writing changelog %q: %w", path, err)
	}
	return nil
}
