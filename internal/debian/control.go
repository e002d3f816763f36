package debian

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Control holds the field/value pairs of a debian/control file. Continuation
// lines (leading whitespace) are not part of the fields verseek needs, so
// this parser discards them. Duplicate fields: last one wins.
type Control map[string]string

// ParseControl reads and parses the control file at path.
func ParseControl(fs billy.Filesystem, path string) (Control, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading control file %q: %w", path, err)
	}

	c := Control{}
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		c[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return c, nil
}
