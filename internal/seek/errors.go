package seek

import "errors"

// Sentinel errors for every failure mode the engine distinguishes. Callers
// match with errors.Is; messages wrapped around these name the offending
// path or version.
var (
	// ErrNotADirectory reports a source tree path that is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrMissingControlFile reports a tree without debian/control.
	ErrMissingControlFile = errors.New("missing debian/control file")

	// ErrChangelog reports a missing or unparsable debian/changelog where
	// one is required.
	ErrChangelog = errors.New("missing or unparsable changelog")

	// ErrUnknownVersion reports a seek target no revision corresponds to.
	ErrUnknownVersion = errors.New("no such version")

	// ErrNoSeekToRestore reports an unseek with no prior seek to undo.
	ErrNoSeekToRestore = errors.New("no version to seek back to")

	// ErrDetachedHead reports a HEAD that is not pointing at a branch when
	// a branch is required.
	ErrDetachedHead = errors.New("HEAD isn't pointing to a branch")
)
