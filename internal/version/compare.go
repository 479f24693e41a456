package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// CheckFormatCompatibility checks whether a reader that understands the
// candidate layout readerVersion can load a record written as recordVersion.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - Major versions must match exactly
//   - The record's minor version must not be newer than the reader's
//   - Patch versions can differ
//
// Examples:
//   - Reader 1.2.0, Record 1.2.0 -> OK (exact match)
//   - Reader 1.2.0, Record 1.0.3 -> OK (older minor)
//   - Reader 1.2.0, Record 1.3.0 -> ERROR (record is newer)
//   - Reader 2.0.0, Record 1.2.0 -> ERROR (major differs)
func CheckFormatCompatibility(readerVersion, recordVersion string) error {
	readerVersion = strings.TrimPrefix(readerVersion, "v")
	recordVersion = strings.TrimPrefix(recordVersion, "v")

	reader, err := semver.NewVersion(readerVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid reader format version '%s'", readerVersion)
	}

	record, err := semver.NewVersion(recordVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid record format version '%s'", recordVersion)
	}

	if reader.Major() != record.Major() {
		return errors.Newf(errors.ErrCodeFormatVersion, "major version mismatch: reader is %d.x.x but record is %d.x.x",
			reader.Major(), record.Major())
	}

	if record.Minor() > reader.Minor() {
		return errors.Newf(errors.ErrCodeFormatVersion, "record format %d.%d.x is newer than reader format %d.%d.x",
			record.Major(), record.Minor(), reader.Major(), reader.Minor())
	}

	return nil
}
