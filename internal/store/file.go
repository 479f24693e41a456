package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/internal/version"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	return ext == ".yaml" || ext == ".yml"
}

// WriteCandidateFile writes record to path, as YAML when the extension is
// .yaml or .yml and as indented JSON otherwise.
func WriteCandidateFile(path string, record types.CandidateRecord) error {
	if record.FormatVersion == "" {
		record.FormatVersion = types.CandidateFormatVersion
	}

	var (
		data []byte
		err  error
	)

	if isYAML(path) {
		data, err = yaml.Marshal(record)
	} else {
		data, err = json.MarshalIndent(record, "", "  ")
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to encode candidate record", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to create directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to write candidate file", err)
	}

	return nil
}

// ReadCandidateFile reads a record written by WriteCandidateFile.
func ReadCandidateFile(path string) (types.CandidateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.CandidateRecord{}, errors.Wrapf(errors.ErrCodeCandidateNotFound, err, "candidate file %s not found", path)
		}

		return types.CandidateRecord{}, errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to read candidate file", err)
	}

	if !isYAML(path) {
		return DecodeRecord(data)
	}

	var record types.CandidateRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return types.CandidateRecord{}, errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to decode candidate record", err)
	}

	if err := version.CheckFormatCompatibility(types.CandidateFormatVersion, record.FormatVersion); err != nil {
		return types.CandidateRecord{}, err
	}

	return record, nil
}
