package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-evolution/internal/logger"
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/internal/version"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBStore implements CandidateStore on a DuckDB database. The full
// record is kept as JSON next to the columns used for queries.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path. Use ":memory:"
// for a store that lives only as long as the process.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	log = log.Named("store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to create database directory", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		log.Error("Failed to open database", zap.String("path", path), zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	// Test connection to ensure database is properly initialized
	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to database", err)
	}

	s := &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`CREATE SEQUENCE IF NOT EXISTS candidate_seq`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create sequence", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			seq BIGINT,
			fingerprint TEXT,
			genome TEXT,
			generation INTEGER,
			run_id TEXT,
			run_seed BIGINT,
			in_sample_score DOUBLE,
			out_of_sample_score DOUBLE,
			min_stress_score DOUBLE,
			format_version TEXT,
			promoted_at TIMESTAMP,
			record TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create candidates table", err)
	}

	return nil
}

// Save implements CandidateStore.
func (s *DuckDBStore) Save(ctx context.Context, record types.CandidateRecord) error {
	if record.ID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "candidate record has no ID")
	}

	if record.FormatVersion == "" {
		record.FormatVersion = types.CandidateFormatVersion
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to encode candidate record", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT nextval('candidate_seq')").Scan(&seq); err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to get next sequence value", err)
	}

	_, err = s.sq.
		Insert("candidates").
		Columns(
			"id", "seq", "fingerprint", "genome", "generation", "run_id", "run_seed", "in_sample_score",
			"out_of_sample_score", "min_stress_score", "format_version", "promoted_at", "record",
		).
		Values(
			record.ID, seq, record.Fingerprint, record.Genome, record.Generation, record.RunID, record.RunSeed,
			record.InSample.Result.Score, record.OutOfSample.Result.Score, record.MinStressScore(),
			record.FormatVersion, record.PromotedAt.UTC(), string(data),
		).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeCandidateWriteFailed, err, "failed to insert candidate %s", record.ID)
	}

	s.logger.Debug("Saved candidate",
		zap.String("id", record.ID),
		zap.String("fingerprint", record.Fingerprint),
		zap.Int64("seq", seq),
	)

	return nil
}

// Get implements CandidateStore.
func (s *DuckDBStore) Get(ctx context.Context, id string) (optional.Option[types.CandidateRecord], error) {
	return s.queryOne(ctx, s.sq.
		Select("record").
		From("candidates").
		Where(squirrel.Eq{"id": id}))
}

// Latest implements CandidateStore.
func (s *DuckDBStore) Latest(ctx context.Context, fingerprint string) (optional.Option[types.CandidateRecord], error) {
	return s.queryOne(ctx, s.sq.
		Select("record").
		From("candidates").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		OrderBy("seq DESC").
		Limit(1))
}

// List implements CandidateStore.
func (s *DuckDBStore) List(ctx context.Context) ([]types.CandidateRecord, error) {
	return s.queryMany(ctx, s.sq.
		Select("c.record").
		From("candidates c").
		Where("c.seq = (SELECT MAX(d.seq) FROM candidates d WHERE d.fingerprint = c.fingerprint)").
		OrderBy("c.in_sample_score DESC", "c.seq ASC"))
}

// History implements CandidateStore.
func (s *DuckDBStore) History(ctx context.Context, fingerprint string) ([]types.CandidateRecord, error) {
	return s.queryMany(ctx, s.sq.
		Select("record").
		From("candidates").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		OrderBy("seq ASC"))
}

// Count returns the number of stored records, superseded ones included.
func (s *DuckDBStore) Count(ctx context.Context) (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").From("candidates").RunWith(s.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count candidates", err)
	}

	return count, nil
}

// Write exports the candidates table to candidates.parquet in dir.
func (s *DuckDBStore) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to create directory", err)
	}

	path := filepath.Join(dir, "candidates.parquet")

	// squirrel has no COPY support
	_, err := s.db.Exec(fmt.Sprintf(`COPY candidates TO '%s' (FORMAT PARQUET)`, strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeCandidateWriteFailed, "failed to export candidates to Parquet", err)
	}

	s.logger.Info("Successfully exported candidates to Parquet file", zap.String("candidates", path))

	return nil
}

// Close implements CandidateStore.
func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *DuckDBStore) queryOne(ctx context.Context, query squirrel.SelectBuilder) (optional.Option[types.CandidateRecord], error) {
	var data string

	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return optional.None[types.CandidateRecord](), nil
		}

		return optional.None[types.CandidateRecord](), errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to query candidate", err)
	}

	record, err := DecodeRecord([]byte(data))
	if err != nil {
		return optional.None[types.CandidateRecord](), err
	}

	return optional.Some(record), nil
}

func (s *DuckDBStore) queryMany(ctx context.Context, query squirrel.SelectBuilder) ([]types.CandidateRecord, error) {
	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to query candidates", err)
	}
	defer rows.Close()

	records := make([]types.CandidateRecord, 0)

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to scan candidate", err)
		}

		record, err := DecodeRecord([]byte(data))
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCandidateReadFailed, "error iterating candidates", err)
	}

	return records, nil
}

// DecodeRecord parses a JSON candidate record and checks its format version.
func DecodeRecord(data []byte) (types.CandidateRecord, error) {
	var record types.CandidateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return types.CandidateRecord{}, errors.Wrap(errors.ErrCodeCandidateReadFailed, "failed to decode candidate record", err)
	}

	if err := version.CheckFormatCompatibility(types.CandidateFormatVersion, record.FormatVersion); err != nil {
		return types.CandidateRecord{}, err
	}

	return record, nil
}
