package marketdata

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/stretchr/testify/suite"
)

type ParquetWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestParquetWriterSuite(t *testing.T) {
	suite.Run(t, new(ParquetWriterTestSuite))
}

func (suite *ParquetWriterTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "parquet-writer-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *ParquetWriterTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *ParquetWriterTestSuite) TestWriteSeries() {
	series := Synthetic(7, 120)
	outputPath := filepath.Join(suite.tempDir, "nested", "series.parquet")

	path, err := WriteSeries(NewParquetWriter(outputPath, series.Name), series)
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	var (
		count int
		total float64
	)

	err = db.QueryRow(`SELECT count(*), sum(price) FROM read_parquet('` + path + `')`).Scan(&count, &total)
	suite.Require().NoError(err)
	suite.Equal(120, count)

	expected := 0.0
	for _, p := range series.Prices() {
		expected += p
	}

	suite.InDelta(expected, total, 1e-6)
}

func (suite *ParquetWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewParquetWriter(filepath.Join(suite.tempDir, "x.parquet"), "x")

	err := writer.Write(types.PricePoint{Time: time.Now(), Price: 1})
	suite.Error(err)

	_, err = writer.Finalize()
	suite.Error(err)
	suite.NoError(writer.Close())
}

func (suite *ParquetWriterTestSuite) TestCloseWithoutFinalize() {
	writer := NewParquetWriter(filepath.Join(suite.tempDir, "x.parquet"), "x")
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(types.PricePoint{Time: time.Now(), Price: 1}))
	suite.NoError(writer.Close())

	_, err := os.Stat(filepath.Join(suite.tempDir, "x.parquet"))
	suite.True(os.IsNotExist(err))
}
