package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestRegistriesAreIndependent() {
	a := NewMetricsRegistry()
	b := NewMetricsRegistry()

	a.RecordEvaluation(ResultOK, time.Millisecond)

	suite.Equal(1.0, testutil.ToFloat64(a.Evaluations.WithLabelValues(ResultOK)))
	suite.Equal(0.0, testutil.ToFloat64(b.Evaluations.WithLabelValues(ResultOK)))
}

func (suite *MetricsTestSuite) TestRecordGeneration() {
	m := NewMetricsRegistry()

	m.RecordGeneration(0.5, 0.1, 0.75, time.Second)
	m.RecordGeneration(0.6, 0.2, 0.5, time.Second)

	suite.Equal(2.0, testutil.ToFloat64(m.Generations))
	suite.Equal(0.6, testutil.ToFloat64(m.BestScore))
	suite.Equal(0.2, testutil.ToFloat64(m.MeanScore))
	suite.Equal(0.5, testutil.ToFloat64(m.Diversity))
}

func (suite *MetricsTestSuite) TestRecordPromotion() {
	m := NewMetricsRegistry()

	m.RecordPromotion(DecisionPass, "")
	m.RecordPromotion(DecisionReject, "out_of_sample")
	m.RecordPromotion(DecisionReject, "out_of_sample")

	suite.Equal(1.0, testutil.ToFloat64(m.Promotions.WithLabelValues(DecisionPass, "")))
	suite.Equal(2.0, testutil.ToFloat64(m.Promotions.WithLabelValues(DecisionReject, "out_of_sample")))
}

func (suite *MetricsTestSuite) TestNilRegistryIsNoop() {
	var m *MetricsRegistry

	suite.NotPanics(func() {
		m.RecordEvaluation(ResultOK, time.Millisecond)
		m.RecordGeneration(1, 1, 1, time.Second)
		m.RecordPromotion(DecisionPass, "")
	})
}

func (suite *MetricsTestSuite) TestWriteToTextfile() {
	m := NewMetricsRegistry()
	m.RecordEvaluation(ResultTimeout, time.Millisecond)

	path := filepath.Join(suite.T().TempDir(), "evolution.prom")
	suite.Require().NoError(m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(data), `evolution_evaluations_total{result="timeout"} 1`)
}
