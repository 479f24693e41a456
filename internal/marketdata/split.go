package marketdata

import (
	"github.com/rxtech-lab/argo-evolution/internal/types"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
)

// Split cuts series chronologically: the first ratio of the points become
// the in-sample series, the rest the out-of-sample series. Both parts must
// hold at least minPoints points.
func Split(series types.PriceSeries, ratio float64, minPoints int) (types.PriceSeries, types.PriceSeries, error) {
	if ratio <= 0 || ratio >= 1 {
		return types.PriceSeries{}, types.PriceSeries{}, errors.NewConfigurationErrorf("in_sample_ratio", "must be in (0, 1), got %v", ratio)
	}

	cut := int(float64(series.Len()) * ratio)
	inSample := series.Slice(series.Name+"_in_sample", 0, cut)
	outOfSample := series.Slice(series.Name+"_out_of_sample", cut, series.Len())

	if inSample.Len() < minPoints || outOfSample.Len() < minPoints {
		return types.PriceSeries{}, types.PriceSeries{}, errors.NewDataInsufficientErrorf(
			minPoints, min(inSample.Len(), outOfSample.Len()), series.Name,
			"splitting %d points at %.2f leaves %d/%d points, each part needs %d",
			series.Len(), ratio, inSample.Len(), outOfSample.Len(), minPoints)
	}

	return inSample, outOfSample, nil
}
