package types

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeMomentum       IndicatorType = "momentum"
	IndicatorTypeVolatility     IndicatorType = "volatility"
)

// AllIndicatorTypes lists every indicator a genome may reference, in the
// order random generation draws from.
var AllIndicatorTypes = []IndicatorType{
	IndicatorTypeMA,
	IndicatorTypeEMA,
	IndicatorTypeRSI,
	IndicatorTypeMACD,
	IndicatorTypeBollingerBands,
	IndicatorTypeMomentum,
	IndicatorTypeVolatility,
}

// IsValid reports whether t is one of AllIndicatorTypes.
func (t IndicatorType) IsValid() bool {
	for _, known := range AllIndicatorTypes {
		if known == t {
			return true
		}
	}

	return false
}

// IndicatorRef names one indicator instance: a type and its period.
type IndicatorRef struct {
	Type   IndicatorType `json:"type" yaml:"type"`
	Period int           `json:"period" yaml:"period"`
}
