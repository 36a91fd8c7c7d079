package types

type IndicatorType string

const (
	IndicatorTypeRSI IndicatorType = "rsi"
	IndicatorTypeMA  IndicatorType = "ma"
)
