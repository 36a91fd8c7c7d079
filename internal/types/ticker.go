package types

// TickerInfo is the descriptive metadata a provider returns for a symbol.
type TickerInfo struct {
	Symbol string
	Name   string
	// Industry is empty when the provider has no classification for the symbol.
	Industry string
}

// IndustryNotAvailable is reported when a symbol has no industry classification.
const IndustryNotAvailable = "Not available"

// IndustryOrDefault returns the industry or IndustryNotAvailable.
func (t TickerInfo) IndustryOrDefault() string {
	if t.Industry == "" {
		return IndustryNotAvailable
	}

	return t.Industry
}
