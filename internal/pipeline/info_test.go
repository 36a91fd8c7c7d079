package pipeline

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stock-tracker/tracker/internal/types"
)

func TestWriteInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     types.LookupResult[types.TickerInfo]
		expected string
	}{
		{
			name:     "found",
			info:     types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc.", Industry: "Consumer Electronics"}),
			expected: "Stock: Apple Inc. (AAPL)\nIndustry: Consumer Electronics\n",
		},
		{
			name:     "found without industry",
			info:     types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc."}),
			expected: "Stock: Apple Inc. (AAPL)\nIndustry: Not available\n",
		},
		{
			name:     "not found",
			info:     types.NotFound[types.TickerInfo](nil),
			expected: "Invalid or delisted stock symbol: AAPL\n\n",
		},
		{
			name:     "error",
			info:     types.Failed[types.TickerInfo](fmt.Errorf("connection reset")),
			expected: "Stock information unavailable for AAPL: connection reset\n\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			assert.NoError(t, writeInfo(&buf, "AAPL", tc.info))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestNormalizeInfo(t *testing.T) {
	found := types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc."})
	assert.Equal(t, found, normalizeInfo("AAPL", found))

	nameless := normalizeInfo("AAPL", types.Found(types.TickerInfo{Symbol: "AAPL", Industry: "Tech"}))
	assert.True(t, nameless.IsNotFound())

	failed := types.Failed[types.TickerInfo](fmt.Errorf("boom"))
	assert.True(t, normalizeInfo("AAPL", failed).IsError())
}
