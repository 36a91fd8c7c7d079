package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	data := gen.Generate(config)

	if len(data) != 100 {
		t.Fatalf("expected 100 data points, got %d", len(data))
	}

	for i := 1; i < len(data); i++ {
		if !data[i].Time.After(data[i-1].Time) {
			t.Errorf("data not in chronological order at index %d", i)
		}
	}

	for i, d := range data {
		if d.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, d.Symbol)
		}

		if d.Open <= 0 || d.High <= 0 || d.Low <= 0 || d.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f", i, d.Open, d.High, d.Low, d.Close)
		}

		if d.High < d.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, d.High, d.Low)
		}

		if wd := d.Time.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("weekend bar at index %d: %s", i, d.Time)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	a := NewDataGenerator(7).Closes(50)
	b := NewDataGenerator(7).Closes(50)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different closes at index %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestDataGenerator_Series(t *testing.T) {
	ts := NewDataGenerator(1).Series("AAPL", 5)

	if ts.Symbol != "AAPL" || ts.Len() != 5 {
		t.Fatalf("unexpected series %s with %d bars", ts.Symbol, ts.Len())
	}

	if ts.SMA != nil || ts.RSI != nil {
		t.Errorf("generated series should have no indicator columns")
	}
}
