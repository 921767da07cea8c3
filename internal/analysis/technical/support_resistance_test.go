package technical

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Alias1177/StockPredictor/models"
)

func closesToCandles(closes ...float64) []models.Candle {
	return generateTestCandles(len(closes), func(i int) models.Candle {
		return models.Candle{
			Open:   closes[i],
			High:   closes[i] + 1,
			Low:    closes[i] - 1,
			Close:  closes[i],
			Volume: 1000,
		}
	})
}

func generateTestCandles(n int, generator func(int) models.Candle) []models.Candle {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
		candles[i].Timestamp = start.Add(time.Duration(i) * 5 * time.Minute)
	}
	return candles
}

func TestExtrema_ShortSeriesUndefined(t *testing.T) {
	for n := 1; n < 3; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = float64(10 - i*3)
		}
		set, err := Extrema{}.Compute(closesToCandles(closes...))
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if set.Pair.Support.Valid || set.Pair.Resistance.Valid {
			t.Errorf("n=%d: expected both levels undefined, got %+v", n, set.Pair)
		}
	}
}

func TestExtrema_MonotonicHasNoExtrema(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
	}{
		{"increasing", []float64{1, 2, 3, 4, 5, 6}},
		{"decreasing", []float64{9, 7, 5, 3}},
		{"three points up", []float64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Extrema{}.Compute(closesToCandles(tt.closes...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if set.Pair.Support.Valid {
				t.Errorf("support = %v, want undefined", set.Pair.Support.Price)
			}
			if set.Pair.Resistance.Valid {
				t.Errorf("resistance = %v, want undefined", set.Pair.Resistance.Price)
			}
		})
	}
}

func TestExtrema_ReferenceSequence(t *testing.T) {
	candles := closesToCandles(1, 3, 2, 5, 1, 4, 0)

	minima, maxima := LocalExtrema(candles)
	if want := []int{2, 4}; !reflect.DeepEqual(minima, want) {
		t.Errorf("minima = %v, want %v", minima, want)
	}
	if want := []int{1, 3, 5}; !reflect.DeepEqual(maxima, want) {
		t.Errorf("maxima = %v, want %v", maxima, want)
	}

	set, err := Extrema{}.Compute(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Pair.Support.Valid || set.Pair.Support.Price != 1 {
		t.Errorf("support = %+v, want 1", set.Pair.Support)
	}
	if !set.Pair.Resistance.Valid || set.Pair.Resistance.Price != 5 {
		t.Errorf("resistance = %+v, want 5", set.Pair.Resistance)
	}
	if set.Pair.Support.Price > set.Pair.Resistance.Price {
		t.Errorf("support %v above resistance %v", set.Pair.Support.Price, set.Pair.Resistance.Price)
	}
}

func TestExtrema_PlateausIgnored(t *testing.T) {
	// 2 is flanked by an equal neighbour, so it is not a strict minimum.
	set, err := Extrema{}.Compute(closesToCandles(5, 2, 2, 5, 7, 7, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Pair.Support.Valid {
		t.Errorf("support = %v, want undefined", set.Pair.Support.Price)
	}
	if set.Pair.Resistance.Valid {
		t.Errorf("resistance = %v, want undefined", set.Pair.Resistance.Price)
	}
}

func TestExtrema_OnlyOneSide(t *testing.T) {
	set, err := Extrema{}.Compute(closesToCandles(3, 1, 2, 4, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Pair.Support.Valid || set.Pair.Support.Price != 1 {
		t.Errorf("support = %+v, want 1", set.Pair.Support)
	}

	_, err = set.ResistancePrice()
	var undefined *models.UndefinedLevelError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedLevelError, got %v", err)
	}
	if undefined.Side != "resistance" {
		t.Errorf("side = %q, want resistance", undefined.Side)
	}
	if !errors.Is(err, models.ErrUndefinedLevel) {
		t.Error("expected error to match ErrUndefinedLevel")
	}
}

func TestExtrema_EmptySeries(t *testing.T) {
	_, err := Extrema{}.Compute(nil)
	var empty *models.EmptySeriesError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptySeriesError, got %v", err)
	}
}

func TestStrategiesAreIdempotent(t *testing.T) {
	candles := generateTestCandles(60, func(i int) models.Candle {
		p := 100 + float64(i%7)*1.5 - float64(i%4)
		return models.Candle{Open: p, High: p + 2, Low: p - 2, Close: p, Volume: float64(1000 + i)}
	})

	for _, name := range StrategyNames() {
		s, err := StrategyByName(name)
		if err != nil {
			t.Fatalf("StrategyByName(%q): %v", name, err)
		}
		first, err := s.Compute(candles)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		second, err := s.Compute(candles)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: results differ between runs: %+v vs %+v", name, first, second)
		}
	}
}

func TestStrategyByName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", StrategyExtrema, false},
		{"extrema", StrategyExtrema, false},
		{" Fibonacci ", StrategyFibonacci, false},
		{"pivot", "", true},
	}

	for _, tt := range tests {
		s, err := StrategyByName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("StrategyByName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("StrategyByName(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if s.Name() != tt.want {
			t.Errorf("StrategyByName(%q) = %s, want %s", tt.in, s.Name(), tt.want)
		}
	}
}
