package risk

import (
	"math"
	"testing"

	"github.com/hapiedu/hapi/core/pulse"
)

// checks builds a most-recent-first check list from raw sentiment values.
func checks(sentiments ...int) []pulse.Check {
	out := make([]pulse.Check, 0, len(sentiments))
	for _, v := range sentiments {
		out = append(out, pulse.Check{SentimentValue: v})
	}
	return out
}

func TestAnalyzeEmotional_noChecks(t *testing.T) {
	verdict := AnalyzeEmotional(nil)

	if verdict.HasRisk() {
		t.Errorf("AnalyzeEmotional(nil).HasRisk() = true, want false")
	}
	if verdict.CurrentSentiment != 3.5 {
		t.Errorf("CurrentSentiment = %v, want 3.5", verdict.CurrentSentiment)
	}
	if verdict.Trend != TrendStable {
		t.Errorf("Trend = %v, want %v", verdict.Trend, TrendStable)
	}
	if verdict.DaysAtRisk != 0 {
		t.Errorf("DaysAtRisk = %d, want 0", verdict.DaysAtRisk)
	}
}

func TestAnalyzeEmotional_currentSentiment(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       float64
	}{
		{name: "single check", sentiments: []int{4}, want: 4},
		{name: "two checks", sentiments: []int{4, 2}, want: 3},
		{name: "mean of recent three", sentiments: []int{6, 5, 4, 1, 1, 1, 1}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.CurrentSentiment != tt.want {
				t.Errorf("CurrentSentiment = %v, want %v", verdict.CurrentSentiment, tt.want)
			}
		})
	}
}

func TestAnalyzeEmotional_persistentLow(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       bool
		wantDays   int
	}{
		{name: "three consecutive ones", sentiments: []int{1, 1, 1}, want: true, wantDays: 3},
		{name: "two consecutive ones only", sentiments: []int{1, 1, 2, 1}, want: false},
		{name: "run broken early then long run", sentiments: []int{1, 3, 1, 1, 1, 1}, want: true, wantDays: 4},
		{name: "first qualifying run wins", sentiments: []int{1, 1, 1, 3, 1, 1, 1, 1}, want: true, wantDays: 3},
		{name: "week of ones", sentiments: []int{1, 1, 1, 1, 1, 1, 1}, want: true, wantDays: 7},
		{name: "twos do not count", sentiments: []int{2, 2, 2, 2}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.PersistentLow != tt.want {
				t.Errorf("PersistentLow = %t, want %t", verdict.PersistentLow, tt.want)
			}
			if tt.want && verdict.DaysAtRisk != tt.wantDays {
				t.Errorf("DaysAtRisk = %d, want %d", verdict.DaysAtRisk, tt.wantDays)
			}
		})
	}
}

func TestAnalyzeEmotional_prolongedNegative(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       bool
	}{
		{name: "six negatives of seven", sentiments: []int{2, 2, 3, 2, 2, 2, 2}, want: true},
		{name: "five negatives of seven", sentiments: []int{2, 2, 3, 2, 3, 2, 2}, want: false},
		{name: "only window counts", sentiments: []int{3, 3, 3, 3, 3, 3, 3, 2, 2, 2, 2, 2, 2}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.ProlongedNegative != tt.want {
				t.Errorf("ProlongedNegative = %t, want %t", verdict.ProlongedNegative, tt.want)
			}
		})
	}
}

func TestAnalyzeEmotional_suddenDrop(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       bool
	}{
		{name: "drop from high", sentiments: []int{2, 3, 3, 6, 5, 5}, want: true},
		{name: "high only further back", sentiments: []int{2, 3, 3, 3, 3, 3, 6}, want: false},
		{name: "no recent low", sentiments: []int{3, 3, 3, 6, 6, 6}, want: false},
		{name: "too few checks", sentiments: []int{2, 6}, want: false},
		{name: "short older side", sentiments: []int{2, 3, 3, 6}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.SuddenDrop != tt.want {
				t.Errorf("SuddenDrop = %t, want %t", verdict.SuddenDrop, tt.want)
			}
		})
	}
}

func TestAnalyzeEmotional_highVolatility(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       bool
	}{
		{name: "swinging extremes", sentiments: []int{1, 6, 1, 6, 1, 6, 1}, want: true},
		{name: "steady", sentiments: []int{4, 4, 4, 4, 4, 4, 4}, want: false},
		{name: "too few checks", sentiments: []int{1, 6, 1, 6}, want: false},
		{name: "mild variation", sentiments: []int{3, 4, 3, 4, 3, 4, 3}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.HighVolatility != tt.want {
				t.Errorf("HighVolatility = %t, want %t", verdict.HighVolatility, tt.want)
			}
		})
	}
}

func TestAnalyzeEmotional_trend(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []int
		want       Trend
	}{
		{name: "improving", sentiments: []int{5, 5, 5, 2, 2, 2}, want: TrendImproving},
		{name: "declining", sentiments: []int{2, 2, 2, 5, 5, 5}, want: TrendDeclining},
		{name: "stable within band", sentiments: []int{4, 4, 4, 4, 4, 3}, want: TrendStable},
		{name: "too few checks", sentiments: []int{5, 5, 5, 2}, want: TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeEmotional(checks(tt.sentiments...))
			if verdict.Trend != tt.want {
				t.Errorf("Trend = %v, want %v", verdict.Trend, tt.want)
			}
		})
	}
}

func TestStdDevSentiment(t *testing.T) {
	// population stddev of {1,6,1,6} is 2.5
	got := stdDevSentiment(checks(1, 6, 1, 6))
	if math.Abs(got-2.5) > 1e-9 {
		t.Errorf("stdDevSentiment() = %v, want 2.5", got)
	}
}
