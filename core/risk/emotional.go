package risk

import (
	"math"

	"github.com/hapiedu/hapi/core/pulse"
)

// Emotional analyzer thresholds.
const (
	neutralSentiment = 3.5

	persistentLowValue  = pulse.SentimentMin // run of rock-bottom check-ins
	persistentLowMinRun = 3

	negativeSentimentMax = 2 // a check-in at or below this counts as negative
	prolongedNegativeMin = 5 // strictly more than this many negatives triggers

	suddenDropHighMin = 5 // an older check-in at or above this sets up a drop

	volatilityMinChecks = 5
	volatilityThreshold = 1.5

	trendMinChecks = 5
	trendBand      = 0.5

	analysisWindow = 7 // checks considered for volatility and prolonged negativity
	recentWindow   = 3 // checks considered "current"
)

// AnalyzeEmotional derives an EmotionalVerdict from a student's trailing pulse
// checks, ordered most-recent-first. No checks yields the neutral verdict.
func AnalyzeEmotional(checks []pulse.Check) EmotionalVerdict {
	verdict := EmotionalVerdict{
		CurrentSentiment: neutralSentiment,
		Trend:            TrendStable,
	}
	if len(checks) == 0 {
		return verdict
	}

	verdict.CurrentSentiment = meanSentiment(checks[:min(recentWindow, len(checks))])

	window := checks[:min(analysisWindow, len(checks))]

	// Persistent low: 3+ consecutive checks at the bottom of the scale.
	// The first qualifying run, scanning most-recent-first, sets DaysAtRisk.
	run := 0
	for _, c := range checks {
		if c.SentimentValue == persistentLowValue {
			run++
			continue
		}
		if run >= persistentLowMinRun {
			break
		}
		run = 0
	}
	if run >= persistentLowMinRun {
		verdict.PersistentLow = true
		verdict.DaysAtRisk = run
	}

	// Prolonged negativity across the analysis window.
	negatives := 0
	for _, c := range window {
		if c.SentimentValue <= negativeSentimentMax {
			negatives++
		}
	}
	if negatives > prolongedNegativeMin {
		verdict.ProlongedNegative = true
		verdict.DaysAtRisk = max(verdict.DaysAtRisk, negatives)
	}

	// Sudden drop: a recent negative following a high check-in just before it.
	if len(checks) >= recentWindow {
		recentLow := false
		for _, c := range checks[:recentWindow] {
			if c.SentimentValue <= negativeSentimentMax {
				recentLow = true
				break
			}
		}
		olderHigh := false
		for _, c := range checks[recentWindow:min(2*recentWindow, len(checks))] {
			if c.SentimentValue >= suddenDropHighMin {
				olderHigh = true
				break
			}
		}
		if recentLow && olderHigh {
			verdict.SuddenDrop = true
			verdict.DaysAtRisk = max(verdict.DaysAtRisk, recentWindow)
		}
	}

	// High volatility: population standard deviation over the analysis window.
	if len(checks) >= volatilityMinChecks {
		if stdDevSentiment(window) > volatilityThreshold {
			verdict.HighVolatility = true
			verdict.DaysAtRisk = max(verdict.DaysAtRisk, analysisWindow)
		}
	}

	// Trend: current checks vs the three just before them.
	if len(checks) >= trendMinChecks {
		recentAvg := meanSentiment(checks[:recentWindow])
		olderAvg := meanSentiment(checks[recentWindow:min(2*recentWindow, len(checks))])
		switch {
		case recentAvg > olderAvg+trendBand:
			verdict.Trend = TrendImproving
		case recentAvg < olderAvg-trendBand:
			verdict.Trend = TrendDeclining
		}
	}

	return verdict
}

func meanSentiment(checks []pulse.Check) float64 {
	if len(checks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range checks {
		sum += float64(c.SentimentValue)
	}
	return sum / float64(len(checks))
}

// stdDevSentiment computes the population standard deviation.
func stdDevSentiment(checks []pulse.Check) float64 {
	if len(checks) == 0 {
		return 0
	}
	mean := meanSentiment(checks)
	var sumSq float64
	for _, c := range checks {
		d := float64(c.SentimentValue) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(checks)))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
