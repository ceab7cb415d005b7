// Package pulse holds student pulse checks: single mood/sentiment self-reports
// recorded from the check-in UI, read-only to the rest of the app.
package pulse

import (
	"errors"
	"time"
)

// Sentiment scale bounds. 1 is the lowest mood, 6 the highest.
const (
	SentimentMin = 1
	SentimentMax = 6
)

var (
	// errors
	ErrNoChecks = errors.New("no pulse checks recorded")
)

// Check is one immutable pulse check.
type Check struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SentimentValue int       `json:"sentiment_value"` // 1..6
	EmotionLabel   string    `json:"emotion_label"`
	CheckedAt      time.Time `json:"checked_at"` // UTC
}
