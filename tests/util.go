package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
)

// NewConfig returns a test configuration with short windows and the live
// availability policy so fixtures fully control what the engine sees.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:           true,
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Hapi",
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:3000",
		Server: core.ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Care: core.CareConfig{
			AcademicProvider: "mock",
			Availability:     core.DataLive,
			PulseWindow:      7 * 24 * time.Hour,
			AlertWindow:      7 * 24 * time.Hour,
			RosterTimeout:    2 * time.Second,
		},
	}
}

// Logger is a test logger that records messages and fails the test on Fatal.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger { return &Logger{t: t} }

func (l *Logger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s", msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s", msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s", msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s", msg) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s", msg) }

// Class builds an active class fixture.
func Class(id, teacherID, name string) school.Class {
	return school.Class{
		ID:        id,
		TeacherID: teacherID,
		Name:      name,
		Subject:   "general",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// Checks turns a most-recent-first list of sentiments into one pulse check
// per day, newest today.
func Checks(userID string, sentiments ...int) []pulse.Check {
	now := time.Now().UTC()
	checks := make([]pulse.Check, 0, len(sentiments))
	for i, v := range sentiments {
		checks = append(checks, pulse.Check{
			ID:             fmt.Sprintf("chk-%s-%d", userID, i),
			UserID:         userID,
			SentimentValue: v,
			CheckedAt:      now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	return checks
}

// RosterDiff fails the test with a readable diff when the roster's
// (userID, severity, type) sequence differs from want.
func RosterDiff(t *testing.T, want, got []risk.AtRiskStudent) {
	t.Helper()
	if diff := diffRosters(want, got); diff != "" {
		t.Errorf("unexpected roster:\n%s", diff)
	}
}

func diffRosters(want, got []risk.AtRiskStudent) string {
	a := describeRoster(want)
	b := describeRoster(got)
	if a == b {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	return diff
}

func describeRoster(roster []risk.AtRiskStudent) string {
	var sb strings.Builder
	for _, s := range roster {
		fmt.Fprintf(&sb, "%s %s %s days=%d\n", s.UserID, s.Severity, s.RiskType, s.DaysAtRisk)
	}
	return sb.String()
}
