// Package inmemdb is the in-memory storage backend used by tests and local
// development. Tables are plain maps guarded by RW mutexes.
package inmemdb

import (
	"sync"

	"github.com/hapiedu/hapi/core/notification"
	"github.com/hapiedu/hapi/core/pulse"
	"github.com/hapiedu/hapi/core/risk"
	"github.com/hapiedu/hapi/core/school"
)

type (
	DB struct {
		classes       *classTable
		enrollments   *enrollmentTable
		teachers      *teacherTable
		checks        *checkTable
		alerts        *alertTable
		interventions *interventionTable
		prefs         *prefTable
		notifications *notificationTable
	}

	classTable struct {
		sync.RWMutex
		table map[string]*school.Class
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string][]school.Enrollment // by class ID
	}

	teacher struct {
		ID    string
		Name  string
		Email string
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher
	}

	checkTable struct {
		sync.RWMutex
		table map[string][]pulse.Check // by student ID, most-recent-first
	}

	alertTable struct {
		sync.RWMutex
		table map[string]*risk.Alert
	}

	interventionTable struct {
		sync.RWMutex
		table map[string][]risk.Intervention // by "userID/classID"
	}

	prefTable struct {
		sync.RWMutex
		table map[string]*notification.Preference
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		classes:       &classTable{table: make(map[string]*school.Class)},
		enrollments:   &enrollmentTable{table: make(map[string][]school.Enrollment)},
		teachers:      &teacherTable{table: make(map[string]*teacher)},
		checks:        &checkTable{table: make(map[string][]pulse.Check)},
		alerts:        &alertTable{table: make(map[string]*risk.Alert)},
		interventions: &interventionTable{table: make(map[string][]risk.Intervention)},
		prefs:         &prefTable{table: make(map[string]*notification.Preference)},
		notifications: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}

func interventionKey(userID, classID string) string {
	return userID + "/" + classID
}
