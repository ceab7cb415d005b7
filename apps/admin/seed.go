package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// seed loads a small demo school: one teacher, two classes, three students
// and a week of pulse checks shaped to trip the analyzers.
func (cli *commandLine) seed() error {
	teacherID := "t-demo"
	classMath := "c-demo-math"
	classSci := "c-demo-science"

	if _, err := cli.db.Exec(
		`INSERT INTO teacher (id, name, email) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		teacherID, "Demo Teacher", "teacher@demo.local"); err != nil {
		return err
	}

	classes := []struct{ id, name, subject string }{
		{classMath, "Mathematics 8A", "math"},
		{classSci, "Science 8A", "science"},
	}
	for _, c := range classes {
		if _, err := cli.db.Exec(
			`INSERT INTO class (id, teacher_id, name, subject, is_active, created_at)
			 VALUES ($1, $2, $3, $4, TRUE, now()) ON CONFLICT (id) DO NOTHING`,
			c.id, teacherID, c.name, c.subject); err != nil {
			return err
		}
	}

	students := []struct{ id, name string }{
		{"s-demo-1", "Amani Njoroge"},
		{"s-demo-2", "Leila Owuor"},
		{"s-demo-3", "Baraka Mwangi"},
	}
	for _, s := range students {
		for _, c := range classes {
			if _, err := cli.db.Exec(
				`INSERT INTO enrollment (class_id, user_id, display_name, is_active)
				 VALUES ($1, $2, $3, TRUE) ON CONFLICT DO NOTHING`,
				c.id, s.id, s.name); err != nil {
				return err
			}
		}
	}

	// s-demo-1: a week of very low sentiment (persistent low + prolonged negative)
	// s-demo-2: a sharp drop from high to low (sudden drop)
	// s-demo-3: steady neutral
	sentiments := map[string][]int{
		"s-demo-1": {1, 1, 2, 1, 2, 1, 1},
		"s-demo-2": {2, 1, 2, 6, 5, 6, 5},
		"s-demo-3": {4, 4, 3, 4, 4, 3, 4},
	}
	now := time.Now().UTC()
	for sid, values := range sentiments {
		for i, v := range values {
			if _, err := cli.db.Exec(
				`INSERT INTO pulse_check (id, user_id, sentiment_value, emotion_label, checked_at)
				 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
				uuid.New().String(), sid, v, "", now.Add(-time.Duration(i)*24*time.Hour)); err != nil {
				return err
			}
		}
	}

	fmt.Println("seeded demo school: 1 teacher, 2 classes, 3 students")
	return nil
}
