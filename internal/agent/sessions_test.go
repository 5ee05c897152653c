package agent

import (
	"math/rand"
	"testing"
	"time"
)

func TestPickSession(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"weekday early morning", time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), "morning_coffee"},
		{"weekday mid morning", time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC), "morning_coffee"},
		{"weekday noon", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), "midday_glance"},
		{"weekday afternoon", time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), "afternoon_review"},
		{"weekday evening", time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC), "evening_research"},
		{"saturday", time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC), "weekend_planning"},
		{"sunday night", time.Date(2025, 6, 8, 22, 0, 0, 0, time.UTC), "weekend_planning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickSession(tt.at); got.ID != tt.want {
				t.Errorf("PickSession(%v) = %s, want %s", tt.at, got.ID, tt.want)
			}
		})
	}
}

func TestNextSession(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("always schedules in the future", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
		for i := 0; i < 50; i++ {
			_, at := NextSession(now, rng)
			if !at.After(now) {
				t.Fatalf("scheduled session at %v, not after %v", at, now)
			}
		}
	})

	t.Run("picks the morning window before a weekday open", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
		for i := 0; i < 50; i++ {
			session, at := NextSession(now, rng)
			if session.ID != "morning_coffee" {
				t.Fatalf("expected morning_coffee, got %s", session.ID)
			}
			if at.Day() != now.Day() || at.Hour() < 9 || at.Hour() >= 11 {
				t.Fatalf("expected same-day slot in 9-11, got %v", at)
			}
		}
	})

	t.Run("never schedules weekday-only sessions on weekends", func(t *testing.T) {
		now := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC) // Saturday
		for i := 0; i < 100; i++ {
			session, at := NextSession(now, rng)
			if isWeekend(at) && session.WeekdaysOnly {
				t.Fatalf("scheduled %s on %v", session.ID, at.Weekday())
			}
		}
	})

	t.Run("weekend planning only lands on weekends", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC) // Monday
		for i := 0; i < 100; i++ {
			session, at := NextSession(now, rng)
			if session.ID == "weekend_planning" && !isWeekend(at) {
				t.Fatalf("weekend planning scheduled for %v", at.Weekday())
			}
		}
	})

	t.Run("slot falls inside the session window", func(t *testing.T) {
		now := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
		for i := 0; i < 100; i++ {
			session, at := NextSession(now, rng)
			if at.Hour() < session.StartHour || at.Hour() >= session.EndHour {
				t.Fatalf("%s scheduled at hour %d outside window %d-%d",
					session.ID, at.Hour(), session.StartHour, session.EndHour)
			}
		}
	})
}

func TestSessionByID(t *testing.T) {
	if got := sessionByID("evening_research"); got.Name != "Evening Research" {
		t.Errorf("expected Evening Research, got %s", got.Name)
	}
	if got := sessionByID("nope"); got.ID != "morning_coffee" {
		t.Errorf("expected fallback to morning_coffee, got %s", got.ID)
	}
}
