package agent

import (
	"math/rand"
	"time"
)

// Session is one of the agent's daily check-in windows. Instead of a fixed
// timer the agent follows a human rhythm: a near-guaranteed morning look, an
// often-skipped midday glance, a review before close, optional evening
// research and weekend planning.
type Session struct {
	ID           string
	Name         string
	StartHour    int
	EndHour      int
	WeekdaysOnly bool
	SkipChance   float64
	Flavor       string
}

// Sessions in chronological order of their windows.
var Sessions = []Session{
	{
		ID:         "morning_coffee",
		Name:       "Morning Coffee",
		StartHour:  9,
		EndHour:    11,
		SkipChance: 0.05,
		Flavor:     "You're having your morning coffee and checking how the market opened. What's the vibe today? Quick scan, anything jump out?",
	},
	{
		ID:           "midday_glance",
		Name:         "Midday Glance",
		StartHour:    12,
		EndHour:      14,
		WeekdaysOnly: true,
		SkipChance:   0.40,
		Flavor:       "Quick midday check. Anything moved significantly since this morning? Keep it brief unless something big is happening.",
	},
	{
		ID:           "afternoon_review",
		Name:         "Afternoon Review",
		StartHour:    15,
		EndHour:      17,
		WeekdaysOnly: true,
		SkipChance:   0.20,
		Flavor:       "Market's wrapping up for the day. How did your positions do? Any end-of-day moves to consider? Think about what happened today.",
	},
	{
		ID:         "evening_research",
		Name:       "Evening Research",
		StartHour:  19,
		EndHour:    22,
		SkipChance: 0.50,
		Flavor:     "It's evening, time to do some deeper research if anything caught your eye today. Read into companies, sectors, or trends. No rush, think carefully. You can also write down any lessons or strategy notes to remember.",
	},
	{
		ID:         "weekend_planning",
		Name:       "Weekend Planning",
		StartHour:  10,
		EndHour:    20,
		SkipChance: 0.30,
		Flavor:     "It's the weekend. Good time to step back and think big picture. Review your portfolio strategy, research companies you've been curious about, plan for next week. No trading pressure.",
	},
}

// sessionByID returns the named session, falling back to morning coffee.
func sessionByID(id string) Session {
	for _, session := range Sessions {
		if session.ID == id {
			return session
		}
	}
	return Sessions[0]
}

// runsOn reports whether the session is scheduled on the given day.
func (s Session) runsOn(day time.Time) bool {
	weekend := isWeekend(day)
	if s.ID == "weekend_planning" {
		return weekend
	}
	if s.WeekdaysOnly && weekend {
		return false
	}
	return true
}

// PickSession chooses the most natural session for the current moment, used
// for the first cycle after startup and for manual triggers.
func PickSession(now time.Time) Session {
	if isWeekend(now) {
		return sessionByID("weekend_planning")
	}

	switch hour := now.Hour(); {
	case hour < 11:
		return sessionByID("morning_coffee")
	case hour < 14:
		return sessionByID("midday_glance")
	case hour < 17:
		return sessionByID("afternoon_review")
	default:
		return sessionByID("evening_research")
	}
}

// NextSession schedules the next check-in: the earliest upcoming session
// window within the next two days, at a random minute inside the window so
// the agent never checks in on the dot. Falls back to three hours out when
// nothing qualifies.
func NextSession(now time.Time, rng *rand.Rand) (Session, time.Time) {
	var (
		best     Session
		bestTime time.Time
	)

	for daysAhead := 0; daysAhead < 3; daysAhead++ {
		day := now.AddDate(0, 0, daysAhead)

		for _, session := range Sessions {
			if !session.runsOn(day) {
				continue
			}

			hour := session.StartHour + rng.Intn(session.EndHour-session.StartHour)
			minute := rng.Intn(60)
			at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())

			if !at.After(now) {
				continue
			}
			if bestTime.IsZero() || at.Before(bestTime) {
				best = session
				bestTime = at
			}
		}
	}

	if bestTime.IsZero() {
		return sessionByID("morning_coffee"), now.Add(3 * time.Hour)
	}
	return best, bestTime
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
