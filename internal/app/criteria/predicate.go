package criteria

import "github.com/planka-fit/planka/internal/domain"

// Satisfied evaluates a parsed criteria descriptor against a user
// stats snapshot. Needs-review and unknown descriptors are never
// satisfiable — they stay locked until a developer resolves them.
func Satisfied(c domain.ParsedCriteria, s domain.UserStats) bool {
	if c.NeedsReview {
		return false
	}

	switch c.Type {
	case domain.CriteriaSessionCount:
		return s.TotalSessions >= c.Count

	case domain.CriteriaStreak:
		return s.LongestStreak >= c.Days

	case domain.CriteriaDurationMax:
		return s.TotalSessions > 0 && s.ShortestSessionSecs <= c.Seconds

	case domain.CriteriaDurationMin:
		return s.LongestSessionSecs >= c.Seconds

	case domain.CriteriaCategoryCount:
		return s.CategoryCounts[c.Category] >= c.Count

	case domain.CriteriaCategoryStreak:
		return s.CategoryStreaks[c.Category] >= c.Days

	case domain.CriteriaCategoryDuration:
		return s.CategorySeconds[c.Category] >= c.Minutes*60

	case domain.CriteriaTimeOfDay:
		// The parser marks the inactive bound with -1 so that a
		// midnight bound (hour 0) stays distinguishable.
		switch {
		case c.After < 0:
			return s.SessionsBefore(c.Before) >= c.Count
		case c.Before < 0:
			return s.SessionsAtOrAfter(c.After) >= c.Count
		}
		return false

	case domain.CriteriaSpecialDate:
		return s.SpecialDates[c.Date]

	case domain.CriteriaLevelGate:
		return s.Level >= c.Level && s.TotalSessions >= c.Count

	case domain.CriteriaSocial:
		switch c.Social {
		case domain.SocialCheersSent:
			return s.CheersSent >= c.Count
		case domain.SocialCheersReceived:
			return s.CheersReceived >= c.Count
		case domain.SocialFriends:
			return s.Friends >= c.Count
		}
		return false

	case domain.CriteriaMomentum:
		return s.MomentumScore >= c.Score

	case domain.CriteriaCategorySpread:
		return s.DistinctCategories() >= c.Spread

	case domain.CriteriaMastery:
		return s.MasteryLevel(c.Category) >= c.Level

	case domain.CriteriaAccountAge:
		return s.MaxSessionAgeDays >= c.Years*365

	case domain.CriteriaConsistency:
		return s.ConsistentWeeks(c.PerWeek) >= c.Weeks
	}

	return false
}
