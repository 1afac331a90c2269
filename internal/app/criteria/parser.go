// Package criteria translates human-readable achievement criteria text
// into structured predicate descriptors. The catalog's criteria are
// free text and are re-parsed on every evaluation pass; nothing here is
// cached or persisted.
//
// Parsing tries an ordered pattern list and the first match wins. The
// list is ordered most-specific-first, but that ordering is a
// convention, not a verified property — new patterns must be slotted
// with care.
package criteria

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/planka-fit/planka/internal/domain"
)

// ambiguousIDs short-circuits known-unparseable achievements to a
// needs-review result before any pattern runs. These stay permanently
// unearnable until a developer resolves the ambiguity.
var ambiguousIDs = map[string]string{
	"perfectionist":  "criteria says 'without breaks' but sessions carry no break data",
	"personal_best":  "no recorded baseline to beat — undefined personal best",
	"summer_program": "references a seasonal program; no program system exists",
	"sync_session":   "requires friend-activity visibility which is not tracked",
}

type pattern struct {
	re    *regexp.Regexp
	build func(m []string) domain.ParsedCriteria
}

// patterns is tried in order against lowercased criteria text.
var patterns = []pattern{
	{
		re: regexp.MustCompile(`(\d+)\s+days?\s+(?:a|per)\s+week\s+for\s+(\d+)\s+weeks?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaConsistency, PerWeek: atoi(m[1]), Weeks: atoi(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`(one|two|three|\d+)\s+years?\s+after\s+joining`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaAccountAge, Years: wordNum(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`accumulate\s+(\d+)\s+minutes?\s+of\s+(.+)`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaCategoryDuration, Minutes: atoi(m[1]), Category: trimCategory(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`mastery\s+level\s+(\d+)\s+in\s+(.+)`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaMastery, Level: atoi(m[1]), Category: trimCategory(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`(\d+)-day\s+(.+?)\s+streak`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaCategoryStreak, Days: atoi(m[1]), Category: trimCategory(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`(\d+)[- ]day\s+streak`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaStreak, Days: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`reach\s+level\s+(\d+)\s+and\s+complete\s+(\d+)\s+sessions?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaLevelGate, Level: atoi(m[1]), Count: atoi(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`(\d+)\s+sessions?\s+before\s+(\d+)\s*(am|pm)`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaTimeOfDay, Count: atoi(m[1]), Before: clockHour(m[2], m[3]), After: -1}
		},
	},
	{
		re: regexp.MustCompile(`(\d+)\s+sessions?\s+after\s+(\d+)\s*(am|pm)`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaTimeOfDay, Count: atoi(m[1]), After: clockHour(m[2], m[3]), Before: -1}
		},
	},
	{
		re: regexp.MustCompile(`session\s*(?:<=|under|at\s+most|within)\s*(\d+)\s+seconds?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaDurationMax, Seconds: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`(?:>=|at\s+least)\s*(\d+)\s+seconds?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaDurationMin, Seconds: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`leap\s+day`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSpecialDate, Date: domain.DateLeapDay}
		},
	},
	{
		re: regexp.MustCompile(`friday\s+the\s+13th`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSpecialDate, Date: domain.DateFriday13}
		},
	},
	{
		re: regexp.MustCompile(`eclipse`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSpecialDate, Date: domain.DateEclipse}
		},
	},
	{
		re: regexp.MustCompile(`palindrome\s+date`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSpecialDate, Date: domain.DatePalindrome}
		},
	},
	{
		re: regexp.MustCompile(`send\s+(\d+)\s+cheers?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSocial, Social: domain.SocialCheersSent, Count: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`receive\s+(\d+)\s+cheers?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSocial, Social: domain.SocialCheersReceived, Count: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`(?:add\s+)?(\d+)\s+friends?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSocial, Social: domain.SocialFriends, Count: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`momentum\s+score\s+of\s+(\d+)`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaMomentum, Score: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`sessions?\s+in\s+(\d+)\s+different\s+exercises?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaCategorySpread, Spread: atoi(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`complete\s+(\d+)\s+([a-z][a-z ]+?)\s+sessions?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaCategoryCount, Count: atoi(m[1]), Category: trimCategory(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`complete\s+your\s+first\s+session`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSessionCount, Count: 1}
		},
	},
	{
		re: regexp.MustCompile(`complete\s+(\d+)\s+sessions?`),
		build: func(m []string) domain.ParsedCriteria {
			return domain.ParsedCriteria{Type: domain.CriteriaSessionCount, Count: atoi(m[1])}
		},
	},
}

// Parse translates a catalog entry's criteria text into a structured
// descriptor. It is a pure function and never fails: unmatched text
// yields an unknown/needs-review result rather than an error.
func Parse(criteriaText, achievementID, achievementName string) domain.ParsedCriteria {
	if reason, ok := ambiguousIDs[achievementID]; ok {
		return domain.ParsedCriteria{
			Type:         domain.CriteriaUnknown,
			Raw:          criteriaText,
			NeedsReview:  true,
			ReviewReason: reason,
		}
	}

	text := strings.ToLower(strings.TrimSpace(criteriaText))
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return p.build(m)
		}
	}

	return domain.ParsedCriteria{
		Type:        domain.CriteriaUnknown,
		Raw:         criteriaText,
		NeedsReview: true,
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// wordNum handles the spelled-out counts that appear in criteria text.
func wordNum(s string) int {
	switch s {
	case "one":
		return 1
	case "two":
		return 2
	case "three":
		return 3
	}
	return atoi(s)
}

// clockHour converts "7"+"am" / "10"+"pm" to a 24h hour.
func clockHour(h, meridiem string) int {
	hour := atoi(h)
	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	return hour
}

// trimCategory strips trailing filler from a captured category phrase.
func trimCategory(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " sessions")
	s = strings.TrimSuffix(s, " session")
	return strings.TrimSpace(s)
}
