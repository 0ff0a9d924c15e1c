package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Skip rules decide whether a particular bucket is skipped. The generator
// treats them as a black box: it only calls EvaluateSkipRule with the
// bucket start date. The bucket ordinal the rules see is:
//
//	daily     -> day of month
//	weekly    -> ISO week number
//	monthly   -> month number
//	quarterly -> quarter number
//	yearly    -> year
//
// Grammar:
//
//	even | odd
//	every <n> [<offset>]
//	mon,tue,... (daily only; skip on the named weekdays)
//	custom <n>[,<n>...]
func EvaluateSkipRule(rule string, p Period, bucketStart ADate) bool {
	rule = strings.TrimSpace(strings.ToLower(rule))
	if rule == "" {
		return false
	}

	ordinal := bucketOrdinal(p, bucketStart)

	switch {
	case rule == "even":
		return ordinal%2 == 0
	case rule == "odd":
		return ordinal%2 == 1
	case strings.HasPrefix(rule, "every "):
		parts := strings.Fields(rule)
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return false
		}
		offset := 0
		if len(parts) > 2 {
			offset, _ = strconv.Atoi(parts[2])
		}
		return (ordinal-offset)%n != 0
	case strings.HasPrefix(rule, "custom "):
		for _, tok := range strings.Split(strings.TrimPrefix(rule, "custom "), ",") {
			if v, err := strconv.Atoi(strings.TrimSpace(tok)); err == nil && v == ordinal {
				return true
			}
		}
		return false
	default:
		if p == PeriodDaily {
			for _, tok := range strings.Split(rule, ",") {
				if wd, ok := weekdayNames[strings.TrimSpace(tok)]; ok && wd == bucketStart.Weekday() {
					return true
				}
			}
		}
		return false
	}
}

// CheckSkipRule validates a rule at habit/chore update time so bad rules
// are rejected before generation ever sees them.
func CheckSkipRule(rule string, p Period) error {
	rule = strings.TrimSpace(strings.ToLower(rule))
	if rule == "" || rule == "even" || rule == "odd" {
		return nil
	}
	if strings.HasPrefix(rule, "every ") {
		parts := strings.Fields(rule)
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("invalid skip rule %q", rule)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid skip rule %q", rule)
		}
		if len(parts) == 3 {
			if _, err := strconv.Atoi(parts[2]); err != nil {
				return fmt.Errorf("invalid skip rule %q", rule)
			}
		}
		return nil
	}
	if strings.HasPrefix(rule, "custom ") {
		for _, tok := range strings.Split(strings.TrimPrefix(rule, "custom "), ",") {
			if _, err := strconv.Atoi(strings.TrimSpace(tok)); err != nil {
				return fmt.Errorf("invalid skip rule %q", rule)
			}
		}
		return nil
	}
	if p == PeriodDaily {
		for _, tok := range strings.Split(rule, ",") {
			if _, ok := weekdayNames[strings.TrimSpace(tok)]; !ok {
				return fmt.Errorf("invalid skip rule %q", rule)
			}
		}
		return nil
	}
	return fmt.Errorf("invalid skip rule %q", rule)
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func bucketOrdinal(p Period, bucketStart ADate) int {
	switch p {
	case PeriodDaily:
		return bucketStart.Day()
	case PeriodWeekly:
		_, week := bucketStart.EndOfDayIn(time.UTC).ISOWeek()
		return week
	case PeriodMonthly:
		return int(bucketStart.Month())
	case PeriodQuarterly:
		return quarterOf(bucketStart.Month())
	case PeriodYearly:
		return bucketStart.Year()
	default:
		return 0
	}
}
