package domain

import (
	"sort"
	"strings"
	"time"
)

// EntityName is a non-empty, trimmed display name.
type EntityName string

func NewEntityName(raw string) (EntityName, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", InputValidationError{Field: "name", Msg: "must not be empty"}
	}
	return EntityName(s), nil
}

func (n EntityName) String() string { return string(n) }

// EmailAddress is lowercase-normalized and globally unique per user.
type EmailAddress string

func NewEmailAddress(raw string) (EmailAddress, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", InputValidationError{Field: "email", Msg: raw}
	}
	return EmailAddress(s), nil
}

func (e EmailAddress) String() string { return string(e) }

// Timezone is an IANA timezone name, validated at construction.
type Timezone string

const TimezoneUTC Timezone = "UTC"

func NewTimezone(raw string) (Timezone, error) {
	s := strings.TrimSpace(raw)
	if _, err := time.LoadLocation(s); err != nil || s == "" {
		return "", InputValidationError{Field: "timezone", Msg: raw}
	}
	return Timezone(s), nil
}

func (t Timezone) String() string { return string(t) }

// Feature gates a domain area per user or workspace.
type Feature string

const (
	FeatureInboxTasks   Feature = "inbox-tasks"
	FeatureHabits       Feature = "habits"
	FeatureChores       Feature = "chores"
	FeatureBigPlans     Feature = "big-plans"
	FeatureMetrics      Feature = "metrics"
	FeaturePersons      Feature = "persons"
	FeatureVacations    Feature = "vacations"
	FeatureJournals     Feature = "journals"
	FeatureTimePlans    Feature = "time-plans"
	FeatureWorkingMem   Feature = "working-mem"
	FeatureSchedules    Feature = "schedules"
	FeatureSlackTasks   Feature = "slack-tasks"
	FeatureEmailTasks   Feature = "email-tasks"
	FeatureGamification Feature = "gamification"
)

var allFeatures = []Feature{
	FeatureInboxTasks, FeatureHabits, FeatureChores, FeatureBigPlans,
	FeatureMetrics, FeaturePersons, FeatureVacations, FeatureJournals,
	FeatureTimePlans, FeatureWorkingMem, FeatureSchedules,
	FeatureSlackTasks, FeatureEmailTasks, FeatureGamification,
}

func (f Feature) IsValid() bool {
	for _, known := range allFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// FeatureFlags is the set of enabled features.
type FeatureFlags map[Feature]bool

// DefaultFeatureFlags enables the everyday areas; the exotic surfaces
// start off.
func DefaultFeatureFlags() FeatureFlags {
	flags := FeatureFlags{}
	for _, f := range allFeatures {
		flags[f] = true
	}
	flags[FeatureSlackTasks] = false
	flags[FeatureEmailTasks] = false
	flags[FeatureSchedules] = false
	return flags
}

func (ff FeatureFlags) IsEnabled(f Feature) bool {
	return ff[f]
}

func (ff FeatureFlags) With(f Feature, enabled bool) FeatureFlags {
	out := FeatureFlags{}
	for k, v := range ff {
		out[k] = v
	}
	out[f] = enabled
	return out
}

// Enabled lists enabled features in stable order.
func (ff FeatureFlags) Enabled() []Feature {
	var out []Feature
	for f, on := range ff {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ff FeatureFlags) Equal(other FeatureFlags) bool {
	if len(ff) != len(other) {
		return false
	}
	for k, v := range ff {
		if other[k] != v {
			return false
		}
	}
	return true
}
