package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/horia141/jupiter-sub011/internal/schedule"
)

type PersonRelationship string

const (
	RelationshipFamily       PersonRelationship = "family"
	RelationshipFriend       PersonRelationship = "friend"
	RelationshipAcquaintance PersonRelationship = "acquaintance"
	RelationshipColleague    PersonRelationship = "colleague"
	RelationshipOther        PersonRelationship = "other"
)

func (r PersonRelationship) IsValid() bool {
	switch r {
	case RelationshipFamily, RelationshipFriend, RelationshipAcquaintance,
		RelationshipColleague, RelationshipOther:
		return true
	default:
		return false
	}
}

func ParseRelationship(input string) (PersonRelationship, error) {
	r := PersonRelationship(strings.TrimSpace(strings.ToLower(input)))
	if !r.IsValid() {
		return "", InputValidationError{Field: "relationship", Msg: input}
	}
	return r, nil
}

// PersonBirthday is a recurring day-of-year.
type PersonBirthday struct {
	Month time.Month
	Day   int
}

// ParseBirthday accepts "15 Mar" style input.
func ParseBirthday(raw string) (PersonBirthday, error) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) != 2 {
		return PersonBirthday{}, InputValidationError{Field: "birthday", Msg: raw}
	}
	var day int
	if _, err := fmt.Sscanf(parts[0], "%d", &day); err != nil || day < 1 || day > 31 {
		return PersonBirthday{}, InputValidationError{Field: "birthday", Msg: raw}
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String()[:3], parts[1]) {
			return PersonBirthday{Month: m, Day: day}, nil
		}
	}
	return PersonBirthday{}, InputValidationError{Field: "birthday", Msg: raw}
}

func (b PersonBirthday) String() string {
	return fmt.Sprintf("%d %s", b.Day, b.Month.String()[:3])
}

// InYear places the birthday in a given year; monotonic over years.
func (b PersonBirthday) InYear(year int) schedule.ADate {
	day := b.Day
	// Feb 29 birthdays fall on Feb 28 outside leap years.
	last := schedule.NewADate(year, b.Month, 1).AddMonths(1).AddDays(-1)
	if day > last.Day() {
		day = last.Day()
	}
	return schedule.NewADate(year, b.Month, day)
}

// Person is someone to keep in touch with, via catch-up tasks or a
// birthday reminder.
type Person struct {
	Entity
	WorkspaceRef  Ref
	Name          EntityName
	Relationship  PersonRelationship
	CatchUpParams *RecurringTaskGenParams
	Birthday      *PersonBirthday
}

func NewPerson(stamp Stamp, workspaceRef Ref, name EntityName, rel PersonRelationship, catchUp *RecurringTaskGenParams, birthday *PersonBirthday) (Person, error) {
	if !rel.IsValid() {
		return Person{}, InputValidationError{Field: "relationship", Msg: string(rel)}
	}
	if catchUp != nil {
		if err := catchUp.Validate(); err != nil {
			return Person{}, err
		}
	}
	return Person{
		Entity:        newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef:  workspaceRef,
		Name:          name,
		Relationship:  rel,
		CatchUpParams: catchUp,
		Birthday:      birthday,
	}, nil
}

type PersonUpdate struct {
	Name          *EntityName
	Relationship  *PersonRelationship
	CatchUpParams *RecurringTaskGenParams
	ClearCatchUp  bool
	Birthday      *PersonBirthday
	ClearBirthday bool
}

func (p Person) Update(stamp Stamp, upd PersonUpdate) (Person, error) {
	if err := p.checkMutable("person"); err != nil {
		return p, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != p.Name {
		p.Name = *upd.Name
		changed = true
	}
	if upd.Relationship != nil && *upd.Relationship != p.Relationship {
		if !upd.Relationship.IsValid() {
			return p, InputValidationError{Field: "relationship", Msg: string(*upd.Relationship)}
		}
		p.Relationship = *upd.Relationship
		changed = true
	}
	if upd.ClearCatchUp {
		if p.CatchUpParams != nil {
			p.CatchUpParams = nil
			changed = true
		}
	} else if upd.CatchUpParams != nil {
		if p.CatchUpParams == nil || !upd.CatchUpParams.Equal(*p.CatchUpParams) {
			if err := upd.CatchUpParams.Validate(); err != nil {
				return p, err
			}
			p.CatchUpParams = upd.CatchUpParams
			changed = true
		}
	}
	if upd.ClearBirthday {
		if p.Birthday != nil {
			p.Birthday = nil
			changed = true
		}
	} else if upd.Birthday != nil {
		if p.Birthday == nil || *upd.Birthday != *p.Birthday {
			p.Birthday = upd.Birthday
			changed = true
		}
	}
	if !changed {
		return p, nil
	}
	p.Entity = p.bump(stamp, "Updated", Frame{})
	return p, nil
}

func (p Person) Archive(stamp Stamp, reason ArchiveReason) Person {
	p.Entity = p.Entity.archive(stamp, reason)
	return p
}

// Vacation blocks non-must-do generation while it lasts.
type Vacation struct {
	Entity
	WorkspaceRef Ref
	Name         EntityName
	StartDate    schedule.ADate
	EndDate      schedule.ADate
}

func NewVacation(stamp Stamp, workspaceRef Ref, name EntityName, start, end schedule.ADate) (Vacation, error) {
	if !end.After(start) {
		return Vacation{}, InputValidationError{Field: "end_date", Msg: "must be after start date"}
	}
	return Vacation{
		Entity:       newEntity(stamp, "Created", Frame{"name": name.String()}),
		WorkspaceRef: workspaceRef,
		Name:         name,
		StartDate:    start,
		EndDate:      end,
	}, nil
}

type VacationUpdate struct {
	Name      *EntityName
	StartDate *schedule.ADate
	EndDate   *schedule.ADate
}

func (v Vacation) Update(stamp Stamp, upd VacationUpdate) (Vacation, error) {
	if err := v.checkMutable("vacation"); err != nil {
		return v, err
	}
	changed := false
	if upd.Name != nil && *upd.Name != v.Name {
		v.Name = *upd.Name
		changed = true
	}
	if upd.StartDate != nil && !upd.StartDate.Equal(v.StartDate) {
		v.StartDate = *upd.StartDate
		changed = true
	}
	if upd.EndDate != nil && !upd.EndDate.Equal(v.EndDate) {
		v.EndDate = *upd.EndDate
		changed = true
	}
	if changed && !v.EndDate.After(v.StartDate) {
		return v, InputValidationError{Field: "end_date", Msg: "must be after start date"}
	}
	if !changed {
		return v, nil
	}
	v.Entity = v.bump(stamp, "Updated", Frame{})
	return v, nil
}

func (v Vacation) Archive(stamp Stamp, reason ArchiveReason) Vacation {
	v.Entity = v.Entity.archive(stamp, reason)
	return v
}

// Covers reports whether the vacation intersects [start, end].
func (v Vacation) Covers(start, end schedule.ADate) bool {
	return schedule.Overlaps(start, end, v.StartDate, v.EndDate)
}
