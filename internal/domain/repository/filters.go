package repository

import (
	"fmt"
	"strings"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProfileFilter restricts a profile listing by attribute equality.
// Blank fields and a nil HaveProperty leave that attribute unconstrained.
type ProfileFilter struct {
	Gender       string
	Degree       string
	Course       string
	Diet         string
	Sleep        string
	Neat         string
	Study        string
	Drug         string
	Country      string
	HaveProperty *bool

	VisibleOnly   bool
	ExcludeUserID string

	Limit  int
	Offset int
}

// Normalize canonicalises values in place.
func (f *ProfileFilter) Normalize() {
	f.Country = strings.ToUpper(strings.TrimSpace(f.Country))
}

// Validate rejects values that cannot match any stored choice.
func (f *ProfileFilter) Validate() error {
	checks := []struct {
		field string
		value string
		set   entity.ChoiceSet
	}{
		{"gender", f.Gender, entity.GenderChoices},
		{"degree", f.Degree, entity.DegreeChoices},
		{"course", f.Course, entity.CourseChoices},
		{"diet", f.Diet, entity.DietChoices},
		{"sleep", f.Sleep, entity.SleepChoices},
		{"neat", f.Neat, entity.NeatChoices},
		{"study", f.Study, entity.StudyChoices},
		{"drug", f.Drug, entity.DrugChoices},
	}
	for _, c := range checks {
		if err := entity.CheckChoice(c.field, c.value, c.set, true); err != nil {
			return err
		}
	}
	if f.Country != "" && !entity.IsCountryCode(f.Country) {
		return fmt.Errorf("%w: country=%q", entity.ErrInvalidChoice, f.Country)
	}
	return nil
}

// Matches applies the filter to a single profile. It mirrors the SQL built by
// the postgres repository and is used to re-check results coming from the
// search index.
func (f ProfileFilter) Matches(p *entity.Profile) bool {
	eq := []struct{ want, got string }{
		{f.Gender, p.Gender},
		{f.Degree, p.Degree},
		{f.Course, p.Course},
		{f.Diet, p.Diet},
		{f.Sleep, p.Sleep},
		{f.Neat, p.Neat},
		{f.Study, p.Study},
		{f.Drug, p.Drug},
		{f.Country, p.Country},
	}
	for _, e := range eq {
		if e.want != "" && e.want != e.got {
			return false
		}
	}
	if f.HaveProperty != nil && *f.HaveProperty != p.HaveProperty {
		return false
	}
	if f.VisibleOnly && !p.Visibility {
		return false
	}
	if f.ExcludeUserID != "" && f.ExcludeUserID == p.UserID {
		return false
	}
	return true
}

// Page returns the clamped limit and offset.
func (f ProfileFilter) Page() (limit, offset int) {
	return page(f.Limit, f.Offset)
}

// PostFilter restricts a forum-post listing by author.
type PostFilter struct {
	UserID string
	Limit  int
	Offset int
}

func (f PostFilter) Page() (limit, offset int) {
	return page(f.Limit, f.Offset)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
