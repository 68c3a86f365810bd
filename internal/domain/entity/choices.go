package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidChoice is returned when an enumerated field holds a value outside its choice set.
var ErrInvalidChoice = errors.New("invalid choice")

// NoPreference is the sentinel meaning "any value acceptable" for preference fields.
const NoPreference = "No Preference"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"

	DegreeBachelors = "Bachelors"
	DegreeMasters   = "Masters"
	DegreePhD       = "Phd"

	DietVeg    = "Vegetarian"
	DietNonVeg = "Non Vegetarian"

	CourseCS  = "Computer Science"
	CourseCE  = "Computer Engineering"
	CourseEE  = "Electrical Engineering"
	CourseMEC = "Mechanical Engineering"

	CityRaleigh = "Raleigh"
	CityDurham  = "Durham"
	CityCary    = "Cary"
	CityOther   = "Other"

	Rooms2     = "2"
	Rooms3     = "3"
	Rooms4     = "4"
	Rooms5     = "5"
	Rooms6     = "6"
	RoomsOther = "Other"

	SleepEarlyBird = "Early Bird"
	SleepNightOwl  = "Night Owl"

	NeatVery    = "Very Neat"
	NeatAverage = "Average"
	NeatMessy   = "Messy"

	StudyAtHome  = "At Home"
	StudyLibrary = "Library"

	DrugNever        = "Never"
	DrugOccasionally = "Occasionally"
	DrugRegularly    = "Regularly"
)

// Choice is a stored value together with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChoiceSet is an ordered enumeration.
type ChoiceSet []Choice

// Contains reports whether v is one of the set's stored values.
func (s ChoiceSet) Contains(v string) bool {
	for _, c := range s {
		if c.Value == v {
			return true
		}
	}
	return false
}

// Values returns the stored values in order.
func (s ChoiceSet) Values() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		out = append(out, c.Value)
	}
	return out
}

// WithNoPreference layers the NoPreference sentinel in front of the set.
func (s ChoiceSet) WithNoPreference() ChoiceSet {
	out := make(ChoiceSet, 0, len(s)+1)
	out = append(out, Choice{Value: NoPreference, Label: NoPreference})
	return append(out, s...)
}

var (
	GenderChoices = ChoiceSet{
		{GenderMale, "Male"},
		{GenderFemale, "Female"},
		{GenderOther, "Other"},
	}
	DegreeChoices = ChoiceSet{
		{DegreeBachelors, "Bachelors Program (BS)"},
		{DegreeMasters, "Masters Program (MS)"},
		{DegreePhD, "Doctoral Program (PhD)"},
	}
	DietChoices = ChoiceSet{
		{DietVeg, "Veg"},
		{DietNonVeg, "Non Veg"},
	}
	CourseChoices = ChoiceSet{
		{CourseCS, "Computer Science"},
		{CourseCE, "Computer Eng."},
		{CourseEE, "Electrical Eng."},
		{CourseMEC, "Mechanical Eng."},
	}
	CityChoices = ChoiceSet{
		{CityRaleigh, "Raleigh"},
		{CityDurham, "Durham"},
		{CityCary, "Cary"},
		{CityOther, "Other"},
	}
	RoomChoices = ChoiceSet{
		{Rooms2, "2"},
		{Rooms3, "3"},
		{Rooms4, "4"},
		{Rooms5, "5"},
		{Rooms6, "6"},
		{RoomsOther, "Other"},
	}
	SleepChoices = ChoiceSet{
		{SleepEarlyBird, "Early Bird"},
		{SleepNightOwl, "Night Owl"},
	}
	NeatChoices = ChoiceSet{
		{NeatVery, "Very Neat"},
		{NeatAverage, "Average"},
		{NeatMessy, "Messy"},
	}
	StudyChoices = ChoiceSet{
		{StudyAtHome, "At Home"},
		{StudyLibrary, "Library"},
	}
	DrugChoices = ChoiceSet{
		{DrugNever, "Never"},
		{DrugOccasionally, "Occasionally"},
		{DrugRegularly, "Regularly"},
	}

	PreferenceGenderChoices = GenderChoices.WithNoPreference()
	PreferenceDegreeChoices = DegreeChoices.WithNoPreference()
	PreferenceDietChoices   = DietChoices.WithNoPreference()
	PreferenceCourseChoices = CourseChoices.WithNoPreference()
)

// CheckChoice validates v against set. Blank values pass when allowBlank is set.
func CheckChoice(field, v string, set ChoiceSet, allowBlank bool) error {
	if v == "" && allowBlank {
		return nil
	}
	if !set.Contains(v) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidChoice, field, v)
	}
	return nil
}

// AllChoices exposes every enumeration keyed by field name.
func AllChoices() map[string]ChoiceSet {
	return map[string]ChoiceSet{
		"gender":            GenderChoices,
		"degree":            DegreeChoices,
		"diet":              DietChoices,
		"course":            CourseChoices,
		"city":              CityChoices,
		"number_of_rooms":   RoomChoices,
		"sleep":             SleepChoices,
		"neat":              NeatChoices,
		"study":             StudyChoices,
		"drug":              DrugChoices,
		"preference_gender": PreferenceGenderChoices,
		"preference_degree": PreferenceDegreeChoices,
		"preference_diet":   PreferenceDietChoices,
		"preference_course": PreferenceCourseChoices,
	}
}
