package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultProfilePhoto = "default.png"

	maxNameLen     = 100
	maxHometownLen = 100
	maxTextLen     = 500
)

// ErrInvalidProfile wraps field-level problems that are not enumeration misses.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is owned one-to-one by a User. It is provisioned when the user is
// created and is never instantiated independently.
//
// The property-listing fields are kept regardless of HaveProperty.
type Profile struct {
	ID     string
	UserID string

	Name      string
	Bio       string
	BirthDate *time.Time
	Hometown  string

	Gender  string
	Degree  string
	Diet    string
	Course  string
	Country string // ISO 3166-1 alpha-2

	Sleep string
	Neat  string
	Study string
	Drug  string

	Visibility        bool
	IsProfileComplete bool
	ProfilePhoto      string
	EmailConfirmed    bool

	HaveProperty           bool
	City                   string
	GeneralLocationDetails string
	NumberOfRooms          string
	RentPerPerson          int

	PreferenceGender  string
	PreferenceDegree  string
	PreferenceDiet    string
	PreferenceCourse  string
	PreferenceCountry string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile returns the default profile provisioned for a freshly created user.
func NewProfile(userID, photo string) *Profile {
	if photo == "" {
		photo = DefaultProfilePhoto
	}
	return &Profile{
		UserID:            userID,
		Visibility:        true,
		ProfilePhoto:      photo,
		PreferenceGender:  NoPreference,
		PreferenceDegree:  NoPreference,
		PreferenceDiet:    NoPreference,
		PreferenceCourse:  NoPreference,
		PreferenceCountry: NoPreference,
	}
}

// Normalize canonicalises free-form values before validation.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Hometown = strings.TrimSpace(p.Hometown)
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
	pc := strings.TrimSpace(p.PreferenceCountry)
	if pc == "" || strings.EqualFold(pc, NoPreference) {
		p.PreferenceCountry = NoPreference
	} else {
		p.PreferenceCountry = strings.ToUpper(pc)
	}
	for _, f := range []*string{&p.PreferenceGender, &p.PreferenceDegree, &p.PreferenceDiet, &p.PreferenceCourse} {
		if *f == "" {
			*f = NoPreference
		}
	}
}

// IsCountryCode reports whether code is an ISO 3166-1 alpha-2 code.
func IsCountryCode(code string) bool {
	return validate.Var(code, "iso3166_1_alpha2") == nil
}

// Validate checks every enumerated field and length limit.
func (p *Profile) Validate() error {
	checks := []struct {
		field string
		value string
		set   ChoiceSet
		blank bool
	}{
		{"gender", p.Gender, GenderChoices, true},
		{"degree", p.Degree, DegreeChoices, true},
		{"diet", p.Diet, DietChoices, true},
		{"course", p.Course, CourseChoices, true},
		{"sleep", p.Sleep, SleepChoices, true},
		{"neat", p.Neat, NeatChoices, true},
		{"study", p.Study, StudyChoices, true},
		{"drug", p.Drug, DrugChoices, true},
		{"city", p.City, CityChoices, true},
		{"number_of_rooms", p.NumberOfRooms, RoomChoices, true},
		{"preference_gender", p.PreferenceGender, PreferenceGenderChoices, false},
		{"preference_degree", p.PreferenceDegree, PreferenceDegreeChoices, false},
		{"preference_diet", p.PreferenceDiet, PreferenceDietChoices, false},
		{"preference_course", p.PreferenceCourse, PreferenceCourseChoices, false},
	}
	for _, c := range checks {
		if err := CheckChoice(c.field, c.value, c.set, c.blank); err != nil {
			return err
		}
	}
	if p.Country != "" && !IsCountryCode(p.Country) {
		return fmt.Errorf("%w: country=%q", ErrInvalidChoice, p.Country)
	}
	if p.PreferenceCountry != NoPreference && !IsCountryCode(p.PreferenceCountry) {
		return fmt.Errorf("%w: preference_country=%q", ErrInvalidChoice, p.PreferenceCountry)
	}
	switch {
	case utf8.RuneCountInString(p.Name) > maxNameLen:
		return fmt.Errorf("%w: name longer than %d", ErrInvalidProfile, maxNameLen)
	case utf8.RuneCountInString(p.Hometown) > maxHometownLen:
		return fmt.Errorf("%w: hometown longer than %d", ErrInvalidProfile, maxHometownLen)
	case utf8.RuneCountInString(p.Bio) > maxTextLen:
		return fmt.Errorf("%w: bio longer than %d", ErrInvalidProfile, maxTextLen)
	case utf8.RuneCountInString(p.GeneralLocationDetails) > maxTextLen:
		return fmt.Errorf("%w: general_location_details longer than %d", ErrInvalidProfile, maxTextLen)
	case p.RentPerPerson < 0:
		return fmt.Errorf("%w: rent_per_person must not be negative", ErrInvalidProfile)
	}
	return nil
}

// Complete reports whether the core attributes needed for matching are filled in.
func (p *Profile) Complete() bool {
	return p.Name != "" && p.Gender != "" && p.Degree != "" &&
		p.Course != "" && p.Diet != "" && p.Country != ""
}
