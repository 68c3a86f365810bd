package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/roommate-finder/internal/domain/entity"
)

// choiceTags maps a validation tag to the enumeration it accepts.
var choiceTags = map[string]entity.ChoiceSet{
	"gender":      entity.GenderChoices,
	"degree":      entity.DegreeChoices,
	"diet":        entity.DietChoices,
	"course":      entity.CourseChoices,
	"city":        entity.CityChoices,
	"rooms":       entity.RoomChoices,
	"sleep":       entity.SleepChoices,
	"neat":        entity.NeatChoices,
	"study":       entity.StudyChoices,
	"drug":        entity.DrugChoices,
	"pref_gender": entity.PreferenceGenderChoices,
	"pref_degree": entity.PreferenceDegreeChoices,
	"pref_diet":   entity.PreferenceDietChoices,
	"pref_course": entity.PreferenceCourseChoices,
}

// Init configures the global validator used by Gin's binding.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs the tag name func, the enumeration tags and the aliases on v.
// Field names in errors come from the json tag, falling back to form.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	for tag, set := range choiceTags {
		set := set
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return set.Contains(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("pref_country", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == entity.NoPreference || entity.IsCountryCode(strings.ToUpper(s))
	})
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return entity.IsCountryCode(strings.ToUpper(fl.Field().String()))
	})
	v.RegisterAlias("pwd", "min=8,max=72")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return map[string]string{"query": "invalid number or boolean"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	if errors.Is(err, entity.ErrInvalidChoice) || errors.Is(err, entity.ErrInvalidProfile) {
		field, msg := splitDomainError(err)
		return map[string]string{field: msg}
	}

	return map[string]string{"payload": "invalid payload"}
}

// splitDomainError turns "invalid choice: gender=\"x\"" into ("gender", "invalid choice").
func splitDomainError(err error) (string, string) {
	s := err.Error()
	head, rest, ok := strings.Cut(s, ": ")
	if !ok {
		return "payload", s
	}
	if field, _, ok := strings.Cut(rest, "="); ok && !strings.Contains(field, " ") {
		return field, head
	}
	return "payload", rest
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if set, ok := choiceTags[tag]; ok {
		return "must be one of: " + strings.Join(set.Values(), ", ")
	}

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "boolean":
		return "must be a boolean value"
	case "numeric", "number":
		return "must be numeric"
	case "country", "iso3166_1_alpha2":
		return "must be an ISO 3166-1 alpha-2 country code"
	case "pref_country":
		return "must be " + entity.NoPreference + " or an ISO 3166-1 alpha-2 country code"
	case "pwd":
		return "must be between 8 and 72 characters long"
	case "datetime":
		return "must match datetime format: " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
