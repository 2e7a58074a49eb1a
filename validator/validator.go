package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"ops-dashboard/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	v.RegisterValidation("foldername", validateFolderName)
	v.RegisterValidation("password", validatePassword)
	v.RegisterValidation("priority", enum(func(s string) bool { return models.Priority(s).Valid() }))
	v.RegisterValidation("taskstatus", enum(func(s string) bool { return models.TaskStatus(s).Valid() }))
	v.RegisterValidation("projectstatus", enum(func(s string) bool { return models.ProjectStatus(s).Valid() }))
	v.RegisterValidation("eventtype", enum(func(s string) bool { return models.EventType(s).Valid() }))
	v.RegisterValidation("eventpriority", enum(func(s string) bool { return models.EventPriority(s).Valid() }))
	v.RegisterValidation("eventstatus", enum(func(s string) bool { return models.EventStatus(s).Valid() }))
	v.RegisterValidation("logisticstatus", enum(func(s string) bool { return models.LogisticStatus(s).Valid() }))
	v.RegisterValidation("itemkind", enum(func(s string) bool { return models.ItemKind(s).Valid() }))

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Convert validation errors to our custom format
	var validationErrs ValidationErrors
	for _, err := range fieldErrs {
		validationErrs = append(validationErrs, ValidationError{
			Field:   err.Field(),
			Message: msgForTag(err),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
		})
	}

	return validationErrs
}

var enumValues = map[string]string{
	"priority":       "critical, high, medium, low",
	"taskstatus":     "todo, in-progress, completed",
	"projectstatus":  "running, stalled, critical",
	"eventtype":      "CORE, SYSTEM, RECON, LOGS",
	"eventpriority":  "HIGH, MEDIUM, LOW",
	"eventstatus":    "ACTIVE, PENDING, COMPLETED",
	"logisticstatus": "PENDING, LOCATING, ACQUIRED",
	"itemkind":       "TRAVEL, SUPPLY",
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	if values, ok := enumValues[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", field, values)
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s %s", field, fe.Param(), unit(fe))
	case "max":
		return fmt.Sprintf("%s must be at most %s %s", field, fe.Param(), unit(fe))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color like #00ff9d", field)
	case "foldername":
		return fmt.Sprintf("%s contains invalid characters (only letters, numbers, spaces, and -_.,&() are allowed)", field)
	case "password":
		return fmt.Sprintf("%s must be 8 to 72 characters and contain a letter and a digit", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return "items"
	case reflect.String:
		return "characters"
	}
	return ""
}

// Custom validators

func enum(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}

var folderNamePattern = regexp.MustCompile(`^[\p{L}\p{N}\s\-_.,&()]+$`)

// validateFolderName allows letters (any language), numbers, spaces, and
// specific symbols.
func validateFolderName(fl validator.FieldLevel) bool {
	return folderNamePattern.MatchString(fl.Field().String())
}

// validatePassword enforces bcrypt's 72 byte input limit.
func validatePassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 || len(pw) > 72 {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
