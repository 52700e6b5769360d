package booking

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wolfman30/booking-engine/internal/schedule"
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneNoise       = regexp.MustCompile(`[\s\-()]`)
	phoneCountryCode = regexp.MustCompile(`^\+?51`)
	mobilePattern    = regexp.MustCompile(`^9\d{8}$`)
	namePattern      = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚüÜñÑ\s'-]+$`)
	digitPattern     = regexp.MustCompile(`\d`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Prevalidator checks the syntax of customer data before a booking is
// validated against the schedule.
type Prevalidator struct {
	validate *validator.Validate
	loc      *time.Location
	now      schedule.Clock
}

// NewPrevalidator builds a prevalidator whose "not in the past" check uses
// the calendar date in loc.
func NewPrevalidator(loc *time.Location, now schedule.Clock) *Prevalidator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	p := &Prevalidator{
		validate: validator.New(),
		loc:      loc,
		now:      now,
	}

	p.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	custom := []struct {
		tag string
		fn  validator.Func
	}{
		{"person_name", validatePersonName},
		{"contact", validateContact},
		{"booking_date", p.validateBookingDate},
		{"booking_time", validateBookingTime},
	}
	for _, c := range custom {
		if err := p.validate.RegisterValidation(c.tag, c.fn); err != nil {
			panic(fmt.Sprintf("booking: register %q validator: %v", c.tag, err))
		}
	}
	return p
}

// Check returns (true, "") when req is well formed, otherwise false and a
// description of every failing field.
func (p *Prevalidator) Check(req Request) (bool, string) {
	if err := p.Validate(req); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Validate is Check in error form. Failures are ValidationErrors.
func (p *Prevalidator) Validate(req Request) error {
	trimmed := trim(req)
	if err := p.validate.Struct(&trimmed); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// Normalize trims every field, title-cases the name and canonicalizes the
// contact: emails are lower-cased, phones reduced to their nine digits.
func (p *Prevalidator) Normalize(req Request) Request {
	out := trim(req)
	out.FullName = cases.Title(language.Spanish).String(strings.ToLower(out.FullName))
	if emailPattern.MatchString(out.Contact) {
		out.Contact = strings.ToLower(out.Contact)
	} else if phone, ok := normalizePhone(out.Contact); ok {
		out.Contact = phone
	}
	return out
}

func trim(req Request) Request {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Contact = strings.TrimSpace(req.Contact)
	req.Service = strings.TrimSpace(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Location = strings.TrimSpace(req.Location)
	return req
}

func normalizePhone(s string) (string, bool) {
	phone := phoneNoise.ReplaceAllString(s, "")
	phone = phoneCountryCode.ReplaceAllString(phone, "")
	if !mobilePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}

func validatePersonName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return !digitPattern.MatchString(name) && namePattern.MatchString(name)
}

func validateContact(fl validator.FieldLevel) bool {
	contact := fl.Field().String()
	if emailPattern.MatchString(contact) {
		return true
	}
	_, ok := normalizePhone(contact)
	return ok
}

func validateBookingTime(fl validator.FieldLevel) bool {
	_, err := schedule.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func (p *Prevalidator) validateBookingDate(fl validator.FieldLevel) bool {
	day, err := schedule.ParseDate(fl.Field().String(), p.loc)
	if err != nil {
		return false
	}
	now := schedule.NowIn(p.loc, p.now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
	return !day.Before(today)
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must not be negative", err.Field())
		case "person_name":
			message = "customer_name may contain only letters, spaces, hyphens and apostrophes"
		case "contact":
			message = "customer_contact must be a valid email or a Peruvian mobile number (9XXXXXXXX)"
		case "booking_date":
			message = "date must be YYYY-MM-DD and not in the past"
		case "booking_time":
			message = "time must be HH:MM AM/PM (02:30 PM) or HH:MM (14:30)"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
