package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structural runs the struct tag checks and reports the first failure.
func (s *Service) structural(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	return invalid(RuleRequired, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}

// validateRequest applies the submission rules in order; the first failing
// rule wins. With checkLead false the advance-lead rule is skipped, which is
// how edits that keep their time range are handled.
func (s *Service) validateRequest(req Request, now time.Time, checkLead bool) error {
	if err := s.structural(req); err != nil {
		return err
	}
	if req.GuestCount < s.rules.MinGuests {
		return invalid(RuleGuestMinimum, fmt.Sprintf("A minimum of %d guests is required.", s.rules.MinGuests))
	}
	if !req.EndAt.After(req.StartAt) {
		return invalid(RuleTimeOrder, "End time must be after start time.")
	}
	if checkLead && availability.DaysBetween(now, req.StartAt, s.loc) < s.rules.MinAdvanceDays {
		return invalid(RuleAdvanceLead, fmt.Sprintf("Events must be booked at least %d days in advance.", s.rules.MinAdvanceDays))
	}
	if req.EventType == model.EventTypeOpen && strings.TrimSpace(req.Description) == "" {
		return invalid(RuleOpenDescription, "Description is required for open events.")
	}
	return nil
}

func (s *Service) validateEvent(e model.Event) error {
	if err := s.structural(e); err != nil {
		return err
	}
	if !e.EndAt.After(e.StartAt) {
		return invalid(RuleTimeOrder, "End time must be after start time.")
	}
	if e.NeedsAddress() && (strings.TrimSpace(e.StreetAddress) == "" || strings.TrimSpace(e.TownOrCity) == "") {
		return invalid(RuleEventAddress, "Street address and town or city are required for open and private events.")
	}
	return nil
}
