package booking

import "errors"

var (
	// ErrNotEditable is matched by a ValidationError with RuleEditLocked.
	ErrNotEditable = errors.New("booking can no longer be edited")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Rule names the validation check that rejected a request.
type Rule string

const (
	RuleRequired        Rule = "required"
	RuleGuestMinimum    Rule = "guest_minimum"
	RuleTimeOrder       Rule = "time_order"
	RuleAdvanceLead     Rule = "advance_lead"
	RuleOpenDescription Rule = "open_description"
	RuleEventAddress    Rule = "event_address"
	RuleEditLocked      Rule = "edit_locked"
)

// ValidationError is a user-facing rejection of a request.
type ValidationError struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrNotEditable) match edit-locked rejections.
func (e *ValidationError) Is(target error) bool {
	return target == ErrNotEditable && e.Rule == RuleEditLocked
}

func invalid(rule Rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}
