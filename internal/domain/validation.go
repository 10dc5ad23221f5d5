package domain

// ValidationResult collects the outcome of domain-rule checks. Transient;
// never persisted.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// OKResult is a passing result.
func OKResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// Fail records a violation and marks the result invalid.
func (r *ValidationResult) Fail(message string) {
	r.Valid = false
	r.Violations = append(r.Violations, message)
}

// Merge folds other into r, preserving violation order.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// AsError converts a failed result into a ValidationFailed domain error, or
// nil when the result passed.
func (r *ValidationResult) AsError() error {
	if r.Valid {
		return nil
	}
	return NewValidationFailed(r.Violations)
}
