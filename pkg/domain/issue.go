package domain

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a field-level problem reported by the form component.
type ValidationIssue struct {
	FieldKey   string   `json:"fieldKey"`
	FieldLabel string   `json:"fieldLabel"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
}

// Issues is a list of validation issues.
type Issues []ValidationIssue

// Count returns the number of issues with severity s.
func (is Issues) Count(s Severity) int {
	n := 0
	for _, i := range is {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Has reports whether at least one issue has severity s.
func (is Issues) Has(s Severity) bool {
	return is.Count(s) > 0
}

// Clone returns a copy of the list.
func (is Issues) Clone() Issues {
	if is == nil {
		return nil
	}
	return append(Issues(nil), is...)
}
