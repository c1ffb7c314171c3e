package domain

import "fmt"

// Kind tags the error taxonomy of spec.md §7. Unlike the teacher's flat
// sentinel errors.New values (internal/domain/errors.go in the teacher),
// this domain's five error kinds are structurally different and consumed
// differently by callers (fatal vs. aggregated-as-finding), so each Error
// carries its Kind at runtime instead of relying on callers to pattern-match
// message text or maintain a sentinel per case.
type Kind string

const (
	KindRosterValidation Kind = "roster_validation"
	KindDiagnostic       Kind = "sleep_generation_diagnostic"
	KindComplianceFinding Kind = "compliance_finding"
	KindCancelled        Kind = "cancelled"
	KindNumericInstability Kind = "numeric_instability"
)

// Error is the structured error type returned by this package. Fatal kinds
// (RosterValidation, NumericInstability) stop the analysis; Cancelled is
// returned together with the partial analysis built so far. Sleep-generation
// diagnostics and compliance findings are recorded in MonthlyAnalysis (as
// Diagnostic and ComplianceFinding values) and never returned as the
// top-level error.
type Error struct {
	Kind    Kind
	Message string
	wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// NewError builds a structured Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a structured Error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: cause}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := err.(*Error)
	return ok && de.Kind == kind
}

// DiagnosticReason is a closed set of reasons a SleepGenerationDiagnostic
// can carry (SPEC_FULL.md §4.10) so callers can switch on it instead of
// parsing free text.
type DiagnosticReason string

const (
	ReasonTruncatedByDutyOverlap DiagnosticReason = "truncated_by_duty_overlap"
	ReasonDroppedShortWindow     DiagnosticReason = "dropped_short_window"
	ReasonDisruptedCircadian     DiagnosticReason = "disrupted_circadian"
	ReasonTightTurnaround        DiagnosticReason = "tight_turnaround"
)

// Diagnostic is a non-fatal SleepGenerationDiagnostic, recorded in
// MonthlyAnalysis.Diagnostics rather than returned as an error (§7).
type Diagnostic struct {
	DutyID  string            `json:"duty_id"`
	Reason  DiagnosticReason  `json:"reason"`
	Message string            `json:"message"`
}
