package ledger

import "fmt"

// Code is a machine-checkable reason for a rejected or failed operation.
type Code string

const (
	CodeAmountNotPositive   Code = "AMOUNT_NOT_POSITIVE"
	CodeNoParticipants      Code = "NO_PARTICIPANTS"
	CodeDuplicateUser       Code = "DUPLICATE_PARTICIPANT"
	CodePayerNotParticipant Code = "PAYER_NOT_PARTICIPANT"
	CodeNotGroupMember      Code = "NOT_GROUP_MEMBER"
	CodeUnknownSplitType    Code = "UNKNOWN_SPLIT_TYPE"
	CodePercentSumMismatch  Code = "PERCENT_SUM_MISMATCH"
	CodeSplitSumMismatch    Code = "SPLIT_SUM_MISMATCH"
	CodeNoShares            Code = "NO_SHARES"
	CodeSelfSettlement      Code = "SELF_SETTLEMENT"
	CodeExceedsOutstanding  Code = "EXCEEDS_OUTSTANDING_BALANCE"
	CodeMissingField        Code = "MISSING_FIELD"
	CodePermissionDenied    Code = "PERMISSION_DENIED"
)

// ValidationError rejects malformed input: non-positive amounts, mismatched
// split sums, self-settlement, overpayment. Surfaced to the caller with its
// reason code; never retried internally.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError with a formatted message.
func Validationf(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown expense, group, user or settlement ID.
type NotFoundError struct {
	Kind string // "expense", "group", "user", "settlement"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError reports that a concurrent or prior mutation invalidated an
// assumption, e.g. editing an expense already covered by a settlement. The
// caller may retry with fresh state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a ConflictError with a formatted message.
func Conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ConsistencyError reports a violated internal invariant (e.g. split sum not
// equal to the expense amount). It indicates ledger corruption: logged,
// surfaced as fatal, never swallowed.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string { return e.Message }

// Consistencyf builds a ConsistencyError with a formatted message.
func Consistencyf(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Message: fmt.Sprintf(format, args...)}
}
