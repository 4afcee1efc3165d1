package errors

import (
	"strconv"

	"google.golang.org/grpc/codes"
)

func InvalidArgument() ErrorResponse {
	return New("Invalid argument", codes.InvalidArgument, nil).WithReason("invalid_argument")
}
func NotFound() ErrorResponse {
	return New("Resource not found", codes.NotFound, nil).WithReason("not_found")
}
func AlreadyExists() ErrorResponse {
	return New("Resource already exists", codes.AlreadyExists, nil).WithReason("already_exists")
}
func OutOfRange() ErrorResponse {
	return New("Value out of range", codes.OutOfRange, nil).WithReason("out_of_range")
}
func Canceled() ErrorResponse {
	return New("Request canceled", codes.Canceled, nil).WithReason("canceled")
}
func DeadlineExceeded() ErrorResponse {
	return New("Deadline exceeded", codes.DeadlineExceeded, nil).WithReason("deadline_exceeded")
}
func Internal() ErrorResponse {
	return New("Internal error", codes.Internal, nil).WithReason("internal")
}
func Unavailable() ErrorResponse {
	return New("Service unavailable", codes.Unavailable, nil).WithReason("unavailable")
}

func ValidationViolations(v []FieldViolation) ErrorResponse {
	return InvalidArgument().WithReason("validation_failed").WithViolations(v)
}

// ToValidation reports a single invalid field.
func ToValidation(field, reason string) ErrorResponse {
	return ValidationViolations([]FieldViolation{{Field: field, Reason: reason}}).
		WithDetail(field, reason)
}

const reasonBodyTooLarge = "body_too_large"

// MalformedBody is returned when a request body cannot be decoded.
func MalformedBody(cause string) ErrorResponse {
	e := InvalidArgument().WithReason("malformed_body").WithMessage("Request body is not valid JSON")
	if cause != "" {
		e = e.WithDetail("cause", cause)
	}
	return e
}

// BodyTooLarge is returned when a request body exceeds limit bytes.
func BodyTooLarge(limit int64) ErrorResponse {
	return OutOfRange().
		WithReason(reasonBodyTooLarge).
		WithMessage("Request body is too large").
		WithDetail("max_bytes", strconv.FormatInt(limit, 10))
}

// InvalidText reports a value that is not acceptable text. cause is the
// violation reason, e.g. "invalid_utf8".
func InvalidText(field, cause string) ErrorResponse {
	return ToValidation(field, cause).
		WithReason("invalid_text").
		WithMessage("Value is not valid text")
}

func UnknownPreset(name string) ErrorResponse {
	return NotFound().WithReason("unknown_preset").WithDetail("preset", name)
}

func DuplicatePreset(name string) ErrorResponse {
	return AlreadyExists().WithReason("duplicate_preset").WithDetail("preset", name)
}

// ValueTooLong reports a field whose rune count exceeds limit.
func ValueTooLong(field string, limit int) ErrorResponse {
	return OutOfRange().
		WithReason("value_too_long").
		WithDetail("field", field).
		WithDetail("max_runes", strconv.Itoa(limit))
}

// BatchTooLarge reports a batch holding more than limit values.
func BatchTooLarge(limit int) ErrorResponse {
	return OutOfRange().
		WithReason("batch_too_large").
		WithDetail("max_values", strconv.Itoa(limit))
}

// AmbiguousPattern is returned when a request names more than one of mask,
// masks and preset.
func AmbiguousPattern() ErrorResponse {
	return InvalidArgument().
		WithReason("ambiguous_pattern").
		WithMessage("Only one of mask, masks or preset may be set")
}
