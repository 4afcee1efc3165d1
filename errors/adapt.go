package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vortex-fintech/go-mask/textutil"
)

// ToErrorResponse converts any error reaching the HTTP layer. ErrorResponse
// values pass through, context errors keep their meaning, and everything else
// becomes Internal.
func ToErrorResponse(err error) ErrorResponse {
	if err == nil {
		return Internal().WithReason("unexpected_error")
	}

	var e ErrorResponse
	if errors.As(err, &e) {
		return e
	}
	var ep *ErrorResponse
	if errors.As(err, &ep) && ep != nil {
		return *ep
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Canceled()
	case errors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded()
	}
	return Internal().WithReason("unexpected_error")
}

// FromDecode classifies a failure of decoding a JSON request body.
func FromDecode(err error) ErrorResponse {
	var (
		tooLarge *http.MaxBytesError
		syntax   *json.SyntaxError
		typ      *json.UnmarshalTypeError
	)
	switch {
	case err == nil:
		return MalformedBody("")
	case errors.As(err, &tooLarge):
		return BodyTooLarge(tooLarge.Limit)
	case errors.Is(err, io.EOF):
		return MalformedBody("empty body")
	case errors.As(err, &syntax):
		return MalformedBody(fmt.Sprintf("syntax error at offset %d", syntax.Offset))
	case errors.As(err, &typ):
		return MalformedBody(fmt.Sprintf("field %q must be %s", typ.Field, typ.Type))
	default:
		return MalformedBody(err.Error())
	}
}

// FromInput maps a textutil.CheckInput failure on field. maxRunes is the
// limit reported for ErrTooLong.
func FromInput(field string, err error, maxRunes int) ErrorResponse {
	switch {
	case errors.Is(err, textutil.ErrTooLong):
		return ValueTooLong(field, maxRunes)
	case errors.Is(err, textutil.ErrInvalidUTF8):
		return InvalidText(field, "invalid_utf8")
	case errors.Is(err, textutil.ErrEmpty):
		return InvalidText(field, "required")
	default:
		return ToErrorResponse(err)
	}
}
