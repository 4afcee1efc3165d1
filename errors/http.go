package errors

import (
	"encoding/json"
	"net/http"

	"google.golang.org/grpc/codes"
)

const statusClientClosedRequest = 499

// retryAfterSeconds is sent with every 503 so clients back off while maskd
// drains or loads presets.
const retryAfterSeconds = "1"

// HTTPStatus maps the codes this module produces. Anything else is a 500.
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.Canceled:
		return statusClientClosedRequest
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Status is HTTPStatus(e.Code) refined by reason.
func (e ErrorResponse) Status() int {
	if e.Reason == reasonBodyTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	return HTTPStatus(e.Code)
}

// ToHTTP writes e as an uncacheable JSON body.
func (e ErrorResponse) ToHTTP(w http.ResponseWriter) {
	status := e.Status()
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	if status == http.StatusServiceUnavailable {
		h.Set("Retry-After", retryAfterSeconds)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e.wire())
}
