package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/vortex-fintech/go-mask/errors"
	"github.com/vortex-fintech/go-mask/logger"
	"github.com/vortex-fintech/go-mask/metrics"
	"github.com/vortex-fintech/go-mask/preset"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type errorBody struct {
	Code    string            `json:"code"`
	Reason  string            `json:"reason"`
	Domain  string            `json:"domain"`
	Details map[string]string `json:"details"`
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return New(opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestFormat(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"single mask", `{"value":"1187654321","mask":"(##) ####-####"}`, "(11) 8765-4321"},
		{"raw output", `{"value":"123.456.789-01","mask":"###.###.###-##","masked":false}`, "12345678901"},
		{"dynamic set", `{"value":"11987654321","masks":["(##) ####-####","(##) #####-####"]}`, "(11) 98765-4321"},
		{"empty dynamic set", `{"value":"123","masks":[]}`, ""},
		{"preset", `{"value":"12345678901","preset":"CPF"}`, "123.456.789-01"},
		{"preset raw override", `{"value":"01310-100","preset":"cep","masked":false}`, "01310100"},
		{"no pattern echoes value", `{"value":"abc 123"}`, "abc 123"},
		{"normalize full-width digits", `{"value":"１２３４５６７８９０１","preset":"cpf","normalize":true}`, "123.456.789-01"},
		{"escape literal", `{"value":"ff00aa","mask":"!#XXXXXX"}`, "#ff00aa"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := do(t, srv, http.MethodPost, "/v1/format", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, decode[FormatResponse](t, rr).Result)
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{MaxValueRunes: 8})

	tests := []struct {
		name   string
		body   string
		status int
		reason string
	}{
		{"empty body", ``, http.StatusBadRequest, "malformed_body"},
		{"malformed json", `{"value":`, http.StatusBadRequest, "malformed_body"},
		{"wrong type", `{"value":1}`, http.StatusBadRequest, "malformed_body"},
		{"unknown field", `{"value":"1","maks":"#"}`, http.StatusBadRequest, "malformed_body"},
		{"trailing data", `{"value":"1"} {}`, http.StatusBadRequest, "malformed_body"},
		{"dangling escape", `{"value":"1","mask":"##!"}`, http.StatusBadRequest, "validation_failed"},
		{"ambiguous", `{"value":"1","mask":"#","preset":"cpf"}`, http.StatusBadRequest, "ambiguous_pattern"},
		{"unknown preset", `{"value":"1","preset":"nope"}`, http.StatusNotFound, "unknown_preset"},
		{"too long", `{"value":"123456789","mask":"#"}`, http.StatusBadRequest, "value_too_long"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := do(t, srv, http.MethodPost, "/v1/format", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decode[errorBody](t, rr)
			assert.Equal(t, tt.reason, body.Reason)
			assert.Equal(t, "mask", body.Domain)
		})
	}
}

func TestFormat_TooLongReportsLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{MaxValueRunes: 3})
	rr := do(t, srv, http.MethodPost, "/v1/format/batch", `{"values":["12","1234"],"mask":"##"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, "OutOfRange", body.Code)
	assert.Equal(t, "values[1]", body.Details["field"])
	assert.Equal(t, "3", body.Details["max_runes"])
}

func TestFormat_BodyTooLarge(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	body := `{"value":"` + strings.Repeat("1", maxBodyBytes) + `"}`
	rr := do(t, srv, http.MethodPost, FormatURL, body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	eb := decode[errorBody](t, rr)
	assert.Equal(t, "body_too_large", eb.Reason)
	assert.Equal(t, "8388608", eb.Details["max_bytes"])
}

func TestCheckValue(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{MaxValueRunes: 4})

	tests := []struct {
		name      string
		value     string
		reason    apperrors.Reason
		violation string
	}{
		{name: "within limit", value: "1234"},
		{name: "empty allowed", value: ""},
		{name: "too long", value: "12345", reason: "value_too_long"},
		{name: "invalid utf8", value: string([]byte{'1', 0xff}), reason: "invalid_text", violation: "invalid_utf8"},
		{name: "invalid utf8 over limit", value: "123456" + string([]byte{0xff}), reason: "invalid_text", violation: "invalid_utf8"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := srv.checkValue("values[1]", tt.value)
			if tt.reason == "" {
				require.NoError(t, err)
				return
			}
			var e apperrors.ErrorResponse
			require.True(t, stderrors.As(err, &e), "got %v", err)
			assert.Equal(t, tt.reason, e.Reason)
			assert.Equal(t, http.StatusBadRequest, e.Status())
			if tt.violation == "" {
				assert.Equal(t, "values[1]", e.Details["field"])
				assert.Equal(t, "4", e.Details["max_runes"])
				return
			}
			require.Len(t, e.Violations, 1)
			assert.Equal(t, "values[1]", e.Violations[0].Field)
			assert.Equal(t, tt.violation, e.Violations[0].Reason)
		})
	}
}

func TestFormat_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	rr := do(t, srv, http.MethodGet, "/v1/format", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBatch(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})
	rr := do(t, srv, http.MethodPost, "/v1/format/batch",
		`{"values":["1187654321","11987654321",""],"preset":"phone-br"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"(11) 8765-4321", "(11) 98765-4321", ""}, decode[BatchResponse](t, rr).Results)
}

func TestBatch_Limits(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{MaxBatch: 2})

	rr := do(t, srv, http.MethodPost, "/v1/format/batch", `{"values":["1","2","3"],"mask":"#"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "batch_too_large", decode[errorBody](t, rr).Reason)

	rr = do(t, srv, http.MethodPost, "/v1/format/batch", `{"mask":"#"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_failed", decode[errorBody](t, rr).Reason)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	reg := preset.NewRegistry()
	require.NoError(t, reg.Register(
		preset.Preset{Name: "zip", Masks: []string{"#####"}},
		preset.Preset{Name: "cpf", Masks: []string{"###.###.###-##"}, Description: "individual"},
	))
	srv := newTestServer(t, Options{Registry: reg})

	rr := do(t, srv, http.MethodGet, "/v1/presets", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[PresetsResponse](t, rr).Presets
	require.Len(t, got, 2)
	assert.Equal(t, "cpf", got[0].Name)
	assert.Equal(t, "individual", got[0].Description)
	assert.Equal(t, "zip", got[1].Name)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{})

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		rr := do(t, srv, http.MethodGet, "/v1/presets", "")
		id, err := uuid.Parse(rr.Header().Get(HeaderRequestID))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
	})

	t.Run("propagated", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/v1/presets", nil)
		req.Header.Set(HeaderRequestID, "req-42")
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		assert.Equal(t, "req-42", rr.Header().Get(HeaderRequestID))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/v1/presets", nil)
		req.Header.Set(HeaderRequestID, "has space")
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		assert.NotEqual(t, "has space", rr.Header().Get(HeaderRequestID))
		assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
	})
}

func TestLogging_RedactsValues(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	srv := newTestServer(t, Options{Logger: logger.Wrap(zap.New(core))})

	req := httptest.NewRequest(http.MethodPost, "/v1/format",
		bytes.NewBufferString(`{"value":"11987654321","preset":"phone-br"}`))
	req.Header.Set(HeaderRequestID, "req-7")
	srv.ServeHTTP(httptest.NewRecorder(), req)

	formatted := logs.FilterMessage("value formatted").All()
	require.Len(t, formatted, 1)
	fields := formatted[0].ContextMap()
	assert.Equal(t, "(**) *****-4321", fields["value"])
	assert.Equal(t, "preset", fields["kind"])
	assert.Equal(t, "req-7", fields["request_id"])

	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "98765", "raw value leaked into %q", e.Message)
			}
		}
	}

	served := logs.FilterMessage("request served").All()
	require.Len(t, served, 1)
	assert.Equal(t, "format", served[0].ContextMap()["route"])
	assert.EqualValues(t, http.StatusOK, served[0].ContextMap()["status"])
}

func TestLogging_SkipsValuesBelowDebug(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	srv := newTestServer(t, Options{Logger: logger.Wrap(zap.New(core))})

	rr := do(t, srv, http.MethodPost, FormatBatchURL,
		`{"values":["11987654321","1187654321"],"preset":"phone-br"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Zero(t, logs.FilterMessage("value formatted").Len())
	assert.Equal(t, 1, logs.FilterMessage("request served").Len())
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	fm, err := metrics.NewFormatMetrics(reg, "maskd")
	require.NoError(t, err)
	srv := newTestServer(t, Options{Metrics: fm})

	do(t, srv, http.MethodPost, "/v1/format", `{"value":"12","mask":"#-#"}`)
	do(t, srv, http.MethodPost, "/v1/format", `{"value":"12","preset":"missing"}`)
	do(t, srv, http.MethodPost, "/v1/format/batch", `{"values":["1","2"],"mask":"#","masked":false}`)

	n, err := testutil.GatherAndCount(reg, "maskd_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n) // format/200, format/404, format_batch/200

	n, err = testutil.GatherAndCount(reg, "maskd_format_values_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // single/masked, single/raw
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	srv := newTestServer(t, Options{Logger: logger.Wrap(zap.New(core))})
	srv.router.GET("/panic", func(*gin.Context) { panic("boom") })

	rr := do(t, srv, http.MethodGet, "/panic", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal", decode[errorBody](t, rr).Reason)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
