package handler_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/internal/policy/extractor"
	"github.com/polisdoc/polisdoc-backend/internal/policy/handler"
	"github.com/polisdoc/polisdoc-backend/internal/policy/pdftext"
	"github.com/polisdoc/polisdoc-backend/internal/policy/service"
	"github.com/polisdoc/polisdoc-backend/pkg/httputil"
	"github.com/polisdoc/polisdoc-backend/pkg/i18n"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
	"github.com/polisdoc/polisdoc-backend/pkg/testutil"
)

const policyText = "Поліс № 123456789\n" +
	"Страхувальник Іваненко Петро Миколайович\n" +
	"РНОКПП 1234567890\n" +
	"Страховий платіж 1 310 грн\n"

type textConverter struct{ text string }

func (c textConverter) Name() string { return "stub" }

func (c textConverter) Text(_ context.Context, pdf []byte) (string, error) {
	if err := pdftext.CheckSignature(pdf); err != nil {
		return "", err
	}
	return c.text, nil
}

type fixedAudit struct{ entries []domain.AuditEntry }

func (a *fixedAudit) Insert(_ context.Context, e *domain.AuditEntry) error {
	a.entries = append([]domain.AuditEntry{*e}, a.entries...)
	return nil
}

func (a *fixedAudit) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > len(a.entries) {
		limit = len(a.entries)
	}
	return a.entries[:limit], nil
}

func newRouter(opts ...service.Option) http.Handler {
	log := logger.New("handler-test", "test")
	engine := extractor.NewEngine(extractor.WithClock(func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	}))
	svc := service.NewService(engine, textConverter{text: policyText}, log, opts...)
	h := handler.NewPolicyHandler(svc, log)

	r := chi.NewRouter()
	r.Use(i18n.Middleware)
	r.Use(httputil.RequestID)
	r.Use(httputil.MaxBodyBytes(1 << 20))
	r.Route("/api/v1", h.Routes)
	return r
}

type errorResponse struct {
	Success bool               `json:"success"`
	Error   httputil.ErrorBody `json:"error"`
}

func TestPolicyHandler_Extract(t *testing.T) {
	router := newRouter()
	body := map[string]string{"file": base64.StdEncoding.EncodeToString([]byte("%PDF-1.7\n"))}

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/policies/extract", body))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp handler.ExtractResponse
	testutil.ParseJSONBody(t, rr, &resp)

	assert.True(t, resp.Success)
	assert.Equal(t, "1310|1234567890|123456789", resp.Result)
	require.NotNil(t, resp.Details.InsuredName)
	assert.Equal(t, "Іваненко Петро Миколайович", *resp.Details.InsuredName)
	require.Len(t, resp.DetailsCollection, 1)
	assert.Equal(t, resp.Details, resp.DetailsCollection[0])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestPolicyHandler_ResponseShape(t *testing.T) {
	router := newRouter()
	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/policies/extract-text", map[string]string{"text": ""}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	assert.JSONEq(t, `{
		"success": true,
		"result": "||",
		"details": {
			"price": null, "ipn": null, "policy_number": null, "insured_name": null,
			"start_date": null, "end_date": null, "car_model": null, "car_number": null,
			"vin_number": null, "variant": "standard"
		},
		"detailsCollection": [{
			"price": null, "ipn": null, "policy_number": null, "insured_name": null,
			"start_date": null, "end_date": null, "car_model": null, "car_number": null,
			"vin_number": null, "variant": "standard"
		}]
	}`, rr.Body.String())
}

func TestPolicyHandler_ExtractText(t *testing.T) {
	router := newRouter()
	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/policies/extract-text", map[string]string{"text": policyText}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp handler.ExtractResponse
	testutil.ParseJSONBody(t, rr, &resp)
	assert.Equal(t, "1310|1234567890|123456789", resp.Result)
}

func TestPolicyHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       interface{}
		locale     string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "malformed json",
			path:       "/api/v1/policies/extract",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "missing file",
			path:       "/api/v1/policies/extract",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "missing text",
			path:       "/api/v1/policies/extract-text",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "invalid base64",
			path:       "/api/v1/policies/extract",
			body:       map[string]string{"file": "%%%"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantMsg:    "file is not valid base64",
		},
		{
			name:       "not a pdf",
			path:       "/api/v1/policies/extract",
			body:       map[string]string{"file": base64.StdEncoding.EncodeToString([]byte("GIF89a"))},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "PDF_CONVERSION_FAILED",
		},
		{
			name:       "body too large",
			path:       "/api/v1/policies/extract-text",
			body:       map[string]string{"text": strings.Repeat("a", 2<<20)},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewHTTPRequest(http.MethodPost, tt.path, tt.body)
			if tt.locale != "" {
				req.Header.Set("Accept-Language", tt.locale)
			}
			rr := testutil.ExecuteRequest(newRouter(), req)
			testutil.AssertStatus(t, rr, tt.wantStatus)

			var resp errorResponse
			testutil.ParseJSONBody(t, rr, &resp)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}
}

func TestPolicyHandler_LocalizedError(t *testing.T) {
	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/policies/extract", map[string]string{"file": "%%%"})
	req.Header.Set("Accept-Language", "uk-UA,uk;q=0.9")

	rr := testutil.ExecuteRequest(newRouter(), req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	var resp errorResponse
	testutil.ParseJSONBody(t, rr, &resp)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	assert.Equal(t, i18n.TWithLocale(i18n.LocaleUkrainian, "errors.invalid_base64"), resp.Error.Message)
	assert.NotEqual(t, "file is not valid base64", resp.Error.Message)
}

func TestPolicyHandler_ListAudit(t *testing.T) {
	audit := &fixedAudit{}
	router := newRouter(service.WithAudit(audit))

	for i := 0; i < 3; i++ {
		req := testutil.WithRequestID(
			testutil.NewHTTPRequest(http.MethodPost, "/api/v1/policies/extract-text", map[string]string{"text": policyText}),
			"req-"+string(rune('a'+i)),
		)
		testutil.AssertStatus(t, testutil.ExecuteRequest(router, req), http.StatusOK)
	}

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/policies/audit?limit=2", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Success bool                `json:"success"`
		Data    []domain.AuditEntry `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "req-c", resp.Data[0].RequestID)
	assert.Equal(t, []string{"price", "ipn", "policy_number", "insured_name"}, resp.Data[0].FieldsExtracted)
	assert.NotContains(t, rr.Body.String(), "Іваненко")
}

func TestPolicyHandler_ListAuditDisabled(t *testing.T) {
	rr := testutil.ExecuteRequest(newRouter(), testutil.NewHTTPRequest(http.MethodGet, "/api/v1/policies/audit", nil))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestPolicyHandler_ListAuditLimit(t *testing.T) {
	router := newRouter(service.WithAudit(&fixedAudit{}))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"no limit", "", http.StatusOK},
		{"numeric limit", "?limit=5", http.StatusOK},
		{"non-numeric limit", "?limit=ten", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/policies/audit"+tt.query, nil))
			testutil.AssertStatus(t, rr, tt.wantStatus)

			if tt.wantStatus == http.StatusBadRequest {
				var resp errorResponse
				testutil.ParseJSONBody(t, rr, &resp)
				assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
				assert.Contains(t, resp.Error.Details, "limit")
			}
		})
	}
}
