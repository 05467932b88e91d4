package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisdoc/polisdoc-backend/pkg/errors"
	"github.com/polisdoc/polisdoc-backend/pkg/httputil"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
)

const secret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return *resp.Error
}

func TestJSONAndRawJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.JSON(rr, http.StatusOK, map[string]string{"status": "healthy"})
	assert.JSONEq(t, `{"success":true,"data":{"status":"healthy"}}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	httputil.RawJSON(rr, http.StatusOK, map[string]interface{}{"success": true, "result": "||"})
	assert.JSONEq(t, `{"success":true,"result":"||"}`, rr.Body.String())
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.Error(rr, errors.Unprocessable("cannot read pdf"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "PDF_CONVERSION_FAILED", body.Code)
	assert.Equal(t, "cannot read pdf", body.Message)

	rr = httptest.NewRecorder()
	httputil.Error(rr, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rr).Code)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		File string `json:"file"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"file":"abc"}`))
	require.NoError(t, httputil.DecodeJSON(req, &v))
	assert.Equal(t, "abc", v.File)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"file":`))
	var appErr *errors.AppError
	require.True(t, errors.As(httputil.DecodeJSON(req, &v), &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)

	rr := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"file":"`+strings.Repeat("a", 100)+`"}`))
	req.Body = http.MaxBytesReader(rr, req.Body, 16)
	require.True(t, errors.As(httputil.DecodeJSON(req, &v), &appErr))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", appErr.Code)
}

func TestValidate(t *testing.T) {
	type request struct {
		File string  `json:"file" validate:"required"`
		Text *string `json:"text" validate:"required"`
	}

	empty := ""
	assert.NoError(t, httputil.Validate(&request{File: "x", Text: &empty}))

	err := httputil.Validate(&request{})
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, map[string]string{
		"file": "this field is required",
		"text": "this field is required",
	}, appErr.Details)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	h.ServeHTTP(rr, req)
	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	log := logger.New("httputil-test", "test")
	h := httputil.Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rr).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	h := httputil.MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, rr).Code)
}

func TestBearerAuth(t *testing.T) {
	log := logger.New("httputil-test", "test")
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "client-42",
		Issuer:    "polisdoc",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantCode    string
		wantSubject string
	}{
		{"valid token", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(secret), valid), http.StatusOK, "", "client-42"},
		{"lowercase scheme", "bearer " + signToken(t, jwt.SigningMethodHS512, []byte(secret), valid), http.StatusOK, "", "client-42"},
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(secret), expired), http.StatusUnauthorized, "TOKEN_EXPIRED", ""},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"wrong issuer", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(secret), otherIssuer), http.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"unsigned", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), http.StatusUnauthorized, "TOKEN_INVALID", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := httputil.BearerAuth(secret, "polisdoc", log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = httputil.GetSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/policies/extract", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantSubject, subject)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
			}
		})
	}
}

func TestBearerAuth_DisabledWithoutSecret(t *testing.T) {
	h := httputil.BearerAuth("", "", logger.New("httputil-test", "test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
