package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "popdash/internal/errors"
	"popdash/internal/shared/testutil"
	api "popdash/pkg/contracts/api/v1"
)

func newValidation(t *testing.T) (*ValidationMiddleware, *apperrors.ErrorHandler) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apperrors.NewErrorHandler(logger, false)
	return NewValidationMiddleware(logger, eh), eh
}

func TestIsChartID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"birth-rate", true},
		{"population-outlook", true},
		{"r2", true},
		{"", false},
		{"Birth-Rate", false},
		{"-birth", false},
		{"birth-", false},
		{"../etc", false},
		{"birth_rate", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsChartID(tt.id))
		})
	}
}

func TestValidateStruct(t *testing.T) {
	v, _ := newValidation(t)

	t.Run("valid refresh", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(&api.RefreshRequest{Charts: []string{"birth-rate", "senior-ratio"}}))
	})

	t.Run("empty refresh", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(&api.RefreshRequest{}))
	})

	t.Run("bad chart id", func(t *testing.T) {
		err := v.ValidateStruct(&api.RefreshRequest{Charts: []string{"../x"}})
		require.Error(t, err)

		var apiErr *apperrors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

		details, ok := apiErr.Details.([]apperrors.ValidationError)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "charts[0]", details[0].Field)
		assert.Contains(t, details[0].Message, "chart id")
	})

	t.Run("image size bounds", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(&api.ImageRequest{}))
		assert.NoError(t, v.ValidateStruct(&api.ImageRequest{Width: 1200, Height: 800}))

		err := v.ValidateStruct(&api.ImageRequest{Width: 50, Height: 9000})
		require.Error(t, err)
		var apiErr *apperrors.APIError
		require.True(t, errors.As(err, &apiErr))
		details := apiErr.Details.([]apperrors.ValidationError)
		require.Len(t, details, 2)
		assert.Equal(t, "width must be at least 200", details[0].Message)
		assert.Equal(t, "height must be at most 4000", details[1].Message)
	})
}

func TestValidateRequest(t *testing.T) {
	v, _ := newValidation(t)

	var body string
	h := v.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid json passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/charts/refresh", strings.NewReader(`{"charts":["birth-rate"]}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"charts":["birth-rate"]}`, body)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/charts/refresh", strings.NewReader(`{"charts":`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "INVALID_JSON", problem["error_code"])
	})

	t.Run("too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/charts/refresh", strings.NewReader(`{}`))
		req.ContentLength = defaultMaxBodySize + 1
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("get skipped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestContentTypeValidator(t *testing.T) {
	_, eh := newValidation(t)
	h := ContentTypeValidator(eh, "application/json")(okHandler())

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{name: "json", contentType: "application/json; charset=utf-8", body: "{}", want: http.StatusOK},
		{name: "empty body without type", want: http.StatusOK},
		{name: "missing type", body: "{}", want: http.StatusBadRequest},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "a=b", want: http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/charts/refresh", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryParamValidator_ParseInt(t *testing.T) {
	_, eh := newValidation(t)
	q := NewQueryParamValidator(eh)

	tests := []struct {
		query  string
		want   int
		wantOK bool
	}{
		{query: "", want: 0, wantOK: true},
		{query: "width=800", want: 800, wantOK: true},
		{query: "width=abc", want: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			rec := httptest.NewRecorder()
			got, ok := q.ParseInt(rec, req, "width")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
