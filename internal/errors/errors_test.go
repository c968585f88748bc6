package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid parameter", ErrInvalidParameter, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"chart not found", ChartNotFoundError("nope"), http.StatusNotFound, "CHART_NOT_FOUND"},
		{"render failed", RenderError("png", assert.AnError), http.StatusInternalServerError, "RENDER_FAILED"},
		{"validation", ErrValidation("width", "must be at least 200"), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestChartNotFoundErrorMessage(t *testing.T) {
	err := ChartNotFoundError("birth-rat")
	assert.Equal(t, `chart "birth-rat" not found`, err.Error())
	assert.Equal(t, "birth-rat", err.Details)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrRateLimitExceeded)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error.ErrorCode)
}

func TestProblemDetailsMarshal(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeChartNotice, "Chart Unavailable", "연도 컬럼을 찾을 수 없습니다.", "/api/charts/tutoring-cost").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	raw, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeChartNotice, got["type"])
	assert.Equal(t, float64(422), got["status"])
	assert.Equal(t, "연도 컬럼을 찾을 수 없습니다.", got["detail"])
	assert.Equal(t, "abc", got["trace_id"])

	// Output is stable across calls
	again, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestProblemDetailsOmitsEmpty(t *testing.T) {
	raw, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "detail")
	assert.NotContains(t, string(raw), "instance")
}
