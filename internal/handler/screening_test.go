package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doScreen(t *testing.T, body string) (*httptest.ResponseRecorder, screeningResp) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/screening", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, NewScreeningHandler().Screen(c))

	var out screeningResp
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestScreenEligible(t *testing.T) {
	rec, out := doScreen(t, `{"gender":"male","age":30,"weight_kg":80}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Eligible)
	assert.Equal(t, "LOW", out.OverallRisk)
	assert.Empty(t, out.Risks)
	assert.NotEmpty(t, out.Recommendations)
}

func TestScreenUnderage(t *testing.T) {
	rec, out := doScreen(t, `{"gender":"female","age":17,"weight_kg":60}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, out.Eligible)
	assert.Equal(t, "HIGH", out.OverallRisk)
	require.NotEmpty(t, out.Risks)
}

func TestScreenRequiresAgeAndWeight(t *testing.T) {
	rec, _ := doScreen(t, `{"gender":"male"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenRejectsBadBody(t *testing.T) {
	rec, _ := doScreen(t, `{"age":"thirty"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
