package security

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/common"
)

func okHandler(t *testing.T, captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			*captured = string(data)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodyLimitAllowsWithinLimit(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 64}.Middleware(okHandler(t, &captured))

	body := `{"grossAmount":100}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/calculate-tax", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, body, captured)
}

func TestBodyLimitRejectsOversized(t *testing.T) {
	handler := BodyLimit{Max: 5}.Middleware(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/calculate-tax", strings.NewReader("excessive"))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	var body common.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, common.CodePayloadTooLarge, body.Code)
	require.NotEmpty(t, body.Error)
}

func TestBodyLimitRejectsDeclaredContentLength(t *testing.T) {
	handler := BodyLimit{Max: 5}.Middleware(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/calculate-tax", strings.NewReader("content"))
	req.ContentLength = 100
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBodyLimitDisabled(t *testing.T) {
	var captured string
	handler := BodyLimit{}.Middleware(okHandler(t, &captured))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("anything goes")))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "anything goes", captured)
}
