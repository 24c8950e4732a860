package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

func TestHealthHandler(t *testing.T) {
	t.Run("liveness always ok", func(t *testing.T) {
		mux := http.NewServeMux()
		NewHealthHandler("lending-test").RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "lending-test")
	})

	t.Run("readiness reflects the checks", func(t *testing.T) {
		mux := http.NewServeMux()
		NewHealthHandler("lending-test", func(context.Context) error {
			return errors.New("database down")
		}).RegisterRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "database down")
	})
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{valueobject.ErrNotFound, http.StatusNotFound},
		{valueobject.ErrInvalidParameters, http.StatusBadRequest},
		{valueobject.ErrInvalidStatusTransition, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}
