package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stayops/service-booking/internal/domain"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError("bad dates"), http.StatusBadRequest},
		{"not found", domain.NewNotFoundError("booking", "abc"), http.StatusNotFound},
		{"conflict", domain.NewConflictError("already booked"), http.StatusConflict},
		{"forbidden", domain.NewAuthorizationError(domain.CapBookingCancel), http.StatusForbidden},
		{"unauthorized", domain.NewUnauthorizedError("invalid token"), http.StatusUnauthorized},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
		{"wrapped domain error", fmt.Errorf("outer: %w", domain.NewConflictError("taken")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			Error(c, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
