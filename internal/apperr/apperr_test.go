package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid token", fmt.Errorf("verify: %w", ErrInvalidToken), http.StatusForbidden},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"store", ErrStore, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestFromGorm(t *testing.T) {
	assert.NoError(t, FromGorm(nil, "op"))
	assert.ErrorIs(t, FromGorm(gorm.ErrRecordNotFound, "load post"), ErrNotFound)
	assert.ErrorIs(t, FromGorm(gorm.ErrDuplicatedKey, "follow"), ErrConflict)

	cause := errors.New("connection reset")
	err := FromGorm(cause, "rank feed")
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
}
