package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestIsFollowing(t *testing.T) {
	// Setup mock database
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	tests := []struct {
		name           string
		followerID     int64
		followedID     int64
		mockRows       *sqlmock.Rows
		mockErr        error
		expectedResult bool
		expectedError  bool
	}{
		{
			name:           "User is following",
			followerID:     1,
			followedID:     2,
			mockRows:       sqlmock.NewRows([]string{"count"}).AddRow(1),
			expectedResult: true,
		},
		{
			name:           "User is not following",
			followerID:     1,
			followedID:     3,
			mockRows:       sqlmock.NewRows([]string{"count"}).AddRow(0),
			expectedResult: false,
		},
		{
			name:          "Database error",
			followerID:    1,
			followedID:    4,
			mockErr:       errors.New("connection reset"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectation := mock.ExpectQuery(`SELECT count\(\*\) FROM "follows"`).
				WithArgs(tt.followerID, tt.followedID)
			if tt.mockErr != nil {
				expectation.WillReturnError(tt.mockErr)
			} else {
				expectation.WillReturnRows(tt.mockRows)
			}

			result, err := IsFollowing(context.Background(), db, tt.followerID, tt.followedID)

			assert.Equal(t, tt.expectedResult, result)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
