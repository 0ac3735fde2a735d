package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"logipro/internal/domain/job"
	appErrors "logipro/pkg/errors"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_jobs_bol_number"}

	assert.True(t, isUniqueViolation(dup, ""))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup), "bol_number"))
	assert.False(t, isUniqueViolation(dup, "license_plate"))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(errors.New("duplicate key"), ""))
}

func TestCreateJobErrorMapsUniqueViolations(t *testing.T) {
	numberDup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_jobs_job_number"}
	bolDup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_jobs_bol_number"}

	err := createJobError(numberDup)
	assert.ErrorIs(t, err, job.ErrDuplicateNumber)
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	assert.ErrorIs(t, createJobError(bolDup), job.ErrDuplicateBOL)

	err = createJobError(errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, appErrors.HTTPStatus(err))
}
