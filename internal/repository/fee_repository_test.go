package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/models"
)

func TestFeeRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "student_name", "parent_id", "fee_type", "amount_due", "amount_paid",
		"outstanding_amount", "due_date", "status", "created_at", "updated_at",
	}).AddRow("fee-1", "stu-1", "Ada Student", "par-1", "tuition", 450.0, 300.0, 150.0, now, "partial", now, now)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("stu-1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	fees, total, err := repo.List(context.Background(), models.FeeFilter{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.Len(t, fees, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 150.0, fees[0].OutstandingAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO fees").
		WillReturnResult(sqlmock.NewResult(1, 1))

	fee := &models.Fee{StudentID: "stu-1", StudentName: "Ada Student", FeeType: "tuition", AmountDue: 450, AmountPaid: 0, OutstandingAmount: 450, Status: models.FeeStatusPending}
	require.NoError(t, repo.Create(context.Background(), fee))
	assert.NotEmpty(t, fee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
