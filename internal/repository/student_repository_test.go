package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_number", "address", "date_of_birth", "class_id", "parent_id", "created_at", "updated_at",
		"full_name", "email", "phone", "avatar_url", "active", "class_name", "parent_name",
	}).AddRow("stu-1", "S-001", "12 Main St", now, "class-1", "par-1", now, now,
		"Ada Student", "ada@educ8.test", "555-0100", nil, true, "Grade 8A", "Pat Parent")

	mock.ExpectQuery("SELECT s.id, s.student_number").WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(s.id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ada Student", students[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByClassUnpaginated(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_number", "address", "date_of_birth", "class_id", "parent_id", "created_at", "updated_at",
		"full_name", "email", "phone", "avatar_url", "active", "class_name", "parent_name",
	})
	for i := 0; i < 150; i++ {
		rows.AddRow(fmt.Sprintf("stu-%d", i), nil, nil, nil, "class-1", nil, now, now,
			fmt.Sprintf("Student %03d", i), fmt.Sprintf("s%d@educ8.test", i), nil, nil, true, "Grade 8A", nil)
	}

	// the roster query must not carry a LIMIT clause
	mock.ExpectQuery(`WHERE s.class_id = \$1 AND p.active = TRUE ORDER BY p.full_name ASC$`).
		WithArgs("class-1").
		WillReturnRows(rows)

	students, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, students, 150)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithProfile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO profiles").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	profile := &models.Profile{Email: "ada@educ8.test", PasswordHash: "hash", FullName: "Ada Student", Role: models.RoleStudent, Active: true}
	student := &models.Student{}
	require.NoError(t, repo.CreateWithProfile(context.Background(), profile, student))
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, profile.ID, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithProfileRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO profiles").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	profile := &models.Profile{Email: "ada@educ8.test", PasswordHash: "hash", FullName: "Ada Student", Role: models.RoleStudent, Active: true}
	err := repo.CreateWithProfile(context.Background(), profile, &models.Student{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create student row")
	assert.NoError(t, mock.ExpectationsWereMet())
}
