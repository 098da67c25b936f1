package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

func employeeRows(employees ...models.Employee) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "employee_code", "full_name", "department_id", "department_name",
		"mobile_number", "is_active", "created_by", "updated_by", "created_at", "updated_at",
	})
	for _, e := range employees {
		rows.AddRow(e.ID, e.Code, e.FullName, e.DepartmentID, e.Department, e.MobileNumber, e.Active, e.CreatedBy, e.UpdatedBy, e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func TestListActiveJoinsDepartmentName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	mock.ExpectQuery("JOIN departments d ON d.id = e.department_id").
		WillReturnRows(employeeRows(models.Employee{
			ID: 1, Code: "GMDQS001", FullName: "Aisha Khan", DepartmentID: 1, Department: "Teaching",
			MobileNumber: "0300111", Active: true, CreatedBy: "u1", UpdatedBy: "u1", CreatedAt: now, UpdatedAt: now,
		}))

	employees, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Teaching", employees[0].Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEmployeeFetchesJoinedRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO employees").
		WithArgs("GMDQS007", "Bilal Ahmed", int64(2), "0300222", "u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1 LIMIT 1")).
		WithArgs(int64(7)).
		WillReturnRows(employeeRows(models.Employee{
			ID: 7, Code: "GMDQS007", FullName: "Bilal Ahmed", DepartmentID: 2, Department: "Administration",
			MobileNumber: "0300222", Active: true, CreatedBy: "u1", UpdatedBy: "u1", CreatedAt: now, UpdatedAt: now,
		}))

	created, err := repo.Create(context.Background(), &models.Employee{
		Code: "GMDQS007", FullName: "Bilal Ahmed", DepartmentID: 2, MobileNumber: "0300222", CreatedBy: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Administration", created.Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmployeeMissingRowFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("UPDATE employees SET").
		WithArgs(int64(99), "GMDQS099", "Ghost", int64(1), "0300999", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), &models.Employee{
		ID: 99, Code: "GMDQS099", FullName: "Ghost", DepartmentID: 1, MobileNumber: "0300999", UpdatedBy: "u1",
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
