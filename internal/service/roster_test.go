package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdqs/attendance-admin-api/internal/models"
)

type employeeRepoStub struct {
	employees []models.Employee
	err       error
}

func (s employeeRepoStub) ListActive(ctx context.Context) ([]models.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.employees, nil
}

func (s employeeRepoStub) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	for i := range s.employees {
		if s.employees[i].ID == id {
			return &s.employees[i], nil
		}
	}
	return nil, fmt.Errorf("no employee %d", id)
}

func (s employeeRepoStub) Create(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	return emp, nil
}

func (s employeeRepoStub) Update(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	return emp, nil
}

func (s employeeRepoStub) Delete(ctx context.Context, id int64) error { return nil }

func sampleRoster() []models.Employee {
	return []models.Employee{
		{ID: 1, Code: "GMDQS001", FullName: "Aisha Khan", DepartmentID: 1, Department: "Teaching", MobileNumber: "0300111"},
		{ID: 2, Code: "GMDQS002", FullName: "Bilal Ahmed", DepartmentID: 2, Department: "Administration", MobileNumber: "0300222"},
		{ID: 3, Code: "GMDQS003", FullName: "Carmen Diaz", DepartmentID: 1, Department: "Teaching", MobileNumber: "0300333"},
		{ID: 4, Code: "GMDQS010", FullName: "Danish Ali", DepartmentID: 3, Department: "Security", MobileNumber: "0300444"},
	}
}

func TestFilterRosterEmptyFilterIsIdentity(t *testing.T) {
	roster := sampleRoster()
	got := FilterRoster(roster, models.RosterFilter{})
	assert.Equal(t, roster, got)
}

func TestFilterRosterResultIsSubset(t *testing.T) {
	roster := sampleRoster()
	got := FilterRoster(roster, models.RosterFilter{Query: "a", DepartmentID: 1})

	byID := make(map[int64]models.Employee)
	for _, emp := range roster {
		byID[emp.ID] = emp
	}
	for _, emp := range got {
		orig, ok := byID[emp.ID]
		require.True(t, ok)
		assert.Equal(t, orig, emp)
		assert.Equal(t, int64(1), emp.DepartmentID)
	}
}

func TestFilterRosterMatchesAnyField(t *testing.T) {
	roster := sampleRoster()

	assert.Len(t, FilterRoster(roster, models.RosterFilter{Query: "bilal"}), 1)
	assert.Len(t, FilterRoster(roster, models.RosterFilter{Query: "gmdqs010"}), 1)
	assert.Len(t, FilterRoster(roster, models.RosterFilter{Query: "security"}), 1)
	assert.Len(t, FilterRoster(roster, models.RosterFilter{Query: "0300333"}), 1)
	assert.Empty(t, FilterRoster(roster, models.RosterFilter{Query: "zzz"}))
}

func TestFilterRosterCombinesQueryAndDepartment(t *testing.T) {
	roster := sampleRoster()
	got := FilterRoster(roster, models.RosterFilter{Query: "ali", DepartmentID: 1})
	assert.Empty(t, got)
}

func TestPaginateTwentyFiveByTen(t *testing.T) {
	employees := make([]models.Employee, 25)
	for i := range employees {
		employees[i] = models.Employee{ID: int64(i + 1)}
	}

	page1, meta := Paginate(employees, 1, 10)
	require.Len(t, page1, 10)
	assert.Equal(t, int64(1), page1[0].ID)
	assert.Equal(t, 25, meta.TotalCount)

	page3, _ := Paginate(employees, 3, 10)
	require.Len(t, page3, 5)
	assert.Equal(t, int64(21), page3[0].ID)

	page4, meta := Paginate(employees, 4, 10)
	assert.Empty(t, page4)
	assert.Equal(t, 25, meta.TotalCount)
}

func TestPaginateClampsPageBelowOne(t *testing.T) {
	employees := sampleRoster()
	page, meta := Paginate(employees, 0, 2)
	require.Len(t, page, 2)
	assert.Equal(t, 1, meta.Page)
}

func TestRosterSetFilterResetsPage(t *testing.T) {
	employees := make([]models.Employee, 25)
	for i := range employees {
		employees[i] = models.Employee{ID: int64(i + 1), FullName: fmt.Sprintf("Employee %02d", i+1)}
	}
	svc := NewRosterService(employeeRepoStub{employees: employees}, 10, nil)

	svc.SetPage(3)
	view, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, view.Pagination.Page)

	svc.SetFilter(models.RosterFilter{Query: "employee"})
	view, err = svc.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Pagination.Page)
	assert.Len(t, view.Employees, 10)
}
