package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

// parseISODate parses the canonical YYYY-MM-DD form used throughout the grid.
func parseISODate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FilterRoster returns the employees matching the filter. An empty query and
// a zero department pass everything through, so an unfiltered view is the
// identity. The query matches as a case-insensitive substring against full
// name, code, department name and mobile number; the department narrows by
// exact id and combines with the query by AND.
func FilterRoster(employees []models.Employee, filter models.RosterFilter) []models.Employee {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]models.Employee, 0, len(employees))
	for _, emp := range employees {
		if filter.DepartmentID != 0 && emp.DepartmentID != filter.DepartmentID {
			continue
		}
		if query != "" && !matchesQuery(emp, query) {
			continue
		}
		out = append(out, emp)
	}
	return out
}

func matchesQuery(emp models.Employee, query string) bool {
	return strings.Contains(strings.ToLower(emp.FullName), query) ||
		strings.Contains(strings.ToLower(emp.Code), query) ||
		strings.Contains(strings.ToLower(emp.Department), query) ||
		strings.Contains(strings.ToLower(emp.MobileNumber), query)
}

// Paginate slices one 1-indexed page out of the list. A page past the end
// yields an empty slice, never an error; the metadata always reflects the
// full filtered count.
func Paginate(employees []models.Employee, page, pageSize int) ([]models.Employee, models.Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	meta := models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(employees)}
	start := (page - 1) * pageSize
	if start >= len(employees) {
		return []models.Employee{}, meta
	}
	end := start + pageSize
	if end > len(employees) {
		end = len(employees)
	}
	return employees[start:end], meta
}

// RosterService holds the dashboard's roster view state: the active filter
// and current page. Changing the filter always snaps back to page one so a
// narrowed result set is never viewed from a stale offset.
type RosterService struct {
	employees employeeRepository
	pageSize  int
	logger    *zap.Logger

	mu     sync.Mutex
	filter models.RosterFilter
	page   int
}

// NewRosterService constructs a RosterService.
func NewRosterService(employees employeeRepository, pageSize int, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return &RosterService{employees: employees, pageSize: pageSize, logger: logger, page: 1}
}

// SetFilter replaces the filter and resets the page to one.
func (s *RosterService) SetFilter(filter models.RosterFilter) {
	s.mu.Lock()
	s.filter = filter
	s.page = 1
	s.mu.Unlock()
}

// SetPage moves to a 1-indexed page; values below one clamp to one.
func (s *RosterService) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
}

// View materialises the current page of the filtered roster.
func (s *RosterService) View(ctx context.Context) (*models.RosterPage, error) {
	s.mu.Lock()
	filter := s.filter
	page := s.page
	s.mu.Unlock()

	all, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	filtered := FilterRoster(all, filter)
	pageRows, meta := Paginate(filtered, page, s.pageSize)
	return &models.RosterPage{Employees: pageRows, Filter: filter, Pagination: meta}, nil
}

// ViewWith materialises a page without touching the stored state. Handlers
// use it for stateless query-parameter driven requests.
func (s *RosterService) ViewWith(ctx context.Context, filter models.RosterFilter, page int) (*models.RosterPage, error) {
	all, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	filtered := FilterRoster(all, filter)
	pageRows, meta := Paginate(filtered, page, s.pageSize)
	return &models.RosterPage{Employees: pageRows, Filter: filter, Pagination: meta}, nil
}
