package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/calendar"
	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type attendanceRepository interface {
	ListRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error)
	Upsert(ctx context.Context, rec *models.AttendanceRecord) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, employeeID int64, date string) error
}

type gridStatusCatalog interface {
	ListActive(ctx context.Context) ([]models.AttendanceStatus, error)
}

type gridPermissions interface {
	Load(ctx context.Context, userID string) (models.PermissionSet, error)
}

// GridService owns the month attendance grid: the dense day axis, the sparse
// cell map and the single-writer save discipline. Cell state for the loaded
// month is held in memory so a write shows up immediately and can be rolled
// back if persistence fails.
type GridService struct {
	attendance attendanceRepository
	statuses   gridStatusCatalog
	perms      gridPermissions
	validator  *validator.Validate
	logger     *zap.Logger

	mu     sync.Mutex
	cells  map[int64]map[string]int64
	year   int
	month  int
	saving bool
}

// NewGridService constructs a GridService.
func NewGridService(attendance attendanceRepository, statuses gridStatusCatalog, perms gridPermissions, validate *validator.Validate, logger *zap.Logger) *GridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GridService{
		attendance: attendance,
		statuses:   statuses,
		perms:      perms,
		validator:  validate,
		logger:     logger,
		cells:      make(map[int64]map[string]int64),
	}
}

// Load builds the grid for a month. Month is 0-indexed and may lie outside
// 0..11; overflow folds into the year so month navigation never needs bounds
// checks at the call site. Requires the view capability.
func (s *GridService) Load(ctx context.Context, userID string, year, month int) (*models.AttendanceGrid, error) {
	set, err := s.perms.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !set.Allows(models.CapViewAttendance) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "viewing attendance requires the view attendance permission")
	}

	year, month = calendar.Normalize(year, month)

	last := calendar.DaysInMonth(year, month)
	days := make([]models.GridDay, 0, last)
	for d := 1; d <= last; d++ {
		days = append(days, models.GridDay{
			Day:     d,
			Date:    calendar.ISODate(year, month, d),
			Weekend: calendar.IsWeekend(year, month, d),
		})
	}

	statuses, err := s.statuses.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.attendance.ListRange(ctx, calendar.ISODate(year, month, 1), calendar.ISODate(year, month, last))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	cells := make(map[int64]map[string]int64)
	for _, rec := range records {
		row, ok := cells[rec.EmployeeID]
		if !ok {
			row = make(map[string]int64)
			cells[rec.EmployeeID] = row
		}
		row[rec.Date.Format("2006-01-02")] = rec.StatusID
	}

	s.mu.Lock()
	s.cells = cells
	s.year = year
	s.month = month
	s.mu.Unlock()

	return &models.AttendanceGrid{
		Year:     year,
		Month:    month,
		Days:     days,
		Cells:    cells,
		Statuses: statuses,
	}, nil
}

// SetStatus writes one cell. The in-memory cell flips before the database
// write so the caller sees the change at once; a failed write restores the
// previous value. Exactly one write may be in flight at a time; a second
// arrives to ErrSaveInFlight and changes nothing. StatusID zero clears the
// cell.
func (s *GridService) SetStatus(ctx context.Context, userID string, req models.SetStatusRequest) (*models.AttendanceGrid, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	set, err := s.perms.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !set.Allows(models.CapWriteAttendance) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "marking attendance requires the write attendance permission")
	}

	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, appErrors.ErrSaveInFlight
	}
	s.saving = true

	prev, hadPrev := s.cellLocked(req.EmployeeID, req.Date)
	s.applyLocked(req.EmployeeID, req.Date, req.StatusID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	if err := s.persist(ctx, userID, req); err != nil {
		s.mu.Lock()
		if hadPrev {
			s.applyLocked(req.EmployeeID, req.Date, prev)
		} else {
			s.applyLocked(req.EmployeeID, req.Date, 0)
		}
		s.mu.Unlock()
		return nil, err
	}

	return s.Snapshot(), nil
}

// PurgeEmployee drops an employee's cells from the loaded grid.
func (s *GridService) PurgeEmployee(employeeID int64) {
	s.mu.Lock()
	delete(s.cells, employeeID)
	s.mu.Unlock()
}

// Snapshot returns a copy of the loaded cell state. The copy is detached so
// callers can hand it to encoders without racing later writes.
func (s *GridService) Snapshot() *models.AttendanceGrid {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells := make(map[int64]map[string]int64, len(s.cells))
	for emp, row := range s.cells {
		dup := make(map[string]int64, len(row))
		for date, status := range row {
			dup[date] = status
		}
		cells[emp] = dup
	}
	return &models.AttendanceGrid{Year: s.year, Month: s.month, Cells: cells}
}

// Saving reports whether a write is currently in flight.
func (s *GridService) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *GridService) persist(ctx context.Context, userID string, req models.SetStatusRequest) error {
	if req.StatusID == 0 {
		if err := s.attendance.Delete(ctx, req.EmployeeID, req.Date); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
		}
		return nil
	}

	date, err := parseISODate(req.Date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance date")
	}

	if _, err := s.attendance.Upsert(ctx, &models.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		Date:       date,
		StatusID:   req.StatusID,
		UpdatedBy:  userID,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return nil
}

func (s *GridService) cellLocked(employeeID int64, date string) (int64, bool) {
	row, ok := s.cells[employeeID]
	if !ok {
		return 0, false
	}
	id, ok := row[date]
	return id, ok
}

// applyLocked writes or clears one in-memory cell. Status zero removes the
// key entirely so the map stays sparse.
func (s *GridService) applyLocked(employeeID int64, date string, statusID int64) {
	if statusID == 0 {
		if row, ok := s.cells[employeeID]; ok {
			delete(row, date)
			if len(row) == 0 {
				delete(s.cells, employeeID)
			}
		}
		return
	}
	row, ok := s.cells[employeeID]
	if !ok {
		row = make(map[string]int64)
		s.cells[employeeID] = row
	}
	row[date] = statusID
}
