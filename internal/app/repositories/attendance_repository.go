package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atomclub/attendance/internal/app/models"
	"github.com/atomclub/attendance/internal/db"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// AttendanceRepository handles database operations for attendance requests
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const attendanceColumns = `id, student_id, student_name, student_email, date, periods,
	period_faculty, event_coordinator, event_coordinator_faculty_id, proof_faculty,
	purpose, status, reason, proof_url, is_bulk, bulk_students, created_at, updated_at`

// CreateBatch inserts every candidate inside one transaction; a failing
// insert rolls back the whole batch. Identity, initial status and audit
// timestamps are assigned here, never taken from the caller.
func (r *AttendanceRepository) CreateBatch(ctx context.Context, requests []*models.AttendanceRequest) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()
		for _, req := range requests {
			req.ID = uuid.New().String()
			req.Status = models.StatusPendingMentor
			req.CreatedAt = now
			req.UpdatedAt = now

			periods, err := json.Marshal(req.Periods)
			if err != nil {
				return fmt.Errorf("failed to encode periods: %w", err)
			}
			mapping, err := json.Marshal(req.PeriodFaculty)
			if err != nil {
				return fmt.Errorf("failed to encode period faculty mapping: %w", err)
			}
			roster, err := json.Marshal(req.BulkStudents)
			if err != nil {
				return fmt.Errorf("failed to encode roster: %w", err)
			}

			sql, args, err := r.sb.Insert("attendance_requests").
				Columns("id", "student_id", "student_name", "student_email", "date",
					"periods", "period_faculty", "event_coordinator",
					"event_coordinator_faculty_id", "proof_faculty", "purpose",
					"status", "reason", "proof_url", "is_bulk", "bulk_students",
					"created_at", "updated_at").
				Values(req.ID, req.StudentID, req.StudentName, req.StudentEmail, req.Date,
					periods, mapping, req.EventCoordinator,
					req.EventCoordinatorFacultyID, req.ProofFaculty, req.Purpose,
					req.Status, req.Reason, req.ProofURL, req.IsBulk, roster,
					req.CreatedAt, req.UpdatedAt).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert query: %w", err)
			}

			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error inserting attendance request: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a request by ID
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*models.AttendanceRequest, error) {
	sql, args, err := r.sb.Select(attendanceColumns).
		From("attendance_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	row := r.db.QueryRow(ctx, sql, args...)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance request: %w", err)
	}
	return req, nil
}

// List returns requests matching the filter, newest first with insertion
// order breaking creation-time ties.
func (r *AttendanceRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.AttendanceRequest, error) {
	builder := r.sb.Select(attendanceColumns).
		From("attendance_requests").
		OrderBy("created_at DESC", "seq DESC")

	builder = applyFilter(builder, filter)
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.AttendanceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Count returns the number of requests matching the filter, ignoring the
// page window.
func (r *AttendanceRepository) Count(ctx context.Context, filter models.RequestFilter) (int64, error) {
	builder := r.sb.Select("COUNT(*)").From("attendance_requests")
	builder = applyFilter(builder, filter)

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting attendance requests: %w", err)
	}
	return count, nil
}

// UpdateStatusIf moves the request to the new status only when the stored
// status still matches the one the caller observed. A false return with no
// error means another writer got there first.
func (r *AttendanceRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.RequestStatus, reason string) (bool, error) {
	builder := r.sb.Update("attendance_requests").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": from})

	if to == models.StatusDeclined {
		builder = builder.Set("reason", reason)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build status update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error updating request status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a request by ID
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("attendance_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting attendance request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}

// SetProofURL attaches an uploaded proof document URL
func (r *AttendanceRepository) SetProofURL(ctx context.Context, id, proofURL string) error {
	sql, args, err := r.sb.Update("attendance_requests").
		Set("proof_url", proofURL).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build proof update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating proof url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequestNotFound
	}
	return nil
}

// Statistics counts requests per status in one grouped query so the
// counters reflect a single snapshot.
func (r *AttendanceRepository) Statistics(ctx context.Context, filter models.RequestFilter) (*models.RequestStatistics, error) {
	builder := r.sb.Select("status", "COUNT(*)").
		From("attendance_requests").
		GroupBy("status")

	builder = applyFilter(builder, filter)

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build statistics query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting attendance requests: %w", err)
	}
	defer rows.Close()

	stats := &models.RequestStatistics{}
	for rows.Next() {
		var status models.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.StatusPendingMentor:
			stats.PendingMentor = count
		case models.StatusPendingHOD:
			stats.PendingHOD = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusDeclined:
			stats.Declined = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// applyFilter translates a RequestFilter into WHERE clauses
func applyFilter(builder squirrel.SelectBuilder, filter models.RequestFilter) squirrel.SelectBuilder {
	if filter.StudentID != "" {
		if filter.RegisterNumber != "" {
			member, _ := json.Marshal([]map[string]string{{"registerNumber": filter.RegisterNumber}})
			builder = builder.Where(squirrel.Or{
				squirrel.Eq{"student_id": filter.StudentID},
				squirrel.Expr("bulk_students @> ?::jsonb", string(member)),
			})
		} else {
			builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
		}
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.ExcludeStatus != "" {
		builder = builder.Where(squirrel.NotEq{"status": filter.ExcludeStatus})
	}
	if filter.CoordinatorID != "" {
		builder = builder.Where(squirrel.Eq{"event_coordinator_faculty_id": filter.CoordinatorID})
	}
	if !filter.DateFrom.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"date": filter.DateFrom})
	}
	if !filter.DateTo.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"date": filter.DateTo})
	}
	return builder
}

// scanRequest reads one row into a request, decoding the JSON columns
func scanRequest(row pgx.Row) (*models.AttendanceRequest, error) {
	var req models.AttendanceRequest
	var periods, mapping, roster []byte
	var reason, proofURL, studentEmail, coordinatorID *string

	err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.StudentName,
		&studentEmail,
		&req.Date,
		&periods,
		&mapping,
		&req.EventCoordinator,
		&coordinatorID,
		&req.ProofFaculty,
		&req.Purpose,
		&req.Status,
		&reason,
		&proofURL,
		&req.IsBulk,
		&roster,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if studentEmail != nil {
		req.StudentEmail = *studentEmail
	}
	if coordinatorID != nil {
		req.EventCoordinatorFacultyID = *coordinatorID
	}
	if reason != nil {
		req.Reason = *reason
	}
	if proofURL != nil {
		req.ProofURL = *proofURL
	}

	if err := json.Unmarshal(periods, &req.Periods); err != nil {
		return nil, fmt.Errorf("failed to decode periods: %w", err)
	}
	if len(mapping) > 0 {
		if err := json.Unmarshal(mapping, &req.PeriodFaculty); err != nil {
			return nil, fmt.Errorf("failed to decode period faculty mapping: %w", err)
		}
	}
	if len(roster) > 0 {
		if err := json.Unmarshal(roster, &req.BulkStudents); err != nil {
			return nil, fmt.Errorf("failed to decode roster: %w", err)
		}
	}

	return &req, nil
}
