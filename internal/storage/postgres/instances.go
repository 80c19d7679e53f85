package postgres

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

const instanceColumns = `i.id, i.routine_id, i.user_id, to_char(i.instance_date, 'YYYY-MM-DD'), i.status,
		i.actual_start_time, i.actual_end_time, i.notes, i.created_at, i.updated_at`

const joinedRoutineColumns = `r.id, r.user_id, r.title, r.description, r.day_of_week, r.start_time, r.end_time,
		r.category, r.color, r.is_active, r.recurring_weeks, r.created_at, r.updated_at`

const instanceFrom = `
		FROM routine_instances i
		JOIN routines r ON r.id = i.routine_id`

type instanceRow struct {
	inst        models.RoutineInstance
	status      string
	actualStart sql.NullString
	actualEnd   sql.NullString
	notes       sql.NullString
}

func (ir *instanceRow) dest() []interface{} {
	return []interface{}{
		&ir.inst.ID, &ir.inst.RoutineID, &ir.inst.UserID, &ir.inst.InstanceDate, &ir.status,
		&ir.actualStart, &ir.actualEnd, &ir.notes, &ir.inst.CreatedAt, &ir.inst.UpdatedAt,
	}
}

func optional(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func scanJoinedInstance(row rowScanner) (models.RoutineInstance, error) {
	var ir instanceRow
	var rr routineRow
	if err := row.Scan(append(ir.dest(), rr.dest()...)...); err != nil {
		return models.RoutineInstance{}, err
	}
	inst := ir.inst
	inst.Status = models.InstanceStatus(ir.status)
	inst.ActualStartTime = optional(ir.actualStart)
	inst.ActualEndTime = optional(ir.actualEnd)
	inst.Notes = optional(ir.notes)
	r := rr.routine()
	inst.Routine = &r
	return inst, nil
}

func (s *Store) InstanceExists(ctx context.Context, routineID, date string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM routine_instances WHERE routine_id = $1 AND instance_date = $2
		)`, routineID, date).Scan(&exists)
	if err != nil {
		return false, storeErr("check instance", err)
	}
	return exists, nil
}

func (s *Store) InsertInstance(ctx context.Context, inst models.RoutineInstance) (bool, error) {
	now := s.clock.Now()
	if inst.Status == "" {
		inst.Status = models.StatusScheduled
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO routine_instances
			(id, routine_id, user_id, instance_date, status, actual_start_time, actual_end_time, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (routine_id, instance_date) DO NOTHING`,
		inst.ID, inst.RoutineID, inst.UserID, inst.InstanceDate, string(inst.Status),
		inst.ActualStartTime, inst.ActualEndTime, inst.Notes, now,
	)
	if err != nil {
		return false, storeErr("insert instance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("insert instance", err)
	}
	return n > 0, nil
}

func (s *Store) GetInstance(ctx context.Context, userID, id string) (models.RoutineInstance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+instanceColumns+`, `+joinedRoutineColumns+instanceFrom+`
		WHERE i.id = $1 AND i.user_id = $2`, id, userID)

	inst, err := scanJoinedInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoutineInstance{}, apperrors.NotFound("routine instance", id)
		}
		return models.RoutineInstance{}, storeErr("get instance", err)
	}
	return inst, nil
}

func (s *Store) UpdateInstance(ctx context.Context, inst models.RoutineInstance) (models.RoutineInstance, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE routine_instances
		SET status = $1, actual_start_time = $2, actual_end_time = $3, notes = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`,
		string(inst.Status), inst.ActualStartTime, inst.ActualEndTime, inst.Notes, s.clock.Now(),
		inst.ID, inst.UserID,
	)
	if err != nil {
		return models.RoutineInstance{}, storeErr("update instance", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.RoutineInstance{}, apperrors.NotFound("routine instance", inst.ID)
	}
	return s.GetInstance(ctx, inst.UserID, inst.ID)
}

func (s *Store) ListInstancesByDate(ctx context.Context, userID, date string) ([]models.RoutineInstance, error) {
	return s.listInstances(ctx, "list instances by date", `
		SELECT `+instanceColumns+`, `+joinedRoutineColumns+instanceFrom+`
		WHERE i.user_id = $1 AND i.instance_date = $2
		ORDER BY r.start_time, r.created_at`, userID, date)
}

func (s *Store) ListInstancesInRange(ctx context.Context, userID, from, to string) ([]models.RoutineInstance, error) {
	return s.listInstances(ctx, "list instances in range", `
		SELECT `+instanceColumns+`, `+joinedRoutineColumns+instanceFrom+`
		WHERE i.user_id = $1 AND i.instance_date BETWEEN $2 AND $3
		ORDER BY i.instance_date, r.start_time, r.created_at`, userID, from, to)
}

func (s *Store) listInstances(ctx context.Context, op, query string, values ...interface{}) ([]models.RoutineInstance, error) {
	rows, err := s.db.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	instances := []models.RoutineInstance{}
	for rows.Next() {
		inst, err := scanJoinedInstance(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return instances, nil
}
