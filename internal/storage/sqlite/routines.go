package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
)

const routineColumns = `id, user_id, title, description, day_of_week, start_time, end_time,
		category, color, is_active, recurring_weeks, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// routineRow holds the nullable and text-encoded columns of a routines row.
type routineRow struct {
	r              models.Routine
	description    sql.NullString
	recurringWeeks sql.NullInt64
	day            string
	createdAt      string
	updatedAt      string
}

func (rr *routineRow) dest() []interface{} {
	return []interface{}{
		&rr.r.ID, &rr.r.UserID, &rr.r.Title, &rr.description, &rr.day, &rr.r.StartTime, &rr.r.EndTime,
		&rr.r.Category, &rr.r.Color, &rr.r.IsActive, &rr.recurringWeeks, &rr.createdAt, &rr.updatedAt,
	}
}

func (rr *routineRow) routine() models.Routine {
	r := rr.r
	r.DayOfWeek = models.DayOfWeek(rr.day)
	r.Description = stringPtr(rr.description)
	if rr.recurringWeeks.Valid {
		weeks := int(rr.recurringWeeks.Int64)
		r.RecurringWeeks = &weeks
	}
	r.CreatedAt = parseTimestamp(rr.createdAt)
	r.UpdatedAt = parseTimestamp(rr.updatedAt)
	return r
}

func scanRoutine(row rowScanner) (models.Routine, error) {
	var rr routineRow
	if err := row.Scan(rr.dest()...); err != nil {
		return models.Routine{}, err
	}
	return rr.routine(), nil
}

func nullWeeks(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (s *Store) InsertRoutine(ctx context.Context, r models.Routine) (models.Routine, error) {
	now := s.clock.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routines (`+routineColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Title, nullString(r.Description), string(r.DayOfWeek), r.StartTime, r.EndTime,
		r.Category, r.Color, r.IsActive, nullWeeks(r.RecurringWeeks),
		r.CreatedAt.Format(timestampLayout), r.UpdatedAt.Format(timestampLayout),
	)
	if err != nil {
		return models.Routine{}, storeErr("insert routine", err)
	}
	return s.GetRoutine(ctx, r.UserID, r.ID)
}

func (s *Store) GetRoutine(ctx context.Context, userID, id string) (models.Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+routineColumns+`
		FROM routines WHERE id = ? AND user_id = ?`, id, userID)

	r, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Routine{}, apperrors.NotFound("routine", id)
		}
		return models.Routine{}, storeErr("get routine", err)
	}
	return r, nil
}

func (s *Store) UpdateRoutine(ctx context.Context, r models.Routine) (models.Routine, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE routines
		SET title = ?, description = ?, day_of_week = ?, start_time = ?, end_time = ?,
		    category = ?, color = ?, is_active = ?, recurring_weeks = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		r.Title, nullString(r.Description), string(r.DayOfWeek), r.StartTime, r.EndTime,
		r.Category, r.Color, r.IsActive, nullWeeks(r.RecurringWeeks), s.now(),
		r.ID, r.UserID,
	)
	if err != nil {
		return models.Routine{}, storeErr("update routine", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Routine{}, apperrors.NotFound("routine", r.ID)
	}
	return s.GetRoutine(ctx, r.UserID, r.ID)
}

func (s *Store) DeleteRoutine(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storeErr("delete routine", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("routine", id)
	}
	return nil
}

func (s *Store) DeleteRoutines(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM routines WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, storeErr("delete routines", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete routines", err)
	}
	return int(n), nil
}

func (s *Store) ListRoutines(ctx context.Context, userID string, filters models.RoutineFilters) ([]models.Routine, error) {
	query := `SELECT ` + routineColumns + ` FROM routines WHERE user_id = ?`
	args := []interface{}{userID}

	if filters.DayOfWeek != nil {
		query += ` AND day_of_week = ?`
		args = append(args, string(*filters.DayOfWeek))
	}
	if filters.Category != "" {
		query += ` AND category = ?`
		args = append(args, filters.Category)
	}
	if filters.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, *filters.IsActive)
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		pattern := storage.ContainsPattern(strings.ToLower(term))
		query += ` AND (fold_case(title) LIKE ? ESCAPE '\' OR fold_case(description) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY ` + storage.DayOrderExpr + `, start_time, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list routines", err)
	}
	defer rows.Close()

	routines := []models.Routine{}
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, storeErr("list routines", err)
		}
		routines = append(routines, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list routines", err)
	}
	return routines, nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM routines
		WHERE user_id = ? AND is_active = 1 AND category <> ''
		ORDER BY category`, userID)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, storeErr("list categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list categories", err)
	}
	return categories, nil
}
