package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
)

const routineColumns = `id, user_id, title, description, day_of_week, start_time, end_time,
		category, color, is_active, recurring_weeks, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type routineRow struct {
	r              models.Routine
	description    sql.NullString
	recurringWeeks sql.NullInt64
	day            string
}

func (rr *routineRow) dest() []interface{} {
	return []interface{}{
		&rr.r.ID, &rr.r.UserID, &rr.r.Title, &rr.description, &rr.day, &rr.r.StartTime, &rr.r.EndTime,
		&rr.r.Category, &rr.r.Color, &rr.r.IsActive, &rr.recurringWeeks, &rr.r.CreatedAt, &rr.r.UpdatedAt,
	}
}

func (rr *routineRow) routine() models.Routine {
	r := rr.r
	r.DayOfWeek = models.DayOfWeek(rr.day)
	if rr.description.Valid {
		d := rr.description.String
		r.Description = &d
	}
	if rr.recurringWeeks.Valid {
		weeks := int(rr.recurringWeeks.Int64)
		r.RecurringWeeks = &weeks
	}
	return r
}

func scanRoutine(row rowScanner) (models.Routine, error) {
	var rr routineRow
	if err := row.Scan(rr.dest()...); err != nil {
		return models.Routine{}, err
	}
	return rr.routine(), nil
}

func (s *Store) InsertRoutine(ctx context.Context, r models.Routine) (models.Routine, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock.Now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routines (`+routineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.UserID, r.Title, r.Description, string(r.DayOfWeek), r.StartTime, r.EndTime,
		r.Category, r.Color, r.IsActive, r.RecurringWeeks, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return models.Routine{}, storeErr("insert routine", err)
	}
	return s.GetRoutine(ctx, r.UserID, r.ID)
}

func (s *Store) GetRoutine(ctx context.Context, userID, id string) (models.Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+routineColumns+`
		FROM routines WHERE id = $1 AND user_id = $2`, id, userID)

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
	row := s.db.QueryRowContext(ctx, `
		UPDATE routines
		SET title = $1, description = $2, day_of_week = $3, start_time = $4, end_time = $5,
		    category = $6, color = $7, is_active = $8, recurring_weeks = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
		RETURNING `+routineColumns,
		r.Title, r.Description, string(r.DayOfWeek), r.StartTime, r.EndTime,
		r.Category, r.Color, r.IsActive, r.RecurringWeeks, s.clock.Now(),
		r.ID, r.UserID,
	)
	updated, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Routine{}, apperrors.NotFound("routine", r.ID)
		}
		return models.Routine{}, storeErr("update routine", err)
	}
	return updated, nil
}

func (s *Store) DeleteRoutine(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routines WHERE id = $1 AND user_id = $2`, id, userID)
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
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM routines WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids))
	if err != nil {
		return 0, storeErr("delete routines", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete routines", err)
	}
	return int(n), nil
}

// listRoutinesQuery builds the filtered routine listing.
func listRoutinesQuery(userID string, filters models.RoutineFilters) (string, []interface{}) {
	a := &args{}
	query := `SELECT ` + routineColumns + ` FROM routines WHERE user_id = ` + a.add(userID)

	if filters.DayOfWeek != nil {
		query += ` AND day_of_week = ` + a.add(string(*filters.DayOfWeek))
	}
	if filters.Category != "" {
		query += ` AND category = ` + a.add(filters.Category)
	}
	if filters.IsActive != nil {
		query += ` AND is_active = ` + a.add(*filters.IsActive)
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		p := a.add(storage.ContainsPattern(term))
		query += ` AND (title ILIKE ` + p + ` ESCAPE '\' OR description ILIKE ` + p + ` ESCAPE '\')`
	}
	query += ` ORDER BY ` + storage.DayOrderExpr + `, start_time, created_at`
	return query, a.values
}

func (s *Store) ListRoutines(ctx context.Context, userID string, filters models.RoutineFilters) ([]models.Routine, error) {
	query, values := listRoutinesQuery(userID, filters)
	rows, err := s.db.QueryContext(ctx, query, values...)
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
		WHERE user_id = $1 AND is_active AND category <> ''
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
