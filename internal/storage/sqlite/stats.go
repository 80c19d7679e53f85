package sqlite

import (
	"context"
	"strconv"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

func (s *Store) Stats(ctx context.Context, userID, from, to string) (models.RoutineStats, error) {
	stats := models.EmptyStats()

	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM routines WHERE user_id = ? AND is_active = 1`, userID).Scan(&stats.TotalRoutines)
	if err != nil {
		return models.EmptyStats(), storeErr("count routines", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT count(*), COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM routine_instances
		WHERE user_id = ? AND instance_date BETWEEN ? AND ?`, userID, from, to,
	).Scan(&stats.TotalInstances, &stats.CompletedInstances)
	if err != nil {
		return models.EmptyStats(), storeErr("count instances", err)
	}

	catRows, err := s.db.QueryContext(ctx, `
		SELECT r.category, count(*)
		FROM routine_instances i
		JOIN routines r ON r.id = i.routine_id
		WHERE i.user_id = ? AND i.instance_date BETWEEN ? AND ?
		GROUP BY r.category`, userID, from, to)
	if err != nil {
		return models.EmptyStats(), storeErr("stats by category", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		var n int
		if err := catRows.Scan(&category, &n); err != nil {
			return models.EmptyStats(), storeErr("stats by category", err)
		}
		stats.ByCategory[category] = n
	}
	if err := catRows.Err(); err != nil {
		return models.EmptyStats(), storeErr("stats by category", err)
	}

	// strftime('%w') numbers days from Sunday = 0.
	dayRows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%w', instance_date), count(*)
		FROM routine_instances
		WHERE user_id = ? AND instance_date BETWEEN ? AND ?
		GROUP BY 1`, userID, from, to)
	if err != nil {
		return models.EmptyStats(), storeErr("stats by day", err)
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var dow string
		var n int
		if err := dayRows.Scan(&dow, &n); err != nil {
			return models.EmptyStats(), storeErr("stats by day", err)
		}
		idx, err := strconv.Atoi(dow)
		if err != nil {
			continue
		}
		day, err := utils.WeekdayFromIndex(idx)
		if err != nil {
			continue
		}
		stats.ByDay[day] += n
	}
	if err := dayRows.Err(); err != nil {
		return models.EmptyStats(), storeErr("stats by day", err)
	}

	return stats, nil
}
