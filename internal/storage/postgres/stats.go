package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// statsPayload mirrors the JSON object built by the routine_stats function.
// by_day is keyed by EXTRACT(DOW), Sunday = 0.
type statsPayload struct {
	TotalRoutines      int            `json:"total_routines"`
	TotalInstances     int            `json:"total_instances"`
	CompletedInstances int            `json:"completed_instances"`
	ByCategory         map[string]int `json:"by_category"`
	ByDay              map[string]int `json:"by_day"`
}

func (p statsPayload) toStats() models.RoutineStats {
	stats := models.EmptyStats()
	stats.TotalRoutines = p.TotalRoutines
	stats.TotalInstances = p.TotalInstances
	stats.CompletedInstances = p.CompletedInstances
	for category, n := range p.ByCategory {
		stats.ByCategory[category] = n
	}
	for dow, n := range p.ByDay {
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
	return stats
}

func (s *Store) Stats(ctx context.Context, userID, from, to string) (models.RoutineStats, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, `SELECT routine_stats($1, $2, $3)`, userID, from, to).Scan(&raw); err != nil {
		return models.EmptyStats(), storeErr("routine stats", err)
	}

	var p statsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.EmptyStats(), storeErr("decode routine stats", err)
	}
	return p.toStats(), nil
}
