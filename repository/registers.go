package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tennis_club_backend/models"
)

type registerRepository struct {
	q dbtx
}

const registerSelect = `
	SELECT
		r.id,
		r.club_id,
		r.date,
		s.id,
		s.day_of_week,
		s.start_time,
		s.end_time,
		g.id,
		g.name,
		r.lead_coach_id,
		COALESCE(
			array_agg(a.coach_id ORDER BY a.coach_id) FILTER (WHERE a.coach_id IS NOT NULL),
			'{}'
		) AS assistant_ids
	FROM attendance_registers r
	JOIN time_slots s ON s.id = r.time_slot_id
	JOIN coaching_groups g ON g.id = s.group_id
	LEFT JOIN register_assistants a ON a.register_id = r.id
	WHERE r.club_id = $1
	AND r.date BETWEEN $2 AND $3
	AND `

const registerGroupOrder = `
	GROUP BY r.id, s.id, g.id
	ORDER BY r.date, s.start_time, r.id
`

func (r *registerRepository) FindByCoachAndDateRange(ctx context.Context, coachID, clubID int, start, end time.Time, role models.CoachRole) ([]models.AttendanceRegister, error) {
	switch role {
	case models.RoleLead:
		return r.find(ctx, clubID, start, end, `r.lead_coach_id = $4`, coachID)
	case models.RoleAssistant:
		return r.find(ctx, clubID, start, end, `EXISTS (
			SELECT 1 FROM register_assistants x
			WHERE x.register_id = r.id AND x.coach_id = $4
		)`, coachID)
	default:
		return nil, fmt.Errorf("unknown coach role %q", role)
	}
}

func (r *registerRepository) find(ctx context.Context, clubID int, start, end time.Time, coachFilter string, coachID int) ([]models.AttendanceRegister, error) {
	rows, err := r.q.QueryContext(ctx, registerSelect+coachFilter+registerGroupOrder,
		clubID, start, end, coachID)
	if err != nil {
		return nil, fmt.Errorf("error fetching attendance registers: %w", err)
	}
	defer rows.Close()

	var registers []models.AttendanceRegister
	for rows.Next() {
		var (
			reg        models.AttendanceRegister
			assistants pq.Int64Array
		)
		err := rows.Scan(
			&reg.ID,
			&reg.ClubID,
			&reg.Date,
			&reg.TimeSlot.ID,
			&reg.TimeSlot.DayOfWeek,
			&reg.TimeSlot.StartTime,
			&reg.TimeSlot.EndTime,
			&reg.TimeSlot.GroupID,
			&reg.TimeSlot.GroupName,
			&reg.LeadCoachID,
			&assistants,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance register: %w", err)
		}
		reg.AssistantCoachIDs = make([]int, 0, len(assistants))
		for _, id := range assistants {
			reg.AssistantCoachIDs = append(reg.AssistantCoachIDs, int(id))
		}
		registers = append(registers, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading attendance registers: %w", err)
	}
	return registers, nil
}
