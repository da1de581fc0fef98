package repository

import (
	"context"
	"fmt"

	"festflow/internal/domain"

	"github.com/lib/pq"
)

const participantColumns = `participant_id::text, name, phone, email, gender, merch_size, college_id::text, club_id::text`

func scanParticipant(scan func(dest ...any) error) (domain.Participant, error) {
	var p domain.Participant
	var gender, merch string
	err := scan(&p.ParticipantID, &p.Name, &p.Phone, &p.Email, &gender, &merch, &p.CollegeID, &p.ClubID)
	p.Gender = domain.Gender(gender)
	p.MerchSize = domain.MerchSize(merch)
	return p, err
}

func queryParticipants(ctx context.Context, q querier, query string, args ...any) ([]domain.Participant, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- events ----

func (t *postgresTx) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return getEvent(ctx, t.tx, eventID)
}

// ---- participants ----

func (t *postgresTx) GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error) {
	p, err := scanParticipant(t.tx.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE participant_id = $1`, participantID).Scan)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &p, nil
}

func (t *postgresTx) CreateParticipant(ctx context.Context, p *domain.Participant) (string, error) {
	var id string
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO participants (name, phone, email, gender, merch_size, college_id, club_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING participant_id::text`,
		p.Name, nullable(p.Phone), nullable(p.Email), string(p.Gender), string(p.MerchSize),
		nullable(p.CollegeID), nullable(p.ClubID),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create participant: %w", mapPQError(err))
	}
	return id, nil
}

func (t *postgresTx) DeleteParticipants(ctx context.Context, participantIDs []string) (int, error) {
	if len(participantIDs) == 0 {
		return 0, nil
	}
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM participants WHERE participant_id = ANY($1::uuid[])`, pq.Array(participantIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete participants: %w", mapPQError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ---- teams ----

func (t *postgresTx) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return getTeam(ctx, t.tx, teamID)
}

func (t *postgresTx) CreateTeam(ctx context.Context, teamName string) (string, error) {
	var id string
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO teams (team_name) VALUES ($1) RETURNING team_id::text`, teamName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create team: %w", mapPQError(err))
	}
	return id, nil
}

func (t *postgresTx) DeleteTeam(ctx context.Context, teamID string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM teams WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *postgresTx) AddTeamMember(ctx context.Context, teamID, participantID string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO team_members (team_id, participant_id) VALUES ($1, $2)`, teamID, participantID)
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", mapPQError(err))
	}
	return nil
}

func (t *postgresTx) LinkTeamEvent(ctx context.Context, teamID, eventID string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO team_events (team_id, event_id) VALUES ($1, $2)`, teamID, eventID)
	if err != nil {
		return fmt.Errorf("failed to link team to event: %w", mapPQError(err))
	}
	return nil
}

func (t *postgresTx) ListTeamMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT team_id::text, participant_id::text FROM team_members WHERE team_id = $1 ORDER BY participant_id`, teamID)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.TeamMember{}
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.ParticipantID); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (t *postgresTx) ListTeamEvents(ctx context.Context, teamID string) ([]domain.TeamEvent, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT team_id::text, event_id::text FROM team_events WHERE team_id = $1 ORDER BY event_id`, teamID)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.TeamEvent{}
	for rows.Next() {
		var e domain.TeamEvent
		if err := rows.Scan(&e.TeamID, &e.EventID); err != nil {
			return nil, fmt.Errorf("failed to scan team event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *postgresTx) DeleteTeamMembers(ctx context.Context, teamID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete team members: %w", mapPQError(err))
	}
	return nil
}

func (t *postgresTx) DeleteTeamEvents(ctx context.Context, teamID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM team_events WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete team events: %w", mapPQError(err))
	}
	return nil
}

// ---- reservations ----

func (t *postgresTx) GetReservation(ctx context.Context, participantID string) (*domain.Reservation, error) {
	return getReservation(ctx, t.tx, participantID)
}

func (t *postgresTx) InsertReservation(ctx context.Context, participantID, roomID string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO room_reservations (participant_id, room_id) VALUES ($1, $2)`, participantID, roomID)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", mapPQError(err))
	}
	return nil
}

func (t *postgresTx) DeleteReservation(ctx context.Context, participantID string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM room_reservations WHERE participant_id = $1`, participantID)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- occupancy ledger ----

// IncrementOccupancy compare-and-increment：UPDATE 持有行锁，并发事务在提交后重新评估 WHERE 条件
func (t *postgresTx) IncrementOccupancy(ctx context.Context, roomID string) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE room_occupancy o
		 SET current_occupancy = o.current_occupancy + 1
		 FROM rooms r
		 WHERE o.room_id = r.room_id
		   AND o.room_id = $1
		   AND o.current_occupancy < r.max_capacity`, roomID)
	if err != nil {
		return fmt.Errorf("failed to increment occupancy: %w", mapPQError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_occupancy WHERE room_id = $1)`, roomID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check occupancy record: %w", mapPQError(err))
	}
	if !exists {
		return ErrOccupancyMissing
	}
	return ErrRoomFull
}

func (t *postgresTx) DecrementOccupancy(ctx context.Context, roomID string, by int) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE room_occupancy
		 SET current_occupancy = GREATEST(current_occupancy - $2, 0)
		 WHERE room_id = $1`, roomID, by)
	if err != nil {
		return false, fmt.Errorf("failed to decrement occupancy: %w", mapPQError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ---- allocation ----

func (t *postgresTx) ListEligibleRooms(ctx context.Context, gender domain.Gender, limit int) ([]domain.RoomWithOccupancy, error) {
	if limit <= 0 {
		limit = 1
	}
	return queryRoomsWithOccupancy(ctx, t.tx,
		`SELECT `+roomWithOccupancyColumns+`
		 FROM rooms r
		 JOIN room_occupancy o ON o.room_id = r.room_id
		 WHERE r.gender = $1 AND o.current_occupancy < r.max_capacity
		 ORDER BY o.current_occupancy ASC, r.room_id ASC
		 LIMIT $2`, string(gender), limit)
}

// ---- non-transactional queries ----

func (s *PostgresStore) FindTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return getTeam(ctx, s.db, teamID)
}

func (s *PostgresStore) FindReservation(ctx context.Context, participantID string) (*domain.Reservation, error) {
	return getReservation(ctx, s.db, participantID)
}

func (s *PostgresStore) ListEventTeams(ctx context.Context, eventID string) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.team_id::text, t.team_name
		 FROM teams t
		 JOIN team_events te ON te.team_id = t.team_id
		 WHERE te.event_id = $1
		 ORDER BY t.team_name, t.team_id`, eventID)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.Team{}
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.TeamID, &team.TeamName); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTeamParticipants(ctx context.Context, teamID string) ([]domain.Participant, error) {
	return queryParticipants(ctx, s.db,
		`SELECT p.participant_id::text, p.name, p.phone, p.email, p.gender, p.merch_size, p.college_id::text, p.club_id::text
		 FROM participants p
		 JOIN team_members tm ON tm.participant_id = p.participant_id
		 WHERE tm.team_id = $1
		 ORDER BY p.name, p.participant_id`, teamID)
}

func (s *PostgresStore) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	stats := &domain.EventStats{EventID: eventID}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT te.team_id), COUNT(tm.participant_id)
		 FROM team_events te
		 LEFT JOIN team_members tm ON tm.team_id = te.team_id
		 WHERE te.event_id = $1`, eventID).Scan(&stats.TeamCount, &stats.ParticipantCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query event stats: %w", mapPQError(err))
	}
	return stats, nil
}

func getTeam(ctx context.Context, q querier, teamID string) (*domain.Team, error) {
	var team domain.Team
	err := q.QueryRowContext(ctx,
		`SELECT team_id::text, team_name FROM teams WHERE team_id = $1`, teamID).Scan(&team.TeamID, &team.TeamName)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &team, nil
}

func getReservation(ctx context.Context, q querier, participantID string) (*domain.Reservation, error) {
	var r domain.Reservation
	err := q.QueryRowContext(ctx,
		`SELECT participant_id::text, room_id::text FROM room_reservations WHERE participant_id = $1`,
		participantID).Scan(&r.ParticipantID, &r.RoomID)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &r, nil
}
