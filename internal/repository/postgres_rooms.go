package repository

import (
	"context"
	"fmt"

	"festflow/internal/domain"
)

const roomWithOccupancyColumns = `r.room_id::text, r.building_name, r.room_no, r.gender, r.max_capacity, o.current_occupancy`

func queryRoomsWithOccupancy(ctx context.Context, q querier, query string, args ...any) ([]domain.RoomWithOccupancy, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.RoomWithOccupancy{}
	for rows.Next() {
		var r domain.RoomWithOccupancy
		var gender string
		if err := rows.Scan(&r.RoomID, &r.BuildingName, &r.RoomNo, &gender, &r.MaxCapacity, &r.CurrentOccupancy); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		r.Gender = domain.Gender(gender)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRoom 同一事务内写入 rooms 与 room_occupancy(0)
func (s *PostgresStore) CreateRoom(ctx context.Context, room *domain.Room) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO rooms (building_name, room_no, gender, max_capacity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING room_id::text`,
		room.BuildingName, room.RoomNo, string(room.Gender), room.MaxCapacity,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", mapPQError(err))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_occupancy (room_id, current_occupancy) VALUES ($1, 0)`, id); err != nil {
		return "", fmt.Errorf("failed to create occupancy record: %w", mapPQError(err))
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit room: %w", mapPQError(err))
	}
	return id, nil
}

func (s *PostgresStore) GetRoom(ctx context.Context, roomID string) (*domain.RoomWithOccupancy, error) {
	rooms, err := queryRoomsWithOccupancy(ctx, s.db,
		`SELECT `+roomWithOccupancyColumns+`
		 FROM rooms r
		 JOIN room_occupancy o ON o.room_id = r.room_id
		 WHERE r.room_id = $1`, roomID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, ErrNotFound
	}
	return &rooms[0], nil
}

func (s *PostgresStore) ListRoomsWithOccupancy(ctx context.Context) ([]domain.RoomWithOccupancy, error) {
	return queryRoomsWithOccupancy(ctx, s.db,
		`SELECT `+roomWithOccupancyColumns+`
		 FROM rooms r
		 JOIN room_occupancy o ON o.room_id = r.room_id
		 ORDER BY r.building_name, r.room_no`)
}

func (s *PostgresStore) ListRoomParticipants(ctx context.Context, roomID string) ([]domain.Participant, error) {
	return queryParticipants(ctx, s.db,
		`SELECT p.participant_id::text, p.name, p.phone, p.email, p.gender, p.merch_size, p.college_id::text, p.club_id::text
		 FROM participants p
		 JOIN room_reservations rr ON rr.participant_id = p.participant_id
		 WHERE rr.room_id = $1
		 ORDER BY p.name, p.participant_id`, roomID)
}

func (s *PostgresStore) ListRoster(ctx context.Context) ([]RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.room_id::text, r.building_name, r.room_no, r.gender, r.max_capacity,
		        p.participant_id::text, p.name, p.phone, p.email, p.gender, p.merch_size, p.college_id::text, p.club_id::text
		 FROM room_reservations rr
		 JOIN rooms r ON r.room_id = rr.room_id
		 JOIN participants p ON p.participant_id = rr.participant_id
		 ORDER BY r.building_name, r.room_no, p.name`)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []RosterEntry{}
	for rows.Next() {
		var e RosterEntry
		var roomGender, gender, merch string
		err := rows.Scan(
			&e.Room.RoomID, &e.Room.BuildingName, &e.Room.RoomNo, &roomGender, &e.Room.MaxCapacity,
			&e.Participant.ParticipantID, &e.Participant.Name, &e.Participant.Phone, &e.Participant.Email,
			&gender, &merch, &e.Participant.CollegeID, &e.Participant.ClubID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		e.Room.Gender = domain.Gender(roomGender)
		e.Participant.Gender = domain.Gender(gender)
		e.Participant.MerchSize = domain.MerchSize(merch)
		out = append(out, e)
	}
	return out, rows.Err()
}
