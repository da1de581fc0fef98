package repository

import (
	"context"
	"fmt"

	"festflow/internal/domain"
)

const eventColumns = `event_id::text, fest_id::text, name, category, venue, event_date, to_char(event_time, 'HH24:MI:SS'), max_team_size`

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var category string
	err := scan(&e.EventID, &e.FestID, &e.Name, &category, &e.Venue, &e.EventDate, &e.EventTime, &e.MaxTeamSize)
	e.Category = domain.EventCategory(category)
	return e, err
}

func getEvent(ctx context.Context, q querier, eventID string) (*domain.Event, error) {
	e, err := scanEvent(q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = $1`, eventID).Scan)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &e, nil
}

func (s *PostgresStore) CreateFest(ctx context.Context, fest *domain.Fest) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO fests (name, year) VALUES ($1, $2) RETURNING fest_id::text`, fest.Name, fest.Year).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create fest: %w", mapPQError(err))
	}
	return id, nil
}

func (s *PostgresStore) GetFest(ctx context.Context, festID string) (*domain.Fest, error) {
	var f domain.Fest
	err := s.db.QueryRowContext(ctx,
		`SELECT fest_id::text, name, year FROM fests WHERE fest_id = $1`, festID).Scan(&f.FestID, &f.Name, &f.Year)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &f, nil
}

func (s *PostgresStore) CreateEvent(ctx context.Context, event *domain.Event) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (fest_id, name, category, venue, event_date, event_time, max_team_size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING event_id::text`,
		nullable(event.FestID), event.Name, string(event.Category), nullable(event.Venue),
		event.EventDate, event.EventTime, event.MaxTeamSize,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", mapPQError(err))
	}
	return id, nil
}

func (s *PostgresStore) FindEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return getEvent(ctx, s.db, eventID)
}

func (s *PostgresStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_date, event_time, name`)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateCollege(ctx context.Context, college *domain.College) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO colleges (name, city, state) VALUES ($1, $2, $3) RETURNING college_id::text`,
		college.Name, nullable(college.City), nullable(college.State)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create college: %w", mapPQError(err))
	}
	return id, nil
}

func (s *PostgresStore) GetCollege(ctx context.Context, collegeID string) (*domain.College, error) {
	var c domain.College
	err := s.db.QueryRowContext(ctx,
		`SELECT college_id::text, name, city, state FROM colleges WHERE college_id = $1`, collegeID,
	).Scan(&c.CollegeID, &c.Name, &c.City, &c.State)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateClub(ctx context.Context, club *domain.Club) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO clubs (college_id, club_name, club_type, poc, poc_contact, poc_position)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING club_id::text`,
		club.CollegeID, club.ClubName, nullable(club.ClubType), nullable(club.POC), club.POCContact, nullable(club.POCPosition),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create club: %w", mapPQError(err))
	}
	return id, nil
}

func (s *PostgresStore) GetClub(ctx context.Context, clubID string) (*domain.Club, error) {
	var c domain.Club
	err := s.db.QueryRowContext(ctx,
		`SELECT club_id::text, college_id::text, club_name, club_type, poc, poc_contact, poc_position
		 FROM clubs WHERE club_id = $1`, clubID,
	).Scan(&c.ClubID, &c.CollegeID, &c.ClubName, &c.ClubType, &c.POC, &c.POCContact, &c.POCPosition)
	if err != nil {
		return nil, mapPQError(err)
	}
	return &c, nil
}
