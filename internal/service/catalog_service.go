package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"festflow/internal/domain"
	"festflow/internal/repository"

	"go.uber.org/zap"
)

// CatalogService fest/event/college/club 的直通 CRUD 以及赛事视图
type CatalogService interface {
	CreateFest(ctx context.Context, req CreateFestRequest) (*FestView, error)
	GetFest(ctx context.Context, festID string) (*FestView, error)

	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventView, error)
	GetEvent(ctx context.Context, eventID string) (*EventView, error)
	ListEvents(ctx context.Context) ([]EventView, error)
	GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error)
	ListEventTeams(ctx context.Context, eventID string) ([]TeamView, error)
	ListTeamParticipants(ctx context.Context, teamID string) ([]ParticipantView, error)

	CreateCollege(ctx context.Context, req CreateCollegeRequest) (*CollegeView, error)
	GetCollege(ctx context.Context, collegeID string) (*CollegeView, error)
	CreateClub(ctx context.Context, req CreateClubRequest) (*ClubView, error)
	GetClub(ctx context.Context, clubID string) (*ClubView, error)
}

type catalogService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCatalogService(st repository.Store, logger *zap.Logger) CatalogService {
	return &catalogService{store: st, logger: logger}
}

// ============================================
// 请求/响应结构
// ============================================

type CreateFestRequest struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

type FestView struct {
	FestID string `json:"fest_id"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
}

type CreateEventRequest struct {
	FestID      string `json:"fest_id,omitempty"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Venue       string `json:"venue,omitempty"`
	EventDate   string `json:"event_date"` // YYYY-MM-DD
	EventTime   string `json:"event_time"` // HH:MM 或 HH:MM:SS
	MaxTeamSize int    `json:"max_team_size"`
}

type EventView struct {
	EventID     string `json:"event_id"`
	FestID      string `json:"fest_id,omitempty"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Venue       string `json:"venue,omitempty"`
	EventDate   string `json:"event_date"`
	EventTime   string `json:"event_time"`
	MaxTeamSize int    `json:"max_team_size"`
}

type CreateCollegeRequest struct {
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

type CollegeView struct {
	CollegeID string `json:"college_id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
}

type CreateClubRequest struct {
	CollegeID   string `json:"college_id"`
	ClubName    string `json:"club_name"`
	ClubType    string `json:"club_type,omitempty"`
	POC         string `json:"poc,omitempty"`
	POCContact  string `json:"poc_contact"`
	POCPosition string `json:"poc_position,omitempty"`
}

type ClubView struct {
	ClubID      string `json:"club_id"`
	CollegeID   string `json:"college_id"`
	ClubName    string `json:"club_name"`
	ClubType    string `json:"club_type,omitempty"`
	POC         string `json:"poc,omitempty"`
	POCContact  string `json:"poc_contact"`
	POCPosition string `json:"poc_position,omitempty"`
}

func newEventView(e domain.Event) EventView {
	return EventView{
		EventID:     e.EventID,
		FestID:      e.FestID.String,
		Name:        e.Name,
		Category:    string(e.Category),
		Venue:       e.Venue.String,
		EventDate:   e.EventDate.Format("2006-01-02"),
		EventTime:   e.EventTime,
		MaxTeamSize: e.MaxTeamSize,
	}
}

func newClubView(c domain.Club) ClubView {
	return ClubView{
		ClubID:      c.ClubID,
		CollegeID:   c.CollegeID,
		ClubName:    c.ClubName,
		ClubType:    c.ClubType.String,
		POC:         c.POC.String,
		POCContact:  c.POCContact,
		POCPosition: c.POCPosition.String,
	}
}

func notFoundOr(op, entity, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFound(op, entity, id)
	}
	return storeError(op, err)
}

// ============================================
// Fest
// ============================================

func (s *catalogService) CreateFest(ctx context.Context, req CreateFestRequest) (*FestView, error) {
	const op = "catalog.create_fest"
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.InvalidArgument(op, "name is required")
	}
	if req.Year <= 0 {
		return nil, domain.InvalidArgument(op, "year must be positive")
	}
	id, err := s.store.CreateFest(ctx, &domain.Fest{Name: name, Year: req.Year})
	if err != nil {
		return nil, storeError(op, err)
	}
	return &FestView{FestID: id, Name: name, Year: req.Year}, nil
}

func (s *catalogService) GetFest(ctx context.Context, festID string) (*FestView, error) {
	f, err := s.store.GetFest(ctx, festID)
	if err != nil {
		return nil, notFoundOr("catalog.get_fest", "fest", festID, err)
	}
	return &FestView{FestID: f.FestID, Name: f.Name, Year: f.Year}, nil
}

// ============================================
// Event
// ============================================

func parseEventTime(s string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

func (s *catalogService) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventView, error) {
	const op = "catalog.create_event"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.InvalidArgument(op, "name is required")
	}
	category := domain.EventCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, domain.InvalidArgument(op, "category must be technical, cultural or managerial")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.EventDate))
	if err != nil {
		return nil, domain.InvalidArgument(op, "event_date must be YYYY-MM-DD")
	}
	eventTime, ok := parseEventTime(strings.TrimSpace(req.EventTime))
	if !ok {
		return nil, domain.InvalidArgument(op, "event_time must be HH:MM or HH:MM:SS")
	}
	if req.MaxTeamSize <= 0 {
		return nil, domain.InvalidArgument(op, "max_team_size must be positive")
	}

	event := &domain.Event{
		FestID:      optional(req.FestID),
		Name:        name,
		Category:    category,
		Venue:       optional(strings.TrimSpace(req.Venue)),
		EventDate:   date,
		EventTime:   eventTime,
		MaxTeamSize: req.MaxTeamSize,
	}
	id, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, domain.NotFound(op, "fest", req.FestID)
		}
		return nil, storeError(op, err)
	}
	event.EventID = id
	view := newEventView(*event)
	return &view, nil
}

func (s *catalogService) GetEvent(ctx context.Context, eventID string) (*EventView, error) {
	e, err := s.store.FindEvent(ctx, eventID)
	if err != nil {
		return nil, notFoundOr("catalog.get_event", "event", eventID, err)
	}
	view := newEventView(*e)
	return &view, nil
}

func (s *catalogService) ListEvents(ctx context.Context) ([]EventView, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, storeError("catalog.list_events", err)
	}
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, newEventView(e))
	}
	return out, nil
}

func (s *catalogService) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	const op = "catalog.event_stats"
	if _, err := s.store.FindEvent(ctx, eventID); err != nil {
		return nil, notFoundOr(op, "event", eventID, err)
	}
	stats, err := s.store.GetEventStats(ctx, eventID)
	if err != nil {
		return nil, storeError(op, err)
	}
	return stats, nil
}

func (s *catalogService) ListEventTeams(ctx context.Context, eventID string) ([]TeamView, error) {
	const op = "catalog.event_teams"
	if _, err := s.store.FindEvent(ctx, eventID); err != nil {
		return nil, notFoundOr(op, "event", eventID, err)
	}
	teams, err := s.store.ListEventTeams(ctx, eventID)
	if err != nil {
		return nil, storeError(op, err)
	}
	out := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamView{TeamID: t.TeamID, TeamName: t.TeamName})
	}
	return out, nil
}

// ListTeamParticipants 队伍成员及其房间
func (s *catalogService) ListTeamParticipants(ctx context.Context, teamID string) ([]ParticipantView, error) {
	const op = "catalog.team_participants"
	if _, err := s.store.FindTeam(ctx, teamID); err != nil {
		return nil, notFoundOr(op, "team", teamID, err)
	}
	participants, err := s.store.ListTeamParticipants(ctx, teamID)
	if err != nil {
		return nil, storeError(op, err)
	}
	out := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		roomID := ""
		res, err := s.store.FindReservation(ctx, p.ParticipantID)
		switch {
		case err == nil:
			roomID = res.RoomID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeError(op, err)
		}
		out = append(out, NewParticipantView(p, roomID))
	}
	return out, nil
}

// ============================================
// College / Club
// ============================================

func (s *catalogService) CreateCollege(ctx context.Context, req CreateCollegeRequest) (*CollegeView, error) {
	const op = "catalog.create_college"
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.InvalidArgument(op, "name is required")
	}
	c := &domain.College{Name: name, City: optional(strings.TrimSpace(req.City)), State: optional(strings.TrimSpace(req.State))}
	id, err := s.store.CreateCollege(ctx, c)
	if err != nil {
		return nil, storeError(op, err)
	}
	return &CollegeView{CollegeID: id, Name: name, City: c.City.String, State: c.State.String}, nil
}

func (s *catalogService) GetCollege(ctx context.Context, collegeID string) (*CollegeView, error) {
	c, err := s.store.GetCollege(ctx, collegeID)
	if err != nil {
		return nil, notFoundOr("catalog.get_college", "college", collegeID, err)
	}
	return &CollegeView{CollegeID: c.CollegeID, Name: c.Name, City: c.City.String, State: c.State.String}, nil
}

func (s *catalogService) CreateClub(ctx context.Context, req CreateClubRequest) (*ClubView, error) {
	const op = "catalog.create_club"
	name := strings.TrimSpace(req.ClubName)
	if name == "" {
		return nil, domain.InvalidArgument(op, "club_name is required")
	}
	contact := strings.TrimSpace(req.POCContact)
	if contact == "" || len(contact) > 10 {
		return nil, domain.InvalidArgument(op, "poc_contact is required (at most 10 characters)")
	}
	if req.CollegeID == "" {
		return nil, domain.InvalidArgument(op, "college_id is required")
	}
	club := &domain.Club{
		CollegeID:   req.CollegeID,
		ClubName:    name,
		ClubType:    optional(strings.TrimSpace(req.ClubType)),
		POC:         optional(strings.TrimSpace(req.POC)),
		POCContact:  contact,
		POCPosition: optional(strings.TrimSpace(req.POCPosition)),
	}
	id, err := s.store.CreateClub(ctx, club)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) || errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(op, "college", req.CollegeID)
		}
		return nil, storeError(op, err)
	}
	club.ClubID = id
	view := newClubView(*club)
	return &view, nil
}

func (s *catalogService) GetClub(ctx context.Context, clubID string) (*ClubView, error) {
	c, err := s.store.GetClub(ctx, clubID)
	if err != nil {
		return nil, notFoundOr("catalog.get_club", "club", clubID, err)
	}
	view := newClubView(*c)
	return &view, nil
}
