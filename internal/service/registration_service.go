package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"festflow/internal/broadcast"
	"festflow/internal/domain"
	"festflow/internal/repository"
	"festflow/internal/store"

	"go.uber.org/zap"
)

// RegistrationService 队伍报名/删除的事务协调者
// 每次调用一个事务，全部成功才提交；任一步失败整体回滚
type RegistrationService interface {
	CreateTeamForEvent(ctx context.Context, req CreateTeamRequest) (*CreateTeamResponse, error)
	DeleteTeam(ctx context.Context, teamID string) (*DeleteTeamResponse, error)
}

type registrationService struct {
	store     repository.Store
	allocator *RoomAllocator
	releaser  *ReservationManager
	publisher broadcast.Publisher
	cache     *occupancyCache
	logger    *zap.Logger
}

// NewRegistrationService publisher 可为 nil
func NewRegistrationService(
	st repository.Store,
	allocator *RoomAllocator,
	reservations *ReservationManager,
	publisher broadcast.Publisher,
	kv store.KV,
	cacheTTL time.Duration,
	logger *zap.Logger,
) RegistrationService {
	if publisher == nil {
		publisher = broadcast.NopPublisher{}
	}
	return &registrationService{
		store:     st,
		allocator: allocator,
		releaser:  reservations,
		publisher: publisher,
		cache:     newOccupancyCache(kv, cacheTTL, logger),
		logger:    logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type ParticipantSpec struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Gender    string `json:"gender"`
	MerchSize string `json:"merch_size"`
	CollegeID string `json:"college_id,omitempty"`
	ClubID    string `json:"club_id,omitempty"`
}

type CreateTeamRequest struct {
	EventID      string            `json:"event_id"`
	TeamName     string            `json:"team_name"`
	Participants []ParticipantSpec `json:"participants"`
}

type CreateTeamResponse struct {
	Team         TeamView          `json:"team"`
	EventID      string            `json:"event_id"`
	Participants []ParticipantView `json:"participants"`
}

type DeleteTeamResponse struct {
	TeamID               string `json:"team_id"`
	DeletedParticipants  int    `json:"deleted_participants"`
	ReleasedReservations int    `json:"released_reservations"`
}

func (s ParticipantSpec) toParticipant(op string, idx int) (*domain.Participant, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, domain.InvalidArgument(op, "participants[%d]: name is required", idx)
	}
	gender, ok := domain.ParseGender(s.Gender)
	if !ok {
		return nil, domain.InvalidArgument(op, "participants[%d]: gender must be MALE or FEMALE", idx)
	}
	merch, ok := domain.ParseMerchSize(s.MerchSize)
	if !ok {
		return nil, domain.InvalidArgument(op, "participants[%d]: merch_size must be one of S, M, L, XL, XXL", idx)
	}
	return &domain.Participant{
		Name:      name,
		Phone:     optional(strings.TrimSpace(s.Phone)),
		Email:     optional(strings.TrimSpace(s.Email)),
		Gender:    gender,
		MerchSize: merch,
		CollegeID: optional(s.CollegeID),
		ClubID:    optional(s.ClubID),
	}, nil
}

// ============================================
// 创建队伍
// ============================================

func (s *registrationService) CreateTeamForEvent(ctx context.Context, req CreateTeamRequest) (*CreateTeamResponse, error) {
	const op = "registration.create_team"

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer tx.Rollback()

	event, err := tx.GetEvent(ctx, req.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound(op, "event", req.EventID)
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	if len(req.Participants) > event.MaxTeamSize {
		return nil, domain.Wrap(domain.KindCapacityExceeded, op,
			"team has more participants than the event allows", nil)
	}

	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		return nil, domain.InvalidArgument(op, "team_name is required")
	}
	participants := make([]*domain.Participant, 0, len(req.Participants))
	for i, ps := range req.Participants {
		p, err := ps.toParticipant(op, i)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	teamID, err := tx.CreateTeam(ctx, teamName)
	if err != nil {
		return nil, storeError(op, err)
	}
	if err := tx.LinkTeamEvent(ctx, teamID, event.EventID); err != nil {
		return nil, storeError(op, err)
	}

	views := make([]ParticipantView, 0, len(participants))
	for i, p := range participants {
		pid, err := tx.CreateParticipant(ctx, p)
		if err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				return nil, domain.Wrap(domain.KindNotFound, op, "college or club not found", err)
			}
			return nil, storeError(op, err)
		}
		p.ParticipantID = pid
		if err := tx.AddTeamMember(ctx, teamID, pid); err != nil {
			return nil, storeError(op, err)
		}

		alloc, err := s.allocator.Allocate(ctx, tx, pid)
		if err != nil {
			return nil, err
		}
		if alloc.Outcome == AllocationNoRoom {
			s.logger.Info("Team registration aborted, no room available",
				zap.String("event_id", event.EventID),
				zap.String("team_name", teamName),
				zap.Int("participant_index", i),
			)
			return nil, domain.Wrap(domain.KindResourceExhausted, op,
				"no room available for participant "+p.Name, nil)
		}
		views = append(views, NewParticipantView(*p, alloc.Reservation.RoomID))
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("Team registered",
		zap.String("team_id", teamID),
		zap.String("event_id", event.EventID),
		zap.Int("participants", len(views)),
	)

	if len(views) > 0 {
		s.cache.invalidate(ctx)
	}
	stays := make([]broadcast.ParticipantStay, 0, len(views))
	for _, v := range views {
		stays = append(stays, broadcast.ParticipantStay{ParticipantID: v.ParticipantID, Name: v.Name, RoomID: v.RoomID})
	}
	s.publish(ctx, broadcast.RegistrationEvent{
		Type:         broadcast.EventTeamRegistered,
		TeamID:       teamID,
		TeamName:     teamName,
		EventIDs:     []string{event.EventID},
		Participants: stays,
	})

	return &CreateTeamResponse{
		Team:         TeamView{TeamID: teamID, TeamName: teamName},
		EventID:      event.EventID,
		Participants: views,
	}, nil
}

// ============================================
// 删除队伍
// ============================================

// DeleteTeam 删除顺序：关联行 -> 队伍 -> 预留 -> 参与者
func (s *registrationService) DeleteTeam(ctx context.Context, teamID string) (*DeleteTeamResponse, error) {
	const op = "registration.delete_team"

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer tx.Rollback()

	team, err := tx.GetTeam(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound(op, "team", teamID)
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	members, err := tx.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, storeError(op, err)
	}
	links, err := tx.ListTeamEvents(ctx, teamID)
	if err != nil {
		return nil, storeError(op, err)
	}

	if err := tx.DeleteTeamMembers(ctx, teamID); err != nil {
		return nil, storeError(op, err)
	}
	if err := tx.DeleteTeamEvents(ctx, teamID); err != nil {
		return nil, storeError(op, err)
	}
	if err := tx.DeleteTeam(ctx, teamID); err != nil {
		return nil, storeError(op, err)
	}

	participantIDs := make([]string, 0, len(members))
	stays := make([]broadcast.ParticipantStay, 0, len(members))
	released := 0
	for _, m := range members {
		participantIDs = append(participantIDs, m.ParticipantID)
		res, err := s.releaser.Release(ctx, tx, m.ParticipantID)
		if err != nil {
			return nil, err
		}
		stay := broadcast.ParticipantStay{ParticipantID: m.ParticipantID}
		if res != nil {
			released++
			stay.RoomID = res.RoomID
		}
		stays = append(stays, stay)
	}

	deleted, err := tx.DeleteParticipants(ctx, participantIDs)
	if err != nil {
		return nil, storeError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError(op, err)
	}

	s.logger.Info("Team deleted",
		zap.String("team_id", teamID),
		zap.Int("participants", deleted),
		zap.Int("released_reservations", released),
	)

	if released > 0 {
		s.cache.invalidate(ctx)
	}
	eventIDs := make([]string, 0, len(links))
	for _, l := range links {
		eventIDs = append(eventIDs, l.EventID)
	}
	s.publish(ctx, broadcast.RegistrationEvent{
		Type:         broadcast.EventTeamDeleted,
		TeamID:       teamID,
		TeamName:     team.TeamName,
		EventIDs:     eventIDs,
		Participants: stays,
	})

	return &DeleteTeamResponse{
		TeamID:               teamID,
		DeletedParticipants:  deleted,
		ReleasedReservations: released,
	}, nil
}

// publish 提交之后的通知，失败只记录日志
func (s *registrationService) publish(ctx context.Context, event broadcast.RegistrationEvent) {
	if err := s.publisher.PublishRegistration(ctx, event); err != nil {
		s.logger.Warn("Failed to publish registration event",
			zap.String("type", event.Type),
			zap.String("team_id", event.TeamID),
			zap.Error(err),
		)
	}
}
