package broadcast

import (
	"context"
	"fmt"
	"time"

	rediscommon "festflow/common/redis"

	"github.com/go-redis/redis/v8"
)

const (
	EventTeamRegistered = "team.registered"
	EventTeamDeleted    = "team.deleted"
)

// RegistrationEvent 报名变更通知（提交成功后发布）
type RegistrationEvent struct {
	Type         string            `json:"type"`
	TeamID       string            `json:"team_id"`
	TeamName     string            `json:"team_name"`
	EventIDs     []string          `json:"event_ids"`
	Participants []ParticipantStay `json:"participants"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// ParticipantStay 参与者及其房间
type ParticipantStay struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name,omitempty"`
	RoomID        string `json:"room_id,omitempty"`
}

// Publisher 报名事件发布者
type Publisher interface {
	PublishRegistration(ctx context.Context, event RegistrationEvent) error
}

// StreamPublisher 写入 Redis Stream
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishRegistration(ctx context.Context, event RegistrationEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, p.stream, err)
	}
	return nil
}

// NopPublisher 未启用 Redis 时使用
type NopPublisher struct{}

func (NopPublisher) PublishRegistration(context.Context, RegistrationEvent) error { return nil }
