package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "festflow/common/redis"
	"festflow/internal/broadcast"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Forwarder 下游发布（MQTT）
type Forwarder interface {
	Publish(topic string, payload []byte) error
}

// RegistrationConsumer 消费报名事件并转发到 MQTT 赛事主题
type RegistrationConsumer struct {
	redisClient  *redis.Client
	forwarder    Forwarder
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	topicPrefix  string
	block        time.Duration
}

func NewRegistrationConsumer(
	redisClient *redis.Client,
	forwarder Forwarder,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	topicPrefix string,
) *RegistrationConsumer {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &RegistrationConsumer{
		redisClient:  redisClient,
		forwarder:    forwarder,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		topicPrefix:  topicPrefix,
		block:        2 * time.Second,
	}
}

// Topic 赛事报名主题：<prefix>/events/<event_id>/registrations
func (c *RegistrationConsumer) Topic(eventID string) string {
	return fmt.Sprintf("%s/events/%s/registrations", c.topicPrefix, eventID)
}

// Start 阻塞消费直到 ctx 取消
func (c *RegistrationConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Registration consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 指数退避
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := c.ConsumeOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume registration events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

// errMalformed 无法解析的消息：记录后 ack 丢弃，不重试
var errMalformed = errors.New("malformed registration event")

// ConsumeOnce 先重投本消费者的 pending 消息，再读取一批新消息，返回 ack 条数
// 转发失败的消息不 ack，留在 pending 中由下一轮重投；此时返回错误以触发退避
// 一条消息对应多个赛事时，重投可能重复发送已成功的主题（至少一次）
func (c *RegistrationConsumer) ConsumeOnce(ctx context.Context) (int, error) {
	pending, err := rediscommon.ReadPendingFromStream(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending messages: %w", err)
	}
	acked, err := c.handle(ctx, pending)
	if err != nil {
		// broker 仍不可用，先不拉取新消息
		return acked, err
	}

	messages, err := rediscommon.ReadFromStream(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.batchSize, c.block)
	if err != nil {
		return acked, fmt.Errorf("failed to read from stream: %w", err)
	}
	n, err := c.handle(ctx, messages)
	return acked + n, err
}

// handle 按顺序处理；遇到第一条转发失败即停止，保持投递顺序
func (c *RegistrationConsumer) handle(ctx context.Context, messages []rediscommon.StreamMessage) (int, error) {
	acked := 0
	for _, msg := range messages {
		if err := c.processEvent(msg); err != nil {
			if !errors.Is(err, errMalformed) {
				return acked, fmt.Errorf("message %s: %w", msg.ID, err)
			}
			c.logger.Error("Dropping malformed registration event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		if err := rediscommon.AckMessage(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		acked++
	}
	return acked, nil
}

func (c *RegistrationConsumer) processEvent(msg rediscommon.StreamMessage) error {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return fmt.Errorf("%w: message %s has no data field", errMalformed, msg.ID)
	}
	var event broadcast.RegistrationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	switch event.Type {
	case broadcast.EventTeamRegistered, broadcast.EventTeamDeleted:
	default:
		c.logger.Warn("Unknown registration event type", zap.String("type", event.Type))
		return nil
	}

	for _, eventID := range event.EventIDs {
		if err := c.forwarder.Publish(c.Topic(eventID), []byte(data)); err != nil {
			return fmt.Errorf("failed to forward %s for event %s: %w", event.Type, eventID, err)
		}
	}

	c.logger.Info("Registration event forwarded",
		zap.String("type", event.Type),
		zap.String("team_id", event.TeamID),
		zap.Int("events", len(event.EventIDs)),
	)
	return nil
}
