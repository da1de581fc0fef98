package seed

import (
	"context"
	"fmt"
	"time"

	"festflow/internal/service"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// apiResult 与 httpapi.Result 同构
type apiResult[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const resultSuccess = 2000

// APIError 非 2xx 响应
type APIError struct {
	Path       string
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("POST %s: status %d %s: %s", e.Path, e.StatusCode, e.Kind, e.Message)
}

// Client festflow HTTP API 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建 API 客户端
// POST 不做自动重试，避免重复创建
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var ok apiResult[T]
	var fail apiResult[any]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&ok).
		SetError(&fail).
		Post(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("call %s: %w", path, err)
	}
	if resp.IsError() {
		var zero T
		msg := fail.Message
		if msg == "" {
			msg = resp.Status()
		}
		return zero, &APIError{Path: path, StatusCode: resp.StatusCode(), Kind: fail.Kind, Message: msg}
	}
	if ok.Code != resultSuccess {
		var zero T
		return zero, &APIError{Path: path, StatusCode: resp.StatusCode(), Message: ok.Message}
	}

	c.logger.Debug("seed request ok", zap.String("path", path), zap.Int("status_code", resp.StatusCode()))
	return ok.Result, nil
}

func (c *Client) CreateFest(ctx context.Context, req service.CreateFestRequest) (service.FestView, error) {
	return post[service.FestView](ctx, c, "/api/v1/fests", req)
}

func (c *Client) CreateRoom(ctx context.Context, req service.CreateRoomRequest) (service.RoomView, error) {
	return post[service.RoomView](ctx, c, "/api/v1/rooms", req)
}

func (c *Client) CreateCollege(ctx context.Context, req service.CreateCollegeRequest) (service.CollegeView, error) {
	return post[service.CollegeView](ctx, c, "/api/v1/colleges", req)
}

func (c *Client) CreateClub(ctx context.Context, req service.CreateClubRequest) (service.ClubView, error) {
	return post[service.ClubView](ctx, c, "/api/v1/clubs", req)
}

func (c *Client) CreateEvent(ctx context.Context, req service.CreateEventRequest) (service.EventView, error) {
	return post[service.EventView](ctx, c, "/api/v1/events", req)
}

func (c *Client) CreateTeamForEvent(ctx context.Context, req service.CreateTeamRequest) (service.CreateTeamResponse, error) {
	return post[service.CreateTeamResponse](ctx, c, "/api/v1/teams/add-to-event", req)
}
