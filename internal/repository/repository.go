package repository

import (
	"context"
	"errors"

	"festflow/internal/domain"
)

// 存储层错误（不直接暴露给 API 层，由 service 映射为 domain.Error）
var (
	ErrNotFound = errors.New("record not found")
	// ErrRoomFull 条件自增失败：房间已满（或并发下被其他事务抢先）
	ErrRoomFull = errors.New("room is full")
	// ErrOccupancyMissing 房间缺少 room_occupancy 记录
	ErrOccupancyMissing = errors.New("occupancy record missing")
	// ErrCapacityViolation 数据库约束/触发器拒绝了计数写入（23514）
	// 条件 UPDATE 本应先拦截，出现即说明计数与约束不一致；事务已中止，不可重试
	ErrCapacityViolation = errors.New("occupancy constraint violated")
	ErrForeignKey        = errors.New("foreign key violation")
	ErrDuplicate         = errors.New("duplicate key")
)

// Store 事务入口 + 非事务读写
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	RoomsRepository
	CatalogRepository
	RegistrationQueries
}

// Tx 显式的事务句柄（unit of work）
// 所有多步写路径都在同一个 Tx 内完成，最终由调用方 Commit 一次
type Tx interface {
	EventReader
	ParticipantWriter
	TeamWriter
	ReservationWriter
	OccupancyLedgerTx
	RoomFinder

	Commit() error
	// Rollback 在 Commit 之后调用为 no-op，便于 defer
	Rollback() error
}

// EventReader 事务内读取赛事
type EventReader interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
}

// ParticipantWriter 参与者读写
type ParticipantWriter interface {
	GetParticipant(ctx context.Context, participantID string) (*domain.Participant, error)
	CreateParticipant(ctx context.Context, p *domain.Participant) (string, error)
	DeleteParticipants(ctx context.Context, participantIDs []string) (int, error)
}

// TeamWriter 队伍及关联行
type TeamWriter interface {
	GetTeam(ctx context.Context, teamID string) (*domain.Team, error)
	CreateTeam(ctx context.Context, teamName string) (string, error)
	DeleteTeam(ctx context.Context, teamID string) error
	AddTeamMember(ctx context.Context, teamID, participantID string) error
	LinkTeamEvent(ctx context.Context, teamID, eventID string) error
	ListTeamMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
	ListTeamEvents(ctx context.Context, teamID string) ([]domain.TeamEvent, error)
	DeleteTeamMembers(ctx context.Context, teamID string) error
	DeleteTeamEvents(ctx context.Context, teamID string) error
}

// ReservationWriter 房间预留行
type ReservationWriter interface {
	// GetReservation 无记录时返回 ErrNotFound
	GetReservation(ctx context.Context, participantID string) (*domain.Reservation, error)
	InsertReservation(ctx context.Context, participantID, roomID string) error
	DeleteReservation(ctx context.Context, participantID string) error
}

// OccupancyLedgerTx 占用计数，只允许在事务内修改
type OccupancyLedgerTx interface {
	// IncrementOccupancy 原子条件自增（current_occupancy < max_capacity）
	// 返回 ErrOccupancyMissing 或 ErrRoomFull
	IncrementOccupancy(ctx context.Context, roomID string) error
	// DecrementOccupancy 减 by 并截断到 0；记录不存在时返回 (false, nil)
	DecrementOccupancy(ctx context.Context, roomID string, by int) (bool, error)
}

// RoomFinder 分配候选房间查询
type RoomFinder interface {
	// ListEligibleRooms 返回指定性别、未满的房间，按 current_occupancy ASC, room_id ASC 排序
	ListEligibleRooms(ctx context.Context, gender domain.Gender, limit int) ([]domain.RoomWithOccupancy, error)
}

// RoomsRepository 房间管理（Room 与 RoomOccupancy 同事务创建）
type RoomsRepository interface {
	CreateRoom(ctx context.Context, room *domain.Room) (string, error)
	GetRoom(ctx context.Context, roomID string) (*domain.RoomWithOccupancy, error)
	ListRoomsWithOccupancy(ctx context.Context) ([]domain.RoomWithOccupancy, error)
	ListRoomParticipants(ctx context.Context, roomID string) ([]domain.Participant, error)
	// ListRoster 全部预留（房间 + 参与者），用于导出
	ListRoster(ctx context.Context) ([]RosterEntry, error)
}

// RosterEntry 住宿名单行
type RosterEntry struct {
	Room        domain.Room
	Participant domain.Participant
}

// CatalogRepository fest/event/college/club 直通 CRUD
type CatalogRepository interface {
	CreateFest(ctx context.Context, fest *domain.Fest) (string, error)
	GetFest(ctx context.Context, festID string) (*domain.Fest, error)
	CreateEvent(ctx context.Context, event *domain.Event) (string, error)
	FindEvent(ctx context.Context, eventID string) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateCollege(ctx context.Context, college *domain.College) (string, error)
	GetCollege(ctx context.Context, collegeID string) (*domain.College, error)
	CreateClub(ctx context.Context, club *domain.Club) (string, error)
	GetClub(ctx context.Context, clubID string) (*domain.Club, error)
}

// RegistrationQueries 报名相关只读查询
type RegistrationQueries interface {
	FindTeam(ctx context.Context, teamID string) (*domain.Team, error)
	ListEventTeams(ctx context.Context, eventID string) ([]domain.Team, error)
	ListTeamParticipants(ctx context.Context, teamID string) ([]domain.Participant, error)
	GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error)
	FindReservation(ctx context.Context, participantID string) (*domain.Reservation, error)
}
