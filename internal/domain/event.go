package domain

import (
	"database/sql"
	"time"
)

// EventCategory 赛事类别
type EventCategory string

const (
	CategoryTechnical  EventCategory = "technical"
	CategoryCultural   EventCategory = "cultural"
	CategoryManagerial EventCategory = "managerial"
)

// Valid 是否为合法类别
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryCultural, CategoryManagerial:
		return true
	}
	return false
}

// Fest 活动节（fests 表）
type Fest struct {
	FestID string `db:"fest_id"`
	Name   string `db:"name"`
	Year   int    `db:"year"`
}

// Event 赛事（events 表），MaxTeamSize 限制报名队伍人数
type Event struct {
	EventID     string         `db:"event_id"`
	FestID      sql.NullString `db:"fest_id"`
	Name        string         `db:"name"`
	Category    EventCategory  `db:"category"`
	Venue       sql.NullString `db:"venue"`
	EventDate   time.Time      `db:"event_date"`
	EventTime   string         `db:"event_time"` // HH:MM:SS
	MaxTeamSize int            `db:"max_team_size"`
}

// EventStats 赛事报名统计
type EventStats struct {
	EventID          string `json:"event_id"`
	TeamCount        int    `json:"team_count"`
	ParticipantCount int    `json:"participant_count"`
}
