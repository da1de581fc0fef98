package service

import (
	"database/sql"

	"festflow/internal/domain"
)

// ParticipantView API 输出（可空字段展开为 omitempty 字符串）
type ParticipantView struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Gender        string `json:"gender"`
	MerchSize     string `json:"merch_size"`
	CollegeID     string `json:"college_id,omitempty"`
	ClubID        string `json:"club_id,omitempty"`
	RoomID        string `json:"room_id,omitempty"`
}

func NewParticipantView(p domain.Participant, roomID string) ParticipantView {
	return ParticipantView{
		ParticipantID: p.ParticipantID,
		Name:          p.Name,
		Phone:         p.Phone.String,
		Email:         p.Email.String,
		Gender:        string(p.Gender),
		MerchSize:     string(p.MerchSize),
		CollegeID:     p.CollegeID.String,
		ClubID:        p.ClubID.String,
		RoomID:        roomID,
	}
}

// RoomView 房间及占用
type RoomView struct {
	RoomID           string `json:"room_id"`
	BuildingName     string `json:"building_name"`
	RoomNo           string `json:"room_no"`
	Gender           string `json:"gender"`
	MaxCapacity      int    `json:"max_capacity"`
	CurrentOccupancy int    `json:"current_occupancy"`
	Available        int    `json:"available"`
}

func NewRoomView(r domain.RoomWithOccupancy) RoomView {
	return RoomView{
		RoomID:           r.RoomID,
		BuildingName:     r.BuildingName,
		RoomNo:           r.RoomNo,
		Gender:           string(r.Gender),
		MaxCapacity:      r.MaxCapacity,
		CurrentOccupancy: r.CurrentOccupancy,
		Available:        r.Available(),
	}
}

type TeamView struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

func optional(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
