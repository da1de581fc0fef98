package domain

import "strings"

// Gender 房间/参与者的性别类别（二值）
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender 解析性别，大小写不敏感
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

// Room 房间领域模型（对应 rooms 表）
type Room struct {
	RoomID       string `db:"room_id"`
	BuildingName string `db:"building_name"`
	RoomNo       string `db:"room_no"`
	Gender       Gender `db:"gender"`
	MaxCapacity  int    `db:"max_capacity"`
}

// RoomOccupancy 房间占用计数（对应 room_occupancy 表，与 Room 一对一）
type RoomOccupancy struct {
	RoomID           string `db:"room_id"`
	CurrentOccupancy int    `db:"current_occupancy"`
}

// RoomWithOccupancy rooms JOIN room_occupancy
type RoomWithOccupancy struct {
	Room
	CurrentOccupancy int `db:"current_occupancy"`
}

// Available 剩余床位
func (r RoomWithOccupancy) Available() int {
	if n := r.MaxCapacity - r.CurrentOccupancy; n > 0 {
		return n
	}
	return 0
}
