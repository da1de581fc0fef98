package domain

// Reservation 参与者与房间床位的绑定（对应 room_reservations 表）
// 一个参与者同一时间至多一条
type Reservation struct {
	ParticipantID string `db:"participant_id"`
	RoomID        string `db:"room_id"`
}
