package domain

import (
	"database/sql"
	"strings"
)

// MerchSize 纪念品尺码
type MerchSize string

var merchSizes = map[MerchSize]bool{"S": true, "M": true, "L": true, "XL": true, "XXL": true}

// ParseMerchSize 解析尺码
func ParseMerchSize(s string) (MerchSize, bool) {
	m := MerchSize(strings.ToUpper(strings.TrimSpace(s)))
	return m, merchSizes[m]
}

// Participant 参与者领域模型（对应 participants 表）
type Participant struct {
	ParticipantID string         `db:"participant_id"`
	Name          string         `db:"name"`
	Phone         sql.NullString `db:"phone"`
	Email         sql.NullString `db:"email"`
	Gender        Gender         `db:"gender"`
	MerchSize     MerchSize      `db:"merch_size"`
	CollegeID     sql.NullString `db:"college_id"`
	ClubID        sql.NullString `db:"club_id"`
}
