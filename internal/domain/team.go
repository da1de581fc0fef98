package domain

// Team 队伍（对应 teams 表）
type Team struct {
	TeamID   string `db:"team_id"`
	TeamName string `db:"team_name"`
}

// TeamMember 队伍成员关联（team_members）
type TeamMember struct {
	TeamID        string `db:"team_id"`
	ParticipantID string `db:"participant_id"`
}

// TeamEvent 队伍与赛事关联（team_events）
type TeamEvent struct {
	TeamID  string `db:"team_id"`
	EventID string `db:"event_id"`
}
