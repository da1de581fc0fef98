package domain

import "database/sql"

// College 高校（colleges 表）
type College struct {
	CollegeID string         `db:"college_id"`
	Name      string         `db:"name"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
}

// Club 社团（clubs 表），必须属于某个 College
type Club struct {
	ClubID      string         `db:"club_id"`
	CollegeID   string         `db:"college_id"`
	ClubName    string         `db:"club_name"`
	ClubType    sql.NullString `db:"club_type"`
	POC         sql.NullString `db:"poc"`
	POCContact  string         `db:"poc_contact"`
	POCPosition sql.NullString `db:"poc_position"`
}
