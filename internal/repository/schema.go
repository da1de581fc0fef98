package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema 创建全部表（IF NOT EXISTS，可重复执行）
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Schema PostgreSQL DDL
// 关联表外键均为 RESTRICT：删除顺序必须是 关联行 -> 端点
const Schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS fests (
    fest_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(128) NOT NULL,
    year INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    event_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    fest_id UUID REFERENCES fests(fest_id),
    name TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('technical', 'cultural', 'managerial')),
    venue VARCHAR(256),
    event_date DATE NOT NULL,
    event_time TIME NOT NULL,
    max_team_size INTEGER NOT NULL CHECK (max_team_size > 0)
);

CREATE TABLE IF NOT EXISTS colleges (
    college_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(150) NOT NULL,
    city VARCHAR(100),
    state VARCHAR(100)
);

CREATE TABLE IF NOT EXISTS clubs (
    club_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    college_id UUID NOT NULL REFERENCES colleges(college_id),
    club_name VARCHAR(100) NOT NULL,
    club_type VARCHAR(50),
    poc VARCHAR(100),
    poc_contact VARCHAR(10) NOT NULL,
    poc_position VARCHAR(100)
);

CREATE TABLE IF NOT EXISTS participants (
    participant_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    phone VARCHAR(15),
    email VARCHAR(100),
    gender TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    merch_size TEXT NOT NULL CHECK (merch_size IN ('S', 'M', 'L', 'XL', 'XXL')),
    college_id UUID REFERENCES colleges(college_id),
    club_id UUID REFERENCES clubs(club_id)
);

CREATE TABLE IF NOT EXISTS teams (
    team_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    team_name VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS team_members (
    team_id UUID NOT NULL REFERENCES teams(team_id) ON DELETE RESTRICT,
    participant_id UUID NOT NULL REFERENCES participants(participant_id) ON DELETE RESTRICT,
    PRIMARY KEY (team_id, participant_id)
);

CREATE INDEX IF NOT EXISTS idx_team_members_participant ON team_members(participant_id);

CREATE TABLE IF NOT EXISTS team_events (
    team_id UUID NOT NULL REFERENCES teams(team_id) ON DELETE RESTRICT,
    event_id UUID NOT NULL REFERENCES events(event_id) ON DELETE RESTRICT,
    PRIMARY KEY (team_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_team_events_event ON team_events(event_id);

CREATE TABLE IF NOT EXISTS rooms (
    room_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    building_name VARCHAR(100) NOT NULL,
    room_no VARCHAR(20) NOT NULL,
    gender TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    max_capacity INTEGER NOT NULL CHECK (max_capacity > 0),
    UNIQUE (building_name, room_no)
);

CREATE TABLE IF NOT EXISTS room_occupancy (
    room_id UUID PRIMARY KEY REFERENCES rooms(room_id) ON DELETE CASCADE,
    current_occupancy INTEGER NOT NULL DEFAULT 0 CHECK (current_occupancy >= 0)
);

CREATE TABLE IF NOT EXISTS room_reservations (
    participant_id UUID PRIMARY KEY REFERENCES participants(participant_id) ON DELETE RESTRICT,
    room_id UUID NOT NULL REFERENCES rooms(room_id)
);

CREATE INDEX IF NOT EXISTS idx_room_reservations_room ON room_reservations(room_id);

-- 上限约束（跨表，CHECK 无法表达）：超出 max_capacity 时抛 check_violation
CREATE OR REPLACE FUNCTION room_occupancy_within_capacity() RETURNS trigger AS $$
DECLARE
    cap INTEGER;
BEGIN
    SELECT max_capacity INTO cap FROM rooms WHERE room_id = NEW.room_id;
    IF cap IS NOT NULL AND NEW.current_occupancy > cap THEN
        RAISE EXCEPTION 'room % occupancy % exceeds capacity %', NEW.room_id, NEW.current_occupancy, cap
            USING ERRCODE = 'check_violation';
    END IF;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_room_occupancy_capacity ON room_occupancy;
CREATE TRIGGER trg_room_occupancy_capacity
    BEFORE INSERT OR UPDATE ON room_occupancy
    FOR EACH ROW EXECUTE FUNCTION room_occupancy_within_capacity();
`
