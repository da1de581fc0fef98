package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"festflow/internal/domain"

	"github.com/google/uuid"
)

// memoryTables 内存表；事务开始时整体复制，提交时整体替换
type memoryTables struct {
	fests        map[string]domain.Fest
	events       map[string]domain.Event
	colleges     map[string]domain.College
	clubs        map[string]domain.Club
	participants map[string]domain.Participant
	teams        map[string]domain.Team
	members      map[string]map[string]struct{} // team_id -> participant_ids
	teamEvents   map[string]map[string]struct{} // team_id -> event_ids
	rooms        map[string]domain.Room
	occupancy    map[string]int    // room_id -> current_occupancy
	reservations map[string]string // participant_id -> room_id
}

func newMemoryTables() *memoryTables {
	return &memoryTables{
		fests:        map[string]domain.Fest{},
		events:       map[string]domain.Event{},
		colleges:     map[string]domain.College{},
		clubs:        map[string]domain.Club{},
		participants: map[string]domain.Participant{},
		teams:        map[string]domain.Team{},
		members:      map[string]map[string]struct{}{},
		teamEvents:   map[string]map[string]struct{}{},
		rooms:        map[string]domain.Room{},
		occupancy:    map[string]int{},
		reservations: map[string]string{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySetMap(m map[string]map[string]struct{}) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(m))
	for k, set := range m {
		out[k] = copyMap(set)
	}
	return out
}

func (t *memoryTables) clone() *memoryTables {
	return &memoryTables{
		fests:        copyMap(t.fests),
		events:       copyMap(t.events),
		colleges:     copyMap(t.colleges),
		clubs:        copyMap(t.clubs),
		participants: copyMap(t.participants),
		teams:        copyMap(t.teams),
		members:      copySetMap(t.members),
		teamEvents:   copySetMap(t.teamEvents),
		rooms:        copyMap(t.rooms),
		occupancy:    copyMap(t.occupancy),
		reservations: copyMap(t.reservations),
	}
}

// MemoryStore 内存实现（开发/测试用，DB 不可用时的 fallback）
// 事务串行执行：BeginTx 持有全局锁直到 Commit/Rollback，
// 因此持有事务期间不得在同一 goroutine 调用 MemoryStore 的非事务方法
type MemoryStore struct {
	mu     sync.Mutex
	tables *memoryTables
}

// NewMemoryStore 创建空的 MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: newMemoryTables()}
}

func (s *MemoryStore) BeginTx(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memoryTx{store: s, t: s.tables.clone()}, nil
}

// SetOccupancy 直接设置房间计数（测试夹具）
func (s *MemoryStore) SetOccupancy(roomID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables.occupancy[roomID] = n
}

// DropOccupancy 删除房间计数行，模拟数据不一致（测试夹具）
func (s *MemoryStore) DropOccupancy(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables.occupancy, roomID)
}

// Occupancy 返回房间计数及记录是否存在
func (s *MemoryStore) Occupancy(roomID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.tables.occupancy[roomID]
	return n, ok
}

// Counts 返回 participants/teams/reservations 行数（测试断言用）
func (s *MemoryStore) Counts() (participants, teams, reservations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables.participants), len(s.tables.teams), len(s.tables.reservations)
}

type memoryTx struct {
	store *MemoryStore
	t     *memoryTables
	done  bool
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return fmt.Errorf("transaction already finished")
	}
	tx.store.tables = tx.t
	tx.done = true
	tx.store.mu.Unlock()
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.store.mu.Unlock()
	return nil
}

// ---- tx: events / participants ----

func (tx *memoryTx) GetEvent(_ context.Context, eventID string) (*domain.Event, error) {
	e, ok := tx.t.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (tx *memoryTx) GetParticipant(_ context.Context, participantID string) (*domain.Participant, error) {
	p, ok := tx.t.participants[participantID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (tx *memoryTx) CreateParticipant(_ context.Context, p *domain.Participant) (string, error) {
	if p.CollegeID.Valid {
		if _, ok := tx.t.colleges[p.CollegeID.String]; !ok {
			return "", fmt.Errorf("%w: participants_college_id_fkey", ErrForeignKey)
		}
	}
	if p.ClubID.Valid {
		if _, ok := tx.t.clubs[p.ClubID.String]; !ok {
			return "", fmt.Errorf("%w: participants_club_id_fkey", ErrForeignKey)
		}
	}
	row := *p
	row.ParticipantID = uuid.NewString()
	tx.t.participants[row.ParticipantID] = row
	return row.ParticipantID, nil
}

func (tx *memoryTx) DeleteParticipants(_ context.Context, participantIDs []string) (int, error) {
	for _, id := range participantIDs {
		if _, ok := tx.t.reservations[id]; ok {
			return 0, fmt.Errorf("%w: room_reservations_participant_id_fkey", ErrForeignKey)
		}
		for _, set := range tx.t.members {
			if _, ok := set[id]; ok {
				return 0, fmt.Errorf("%w: team_members_participant_id_fkey", ErrForeignKey)
			}
		}
	}
	n := 0
	for _, id := range participantIDs {
		if _, ok := tx.t.participants[id]; ok {
			delete(tx.t.participants, id)
			n++
		}
	}
	return n, nil
}

// ---- tx: teams ----

func (tx *memoryTx) GetTeam(_ context.Context, teamID string) (*domain.Team, error) {
	team, ok := tx.t.teams[teamID]
	if !ok {
		return nil, ErrNotFound
	}
	return &team, nil
}

func (tx *memoryTx) CreateTeam(_ context.Context, teamName string) (string, error) {
	id := uuid.NewString()
	tx.t.teams[id] = domain.Team{TeamID: id, TeamName: teamName}
	return id, nil
}

func (tx *memoryTx) DeleteTeam(_ context.Context, teamID string) error {
	if _, ok := tx.t.teams[teamID]; !ok {
		return ErrNotFound
	}
	if len(tx.t.members[teamID]) > 0 {
		return fmt.Errorf("%w: team_members_team_id_fkey", ErrForeignKey)
	}
	if len(tx.t.teamEvents[teamID]) > 0 {
		return fmt.Errorf("%w: team_events_team_id_fkey", ErrForeignKey)
	}
	delete(tx.t.teams, teamID)
	delete(tx.t.members, teamID)
	delete(tx.t.teamEvents, teamID)
	return nil
}

func (tx *memoryTx) AddTeamMember(_ context.Context, teamID, participantID string) error {
	if _, ok := tx.t.teams[teamID]; !ok {
		return fmt.Errorf("%w: team_members_team_id_fkey", ErrForeignKey)
	}
	if _, ok := tx.t.participants[participantID]; !ok {
		return fmt.Errorf("%w: team_members_participant_id_fkey", ErrForeignKey)
	}
	set := tx.t.members[teamID]
	if set == nil {
		set = map[string]struct{}{}
		tx.t.members[teamID] = set
	}
	if _, ok := set[participantID]; ok {
		return fmt.Errorf("%w: team_members_pkey", ErrDuplicate)
	}
	set[participantID] = struct{}{}
	return nil
}

func (tx *memoryTx) LinkTeamEvent(_ context.Context, teamID, eventID string) error {
	if _, ok := tx.t.teams[teamID]; !ok {
		return fmt.Errorf("%w: team_events_team_id_fkey", ErrForeignKey)
	}
	if _, ok := tx.t.events[eventID]; !ok {
		return fmt.Errorf("%w: team_events_event_id_fkey", ErrForeignKey)
	}
	set := tx.t.teamEvents[teamID]
	if set == nil {
		set = map[string]struct{}{}
		tx.t.teamEvents[teamID] = set
	}
	if _, ok := set[eventID]; ok {
		return fmt.Errorf("%w: team_events_pkey", ErrDuplicate)
	}
	set[eventID] = struct{}{}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (tx *memoryTx) ListTeamMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	out := []domain.TeamMember{}
	for _, pid := range sortedKeys(tx.t.members[teamID]) {
		out = append(out, domain.TeamMember{TeamID: teamID, ParticipantID: pid})
	}
	return out, nil
}

func (tx *memoryTx) ListTeamEvents(_ context.Context, teamID string) ([]domain.TeamEvent, error) {
	out := []domain.TeamEvent{}
	for _, eid := range sortedKeys(tx.t.teamEvents[teamID]) {
		out = append(out, domain.TeamEvent{TeamID: teamID, EventID: eid})
	}
	return out, nil
}

func (tx *memoryTx) DeleteTeamMembers(_ context.Context, teamID string) error {
	delete(tx.t.members, teamID)
	return nil
}

func (tx *memoryTx) DeleteTeamEvents(_ context.Context, teamID string) error {
	delete(tx.t.teamEvents, teamID)
	return nil
}

// ---- tx: reservations / occupancy ----

func (tx *memoryTx) GetReservation(_ context.Context, participantID string) (*domain.Reservation, error) {
	roomID, ok := tx.t.reservations[participantID]
	if !ok {
		return nil, ErrNotFound
	}
	return &domain.Reservation{ParticipantID: participantID, RoomID: roomID}, nil
}

func (tx *memoryTx) InsertReservation(_ context.Context, participantID, roomID string) error {
	if _, ok := tx.t.participants[participantID]; !ok {
		return fmt.Errorf("%w: room_reservations_participant_id_fkey", ErrForeignKey)
	}
	if _, ok := tx.t.rooms[roomID]; !ok {
		return fmt.Errorf("%w: room_reservations_room_id_fkey", ErrForeignKey)
	}
	if _, ok := tx.t.reservations[participantID]; ok {
		return fmt.Errorf("%w: room_reservations_pkey", ErrDuplicate)
	}
	tx.t.reservations[participantID] = roomID
	return nil
}

func (tx *memoryTx) DeleteReservation(_ context.Context, participantID string) error {
	if _, ok := tx.t.reservations[participantID]; !ok {
		return ErrNotFound
	}
	delete(tx.t.reservations, participantID)
	return nil
}

func (tx *memoryTx) IncrementOccupancy(_ context.Context, roomID string) error {
	n, ok := tx.t.occupancy[roomID]
	if !ok {
		return ErrOccupancyMissing
	}
	room, ok := tx.t.rooms[roomID]
	if !ok {
		return ErrOccupancyMissing
	}
	if n >= room.MaxCapacity {
		return ErrRoomFull
	}
	tx.t.occupancy[roomID] = n + 1
	return nil
}

func (tx *memoryTx) DecrementOccupancy(_ context.Context, roomID string, by int) (bool, error) {
	n, ok := tx.t.occupancy[roomID]
	if !ok {
		return false, nil
	}
	n -= by
	if n < 0 {
		n = 0
	}
	tx.t.occupancy[roomID] = n
	return true, nil
}

func (tx *memoryTx) ListEligibleRooms(_ context.Context, gender domain.Gender, limit int) ([]domain.RoomWithOccupancy, error) {
	if limit <= 0 {
		limit = 1
	}
	out := []domain.RoomWithOccupancy{}
	for id, room := range tx.t.rooms {
		n, ok := tx.t.occupancy[id]
		if !ok || room.Gender != gender || n >= room.MaxCapacity {
			continue
		}
		out = append(out, domain.RoomWithOccupancy{Room: room, CurrentOccupancy: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentOccupancy != out[j].CurrentOccupancy {
			return out[i].CurrentOccupancy < out[j].CurrentOccupancy
		}
		return out[i].RoomID < out[j].RoomID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- rooms ----

func (s *MemoryStore) CreateRoom(_ context.Context, room *domain.Room) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.tables.rooms {
		if r.BuildingName == room.BuildingName && r.RoomNo == room.RoomNo {
			return "", fmt.Errorf("%w: rooms_building_name_room_no_key", ErrDuplicate)
		}
	}
	row := *room
	row.RoomID = uuid.NewString()
	s.tables.rooms[row.RoomID] = row
	s.tables.occupancy[row.RoomID] = 0
	return row.RoomID, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID string) (*domain.RoomWithOccupancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.tables.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	n, ok := s.tables.occupancy[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return &domain.RoomWithOccupancy{Room: room, CurrentOccupancy: n}, nil
}

func sortRooms(rooms []domain.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].BuildingName != rooms[j].BuildingName {
			return rooms[i].BuildingName < rooms[j].BuildingName
		}
		return rooms[i].RoomNo < rooms[j].RoomNo
	})
}

func sortParticipants(ps []domain.Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ParticipantID < ps[j].ParticipantID
	})
}

func (s *MemoryStore) ListRoomsWithOccupancy(_ context.Context) ([]domain.RoomWithOccupancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]domain.Room, 0, len(s.tables.rooms))
	for _, r := range s.tables.rooms {
		rooms = append(rooms, r)
	}
	sortRooms(rooms)
	out := make([]domain.RoomWithOccupancy, 0, len(rooms))
	for _, r := range rooms {
		n, ok := s.tables.occupancy[r.RoomID]
		if !ok {
			continue
		}
		out = append(out, domain.RoomWithOccupancy{Room: r, CurrentOccupancy: n})
	}
	return out, nil
}

func (s *MemoryStore) ListRoomParticipants(_ context.Context, roomID string) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Participant{}
	for pid, rid := range s.tables.reservations {
		if rid != roomID {
			continue
		}
		if p, ok := s.tables.participants[pid]; ok {
			out = append(out, p)
		}
	}
	sortParticipants(out)
	return out, nil
}

func (s *MemoryStore) ListRoster(_ context.Context) ([]RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []RosterEntry{}
	for pid, rid := range s.tables.reservations {
		room, ok := s.tables.rooms[rid]
		if !ok {
			continue
		}
		p, ok := s.tables.participants[pid]
		if !ok {
			continue
		}
		out = append(out, RosterEntry{Room: room, Participant: p})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Room.BuildingName != b.Room.BuildingName {
			return a.Room.BuildingName < b.Room.BuildingName
		}
		if a.Room.RoomNo != b.Room.RoomNo {
			return a.Room.RoomNo < b.Room.RoomNo
		}
		return a.Participant.Name < b.Participant.Name
	})
	return out, nil
}

// ---- catalog ----

func (s *MemoryStore) CreateFest(_ context.Context, fest *domain.Fest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *fest
	row.FestID = uuid.NewString()
	s.tables.fests[row.FestID] = row
	return row.FestID, nil
}

func (s *MemoryStore) GetFest(_ context.Context, festID string) (*domain.Fest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tables.fests[festID]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *MemoryStore) CreateEvent(_ context.Context, event *domain.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.FestID.Valid {
		if _, ok := s.tables.fests[event.FestID.String]; !ok {
			return "", fmt.Errorf("%w: events_fest_id_fkey", ErrForeignKey)
		}
	}
	row := *event
	row.EventID = uuid.NewString()
	s.tables.events[row.EventID] = row
	return row.EventID, nil
}

func (s *MemoryStore) FindEvent(_ context.Context, eventID string) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tables.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListEvents(_ context.Context) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, 0, len(s.tables.events))
	for _, e := range s.tables.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		if a.EventTime != b.EventTime {
			return a.EventTime < b.EventTime
		}
		return a.Name < b.Name
	})
	return out, nil
}

func (s *MemoryStore) CreateCollege(_ context.Context, college *domain.College) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *college
	row.CollegeID = uuid.NewString()
	s.tables.colleges[row.CollegeID] = row
	return row.CollegeID, nil
}

func (s *MemoryStore) GetCollege(_ context.Context, collegeID string) (*domain.College, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.tables.colleges[collegeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateClub(_ context.Context, club *domain.Club) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables.colleges[club.CollegeID]; !ok {
		return "", fmt.Errorf("%w: clubs_college_id_fkey", ErrForeignKey)
	}
	row := *club
	row.ClubID = uuid.NewString()
	s.tables.clubs[row.ClubID] = row
	return row.ClubID, nil
}

func (s *MemoryStore) GetClub(_ context.Context, clubID string) (*domain.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.tables.clubs[clubID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ---- registration queries ----

func (s *MemoryStore) FindTeam(_ context.Context, teamID string) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.tables.teams[teamID]
	if !ok {
		return nil, ErrNotFound
	}
	return &team, nil
}

func (s *MemoryStore) FindReservation(_ context.Context, participantID string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID, ok := s.tables.reservations[participantID]
	if !ok {
		return nil, ErrNotFound
	}
	return &domain.Reservation{ParticipantID: participantID, RoomID: roomID}, nil
}

func (s *MemoryStore) ListEventTeams(_ context.Context, eventID string) ([]domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Team{}
	for teamID, events := range s.tables.teamEvents {
		if _, ok := events[eventID]; !ok {
			continue
		}
		if team, ok := s.tables.teams[teamID]; ok {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (s *MemoryStore) ListTeamParticipants(_ context.Context, teamID string) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Participant{}
	for pid := range s.tables.members[teamID] {
		if p, ok := s.tables.participants[pid]; ok {
			out = append(out, p)
		}
	}
	sortParticipants(out)
	return out, nil
}

func (s *MemoryStore) GetEventStats(_ context.Context, eventID string) (*domain.EventStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &domain.EventStats{EventID: eventID}
	for teamID, events := range s.tables.teamEvents {
		if _, ok := events[eventID]; !ok {
			continue
		}
		stats.TeamCount++
		stats.ParticipantCount += len(s.tables.members[teamID])
	}
	return stats, nil
}

var _ Store = (*MemoryStore)(nil)
