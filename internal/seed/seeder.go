package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"festflow/internal/service"

	"go.uber.org/zap"
)

var (
	maleFirstNames = []string{
		"Aarav", "Vihaan", "Arjun", "Aditya", "Kabir", "Ishaan", "Rohan", "Karan",
		"Rahul", "Aryan", "Manav", "Laksh", "Reyansh", "Raj", "Parth", "Mihir",
	}
	femaleFirstNames = []string{
		"Ritika", "Isha", "Sneha", "Ananya", "Meera", "Diya", "Nisha", "Priya",
		"Aditi", "Kavya", "Sanya", "Rhea", "Neha", "Tanya", "Navya", "Simran",
	}
	lastNames = []string{
		"Sharma", "Verma", "Reddy", "Patel", "Singh", "Iyer", "Gupta", "Das",
		"Nair", "Mehta", "Joshi", "Bhat", "Kapoor", "Ghosh", "Menon", "Rao",
	}
	merchSizes = []string{"S", "M", "L", "XL"}

	colleges = []service.CreateCollegeRequest{
		{Name: "Indian Institute of Technology Bombay", City: "Mumbai", State: "Maharashtra"},
		{Name: "Indian Institute of Technology Delhi", City: "New Delhi", State: "Delhi"},
		{Name: "Indian Institute of Science Bangalore", City: "Bengaluru", State: "Karnataka"},
		{Name: "Birla Institute of Technology and Science Pilani", City: "Pilani", State: "Rajasthan"},
		{Name: "National Institute of Technology Tiruchirappalli", City: "Tiruchirappalli", State: "Tamil Nadu"},
		{Name: "Anna University", City: "Chennai", State: "Tamil Nadu"},
		{Name: "Jadavpur University", City: "Kolkata", State: "West Bengal"},
		{Name: "Delhi Technological University", City: "New Delhi", State: "Delhi"},
	}

	clubTemplates = []struct{ name, kind string }{
		{"Coding Club", "technical"},
		{"Dance Club", "cultural"},
		{"Robotics Club", "technical"},
		{"Music Club", "cultural"},
		{"Literary Club", "managerial"},
	}

	events = []service.CreateEventRequest{
		{Name: "callidus", Category: "technical", EventDate: "2026-12-01", EventTime: "10:00:00", MaxTeamSize: 4, Venue: "Auditorium A"},
		{Name: "parivesh", Category: "cultural", EventDate: "2026-12-02", EventTime: "18:00:00", MaxTeamSize: 5, Venue: "Open Stage"},
		{Name: "hackatron", Category: "technical", EventDate: "2026-12-03", EventTime: "09:00:00", MaxTeamSize: 4, Venue: "Lab 1"},
		{Name: "hardwired", Category: "technical", EventDate: "2026-12-04", EventTime: "09:30:00", MaxTeamSize: 4, Venue: "Hardware Lab"},
	}
)

// API 由 Client 实现，测试可替换
type API interface {
	CreateFest(ctx context.Context, req service.CreateFestRequest) (service.FestView, error)
	CreateRoom(ctx context.Context, req service.CreateRoomRequest) (service.RoomView, error)
	CreateCollege(ctx context.Context, req service.CreateCollegeRequest) (service.CollegeView, error)
	CreateClub(ctx context.Context, req service.CreateClubRequest) (service.ClubView, error)
	CreateEvent(ctx context.Context, req service.CreateEventRequest) (service.EventView, error)
	CreateTeamForEvent(ctx context.Context, req service.CreateTeamRequest) (service.CreateTeamResponse, error)
}

// Options 种子数据规模
type Options struct {
	FestName      string
	FestYear      int
	RoomCapacity  int
	RoomsPerBlock int
	TeamsPerEvent int
	RandSeed      uint64
}

func DefaultOptions() Options {
	return Options{
		FestName:      "Infotsav",
		FestYear:      2026,
		RoomCapacity:  100,
		RoomsPerBlock: 2,
		TeamsPerEvent: 12,
		RandSeed:      1,
	}
}

// Summary 种子结果统计
type Summary struct {
	FestID        string
	Rooms         int
	Colleges      int
	Clubs         int
	Events        int
	TeamsCreated  int
	TeamsRejected int
	Participants  int
}

type Seeder struct {
	api    API
	opts   Options
	rng    *rand.Rand
	logger *zap.Logger
	emails map[string]struct{}
}

func NewSeeder(api API, opts Options, logger *zap.Logger) *Seeder {
	return &Seeder{
		api:    api,
		opts:   opts,
		rng:    rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed^0x9e3779b97f4a7c15)),
		logger: logger,
		emails: make(map[string]struct{}),
	}
}

// Run 依次创建 fest、房间、学院与社团、赛事、队伍
// 单支队伍被拒（满员/无房）只计数，不中断
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	fest, err := s.api.CreateFest(ctx, service.CreateFestRequest{Name: s.opts.FestName, Year: s.opts.FestYear})
	if err != nil {
		return sum, fmt.Errorf("create fest: %w", err)
	}
	sum.FestID = fest.FestID

	if sum.Rooms, err = s.createRooms(ctx); err != nil {
		return sum, err
	}

	collegeIDs, clubIDs, err := s.createCollegesAndClubs(ctx)
	if err != nil {
		return sum, err
	}
	sum.Colleges, sum.Clubs = len(collegeIDs), len(clubIDs)

	for _, tpl := range events {
		req := tpl
		req.FestID = fest.FestID
		ev, err := s.api.CreateEvent(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("create event %s: %w", req.Name, err)
		}
		sum.Events++

		for n := 1; n <= s.opts.TeamsPerEvent; n++ {
			team := s.randomTeam(ev, n, collegeIDs, clubIDs)
			resp, err := s.api.CreateTeamForEvent(ctx, team)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					sum.TeamsRejected++
					s.logger.Warn("team rejected",
						zap.String("team_name", team.TeamName),
						zap.Int("status_code", apiErr.StatusCode),
						zap.String("kind", apiErr.Kind),
						zap.String("message", apiErr.Message),
					)
					continue
				}
				return sum, fmt.Errorf("create team %s: %w", team.TeamName, err)
			}
			sum.TeamsCreated++
			sum.Participants += len(resp.Participants)
		}
	}

	s.logger.Info("seed complete",
		zap.String("fest_id", sum.FestID),
		zap.Int("rooms", sum.Rooms),
		zap.Int("events", sum.Events),
		zap.Int("teams_created", sum.TeamsCreated),
		zap.Int("teams_rejected", sum.TeamsRejected),
		zap.Int("participants", sum.Participants),
	)
	return sum, nil
}

func (s *Seeder) createRooms(ctx context.Context) (int, error) {
	blocks := []struct {
		building string
		gender   string
		base     int
	}{
		{"Hostel-Main", "MALE", 100},
		{"Hostel-Annex", "MALE", 100},
		{"Hostel-Ladies", "FEMALE", 200},
		{"Hostel-East", "FEMALE", 200},
	}
	count := 0
	for _, b := range blocks {
		for i := 1; i <= s.opts.RoomsPerBlock; i++ {
			req := service.CreateRoomRequest{
				BuildingName: b.building,
				RoomNo:       fmt.Sprintf("%d", b.base+i),
				Gender:       b.gender,
				MaxCapacity:  s.opts.RoomCapacity,
			}
			if _, err := s.api.CreateRoom(ctx, req); err != nil {
				return count, fmt.Errorf("create room %s/%s: %w", req.BuildingName, req.RoomNo, err)
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) createCollegesAndClubs(ctx context.Context) ([]string, []string, error) {
	var collegeIDs, clubIDs []string
	for idx, c := range colleges {
		college, err := s.api.CreateCollege(ctx, c)
		if err != nil {
			return nil, nil, fmt.Errorf("create college %s: %w", c.Name, err)
		}
		collegeIDs = append(collegeIDs, college.CollegeID)

		prefix := strings.Fields(c.Name)[0]
		for j := 0; j < 3; j++ {
			tpl := clubTemplates[(idx+j)%len(clubTemplates)]
			club, err := s.api.CreateClub(ctx, service.CreateClubRequest{
				CollegeID:   college.CollegeID,
				ClubName:    fmt.Sprintf("%s - %s_%d", tpl.name, prefix, 10+s.rng.IntN(90)),
				ClubType:    tpl.kind,
				POC:         s.randomName(s.randomGender()),
				POCContact:  fmt.Sprintf("%d", 9000000000+idx*10+j),
				POCPosition: pick(s.rng, []string{"President", "Secretary", "Coordinator"}),
			})
			if err != nil {
				return nil, nil, fmt.Errorf("create club for %s: %w", c.Name, err)
			}
			clubIDs = append(clubIDs, club.ClubID)
		}
	}
	return collegeIDs, clubIDs, nil
}

func (s *Seeder) randomTeam(ev service.EventView, n int, collegeIDs, clubIDs []string) service.CreateTeamRequest {
	size := 1 + s.rng.IntN(ev.MaxTeamSize)
	participants := make([]service.ParticipantSpec, 0, size)
	for i := 0; i < size; i++ {
		gender := s.randomGender()
		name := s.randomName(gender)
		var clubID string
		if len(clubIDs) > 0 && s.rng.IntN(2) == 0 {
			clubID = pick(s.rng, clubIDs)
		}
		participants = append(participants, service.ParticipantSpec{
			Name:      name,
			Phone:     fmt.Sprintf("9%09d", 100000000+s.rng.IntN(900000000)),
			Email:     s.uniqueEmail(name),
			Gender:    gender,
			MerchSize: pick(s.rng, merchSizes),
			CollegeID: pick(s.rng, collegeIDs),
			ClubID:    clubID,
		})
	}
	return service.CreateTeamRequest{
		EventID:      ev.EventID,
		TeamName:     fmt.Sprintf("%s_team_%d", ev.Name, n),
		Participants: participants,
	}
}

func (s *Seeder) randomGender() string {
	if s.rng.IntN(2) == 0 {
		return "MALE"
	}
	return "FEMALE"
}

func (s *Seeder) randomName(gender string) string {
	first := pick(s.rng, maleFirstNames)
	if gender == "FEMALE" {
		first = pick(s.rng, femaleFirstNames)
	}
	return first + " " + pick(s.rng, lastNames)
}

func (s *Seeder) uniqueEmail(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	email := base + "@example.com"
	for cnt := 1; ; cnt++ {
		if _, used := s.emails[email]; !used {
			break
		}
		email = fmt.Sprintf("%s%d@example.com", base, cnt)
	}
	s.emails[email] = struct{}{}
	return email
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
