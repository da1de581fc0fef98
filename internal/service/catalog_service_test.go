package service

import (
	"context"
	"testing"

	"festflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_EventValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []CreateEventRequest{
		{Name: "", Category: "technical", EventDate: "2026-03-14", EventTime: "10:00", MaxTeamSize: 2},
		{Name: "Quiz", Category: "sports", EventDate: "2026-03-14", EventTime: "10:00", MaxTeamSize: 2},
		{Name: "Quiz", Category: "cultural", EventDate: "14/03/2026", EventTime: "10:00", MaxTeamSize: 2},
		{Name: "Quiz", Category: "cultural", EventDate: "2026-03-14", EventTime: "25:00", MaxTeamSize: 2},
		{Name: "Quiz", Category: "cultural", EventDate: "2026-03-14", EventTime: "10:00", MaxTeamSize: 0},
	}
	for _, req := range cases {
		_, err := f.catalog.CreateEvent(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "%+v", req)
	}

	ev, err := f.catalog.CreateEvent(ctx, CreateEventRequest{
		Name: "Quiz", Category: "Cultural", EventDate: "2026-03-14", EventTime: "10:30", MaxTeamSize: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "cultural", ev.Category)
	assert.Equal(t, "10:30:00", ev.EventTime)

	got, err := f.catalog.GetEvent(ctx, ev.EventID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", got.EventDate)
}

func TestCatalog_EventUnknownFest(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.catalog.CreateEvent(context.Background(), CreateEventRequest{
		FestID: "missing", Name: "Quiz", Category: "cultural", EventDate: "2026-03-14", EventTime: "10:00", MaxTeamSize: 2,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_CollegeAndClub(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	college, err := f.catalog.CreateCollege(ctx, CreateCollegeRequest{Name: "IIT Madras", City: "Chennai"})
	require.NoError(t, err)

	_, err = f.catalog.CreateClub(ctx, CreateClubRequest{CollegeID: "missing", ClubName: "Robotics", POCContact: "9000000000"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.catalog.CreateClub(ctx, CreateClubRequest{CollegeID: college.CollegeID, ClubName: "Robotics", POCContact: "90000000001"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	club, err := f.catalog.CreateClub(ctx, CreateClubRequest{CollegeID: college.CollegeID, ClubName: "Robotics", POCContact: "9000000000"})
	require.NoError(t, err)

	got, err := f.catalog.GetClub(ctx, club.ClubID)
	require.NoError(t, err)
	assert.Equal(t, college.CollegeID, got.CollegeID)

	_, err = f.catalog.GetCollege(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_TeamParticipantsIncludeRooms(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	room := f.room(t, "101", domain.GenderFemale, 2)
	eventID := f.event(t, 2)

	created, err := f.registration.CreateTeamForEvent(ctx, CreateTeamRequest{
		EventID: eventID, TeamName: "Rockets", Participants: []ParticipantSpec{member("Asha", "FEMALE")},
	})
	require.NoError(t, err)

	participants, err := f.catalog.ListTeamParticipants(ctx, created.Team.TeamID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, room, participants[0].RoomID)

	_, err = f.catalog.GetEventStats(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
