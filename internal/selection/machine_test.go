package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/truck"
)

var today = schedule.Date{Year: 2026, Month: time.October, Day: 19}

func at(d schedule.Date, hour int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, time.UTC)
}

func fixtureSlots() []schedule.DateSlot {
	tomorrow := today.AddDays(1)
	occurrences := []truck.Occurrence{
		{ID: "today-late", Open: at(today, 17), Close: at(today, 21), Location: &truck.Location{Address: "2 Main St"}},
		{ID: "today-early", Open: at(today, 8), Close: at(today, 12), Location: &truck.Location{Address: "1 Main St"}},
		{ID: "tomorrow", Open: at(tomorrow, 11), Close: at(tomorrow, 14)},
	}
	// today, tomorrow, and an empty third day
	return schedule.BuildDateSlots(occurrences, today, 3)
}

func TestMachine_InitialState(t *testing.T) {
	m := New()
	assert.Equal(t, NoDateSelected, m.State())
	assert.Nil(t, m.Active())
	_, ok := m.SelectedSlot()
	assert.False(t, ok)
	assert.ErrorIs(t, m.SelectOccurrence("x"), ErrNoDateSelected)
}

func TestMachine_LoadSelectsTodaysFirstOccurrence(t *testing.T) {
	m := New()
	m.Load(fixtureSlots(), today)

	assert.Equal(t, DateSelectedWithOccurrence, m.State())
	require.NotNil(t, m.Active())
	assert.Equal(t, truck.ID("today-early"), m.Active().ID)
	assert.Equal(t, "1 Main St", m.Active().Location.Address)

	slot, ok := m.SelectedSlot()
	assert.True(t, ok)
	assert.Equal(t, today, slot.Date)
}

func TestMachine_LoadWithEmptyToday(t *testing.T) {
	m := New()
	m.Load(schedule.BuildDateSlots(nil, today, 3), today)

	assert.Equal(t, DateSelectedNoOccurrence, m.State())
	assert.Nil(t, m.Active())
	assert.Equal(t, truck.ID(""), m.ActiveID())
}

func TestMachine_LoadWithTodayOutsideWindow(t *testing.T) {
	m := New()
	m.Load(schedule.BuildDateSlots(nil, today.AddDays(1), 3), today)
	assert.Equal(t, NoDateSelected, m.State())
}

func TestMachine_SelectDate(t *testing.T) {
	m := New()
	m.Load(fixtureSlots(), today)

	require.NoError(t, m.SelectDate(today.AddDays(1)))
	assert.Equal(t, DateSelectedWithOccurrence, m.State())
	assert.Equal(t, truck.ID("tomorrow"), m.ActiveID())

	require.NoError(t, m.SelectDate(today.AddDays(2)))
	assert.Equal(t, DateSelectedNoOccurrence, m.State())
	assert.Equal(t, truck.ID(""), m.ActiveID(), "empty day clears the previous occurrence")
	assert.Nil(t, m.Active())

	assert.ErrorIs(t, m.SelectDate(today.AddDays(3)), ErrDateOutOfWindow)
	assert.Equal(t, DateSelectedNoOccurrence, m.State(), "failed selection leaves state unchanged")
}

func TestMachine_SelectOccurrence(t *testing.T) {
	m := New()
	m.Load(fixtureSlots(), today)

	require.NoError(t, m.SelectOccurrence("today-late"))
	assert.Equal(t, DateSelectedWithOccurrence, m.State())
	assert.Equal(t, "2 Main St", m.Active().Location.Address)

	assert.ErrorIs(t, m.SelectOccurrence("tomorrow"), ErrOccurrenceNotInDate)
	assert.Equal(t, truck.ID("today-late"), m.ActiveID())

	require.NoError(t, m.SelectDate(today.AddDays(2)))
	assert.ErrorIs(t, m.SelectOccurrence("today-late"), ErrOccurrenceNotInDate)
}

func TestMachine_ReloadResetsSelection(t *testing.T) {
	m := New()
	m.Load(fixtureSlots(), today)
	require.NoError(t, m.SelectDate(today.AddDays(1)))

	m.Load(fixtureSlots(), today)
	assert.Equal(t, truck.ID("today-early"), m.ActiveID())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "no_date_selected", NoDateSelected.String())
	assert.Equal(t, "date_selected_no_occurrence", DateSelectedNoOccurrence.String())
	assert.Equal(t, "date_selected_with_occurrence", DateSelectedWithOccurrence.String())
}
