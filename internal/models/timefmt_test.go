package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO_DateOnly(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got, allDay, err := ParseISO("2024-01-01", loc)
	require.NoError(t, err)
	assert.True(t, allDay)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), got)
}

func TestParseISO_LocalTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got, allDay, err := ParseISO("2024-01-01T10:30:00", loc)
	require.NoError(t, err)
	assert.False(t, allDay)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())
}

func TestParseISO_RFC3339IsConvertedToZone(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got, _, err := ParseISO("2024-01-01T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())
}

func TestParseISO_Invalid(t *testing.T) {
	_, _, err := ParseISO("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestSortTasks_UndatedLast(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{{ID: "none"}, {ID: "late", Due: &d1}, {ID: "early", Due: &d2}, {ID: "none2"}}
	SortTasks(tasks)

	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"early", "late", "none", "none2"}, ids)
}
