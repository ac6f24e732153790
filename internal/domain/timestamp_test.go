package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	ts, err := ParseTimestamp("2024-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(ts.Time))

	ts, err = ParseTimestamp("2024-01-15T10:00:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(ts.Time))

	ts, err = ParseTimestamp("2024-01-15T12:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(ts.Time))

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_JSON(t *testing.T) {
	var issue Issue
	body := `{"id":"a1","title":"Login Bug","createdAt":"2024-01-15T10:00:00.123456","updatedAt":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &issue))

	assert.Equal(t, 2024, issue.CreatedAt.Year())
	assert.True(t, issue.UpdatedAt.IsZero())

	out, err := json.Marshal(issue.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15T10:00:00Z"`, string(out))
}

func TestTimestamp_String(t *testing.T) {
	assert.Equal(t, "-", Timestamp{}.String())
	ts := NewTimestamp(time.Date(2024, 1, 17, 9, 15, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-17 09:15", ts.String())
}
