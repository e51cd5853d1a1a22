package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-01T10:00:00Z", want},
		{"2024-06-01T13:00:00+03:00", want},
		{"2024-06-01T10:00:00", want},
		{"2024-06-01 10:00:00", want},
		{"2024-06-01 10:00:00+00:00", want},
		{"2024-06-01T10:00:00.1234567Z", want.Add(123456 * time.Microsecond)},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_JSON(t *testing.T) {
	var req PullRequest
	require.NoError(t, json.Unmarshal([]byte(`{"since_timestamp":"2024-06-01T10:00:00"}`), &req))
	require.NotNil(t, req.SinceTimestamp)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), req.SinceTimestamp.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"since_timestamp":null}`), &req))
	assert.Nil(t, req.SinceTimestamp.Ptr())

	out, err := json.Marshal(NewTimestamp(time.Date(2024, 6, 1, 13, 0, 0, 0, time.FixedZone("", 3*3600))))
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01T10:00:00Z"`, string(out))
}
