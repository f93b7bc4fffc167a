package progress

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestComputePercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"empty course", 0, 0, 0},
		{"nothing done", 0, 10, 0},
		{"half done", 5, 10, 50},
		{"rounds up", 1, 3, 33},
		{"two thirds", 2, 3, 67},
		{"all done", 10, 10, 100},
		{"stale extra completions cap at full", 12, 10, 100},
		{"negative total", 3, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ComputePercent(tt.completed, tt.total))
		})
	}
}

func TestIsLectureCompleted(t *testing.T) {
	done := uuid.New()
	pending := uuid.New()

	record := Progress{CompletedLectures: pq.StringArray{done.String()}}

	require.True(t, IsLectureCompleted(record, done))
	require.False(t, IsLectureCompleted(record, pending))
	require.False(t, IsLectureCompleted(Progress{}, pending))
}
