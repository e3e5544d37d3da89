package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(3, 1)
	c.AddCommit()
	c.AddCommit()
	c.AddTrash()
	c.AddAttack()
	c.AddBuild()

	m := c.Complete()
	require.Equal(t, 3, m.Day)
	require.Equal(t, 1, m.Team)
	require.Equal(t, 2, m.Commits)
	require.Equal(t, 1, m.Trashes)
	require.Equal(t, 1, m.Attacks)
	require.Equal(t, 1, m.Builds)
	require.Zero(t, m.Undos)
	require.False(t, m.StartTime.IsZero())

	t.Run("restarting", func(t *testing.T) {
		c.Start(4, 0)
		require.Zero(t, c.Complete().Commits, "Start should reset the counters")
	})

	t.Run("dummy", func(t *testing.T) {
		d := NewDummyCollector()
		d.Start(1, 0)
		d.AddCommit()
		require.Equal(t, TurnMetric{}, d.Complete())
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	require.DirExists(t, w.Dir())

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = w.WriteTurnRecords([]TurnRecord{
		{Session: "ford", TurnMetric: TurnMetric{Day: 1, Team: 0, StartTime: start, Duration: 2 * time.Second, Commits: 3, Attacks: 1}},
		{Session: "ford", TurnMetric: TurnMetric{Day: 1, Team: 1, StartTime: start, Duration: time.Second, Undos: 2}},
	})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(w.Dir(), "turn_records.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	require.Equal(t, "session", rows[0][0])
	require.Equal(t, []string{"ford", "1", "0", "2024-05-01T12:00:00Z", "2s", "3", "0", "0", "0", "1", "0", "0"}, rows[1])
	require.Equal(t, "2", rows[2][7], "Should write the undo count")
}
