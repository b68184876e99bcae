package trail

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndReadBack(t *testing.T) {
	db := openTemp(t)
	session, err := db.NewSession()
	require.NoError(t, err)

	start := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	in := []Sample{
		{Session: session, Time: start, Pose: orientation.Pose{}, Guidance: navigation.Guidance{
			Instruction: "Walk forward", Event: navigation.EventStraight, Distance: 5, State: navigation.StateMoving,
		}, TargetY: 5, Target: true},
		{Session: session, Time: start.Add(200 * time.Millisecond), Pose: orientation.Pose{Y: 0.7}, Guidance: navigation.Guidance{
			Distance: 4.3, State: navigation.StateMoving,
		}, TargetY: 5, Target: true},
	}
	for _, s := range in {
		require.NoError(t, db.Record(s))
	}

	out, err := db.Samples(session)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	other, err := db.Samples("unknown")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSessions(t *testing.T) {
	db := openTemp(t)
	a, err := db.NewSession()
	require.NoError(t, err)
	b, err := db.NewSession()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ids, err := db.Sessions()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}

func TestPlot(t *testing.T) {
	samples := []Sample{
		{Pose: orientation.Pose{}, TargetX: 2, TargetY: 4, Target: true, Guidance: navigation.Guidance{Event: navigation.EventInfo}},
		{Pose: orientation.Pose{Y: 0.7}, TargetX: 2, TargetY: 4, Target: true},
		{Pose: orientation.Pose{X: 0.5, Y: 1.2}, TargetX: 2, TargetY: 4, Target: true},
	}
	path := filepath.Join(t.TempDir(), "trail.png")
	require.NoError(t, Plot(samples, "test walk", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, Plot(nil, "empty", path))
}
