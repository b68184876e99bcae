package imu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleConvert(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("default ranges", func(t *testing.T) {
		m, err := Scale{}.Convert(IMURaw{Az: 16384, Gz: 131}, ts)
		require.NoError(t, err)
		assert.InDelta(t, StandardGravity, m.Accel.Z, 1e-9)
		assert.Zero(t, m.Accel.X)
		assert.InDelta(t, -1.0, m.Rotation.YawRate, 1e-9)
		assert.Equal(t, ts, m.Accel.Time)
		assert.Equal(t, ts, m.Rotation.Time)
	})

	t.Run("wider ranges halve sensitivity", func(t *testing.T) {
		m, err := Scale{AccelRange: 1, GyroRange: 3}.Convert(IMURaw{Ax: 8192, Gz: -131}, ts)
		require.NoError(t, err)
		assert.InDelta(t, StandardGravity, m.Accel.X, 1e-9)
		assert.InDelta(t, 8.0, m.Rotation.YawRate, 1e-9)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := Scale{AccelRange: 4}.Convert(IMURaw{}, ts)
		assert.Error(t, err)
		_, err = Scale{GyroRange: 9}.Convert(IMURaw{}, ts)
		assert.Error(t, err)
	})
}
