package sensors

import (
	"time"

	"github.com/relabs-tech/inertial_nav/internal/imu"
)

// MotionReader yields accelerometer and gyroscope samples in physical units.
type MotionReader interface {
	ReadMotion() (imu.Motion, error)
}

// RawMotion converts an IMURawReader into a MotionReader, stamping each sample
// with the wall clock at read time.
type RawMotion struct {
	Reader IMURawReader
	Scale  imu.Scale
	Now    func() time.Time

	last imu.IMURaw
}

// NewRawMotion wraps r with the given ranges.
func NewRawMotion(r IMURawReader, scale imu.Scale) *RawMotion {
	return &RawMotion{Reader: r, Scale: scale, Now: time.Now}
}

// ReadMotion reads one raw sample and converts it.
func (m *RawMotion) ReadMotion() (imu.Motion, error) {
	raw, err := m.Reader.ReadRaw()
	if err != nil {
		return imu.Motion{}, err
	}
	m.last = raw
	return m.Scale.Convert(raw, m.Now())
}

// LastRaw returns the raw counts behind the last successful ReadMotion.
func (m *RawMotion) LastRaw() imu.IMURaw {
	return m.last
}
