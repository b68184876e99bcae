package imu

import (
	"fmt"
	"time"
)

// StandardGravity in m/s².
const StandardGravity = 9.81

// AccelerationSample is an instantaneous acceleration including gravity, in m/s².
type AccelerationSample struct {
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Z    float64   `json:"z"`
	Time time.Time `json:"time"`
}

// RotationSample is the yaw rate about the vertical axis in degrees/second,
// positive clockwise when seen from above.
type RotationSample struct {
	YawRate float64   `json:"yaw_rate"`
	Time    time.Time `json:"time"`
}

// Motion pairs the accelerometer and gyroscope readings taken together.
type Motion struct {
	Accel    AccelerationSample `json:"accel"`
	Rotation RotationSample     `json:"rotation"`
}

// Scale describes the configured full-scale ranges of an MPU-9250 class IMU.
//
// AccelRange: 0=±2g, 1=±4g, 2=±8g, 3=±16g.
// GyroRange: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s.
type Scale struct {
	AccelRange byte
	GyroRange  byte
}

func (s Scale) validate() error {
	if s.AccelRange > 3 {
		return fmt.Errorf("accel range must be 0-3, got %d", s.AccelRange)
	}
	if s.GyroRange > 3 {
		return fmt.Errorf("gyro range must be 0-3, got %d", s.GyroRange)
	}
	return nil
}

// AccelLSBPerG is the accelerometer sensitivity for the configured range.
func (s Scale) AccelLSBPerG() float64 {
	return 16384.0 / float64(uint(1)<<s.AccelRange)
}

// GyroLSBPerDPS is the gyroscope sensitivity for the configured range.
func (s Scale) GyroLSBPerDPS() float64 {
	return 131.0 / float64(uint(1)<<s.GyroRange)
}

// Convert turns a raw sample into physical units stamped with t.
//
// The device Z axis points up, so a positive gyro Z is a counter-clockwise turn;
// the yaw rate is negated to match the clockwise heading convention.
func (s Scale) Convert(raw IMURaw, t time.Time) (Motion, error) {
	if err := s.validate(); err != nil {
		return Motion{}, err
	}
	perG := s.AccelLSBPerG()
	perDPS := s.GyroLSBPerDPS()
	return Motion{
		Accel: AccelerationSample{
			X:    float64(raw.Ax) / perG * StandardGravity,
			Y:    float64(raw.Ay) / perG * StandardGravity,
			Z:    float64(raw.Az) / perG * StandardGravity,
			Time: t,
		},
		Rotation: RotationSample{
			YawRate: -float64(raw.Gz) / perDPS,
			Time:    t,
		},
	}, nil
}
