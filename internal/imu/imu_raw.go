package imu

// IMURaw represents a single raw IMU sample in sensor counts.
type IMURaw struct {
	Source string `json:"source"` // e.g. "mpu9250", "walker"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}
