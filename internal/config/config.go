package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/pedometer"
	"github.com/relabs-tech/inertial_nav/internal/tracker"
	"github.com/relabs-tech/inertial_nav/internal/vision"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDNavigator string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string
	MQTTClientIDCompass   string

	// Topics
	TopicPose     string
	TopicGuidance string
	TopicTarget   string
	TopicObstacle string
	TopicCompass  string
	TopicIMURaw   string

	// IMU
	IMUSource     string // "mpu9250" or "walker"
	IMUSPIDevice  string
	IMUCSPin      string
	IMUAccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUGyroRange  byte // 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s

	// Timing
	IMUSampleInterval  int // milliseconds
	TrackInterval      int // milliseconds, gate + tracker + navigator loop
	ConsoleLogInterval int // milliseconds

	// Step detection
	StepAlpha       float64
	StepThreshold   float64
	StepMinInterval int // milliseconds
	StepLength      float64

	// Motion confidence gate
	GateEnabled         bool
	GateWidth           int
	GateHeight          int
	GateStride          int
	GateMotionThreshold float64
	CameraDevice        string // gocv device id or URL; "sim" for the synthetic scene

	// Navigation
	ArrivalRadius        float64
	RotationDeadband     float64
	MoveDeadband         float64
	HapticTurnAngle      float64
	ObstacleStopDistance float64

	// Compass
	CompassSerialPort string
	CompassBaudRate   int

	// Web Server
	WebServerPort int

	// Display
	DisplayLeftI2CBus     string // periph bus name; empty picks the first bus
	DisplayRightI2CBus    string // empty drives the left display only
	DisplayUpdateInterval int    // milliseconds

	// Trail recording; empty disables it
	TrailDBPath string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify it without locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access.
//
// Navigation components never read the global; the cmd mains pass values down.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	step := pedometer.DefaultConfig()
	gate := vision.DefaultConfig()
	nav := navigation.DefaultConfig()

	return &Config{
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDNavigator: "inertial-nav-navigator",
		MQTTClientIDConsole:   "inertial-nav-console",
		MQTTClientIDWeb:       "inertial-nav-web",
		MQTTClientIDDisplay:   "inertial-nav-display",
		MQTTClientIDCompass:   "inertial-nav-compass",

		TopicPose:     "nav/pose",
		TopicGuidance: "nav/guidance",
		TopicTarget:   "nav/target",
		TopicObstacle: "nav/obstacle",
		TopicCompass:  "nav/compass",
		TopicIMURaw:   "nav/imu/raw",

		IMUSource:    "walker",
		IMUSPIDevice: "/dev/spidev0.0",
		IMUCSPin:     "8",

		IMUSampleInterval:  20,
		TrackInterval:      200,
		ConsoleLogInterval: 1000,

		StepAlpha:       step.Alpha,
		StepThreshold:   step.Threshold,
		StepMinInterval: int(step.MinStepInterval / time.Millisecond),
		StepLength:      tracker.DefaultConfig().StepLength,

		GateEnabled:         true,
		GateWidth:           gate.Width,
		GateHeight:          gate.Height,
		GateStride:          gate.Stride,
		GateMotionThreshold: gate.MotionThreshold,
		CameraDevice:        "sim",

		ArrivalRadius:        nav.ArrivalRadius,
		RotationDeadband:     nav.RotationDeadband,
		MoveDeadband:         nav.MoveDeadband,
		HapticTurnAngle:      nav.HapticTurnAngle,
		ObstacleStopDistance: nav.ObstacleStopDistance,

		CompassSerialPort: "/dev/ttyUSB0",
		CompassBaudRate:   4800,

		WebServerPort: 8080,

		DisplayLeftI2CBus:     "1",
		DisplayRightI2CBus:    "3",
		DisplayUpdateInterval: 250,
	}
}

// Load reads the configuration file on top of Default and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseRange(key, value string, unit string) (byte, error) {
	v, err := parseInt(key, value)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 3 {
		return 0, fmt.Errorf("%s must be 0-3 (%s), got %d", key, unit, v)
	}
	return byte(v), nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NAVIGATOR":
		c.MQTTClientIDNavigator = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_COMPASS":
		c.MQTTClientIDCompass = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_GUIDANCE":
		c.TopicGuidance = value
	case "TOPIC_TARGET":
		c.TopicTarget = value
	case "TOPIC_OBSTACLE":
		c.TopicObstacle = value
	case "TOPIC_COMPASS":
		c.TopicCompass = value
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value

	// IMU
	case "IMU_SOURCE":
		if value != "mpu9250" && value != "walker" {
			return fmt.Errorf("IMU_SOURCE must be mpu9250 or walker, got %q", value)
		}
		c.IMUSource = value
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseRange(key, value, "0=±2g, 1=±4g, 2=±8g, 3=±16g")
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseRange(key, value, "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s")

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseInt(key, value)
	case "TRACK_INTERVAL":
		c.TrackInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Step detection
	case "STEP_ALPHA":
		c.StepAlpha, err = parseFloat(key, value)
	case "STEP_THRESHOLD":
		c.StepThreshold, err = parseFloat(key, value)
	case "STEP_MIN_INTERVAL":
		c.StepMinInterval, err = parseInt(key, value)
	case "STEP_LENGTH":
		c.StepLength, err = parseFloat(key, value)

	// Motion confidence gate
	case "GATE_ENABLED":
		enabled, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid GATE_ENABLED %q: %w", value, perr)
		}
		c.GateEnabled = enabled
	case "GATE_WIDTH":
		c.GateWidth, err = parseInt(key, value)
	case "GATE_HEIGHT":
		c.GateHeight, err = parseInt(key, value)
	case "GATE_STRIDE":
		c.GateStride, err = parseInt(key, value)
	case "GATE_MOTION_THRESHOLD":
		c.GateMotionThreshold, err = parseFloat(key, value)
	case "CAMERA_DEVICE":
		c.CameraDevice = value

	// Navigation
	case "ARRIVAL_RADIUS":
		c.ArrivalRadius, err = parseFloat(key, value)
	case "ROTATION_DEADBAND":
		c.RotationDeadband, err = parseFloat(key, value)
	case "MOVE_DEADBAND":
		c.MoveDeadband, err = parseFloat(key, value)
	case "HAPTIC_TURN_ANGLE":
		c.HapticTurnAngle, err = parseFloat(key, value)
	case "OBSTACLE_STOP_DISTANCE":
		c.ObstacleStopDistance, err = parseFloat(key, value)

	// Compass
	case "COMPASS_SERIAL_PORT":
		c.CompassSerialPort = value
	case "COMPASS_BAUD_RATE":
		c.CompassBaudRate, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Display
	case "DISPLAY_LEFT_I2C_BUS":
		c.DisplayLeftI2CBus = value
	case "DISPLAY_RIGHT_I2C_BUS":
		c.DisplayRightI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	// Trail
	case "TRAIL_DB_PATH":
		c.TrailDBPath = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that required fields are set and tunables are usable.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUSource == "mpu9250" && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required for the mpu9250 source")
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL must be positive")
	}
	if c.TrackInterval <= 0 {
		return fmt.Errorf("TRACK_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive")
	}
	if c.StepAlpha < 0 || c.StepAlpha >= 1 {
		return fmt.Errorf("STEP_ALPHA must be in [0, 1), got %v", c.StepAlpha)
	}
	if c.StepThreshold <= 0 {
		return fmt.Errorf("STEP_THRESHOLD must be positive")
	}
	if c.StepMinInterval < 0 {
		return fmt.Errorf("STEP_MIN_INTERVAL must not be negative")
	}
	if c.StepLength <= 0 {
		return fmt.Errorf("STEP_LENGTH must be positive")
	}
	if c.GateEnabled && (c.GateWidth <= 0 || c.GateHeight <= 0 || c.GateStride <= 0) {
		return fmt.Errorf("GATE_WIDTH, GATE_HEIGHT and GATE_STRIDE must be positive")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	if c.ArrivalRadius <= 0 {
		return fmt.Errorf("ARRIVAL_RADIUS must be positive")
	}
	if c.MoveDeadband <= 0 || c.RotationDeadband < c.MoveDeadband {
		return fmt.Errorf("MOVE_DEADBAND (%v) must be positive and not above ROTATION_DEADBAND (%v)",
			c.MoveDeadband, c.RotationDeadband)
	}
	return nil
}

// IMUScale returns the configured sensor ranges.
func (c *Config) IMUScale() imu.Scale {
	return imu.Scale{AccelRange: c.IMUAccelRange, GyroRange: c.IMUGyroRange}
}

// Pedometer returns the step detector configuration.
func (c *Config) Pedometer() pedometer.Config {
	cfg := pedometer.DefaultConfig()
	cfg.Alpha = c.StepAlpha
	cfg.Threshold = c.StepThreshold
	cfg.MinStepInterval = time.Duration(c.StepMinInterval) * time.Millisecond
	return cfg
}

// Tracker returns the position tracker configuration.
func (c *Config) Tracker() tracker.Config {
	return tracker.Config{StepLength: c.StepLength}
}

// Gate returns the motion confidence gate configuration.
func (c *Config) Gate() vision.Config {
	return vision.Config{
		Width:           c.GateWidth,
		Height:          c.GateHeight,
		Stride:          c.GateStride,
		MotionThreshold: c.GateMotionThreshold,
	}
}

// Navigation returns the guidance state machine configuration.
func (c *Config) Navigation() navigation.Config {
	return navigation.Config{
		ArrivalRadius:        c.ArrivalRadius,
		RotationDeadband:     c.RotationDeadband,
		MoveDeadband:         c.MoveDeadband,
		HapticTurnAngle:      c.HapticTurnAngle,
		ObstacleStopDistance: c.ObstacleStopDistance,
	}
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
