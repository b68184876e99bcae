package navigation

import "fmt"

// State is the guidance phase.
type State int

const (
	StateIdle     State = iota // no target
	StateRotating              // aligning before walking
	StateMoving                // walking toward the target
	StateArrived               // inside the arrival radius
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRotating:
		return "ROTATING"
	case StateMoving:
		return "MOVING"
	case StateArrived:
		return "ARRIVED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name for JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "IDLE":
		*s = StateIdle
	case "ROTATING":
		*s = StateRotating
	case "MOVING":
		*s = StateMoving
	case "ARRIVED":
		*s = StateArrived
	default:
		return fmt.Errorf("unknown navigation state %q", b)
	}
	return nil
}

// Event is the haptic code attached to an instruction. The empty Event means none.
type Event string

const (
	EventNone     Event = ""
	EventLeft     Event = "left"
	EventRight    Event = "right"
	EventStraight Event = "straight"
	EventStop     Event = "stop"
	EventArrived  Event = "arrived"
	EventInfo     Event = "info"
)

// Guidance is produced fresh by every navigator call.
type Guidance struct {
	Instruction string  `json:"instruction,omitempty"`
	Event       Event   `json:"event,omitempty"`
	Distance    float64 `json:"distance"`   // meters to target
	Bearing     float64 `json:"bearing"`    // degrees, compass convention
	AngleDiff   float64 `json:"angle_diff"` // degrees in (-180, 180], positive = turn right
	State       State   `json:"state"`
}

// Empty reports whether there is nothing to say or vibrate.
func (g Guidance) Empty() bool {
	return g.Instruction == "" && g.Event == EventNone
}

// Obstacle is the nearest detection reported by an external object detector.
type Obstacle struct {
	Label    string  `json:"label"`
	Distance float64 `json:"distance"` // meters, estimated
}
