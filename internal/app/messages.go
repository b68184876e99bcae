package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_nav/internal/navigation"
	"github.com/relabs-tech/inertial_nav/internal/orientation"
	"github.com/relabs-tech/inertial_nav/internal/tracker"
)

// PoseMessage is published on TopicPose every fusion tick.
type PoseMessage struct {
	orientation.Pose
	HeadingDeg float64       `json:"heading_deg"`
	Confidence float64       `json:"confidence"`
	Stats      tracker.Stats `json:"stats"`
	Time       time.Time     `json:"time"`
}

// GuidanceMessage is published on TopicGuidance every fusion tick. Instruction and
// Event are empty when there is nothing new to announce.
type GuidanceMessage struct {
	navigation.Guidance
	TargetID string    `json:"target_id,omitempty"`
	Time     time.Time `json:"time"`
}

// TargetRequest arrives on TopicTarget. Clear drops the current goal.
type TargetRequest struct {
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Clear bool    `json:"clear,omitempty"`
}

// CompassFix is an absolute heading published by the compass producer.
type CompassFix struct {
	HeadingDeg float64   `json:"heading_deg"`
	True       bool      `json:"true"` // referenced to true north, not magnetic
	Sentence   string    `json:"sentence"`
	Time       time.Time `json:"time"`
}

func newPoseMessage(t Tick) PoseMessage {
	return PoseMessage{
		Pose:       t.Pose,
		HeadingDeg: t.Pose.HeadingDegrees(),
		Confidence: t.Confidence,
		Stats:      t.Stats,
		Time:       t.Time,
	}
}

// publishFunc marshals v as JSON and publishes it on topic.
type publishFunc func(topic string, v interface{}) error

// mqttPublishing is the part of mqtt.Client the publishers need.
type mqttPublishing interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// telemetryPublisher retains each message so late subscribers get the latest state.
func telemetryPublisher(client mqttPublishing) publishFunc {
	return mqttPublisher(client, true)
}

// commandPublisher never retains: a replayed target or compass fix would act
// again on every navigator restart.
func commandPublisher(client mqttPublishing) publishFunc {
	return mqttPublisher(client, false)
}

func mqttPublisher(client mqttPublishing, retained bool) publishFunc {
	return func(topic string, v interface{}) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("json marshal error (%s): %w", topic, err)
		}
		if token := client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
			return fmt.Errorf("MQTT publish error (%s): %w", topic, token.Error())
		}
		return nil
	}
}

// subscribeJSON subscribes to topic and hands each decodable payload to handle.
func subscribeJSON[T any](client mqtt.Client, component, topic string, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("%s: %s unmarshal error: %v", component, topic, err)
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("%s: subscribed to %s", component, topic)
	return nil
}

func connectMQTT(component, broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%s: MQTT connect error: %w", component, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", component, broker)
	return client, nil
}
