package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/inertial_nav/internal/config"
	"github.com/relabs-tech/inertial_nav/internal/imu"
	"github.com/relabs-tech/inertial_nav/internal/navigation"
)

func formatPose(m PoseMessage) string {
	return fmt.Sprintf(
		"[POSE]  X=%7.2f  Y=%7.2f  H=%6.1f  conf=%5.1f  steps=%d/%d",
		m.X, m.Y, m.HeadingDeg, m.Confidence, m.Stats.Accepted, m.Stats.Accepted+m.Stats.Suppressed,
	)
}

func formatGuidance(m GuidanceMessage) string {
	line := fmt.Sprintf("[NAV ]  %-8s dist=%6.2f bearing=%6.1f diff=%6.1f",
		m.State, m.Distance, m.Bearing, m.AngleDiff)
	if m.Instruction != "" {
		line += "  >> " + m.Instruction
	}
	if m.Event != navigation.EventNone {
		line += fmt.Sprintf(" [%s]", m.Event)
	}
	return line
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT("console", cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribeJSON(client, "console", cfg.TopicPose, func(m PoseMessage) {
		fmt.Println(formatPose(m))
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, "console", cfg.TopicGuidance, func(m GuidanceMessage) {
		// Quiet ticks repeat the state; only announcements are worth a line.
		if m.Empty() {
			return
		}
		fmt.Println(formatGuidance(m))
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, "console", cfg.TopicIMURaw, func(s imu.IMURaw) {
		fmt.Printf(
			"[IMU ]  %s ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
			s.Source, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
		)
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, "console", cfg.TopicCompass, func(f CompassFix) {
		fmt.Printf("[CMPS]  heading=%6.1f true=%t (%s)\n", f.HeadingDeg, f.True, f.Sentence)
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
