package tracker

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_nav/internal/orientation"
)

type fixedGate bool

func (g fixedGate) Moving() bool { return bool(g) }

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestInertialOnlyAcceptsEveryStep(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	for i := 0; i < 10; i++ {
		require.True(t, tr.OnStep())
	}
	want := orientation.Pose{X: 0, Y: 7}
	if diff := cmp.Diff(want, tr.CurrentPose(), approx); diff != "" {
		t.Errorf("pose mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Stats{Accepted: 10}, tr.Stats())
}

func TestStepFollowsCompassConvention(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		want    orientation.Pose
	}{
		{"forward", 0, orientation.Pose{Y: 0.7}},
		{"right", math.Pi / 2, orientation.Pose{X: 0.7, Heading: math.Pi / 2}},
		{"back", math.Pi, orientation.Pose{Y: -0.7, Heading: math.Pi}},
		{"left", 3 * math.Pi / 2, orientation.Pose{X: -0.7, Heading: 3 * math.Pi / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(DefaultConfig(), nil)
			tr.SetHeading(tt.heading)
			tr.OnStep()
			if diff := cmp.Diff(tt.want, tr.CurrentPose(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("pose mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStaticGateSuppressesSteps(t *testing.T) {
	tr := New(DefaultConfig(), fixedGate(false))
	assert.False(t, tr.OnStep())
	assert.False(t, tr.OnStep())
	assert.Equal(t, orientation.Pose{}, tr.CurrentPose())
	assert.Equal(t, Stats{Suppressed: 2}, tr.Stats())
}

func TestMovingGateConfirmsSteps(t *testing.T) {
	tr := New(Config{StepLength: 0.5}, fixedGate(true))
	assert.True(t, tr.OnStep())
	assert.InDelta(t, 0.5, tr.CurrentPose().Y, 1e-12)
}

func TestSetHeadingWraps(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.SetHeading(-math.Pi / 2)
	assert.InDelta(t, 3*math.Pi/2, tr.CurrentPose().Heading, 1e-12)
}

func TestCurrentPoseIsIdempotent(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.SetHeading(0.3)
	tr.OnStep()
	assert.Equal(t, tr.CurrentPose(), tr.CurrentPose())
}

func TestReset(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.SetHeading(1)
	tr.OnStep()
	tr.Reset()
	assert.Equal(t, orientation.Pose{}, tr.CurrentPose())
	assert.Equal(t, Stats{}, tr.Stats())
}

func TestConcurrentReadersSeeConsistentPose(t *testing.T) {
	tr := New(Config{StepLength: 1}, nil)
	tr.SetHeading(math.Pi / 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			tr.OnStep()
		}
	}()

	for i := 0; i < 2000; i++ {
		p := tr.CurrentPose()
		// Every step moves along the diagonal, so x and y never diverge.
		assert.InDelta(t, p.X, p.Y, 1e-6)
	}
	wg.Wait()
	assert.Equal(t, 2000, tr.Stats().Accepted)
}
