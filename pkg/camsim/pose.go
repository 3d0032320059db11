package camsim

import (
	"context"
	"math"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
)

// PosePeriod is the interval between head pose updates.
const PosePeriod = 16 * time.Millisecond

// HeadPose returns the simulated head pose after frameCount display frames:
// a slow spin about the vertical axis at standing eye height.
func HeadPose(frameCount uint64) Pose {
	a := float64(frameCount) * 0.0001
	return Pose{
		Valid:                true,
		Connected:            true,
		ShouldApplyHeadModel: true,
		Result:               domain.TrackingRunningOK,

		WorldFromDriverRotation: domain.Quaternion{W: 1},
		DriverFromHeadRotation:  domain.Quaternion{W: 1},
		Rotation:                domain.Quaternion{W: math.Sin(a), Y: math.Cos(a)},

		Position:        [3]float64{0, 1.5, 0},
		AngularVelocity: [3]float64{0, -0.001, 0},
	}
}

// runPoses pushes a pose every PosePeriod until ctx is done.
func (d *Device) runPoses(ctx context.Context, frames func() uint64) {
	sink := d.opts.poses
	if sink == nil {
		return
	}

	ticker := time.NewTicker(PosePeriod)
	defer ticker.Stop()

	for {
		sink.PoseUpdated(d.handle, HeadPose(frames()))
		d.poses.Add(1)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
