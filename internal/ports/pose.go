package ports

import "github.com/bft-labs/camsim/internal/domain"

// PoseSink receives periodic pose updates for a tracked device.
type PoseSink interface {
	PoseUpdated(device domain.ContainerHandle, pose domain.Pose)
}
