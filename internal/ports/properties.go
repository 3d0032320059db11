package ports

import "github.com/bft-labs/camsim/internal/domain"

// PropertyKey names a device property.
type PropertyKey string

// PropertyRegistry receives device capability properties at activation.
//
// Supported value types are bool, int32, uint64, float32, float64, string,
// []int32, []float32, []float64, []domain.Vector4, domain.Matrix34 and
// []domain.Matrix34.
type PropertyRegistry interface {
	SetProperty(device domain.ContainerHandle, key PropertyKey, value any) error
}
