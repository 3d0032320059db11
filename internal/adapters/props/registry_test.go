package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

func TestRegistry(t *testing.T) {
	r := New()
	const dev domain.ContainerHandle = 7

	require.NoError(t, r.SetProperty(dev, "HasCamera", true))
	require.NoError(t, r.SetProperty(dev, "NumCameras", int32(2)))
	require.NoError(t, r.SetProperty(dev, "CameraToHeadTransforms", []domain.Matrix34{domain.Identity34()}))

	v, ok := r.Get(dev, "NumCameras")
	require.True(t, ok)
	assert.Equal(t, int32(2), v)

	_, ok = r.Get(dev+1, "NumCameras")
	assert.False(t, ok)

	assert.Equal(t, []ports.PropertyKey{"CameraToHeadTransforms", "HasCamera", "NumCameras"}, r.Keys(dev))
}

func TestRegistry_Rejects(t *testing.T) {
	r := New()

	assert.ErrorIs(t, r.SetProperty(domain.InvalidHandle, "HasCamera", true), domain.PropErrInvalidDevice)
	assert.ErrorIs(t, r.SetProperty(1, "NumCameras", 2), domain.PropErrWrongDataType, "untyped int")
	assert.Empty(t, r.Keys(1))
}
