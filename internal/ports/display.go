package ports

import "github.com/bft-labs/camsim/internal/domain"

// VirtualDisplay receives frames from a compositor.
type VirtualDisplay interface {
	Present(info domain.PresentInfo) error
	WaitForPresent()
}
