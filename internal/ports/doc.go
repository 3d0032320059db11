// Package ports defines the interfaces (ports) that connect the application
// layer to the host runtime the simulated camera device is loaded into.
//
// Ports describe what the application needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [BlockQueue]: named multi-slot shared buffers (channels) with exclusive
//     write and shared read block acquisition
//   - [Paths]: typed path fields attached to a channel or to a block
//   - [PropertyRegistry]: device capability advertisement
//   - [TextureOpener] and [SharedTexture]: cross-process textures guarded by
//     a keyed mutex
//   - [Surface] and [Window]: the display output the pacer composites into
//   - [PoseSink]: the host's tracked pose intake
//   - [Clock]: monotonic time source
//
// # Usage
//
// The application layer (internal/app, internal/channel) depends only on these
// interfaces. The in-process adapters under internal/adapters implement them
// for tests and for the standalone CLI.
package ports
