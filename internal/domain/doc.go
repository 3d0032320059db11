// Package domain contains the core value types and error taxonomy for camsim.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (shared memory, GPU, logging) and
// contains only the data exchanged between the frame producer, the frame
// consumer and the presentation pacer.
//
// # Types
//
//   - [FrameMetadata]: per-frame fields attached to each published block
//   - [StreamFormat]: static fields attached to the channel once at creation
//   - [Geometry]: texture dimensions and pixel size of a frame
//   - [PacerSnapshot]: virtual vsync clock published by the pacer
//   - [ContainerHandle], [ReadMode], [CreationFlag], [PropertyTag]: channel
//     and property addressing
//
// # Errors
//
// [QueueError] and [PropertyError] mirror the numeric error codes returned by
// the host channel transport and the property store. Both implement error and
// compare with errors.Is.
package domain
