// Package camsim provides an embeddable simulated stereo camera and virtual
// display for a VR runtime.
//
// The camera half renders a synthetic test pattern into a named frame
// channel at a fixed cadence, attaching timing metadata to every block. The
// display half composites textures submitted by a compositor into an output
// window and keeps a virtual vsync clock.
//
// # Basic Usage
//
//	dev, err := camsim.New(camsim.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := dev.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Stop()
//
//	if err := dev.StartVideoStream(); err != nil {
//	    log.Fatal(err)
//	}
//
// Without options the device runs against in-process adapters: an
// in-memory block queue host, an in-memory property registry and a
// software graphics stack. Use [WithHost], [WithProperties],
// [WithGraphics] and [WithPoseSink] to run against other collaborators.
//
// # Lifecycle States
//
// A Device is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Start creates the frame
// channel and advertises device properties; Stop destroys the channel.
//
// # Plugins
//
// Plugins registered with [WithPlugin] are initialized in registration
// order after the device is set up and shut down in reverse order.
package camsim
