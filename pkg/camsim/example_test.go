package camsim_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/camsim/pkg/camsim"
)

// ExampleNew demonstrates how to embed the simulated camera in your
// application.
func ExampleNew() {
	// Create the device with default frame and display sizes
	d, err := camsim.New(camsim.DefaultConfig())
	if err != nil {
		fmt.Printf("failed to create device: %v\n", err)
		return
	}

	// Activate: properties are advertised and the frame channel is created
	if err := d.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	// Publish frames until stopped
	_ = d.StartVideoStream()
	active, _, _ := d.IsVideoStreamActive()
	fmt.Printf("Status: %s, streaming: %v\n", d.Status(), active)

	_ = d.Stop()

	// Output: Status: Running, streaming: true
}

// Example_withEventHandler demonstrates how to receive device events.
func Example_withEventHandler() {
	handler := &printingHandler{}

	d, err := camsim.New(camsim.DefaultConfig(), camsim.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create device: %v\n", err)
		return
	}

	_ = d.Start(context.Background())

	// Output:
	// State changed: Stopped -> Starting (reason: Start() called)
	// State changed: Starting -> Running (reason: device activated)
}

// printingHandler implements camsim.EventHandler for state notifications.
type printingHandler struct {
	camsim.BaseEventHandler // Embed for no-op defaults
}

func (h *printingHandler) OnStateChange(event camsim.StateChangeEvent) {
	fmt.Printf("State changed: %s -> %s (reason: %s)\n",
		event.Previous, event.Current, event.Reason)
}

// ExampleDevice_StreamFormat shows the format readers of the frame channel
// receive.
func ExampleDevice_StreamFormat() {
	d, _ := camsim.New(camsim.DefaultConfig())
	f := d.StreamFormat()
	fmt.Println(f.Format, f.Width, f.Height)

	// Output: 8 2048 1024
}
