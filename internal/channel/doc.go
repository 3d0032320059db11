// Package channel is the client side of the host block queue transport.
//
// A [Client] creates or connects to named channels. A [Channel] hands out
// block guards ([WriteBlock], [ReadBlock]) that must be released exactly once;
// [Channel.WithWriteBlock] and [Channel.WithReadBlock] scope a guard to a
// function so the release happens on every exit path, including panics.
//
// Typed fields are attached to the channel (static stream format) or to a
// block (per-frame metadata). Every field travels in its own request: the
// host accepts batches, but batched writes have been observed to drop fields,
// so this package never relies on them.
package channel
