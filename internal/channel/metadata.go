package channel

import "github.com/bft-labs/camsim/internal/domain"

// MetadataFields returns the per-frame fields for m in write order.
func MetadataFields(m domain.FrameMetadata) []Field {
	return []Field{
		Int32Field(domain.PathFrameSize, m.FrameSize),
		Uint64Field(domain.PathFrameSequence, m.FrameSequence),
		DoubleField(domain.PathFrameTimeMonotonic, m.CaptureTimeMonotonic),
		Uint64Field(domain.PathServerTimeTicks, m.ServerTimeTicks),
		DoubleField(domain.PathDeliveryRate, m.DeliveryRate),
		DoubleField(domain.PathElapsedTime, m.ElapsedTime),
	}
}

// WriteMetadata attaches m to a write block.
func WriteMetadata(b *WriteBlock, m domain.FrameMetadata) error {
	return b.WriteFields(MetadataFields(m)...)
}

// ReadMetadata reads the per-frame fields of a block. Fields that fail to
// read keep their zero value; the returned error joins every failure.
func ReadMetadata(b *ReadBlock) (domain.FrameMetadata, error) {
	var m domain.FrameMetadata
	err := b.ReadFields(
		Int32Target(domain.PathFrameSize, &m.FrameSize),
		Uint64Target(domain.PathFrameSequence, &m.FrameSequence),
		DoubleTarget(domain.PathFrameTimeMonotonic, &m.CaptureTimeMonotonic),
		Uint64Target(domain.PathServerTimeTicks, &m.ServerTimeTicks),
		DoubleTarget(domain.PathDeliveryRate, &m.DeliveryRate),
		DoubleTarget(domain.PathElapsedTime, &m.ElapsedTime),
	)
	return m, err
}

// WriteStreamFormat writes the static stream description on the channel.
func WriteStreamFormat(ch *Channel, f domain.StreamFormat) error {
	return ch.WriteFields(
		Int32Field(domain.PathFormat, int32(f.Format)),
		Int32Field(domain.PathWidth, f.Width),
		Int32Field(domain.PathHeight, f.Height),
	)
}

// ReadStreamFormat reads the static stream description from the channel.
func ReadStreamFormat(ch *Channel) (domain.StreamFormat, error) {
	var format, width, height int32
	err := ch.ReadFields(
		Int32Target(domain.PathFormat, &format),
		Int32Target(domain.PathWidth, &width),
		Int32Target(domain.PathHeight, &height),
	)
	return domain.StreamFormat{
		Format: domain.VideoStreamFormat(format),
		Width:  width,
		Height: height,
	}, err
}
