package domain

// ContainerHandle addresses a channel connection or an acquired block.
// Both share one handle space so path fields can target either.
type ContainerHandle uint64

// InvalidHandle is never returned by a successful acquire or connect.
const InvalidHandle ContainerHandle = 0

// ReadMode selects which published block a read acquire returns.
type ReadMode int

const (
	// ReadLatest returns the most recently published block, even if this
	// reader has already seen it.
	ReadLatest ReadMode = 0
	// ReadNew returns the latest block not yet delivered to this reader.
	ReadNew ReadMode = 1
	// ReadNext returns blocks in strict publish order.
	ReadNext ReadMode = 2
)

// String returns a human-readable representation of the mode.
func (m ReadMode) String() string {
	switch m {
	case ReadLatest:
		return "Latest"
	case ReadNew:
		return "New"
	case ReadNext:
		return "Next"
	default:
		return "Unknown"
	}
}

// CreationFlag modifies channel creation.
type CreationFlag uint32

// FlagOwnerIsReader marks the creating process as a reader of the channel.
const FlagOwnerIsReader CreationFlag = 1

// PropertyTag identifies the encoding of a typed property or path value.
type PropertyTag uint32

const (
	TagFloat    PropertyTag = 1
	TagInt32    PropertyTag = 2
	TagUint64   PropertyTag = 3
	TagBool     PropertyTag = 4
	TagString   PropertyTag = 5
	TagDouble   PropertyTag = 7
	TagMatrix34 PropertyTag = 20
	TagMatrix44 PropertyTag = 21
	TagVector4  PropertyTag = 23
)

// Size returns the encoded byte size of a scalar tag, or 0 for variable
// length and aggregate tags.
func (t PropertyTag) Size() int {
	switch t {
	case TagFloat, TagInt32:
		return 4
	case TagUint64, TagDouble:
		return 8
	case TagBool:
		return 1
	default:
		return 0
	}
}
