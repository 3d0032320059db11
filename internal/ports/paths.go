package ports

import "github.com/bft-labs/camsim/internal/domain"

// PathWrite is one typed field write. Err is set per entry by the store.
type PathWrite struct {
	Path  string
	Tag   domain.PropertyTag
	Value []byte
	Err   error
}

// PathRead is one typed field read. The store fills Value and Err.
type PathRead struct {
	Path  string
	Tag   domain.PropertyTag
	Value []byte
	Err   error
}

// Paths stores typed fields on a channel connection or an acquired block.
//
// Batch calls return a non-nil error if any entry failed; per-entry errors
// are recorded in the entries. Errors are domain.PropertyError values.
type Paths interface {
	WritePathBatch(target domain.ContainerHandle, batch []PathWrite) error
	ReadPathBatch(target domain.ContainerHandle, batch []PathRead) error
}
