package memqueue

import (
	"errors"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

// WritePathBatch implements ports.Paths. Channel fields may only be written
// by the owner; block fields only while the block is held for writing.
func (h *Host) WritePathBatch(target domain.ContainerHandle, batch []ports.PathWrite) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.batchLimit > 0 && len(batch) > h.batchLimit {
		for i := range batch {
			batch[i].Err = domain.PropErrInvalidOperation
		}
		return domain.PropErrInvalidOperation
	}

	fields, err := h.writableFields(target)
	if err != nil {
		for i := range batch {
			batch[i].Err = err
		}
		return err
	}

	var errs []error
	for i := range batch {
		w := &batch[i]
		if size := w.Tag.Size(); size > 0 && len(w.Value) != size {
			w.Err = domain.PropErrWrongDataType
			errs = append(errs, w.Err)
			continue
		}
		fields[w.Path] = value{tag: w.Tag, data: append([]byte(nil), w.Value...)}
		w.Err = nil
	}
	return errors.Join(errs...)
}

// ReadPathBatch implements ports.Paths.
func (h *Host) ReadPathBatch(target domain.ContainerHandle, batch []ports.PathRead) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.batchLimit > 0 && len(batch) > h.batchLimit {
		for i := range batch {
			batch[i].Err = domain.PropErrInvalidOperation
		}
		return domain.PropErrInvalidOperation
	}

	fields, err := h.readableFields(target)
	if err != nil {
		for i := range batch {
			batch[i].Err = err
		}
		return err
	}

	var errs []error
	for i := range batch {
		r := &batch[i]
		v, ok := fields[r.Path]
		switch {
		case !ok:
			r.Err = domain.PropErrUnknownProperty
		case v.tag != r.Tag:
			r.Err = domain.PropErrWrongDataType
		default:
			r.Value = append([]byte(nil), v.data...)
			r.Err = nil
			continue
		}
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

func (h *Host) writableFields(target domain.ContainerHandle) (map[string]value, error) {
	if c, ok := h.conns[target]; ok {
		if c.q.closed {
			return nil, domain.PropErrInvalidContainer
		}
		if !c.owner {
			return nil, domain.PropErrPermissionDenied
		}
		return c.q.fields, nil
	}
	if l, ok := h.leases[target]; ok {
		if !l.write {
			return nil, domain.PropErrPermissionDenied
		}
		return l.slot.fields, nil
	}
	return nil, domain.PropErrInvalidContainer
}

func (h *Host) readableFields(target domain.ContainerHandle) (map[string]value, error) {
	if c, ok := h.conns[target]; ok {
		if c.q.closed {
			return nil, domain.PropErrInvalidContainer
		}
		return c.q.fields, nil
	}
	if l, ok := h.leases[target]; ok {
		return l.slot.fields, nil
	}
	return nil, domain.PropErrInvalidContainer
}
