package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// Field is a typed value to write at a path.
type Field struct {
	Path  string
	Tag   domain.PropertyTag
	value []byte
}

// Int32Field encodes an int32 field.
func Int32Field(path string, v int32) Field {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return Field{Path: path, Tag: domain.TagInt32, value: b}
}

// Uint64Field encodes a uint64 field.
func Uint64Field(path string, v uint64) Field {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return Field{Path: path, Tag: domain.TagUint64, value: b}
}

// DoubleField encodes a float64 field.
func DoubleField(path string, v float64) Field {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return Field{Path: path, Tag: domain.TagDouble, value: b}
}

// Target is a typed destination for a field read.
type Target struct {
	Path string
	Tag  domain.PropertyTag
	dst  any
}

// Int32Target reads an int32 field into dst.
func Int32Target(path string, dst *int32) Target {
	return Target{Path: path, Tag: domain.TagInt32, dst: dst}
}

// Uint64Target reads a uint64 field into dst.
func Uint64Target(path string, dst *uint64) Target {
	return Target{Path: path, Tag: domain.TagUint64, dst: dst}
}

// DoubleTarget reads a float64 field into dst.
func DoubleTarget(path string, dst *float64) Target {
	return Target{Path: path, Tag: domain.TagDouble, dst: dst}
}

func (t Target) decode(b []byte) error {
	if len(b) < t.Tag.Size() {
		return domain.PropErrBufferTooSmall
	}
	switch dst := t.dst.(type) {
	case *int32:
		*dst = int32(binary.LittleEndian.Uint32(b))
	case *uint64:
		*dst = binary.LittleEndian.Uint64(b)
	case *float64:
		*dst = math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return domain.PropErrWrongDataType
	}
	return nil
}

func (c *Client) writeFields(target domain.ContainerHandle, fields []Field) error {
	var errs []error
	for _, f := range fields {
		req := []ports.PathWrite{{Path: f.Path, Tag: f.Tag, Value: f.value}}
		err := c.paths.WritePathBatch(target, req)
		if err == nil {
			err = req[0].Err
		}
		if err != nil {
			c.logger.Warn("field write failed",
				log.String("path", f.Path),
				log.Handle("target", uint64(target)),
				log.Err(err),
			)
			errs = append(errs, fmt.Errorf("write %s: %w", f.Path, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) readFields(target domain.ContainerHandle, targets []Target) error {
	var errs []error
	for _, t := range targets {
		req := []ports.PathRead{{Path: t.Path, Tag: t.Tag}}
		err := c.paths.ReadPathBatch(target, req)
		if err == nil {
			err = req[0].Err
		}
		if err == nil {
			err = t.decode(req[0].Value)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", t.Path, err))
		}
	}
	return errors.Join(errs...)
}
