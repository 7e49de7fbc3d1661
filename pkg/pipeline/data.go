// Package pipeline defines the values that flow between commands: either an
// immediate value or a lazy list stream, plus the metadata that travels with
// them. Immediate values are any of nil, bool, int64, float64, string,
// []any, or *dataframe.DataFrame for tabular data.
package pipeline

import (
	"errors"

	"github.com/tidelang/tide/pkg/span"
)

// ErrCloneStream is returned when a stream is asked to duplicate itself.
// Streams are single-consumer; collect first if two readers are needed.
var ErrCloneStream = errors.New("pipeline: cannot clone a stream")

// Metadata describes where pipeline contents came from. It rides along
// unchanged as data moves between registers.
type Metadata struct {
	// ContentType is the MIME type of the originating source, when known
	// (e.g. "text/csv", "application/json").
	ContentType string
	// Source is the path or description of the originating source.
	Source string
}

// Data is the unit flowing through the engine: empty, an immediate value, or
// a stream, with optional metadata.
type Data struct {
	value  any
	stream *ListStream
	md     *Metadata
}

// Empty returns pipeline data carrying nothing.
func Empty() Data {
	return Data{}
}

// FromValue wraps an immediate value.
func FromValue(v any) Data {
	return Data{value: v}
}

// FromStream wraps a lazy stream.
func FromStream(ls *ListStream) Data {
	return Data{stream: ls}
}

// WithMetadata returns a copy of d carrying md.
func (d Data) WithMetadata(md *Metadata) Data {
	d.md = md
	return d
}

// Metadata returns the attached metadata, or nil.
func (d Data) Metadata() *Metadata {
	return d.md
}

// IsEmpty reports whether d carries neither a value nor a stream.
func (d Data) IsEmpty() bool {
	return d.value == nil && d.stream == nil
}

// IsStream reports whether d carries a lazy stream.
func (d Data) IsStream() bool {
	return d.stream != nil
}

// Value returns the immediate value. Only meaningful when !IsStream.
func (d Data) Value() any {
	return d.value
}

// Stream returns the underlying stream, or nil.
func (d Data) Stream() *ListStream {
	return d.stream
}

// Collect materializes d into an immediate value: streams are pulled to
// exhaustion (honoring their Signals), empty collects to nil, values pass
// through. The metadata is preserved on the result.
func (d Data) Collect(sp span.Span) (Data, error) {
	if d.stream == nil {
		return d, nil
	}
	values, err := d.stream.Collect()
	if err != nil {
		return Empty(), span.Attach(sp, err)
	}
	out := FromValue([]any(values))
	out.md = d.md
	return out, nil
}

// Drain consumes d without keeping its contents. Interrupts still abort.
func (d Data) Drain(sp span.Span) error {
	if d.stream == nil {
		return nil
	}
	return span.Attach(sp, d.stream.Drain())
}

// Clone duplicates d. Immediate values share underlying storage (values are
// treated as immutable); streams cannot be cloned.
func (d Data) Clone() (Data, error) {
	if d.stream != nil {
		return Empty(), ErrCloneStream
	}
	return d, nil
}

// String renders a short display form for logs and the stepper.
func (d Data) String() string {
	if d.stream != nil {
		return "<stream>"
	}
	if d.value == nil {
		return "empty"
	}
	return FormatValue(d.value)
}
