package compose

import "github.com/compotron/compose/internal/domain"

// Port interfaces re-exported from internal/domain, so callers embedding
// their own FS/Logger/Tracer never need to import the internal package
// directly.

// FS is the filesystem abstraction the engine operates through.
type FS = domain.FS

// Logger is the structured logging port.
type Logger = domain.Logger

// Tracer is the tracing port.
type Tracer = domain.Tracer

// Span is one unit of traced work.
type Span = domain.Span

// SpanOption configures a span at start time.
type SpanOption = domain.SpanOption

// Attribute is a key/value pair attached to a trace span.
type Attribute = domain.Attribute

// Clock abstracts wall-clock reads.
type Clock = domain.Clock

// NewNoopTracer returns a Tracer that records nothing.
func NewNoopTracer() Tracer { return domain.NewNoopTracer() }

// NewSystemClock returns the production Clock backed by time.Now.
func NewSystemClock() Clock { return domain.NewSystemClock() }
