package dripper

import (
	"context"
	"fmt"
	"time"
)

// Processor binds a compiled declaration to the codecs documents arrive and
// leave in. Use Apply for decoded documents and Process for raw bytes.
//
// Processors are immutable after construction and safe for concurrent use.
type Processor struct {
	extractor Extractor
	compiler  *Compiler
	input     Codec
	output    Codec
	name      string
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithOutputCodec sets the codec results are marshaled with.
// Defaults to the input codec.
func WithOutputCodec(c Codec) ProcessorOption {
	return func(p *Processor) {
		p.output = c
	}
}

// WithCompiler compiles the declaration with c instead of the default compiler.
func WithCompiler(c *Compiler) ProcessorOption {
	return func(p *Processor) {
		p.compiler = c
	}
}

// WithName labels the processor in emitted signals.
func WithName(name string) ProcessorOption {
	return func(p *Processor) {
		p.name = name
	}
}

// NewProcessor compiles decl and returns a Processor reading documents with input.
func NewProcessor(decl any, input Codec, opts ...ProcessorOption) (*Processor, error) {
	p := &Processor{
		compiler: defaultCompiler,
		input:    input,
		name:     "default",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.output == nil {
		p.output = input
	}

	ex, err := p.compiler.Compile(decl)
	if err != nil {
		return nil, err
	}
	p.extractor = ex

	emitProcessorCreated(context.Background(), p.name, input.ContentType())
	return p, nil
}

// Extractor returns the compiled extractor.
func (p *Processor) Extractor() Extractor {
	return p.extractor
}

// Apply runs the extractor against a decoded document.
func (p *Processor) Apply(ctx context.Context, doc any) (any, error) {
	start := time.Now()
	emitApplyStart(ctx, p.name)

	out, err := p.extractor.Extract(doc)
	emitApplyComplete(ctx, p.name, outputSize(out), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Process unmarshals data with the input codec, extracts, and marshals the
// result with the output codec. A top-level Absent result is encoded as null.
func (p *Processor) Process(ctx context.Context, data []byte) ([]byte, error) {
	var doc any
	if err := p.input.Unmarshal(data, &doc); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}

	out, err := p.Apply(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if IsAbsent(out) {
		out = nil
	}

	encoded, err := p.output.Marshal(out)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return encoded, nil
}

// outputSize reports the number of fields or elements in an extraction result.
func outputSize(v any) int {
	switch t := v.(type) {
	case map[string]any:
		return len(t)
	case []any:
		return len(t)
	}
	return 0
}
