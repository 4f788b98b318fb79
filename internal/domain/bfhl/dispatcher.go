package bfhl

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/okian/bfhl/internal/domain/arith"
)

// Default dispatcher configuration constants.
const (
	defaultFoldMinLength     = 2
	defaultFibonacciMaxTerms = 1000
)

// Generator produces free text for a question. Implementations live in the
// AI adapters and may call out over the network.
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
}

// HandlerFunc validates a raw value and computes the operation result.
type HandlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithFoldMinLength sets the minimum array length accepted by lcm and hcf.
// 2 is the strict mode, 1 also accepts single-element arrays.
func WithFoldMinLength(n int) Option {
	return func(d *Dispatcher) {
		if n >= 1 {
			d.foldMinLength = n
		}
	}
}

// WithFibonacciMaxTerms caps the n accepted by fibonacci.
func WithFibonacciMaxTerms(n int) Option {
	return func(d *Dispatcher) {
		if n >= 1 {
			d.fibonacciMaxTerms = n
		}
	}
}

// WithStripNonAlpha removes non-letter runes from the AI answer word.
func WithStripNonAlpha(strip bool) Option {
	return func(d *Dispatcher) {
		d.stripNonAlpha = strip
	}
}

// WithAITimeout bounds one AI operation, including any time the generator
// spends waiting for a rate limit token. Zero leaves only the caller's deadline.
func WithAITimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout >= 0 {
			d.aiTimeout = timeout
		}
	}
}

// WithGenerator sets the AI text generator.
func WithGenerator(g Generator) Option {
	return func(d *Dispatcher) {
		d.generator = g
	}
}

// Dispatcher maps each operation to its handler.
type Dispatcher struct {
	handlers map[Operation]HandlerFunc

	foldMinLength     int
	fibonacciMaxTerms int
	stripNonAlpha     bool
	aiTimeout         time.Duration
	generator         Generator
}

// NewDispatcher builds a Dispatcher with the built-in operations registered.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers:          make(map[Operation]HandlerFunc),
		foldMinLength:     defaultFoldMinLength,
		fibonacciMaxTerms: defaultFibonacciMaxTerms,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.Register(OpFibonacci, d.fibonacci)
	d.Register(OpPrime, d.prime)
	d.Register(OpLCM, d.lcm)
	d.Register(OpHCF, d.hcf)
	d.Register(OpAI, d.ai)
	return d
}

// Register binds op to h, replacing any previous handler.
func (d *Dispatcher) Register(op Operation, h HandlerFunc) {
	d.handlers[op] = h
}

// Dispatch runs the handler registered for req.Op.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	h, ok := d.handlers[req.Op]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", req.Op)
	}
	return h(ctx, req.Value)
}

// Handle parses body and dispatches it.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) (Operation, any, error) {
	req, err := ParseRequest(body)
	if err != nil {
		return "", nil, err
	}
	data, err := d.Dispatch(ctx, req)
	return req.Op, data, err
}

func (d *Dispatcher) fibonacci(_ context.Context, raw json.RawMessage) (any, error) {
	n, err := decodeInteger(OpFibonacci, raw)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > int64(d.fibonacciMaxTerms) {
		return nil, invalidValue(OpFibonacci, "n=%d outside [1, %d]", n, d.fibonacciMaxTerms)
	}
	return arith.Fibonacci(int(n))
}

func (d *Dispatcher) prime(_ context.Context, raw json.RawMessage) (any, error) {
	values, err := collectIntegers(OpPrime, raw)
	if err != nil {
		return nil, err
	}
	return arith.FilterPrimes(values), nil
}

func (d *Dispatcher) lcm(_ context.Context, raw json.RawMessage) (any, error) {
	values, err := d.foldInput(OpLCM, raw)
	if err != nil {
		return nil, err
	}
	return arith.LCMAll(values)
}

func (d *Dispatcher) hcf(_ context.Context, raw json.RawMessage) (any, error) {
	values, err := d.foldInput(OpHCF, raw)
	if err != nil {
		return nil, err
	}
	return arith.HCF(values)
}

func (d *Dispatcher) foldInput(op Operation, raw json.RawMessage) ([]int64, error) {
	values, err := decodeIntegers(op, raw)
	if err != nil {
		return nil, err
	}
	if len(values) < d.foldMinLength {
		return nil, invalidValue(op, "need at least %d values, got %d", d.foldMinLength, len(values))
	}
	return values, nil
}

func (d *Dispatcher) ai(ctx context.Context, raw json.RawMessage) (any, error) {
	question, err := decodeQuestion(OpAI, raw)
	if err != nil {
		return nil, err
	}
	if d.generator == nil {
		return nil, errors.Wrap(ErrUpstream, "no ai provider configured")
	}
	if d.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.aiTimeout)
		defer cancel()
	}
	text, err := d.generator.Generate(ctx, question)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "generate"), ErrUpstream)
	}
	word := FirstWord(text, d.stripNonAlpha)
	if word == "" {
		return nil, errors.Wrap(ErrUpstream, "empty answer")
	}
	return word, nil
}

// FirstWord returns the first whitespace-delimited token of text. With
// stripNonAlpha set, non-letter runes are removed and tokens left empty are
// skipped.
func FirstWord(text string, stripNonAlpha bool) string {
	for _, field := range strings.Fields(text) {
		if !stripNonAlpha {
			return field
		}
		word := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, field)
		if word != "" {
			return word
		}
	}
	return ""
}
