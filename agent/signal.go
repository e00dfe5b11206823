// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package agent

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// signal ids are ULIDs drawn from a single monotonic entropy source so that
// ids sort by creation order even within the same millisecond.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func nextSignalID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Signal is an immutable message addressed by a dot-segmented type string.
// Signals are created by callers or internally by the runtime (error and
// lifecycle signals) and are never mutated after creation; transforms produce
// copies.
type Signal struct {
	id            string
	signalType    string
	source        string
	subject       string
	data          any
	dispatch      *DispatchConfig
	correlationID string
	createdAt     time.Time
}

// NewSignal creates an immutable Signal of the given dot-segmented type.
func NewSignal(signalType string, opts ...SignalOption) *Signal {
	signal := &Signal{
		id:         nextSignalID(),
		signalType: signalType,
		createdAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(signal)
	}
	return signal
}

// SignalOption configures a Signal at construction time.
type SignalOption func(*Signal)

// WithData sets the signal payload. A payload of type *Instruction addresses
// a specific action directly, bypassing route matching.
func WithData(data any) SignalOption {
	return func(s *Signal) { s.data = data }
}

// WithSource sets the origin of the signal.
func WithSource(source string) SignalOption {
	return func(s *Signal) { s.source = source }
}

// WithSubject sets the entity the signal is about.
func WithSubject(subject string) SignalOption {
	return func(s *Signal) { s.subject = subject }
}

// WithDispatch overrides the agent's dispatch configuration for this signal only.
func WithDispatch(config *DispatchConfig) SignalOption {
	return func(s *Signal) { s.dispatch = config }
}

// WithCorrelationID tags the signal with a correlation id.
func WithCorrelationID(id string) SignalOption {
	return func(s *Signal) { s.correlationID = id }
}

// ID returns the unique, monotonic-sortable signal id.
func (s *Signal) ID() string { return s.id }

// Type returns the dot-segmented signal type.
func (s *Signal) Type() string { return s.signalType }

// Source returns the origin of the signal.
func (s *Signal) Source() string { return s.source }

// Subject returns the entity the signal is about.
func (s *Signal) Subject() string { return s.subject }

// Data returns the opaque payload.
func (s *Signal) Data() any { return s.data }

// Dispatch returns the per-signal dispatch override, nil when unset.
func (s *Signal) Dispatch() *DispatchConfig { return s.dispatch }

// CorrelationID returns the correlation id, empty when unset.
func (s *Signal) CorrelationID() string { return s.correlationID }

// CreatedAt returns the signal creation time.
func (s *Signal) CreatedAt() time.Time { return s.createdAt }

// Instruction extracts an explicit instruction payload. It reports false when
// the payload is not an instruction.
func (s *Signal) Instruction() (*Instruction, bool) {
	switch data := s.data.(type) {
	case *Instruction:
		return data, data != nil
	case Instruction:
		return &data, true
	default:
		return nil, false
	}
}

// WithPayload returns a copy of the signal carrying the given payload. The
// id, type and metadata are preserved.
func (s *Signal) WithPayload(data any) *Signal {
	clone := *s
	clone.data = data
	return &clone
}

// segments splits the signal type on dots.
func (s *Signal) segments() []string {
	return strings.Split(s.signalType, ".")
}
