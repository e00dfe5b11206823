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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal(t *testing.T) {
	t.Run("With options", func(t *testing.T) {
		config := &DispatchConfig{Topic: "out"}
		signal := NewSignal("task.create",
			WithSource("caller"),
			WithSubject("order-12"),
			WithData(map[string]any{"k": "v"}),
			WithCorrelationID("corr-1"),
			WithDispatch(config),
		)

		require.NotEmpty(t, signal.ID())
		assert.Equal(t, "task.create", signal.Type())
		assert.Equal(t, "caller", signal.Source())
		assert.Equal(t, "order-12", signal.Subject())
		assert.Equal(t, map[string]any{"k": "v"}, signal.Data())
		assert.Equal(t, "corr-1", signal.CorrelationID())
		assert.Same(t, config, signal.Dispatch())
		assert.False(t, signal.CreatedAt().IsZero())
	})
	t.Run("With sortable ids", func(t *testing.T) {
		previous := NewSignal("a")
		for i := 0; i < 100; i++ {
			next := NewSignal("a")
			require.Greater(t, next.ID(), previous.ID())
			previous = next
		}
	})
	t.Run("With instruction payload", func(t *testing.T) {
		instruction := &Instruction{Action: "do"}
		signal := NewSignal("task.run", WithData(instruction))
		got, ok := signal.Instruction()
		require.True(t, ok)
		assert.Same(t, instruction, got)

		byValue := NewSignal("task.run", WithData(Instruction{Action: "do"}))
		got, ok = byValue.Instruction()
		require.True(t, ok)
		assert.Equal(t, "do", got.Action)

		plain := NewSignal("task.run", WithData("payload"))
		_, ok = plain.Instruction()
		assert.False(t, ok)

		var nilInstruction *Instruction
		wrapped := NewSignal("task.run", WithData(nilInstruction))
		_, ok = wrapped.Instruction()
		assert.False(t, ok)
	})
	t.Run("With payload replacement", func(t *testing.T) {
		signal := NewSignal("task.create", WithSource("caller"), WithData("one"))
		clone := signal.WithPayload("two")
		assert.Equal(t, signal.ID(), clone.ID())
		assert.Equal(t, signal.Type(), clone.Type())
		assert.Equal(t, signal.Source(), clone.Source())
		assert.Equal(t, "two", clone.Data())
		assert.Equal(t, "one", signal.Data())
	})
}
