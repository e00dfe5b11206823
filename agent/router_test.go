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

	gerrors "github.com/tochemey/agentic/errors"
)

func TestRouter(t *testing.T) {
	t.Run("With installation", func(t *testing.T) {
		router := NewRouter()
		require.NoError(t, router.Install(Route{Pattern: "task.*", Instruction: Instruction{Action: "run"}}))
		require.NoError(t, router.Install(Route{Pattern: "task.create", Instruction: Instruction{Action: "create"}}))
		assert.Equal(t, 2, router.Len())
		assert.Len(t, router.Routes(), 2)

		err := router.Install(Route{Pattern: "bad..pattern", Instruction: Instruction{Action: "run"}})
		assert.ErrorIs(t, err, gerrors.ErrInvalidRoute)
		assert.Equal(t, 2, router.Len())
	})
	t.Run("With install all stopping at the first invalid", func(t *testing.T) {
		router := NewRouter()
		err := router.InstallAll(
			Route{Pattern: "task.*", Instruction: Instruction{Action: "run"}},
			Route{Pattern: "", Instruction: Instruction{Action: "run"}},
			Route{Pattern: "job.*", Instruction: Instruction{Action: "run"}},
		)
		require.Error(t, err)
		assert.Equal(t, 1, router.Len())
	})
	t.Run("With priority ordering", func(t *testing.T) {
		router := NewRouter()
		require.NoError(t, router.InstallAll(
			Route{Pattern: "task.*", Instruction: Instruction{Action: "fallback"}},
			Route{Pattern: "task.create", Instruction: Instruction{Action: "specific"}, Priority: 10},
			Route{Pattern: "task.*", Instruction: Instruction{Action: "audit"}},
		))

		instructions, err := router.route(NewSignal("task.create"))
		require.NoError(t, err)
		require.Len(t, instructions, 3)
		assert.Equal(t, "specific", instructions[0].Action)
		// equal priority keeps install order
		assert.Equal(t, "fallback", instructions[1].Action)
		assert.Equal(t, "audit", instructions[2].Action)
	})
	t.Run("With no matching route", func(t *testing.T) {
		router := NewRouter()
		require.NoError(t, router.Install(Route{Pattern: "task.*", Instruction: Instruction{Action: "run"}}))

		instructions, err := router.route(NewSignal("job.create"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNoMatchingRoute)
		assert.Nil(t, instructions)
	})
	t.Run("With instruction payload bypassing matching", func(t *testing.T) {
		router := NewRouter()
		require.NoError(t, router.Install(Route{Pattern: "task.*", Instruction: Instruction{Action: "run"}}))

		explicit := &Instruction{Action: "bespoke"}
		instructions, err := router.route(NewSignal("task.create", WithData(explicit)))
		require.NoError(t, err)
		require.Len(t, instructions, 1)
		assert.Same(t, explicit, instructions[0])
	})
	t.Run("With materialized instructions not sharing params", func(t *testing.T) {
		router := NewRouter()
		require.NoError(t, router.Install(Route{
			Pattern:     "task.*",
			Instruction: Instruction{Action: "run", Params: map[string]any{"n": 1}},
		}))

		first, err := router.route(NewSignal("task.a"))
		require.NoError(t, err)
		second, err := router.route(NewSignal("task.b"))
		require.NoError(t, err)

		first[0].Params["n"] = 2
		assert.Equal(t, 1, second[0].Params["n"])
	})
}
