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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/log"
)

func newTestRunContext(signal *Signal, pending []*Instruction, opts RunOptions, actions ...Action) *RunContext {
	capabilities := newCapabilityRegistry()
	for _, action := range actions {
		capabilities.registerAction(action)
	}
	return newRunContext(signal, pending, capabilities, nil, opts, log.DiscardLogger)
}

func TestSingleRunner(t *testing.T) {
	ctx := context.TODO()
	runner := NewSingleRunner()
	require.Equal(t, "single", runner.Name())

	t.Run("With no pending instructions", func(t *testing.T) {
		rctx := newTestRunContext(NewSignal("task.create"), nil, RunOptions{})
		outcome, err := runner.Run(ctx, rctx)
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Nil(t, outcome.Result)
		assert.Empty(t, outcome.Directives)
	})
	t.Run("With the head executed and the rest lifted", func(t *testing.T) {
		spawned := &RegisterCapability{ID: "extra"}
		pending := []*Instruction{
			{Action: "head", Params: map[string]any{"n": 1}},
			{Action: "second"},
			{Action: "third"},
		}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			staticAction("head", map[string]any{"ran": "head"}, spawned),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"ran": "head"}, outcome.Result)

		require.Len(t, outcome.Directives, 3)
		assert.Same(t, spawned, outcome.Directives[0])
		first, ok := outcome.Directives[1].(*Enqueue)
		require.True(t, ok)
		assert.Equal(t, "second", first.Instruction.Action)
		second, ok := outcome.Directives[2].(*Enqueue)
		require.True(t, ok)
		assert.Equal(t, "third", second.Instruction.Action)
	})
	t.Run("With a failing head", func(t *testing.T) {
		cause := errors.New("broken")
		pending := []*Instruction{{Action: "head"}, {Action: "second"}}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			failingAction("head", cause),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.Error(t, err)
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "action=(head)")
	})
	t.Run("With an unknown action", func(t *testing.T) {
		pending := []*Instruction{{Action: "ghost"}}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{})

		_, err := runner.Run(ctx, rctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrActionNotFound)
	})
	t.Run("With a panicking action", func(t *testing.T) {
		pending := []*Instruction{{Action: "head"}}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			panicAction("head"),
		)

		_, err := runner.Run(ctx, rctx)
		require.Error(t, err)
		var panicErr *gerrors.PanicError
		assert.ErrorAs(t, err, &panicErr)
	})
}

func TestChainRunner(t *testing.T) {
	ctx := context.TODO()
	runner := NewChainRunner()
	require.Equal(t, "chain", runner.Name())

	t.Run("With strict order and directive accumulation", func(t *testing.T) {
		var order []string
		record := func(id string, result map[string]any, directives ...Directive) Action {
			return NewActionFunc(id, func(context.Context, map[string]any, map[string]any) (map[string]any, []Directive, error) {
				order = append(order, id)
				return result, directives, nil
			})
		}
		pending := []*Instruction{{Action: "one"}, {Action: "two"}, {Action: "three"}}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			record("one", map[string]any{"step": 1}, &RegisterCapability{ID: "a"}),
			record("two", map[string]any{"step": 2}),
			record("three", map[string]any{"step": 3}, &DeregisterCapability{ID: "a"}),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, order)
		// the outcome keeps the last step's result
		assert.Equal(t, map[string]any{"step": 3}, outcome.Result)
		require.Len(t, outcome.Directives, 2)
		assert.IsType(t, &RegisterCapability{}, outcome.Directives[0])
		assert.IsType(t, &DeregisterCapability{}, outcome.Directives[1])
	})
	t.Run("With merged results feeding the next step", func(t *testing.T) {
		pending := []*Instruction{
			{Action: "produce"},
			{Action: "consume", Params: map[string]any{"own": 1, "token": "stale"}},
		}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{MergeResults: true},
			staticAction("produce", map[string]any{"token": "fresh"}),
			echoAction("consume"),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.NoError(t, err)
		// overlay keys win over the instruction's own params
		assert.Equal(t, map[string]any{"own": 1, "token": "fresh"}, outcome.Result)
	})
	t.Run("With no merge by default", func(t *testing.T) {
		pending := []*Instruction{
			{Action: "produce"},
			{Action: "consume", Params: map[string]any{"own": 1}},
		}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			staticAction("produce", map[string]any{"token": "fresh"}),
			echoAction("consume"),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"own": 1}, outcome.Result)
	})
	t.Run("With a halt dropping directives by default", func(t *testing.T) {
		cause := errors.New("broken")
		pending := []*Instruction{{Action: "one"}, {Action: "two"}, {Action: "three"}}
		executed := false
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{},
			staticAction("one", nil, &RegisterCapability{ID: "a"}),
			failingAction("two", cause),
			NewActionFunc("three", func(context.Context, map[string]any, map[string]any) (map[string]any, []Directive, error) {
				executed = true
				return nil, nil, nil
			}),
		)

		outcome, err := runner.Run(ctx, rctx)
		require.Error(t, err)
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "chain step=(1) action=(two)")
		assert.False(t, executed)

		var partial *PartialOutcome
		assert.False(t, errors.As(err, &partial))
	})
	t.Run("With a halt surfacing a partial outcome", func(t *testing.T) {
		cause := errors.New("broken")
		pending := []*Instruction{{Action: "one"}, {Action: "two"}}
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{ApplyDirectives: true},
			staticAction("one", nil, &RegisterCapability{ID: "a"}),
			failingAction("two", cause),
		)

		_, err := runner.Run(ctx, rctx)
		require.Error(t, err)

		var partial *PartialOutcome
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, 1, partial.Step)
		assert.Equal(t, "two", partial.Action)
		require.Len(t, partial.Directives, 1)
		assert.IsType(t, &RegisterCapability{}, partial.Directives[0])
		assert.ErrorIs(t, partial, cause)
	})
	t.Run("With a per step timeout", func(t *testing.T) {
		pending := []*Instruction{{Action: "slow"}}
		slow := NewActionFunc("slow", func(ctx context.Context, _ map[string]any, _ map[string]any) (map[string]any, []Directive, error) {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(time.Second):
				return map[string]any{"done": true}, nil, nil
			}
		})
		rctx := newTestRunContext(NewSignal("task.create"), pending, RunOptions{Timeout: 20 * time.Millisecond}, slow)

		_, err := runner.Run(ctx, rctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRunContextTransforms(t *testing.T) {
	ctx := context.TODO()
	t.Run("With per step result transform", func(t *testing.T) {
		skill := &recordingSkill{name: "stamp", patterns: []string{"task.*"}, resultKey: "stamped"}
		p := newPipeline(&testAgent{}, []Skill{skill}, log.DiscardLogger)
		capabilities := newCapabilityRegistry()
		capabilities.registerAction(staticAction("produce", map[string]any{"base": 1}))

		signal := NewSignal("task.create")
		rctx := newRunContext(signal, []*Instruction{{Action: "produce"}}, capabilities, p, RunOptions{}, log.DiscardLogger)

		outcome, err := NewSingleRunner().Run(ctx, rctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"base": 1, "stamped": true}, outcome.Result)
	})
}
