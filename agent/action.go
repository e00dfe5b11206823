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
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/internal/syncmap"
)

// Action is a unit of domain behavior resolved by capability id. Run returns
// the action's result map, zero or more directives for the agent to apply,
// or an error. Actions never touch agent state directly; they return
// StateMutation directives instead.
type Action interface {
	// Name returns the capability id the action registers under.
	Name() string
	// Run executes the action with the instruction's params and context.
	Run(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []Directive, error)
}

// ParamsValidator is an optional Action capability invoked around parameter
// validation by the execution wrapper. The core loop never calls it.
type ParamsValidator interface {
	BeforeValidateParams(ctx context.Context, params map[string]any) (map[string]any, error)
	AfterValidateParams(ctx context.Context, params map[string]any) (map[string]any, error)
}

// OutputValidator is an optional Action capability invoked around output
// validation by the execution wrapper.
type OutputValidator interface {
	BeforeValidateOutput(ctx context.Context, output map[string]any) (map[string]any, error)
	AfterValidateOutput(ctx context.Context, output map[string]any) (map[string]any, error)
}

// PostRunner is an optional Action capability invoked after a successful run
// by the execution wrapper.
type PostRunner interface {
	AfterRun(ctx context.Context, params map[string]any, output map[string]any) error
}

// Compensator is an optional Action capability invoked by the execution
// wrapper when the final attempt of a run fails, to undo partial effects.
type Compensator interface {
	OnError(ctx context.Context, failedParams map[string]any, cause error, actionCtx map[string]any, opts RunOptions) error
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc struct {
	name string
	fn   func(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []Directive, error)
}

// enforce compilation error
var _ Action = (*ActionFunc)(nil)

// NewActionFunc creates an Action from a bare function.
func NewActionFunc(name string, fn func(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []Directive, error)) *ActionFunc {
	return &ActionFunc{name: name, fn: fn}
}

// Name implements Action.
func (a *ActionFunc) Name() string { return a.name }

// Run implements Action.
func (a *ActionFunc) Run(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []Directive, error) {
	return a.fn(ctx, params, actionCtx)
}

// capabilityRegistry tracks the action implementations known to an agent and
// the set of capability ids currently enabled. Registering an implementation
// enables its id; Register/DeregisterCapability directives toggle membership
// without discarding the implementation.
type capabilityRegistry struct {
	actions *syncmap.SyncMap[string, Action]
	enabled mapset.Set[string]
}

func newCapabilityRegistry() *capabilityRegistry {
	return &capabilityRegistry{
		actions: syncmap.New[string, Action](),
		enabled: mapset.NewSet[string](),
	}
}

// registerAction stores the implementation and enables its capability id.
func (c *capabilityRegistry) registerAction(action Action) {
	c.actions.Set(action.Name(), action)
	c.enabled.Add(action.Name())
}

// enable adds a capability id to the enabled set. Idempotent.
func (c *capabilityRegistry) enable(id string) {
	c.enabled.Add(id)
}

// disable removes a capability id from the enabled set. Idempotent.
func (c *capabilityRegistry) disable(id string) {
	c.enabled.Remove(id)
}

// has reports whether the capability id is enabled.
func (c *capabilityRegistry) has(id string) bool {
	return c.enabled.Contains(id)
}

// resolve returns the enabled action implementation for the given id.
func (c *capabilityRegistry) resolve(id string) (Action, error) {
	if !c.enabled.Contains(id) {
		return nil, gerrors.NewErrActionNotFound(id)
	}
	action, ok := c.actions.Get(id)
	if !ok {
		return nil, gerrors.NewErrActionNotFound(id)
	}
	return action, nil
}

// ids returns the enabled capability ids in lexical order.
func (c *capabilityRegistry) ids() []string {
	ids := c.enabled.ToSlice()
	sort.Strings(ids)
	return ids
}
