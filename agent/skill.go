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

import "context"

// Skill is an extension bundle attached to an agent at spawn time. During
// boot each skill contributes routes, action implementations and child specs,
// and its Mount hook may reshape the initial state. At processing time a
// skill that also implements SignalHandler or ResultTransformer participates
// in the callback pipeline for signals matching its patterns.
//
// Skill options are looked up in the spawn's skill option bag under OptsKey
// and handed to every hook.
type Skill interface {
	// Name identifies the skill in logs and events.
	Name() string
	// OptsKey is the key the skill's options live under in the spawn's skill
	// option bag.
	OptsKey() string
	// SignalPatterns returns the dot-path patterns gating the skill's
	// pipeline hooks. Matching follows route pattern rules.
	SignalPatterns() []string
	// Mount reshapes the initial state during boot. An error aborts the spawn.
	Mount(ctx context.Context, state map[string]any, opts map[string]any) (map[string]any, error)
	// Router returns the routes the skill installs at boot.
	Router(opts map[string]any) []Route
	// Actions returns the action implementations the skill registers at boot.
	Actions(opts map[string]any) []Action
	// ChildSpecs returns the children the skill starts at boot.
	ChildSpecs(opts map[string]any) []ChildSpec
}

// SignalHandler is the optional pre-routing hook of a Skill.
type SignalHandler interface {
	// HandleSignal observes or transforms a signal before routing. Failures
	// and panics are swallowed; the signal before the hook is kept.
	HandleSignal(ctx context.Context, signal *Signal) (*Signal, error)
}

// ResultTransformer is the optional post-execution hook of a Skill.
type ResultTransformer interface {
	// TransformResult observes or transforms a result after execution, with
	// swallow-on-failure semantics.
	TransformResult(ctx context.Context, signal *Signal, result map[string]any) (map[string]any, error)
}

// BaseSkill provides no-op implementations of every Skill method except Name.
// Embed it and override selectively.
type BaseSkill struct{}

// OptsKey implements Skill with an empty key: the skill takes no options.
func (BaseSkill) OptsKey() string { return "" }

// SignalPatterns implements Skill with no patterns: the skill's pipeline
// hooks never run.
func (BaseSkill) SignalPatterns() []string { return nil }

// Mount implements Skill and keeps the state unchanged.
func (BaseSkill) Mount(_ context.Context, state map[string]any, _ map[string]any) (map[string]any, error) {
	return state, nil
}

// Router implements Skill with no routes.
func (BaseSkill) Router(map[string]any) []Route { return nil }

// Actions implements Skill with no actions.
func (BaseSkill) Actions(map[string]any) []Action { return nil }

// ChildSpecs implements Skill with no children.
func (BaseSkill) ChildSpecs(map[string]any) []ChildSpec { return nil }
