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
	"errors"
	"time"

	gerrors "github.com/tochemey/agentic/errors"
)

// Instruction is a unit of work: an action id plus the parameters and context
// it runs with. Instructions are produced by the router or carried directly in
// a signal's payload.
type Instruction struct {
	// Action is the capability id the instruction resolves against.
	Action string
	// Params are the call parameters handed to the action.
	Params map[string]any
	// Context is auxiliary data visible to the action but not part of the call
	// parameters.
	Context map[string]any
	// Opts tunes how the instruction runs.
	Opts RunOptions
}

// RunOptions tunes a single run of one or more instructions.
type RunOptions struct {
	// MergeResults merges each step's result map into the next instruction's
	// params when running a chain. Later keys win.
	MergeResults bool
	// ApplyDirectives keeps the directives accumulated before a chain error so
	// that the caller can still apply them. When false (the default) an error
	// drops that run's directives.
	ApplyDirectives bool
	// Timeout bounds a single action invocation. Zero means no bound.
	Timeout time.Duration
}

// Validate reports whether the instruction can be executed.
func (i *Instruction) Validate() error {
	if i == nil {
		return gerrors.NewErrValidation(errors.New("instruction is nil"))
	}
	if i.Action == "" {
		return gerrors.NewErrValidation(errors.New("instruction action is required"))
	}
	return nil
}

// withMergedParams returns a copy of the instruction whose params are the
// shallow merge of the instruction's own params and the given overlay. Overlay
// keys win.
func (i *Instruction) withMergedParams(overlay map[string]any) *Instruction {
	if len(overlay) == 0 {
		return i
	}
	merged := make(map[string]any, len(i.Params)+len(overlay))
	for k, v := range i.Params {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	clone := *i
	clone.Params = merged
	return &clone
}
