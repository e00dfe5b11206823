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
	"strings"

	gerrors "github.com/tochemey/agentic/errors"
)

// Route maps a dot-segmented signal type pattern to an instruction template.
// In a pattern, `*` matches exactly one segment, except in trailing position
// where it matches one or more remaining segments. Higher priority wins;
// routes with equal priority keep their install order.
type Route struct {
	// Pattern is the dot-segmented signal type pattern.
	Pattern string
	// Instruction is the template materialized when the pattern matches.
	Instruction Instruction
	// Priority breaks ties between matching routes. Higher wins.
	Priority int
}

// Validate reports whether the route can be installed.
func (r Route) Validate() error {
	if err := validatePattern(r.Pattern); err != nil {
		return err
	}
	if err := r.Instruction.Validate(); err != nil {
		return err
	}
	return nil
}

// Matches reports whether the route's pattern matches the given signal type.
func (r Route) Matches(signalType string) bool {
	return matchPattern(r.Pattern, signalType)
}

// instruction materializes a fresh instruction from the template. Params and
// context maps are copied so concurrent runs never share storage with the
// template or with each other.
func (r Route) instruction() *Instruction {
	inst := r.Instruction
	if len(inst.Params) > 0 {
		params := make(map[string]any, len(inst.Params))
		for k, v := range inst.Params {
			params[k] = v
		}
		inst.Params = params
	}
	if len(inst.Context) > 0 {
		context := make(map[string]any, len(inst.Context))
		for k, v := range inst.Context {
			context[k] = v
		}
		inst.Context = context
	}
	return &inst
}

// validatePattern rejects empty patterns, empty segments and wildcards glued
// to literals.
func validatePattern(pattern string) error {
	if pattern == "" {
		return gerrors.NewErrInvalidRoute(pattern, "pattern is empty")
	}
	for _, segment := range strings.Split(pattern, ".") {
		switch {
		case segment == "":
			return gerrors.NewErrInvalidRoute(pattern, "pattern contains an empty segment")
		case strings.Contains(segment, "*") && segment != "*":
			return gerrors.NewErrInvalidRoute(pattern, "wildcard must be a whole segment")
		}
	}
	return nil
}

// matchPattern matches a dot-segmented signal type against a pattern.
// A `*` segment matches exactly one type segment; a trailing `*` matches one
// or more remaining segments.
func matchPattern(pattern, signalType string) bool {
	if pattern == "" || signalType == "" {
		return false
	}
	patternSegments := strings.Split(pattern, ".")
	typeSegments := strings.Split(signalType, ".")

	for i, segment := range patternSegments {
		trailing := i == len(patternSegments)-1
		if segment == "*" {
			if trailing {
				// one-or-more remaining segments
				return len(typeSegments) >= len(patternSegments)
			}
			if i >= len(typeSegments) {
				return false
			}
			continue
		}
		if i >= len(typeSegments) || typeSegments[i] != segment {
			return false
		}
	}
	return len(typeSegments) == len(patternSegments)
}
