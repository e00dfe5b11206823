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
	"sort"
	"sync"

	gerrors "github.com/tochemey/agentic/errors"
)

// Router translates an inbound signal into the ordered list of instructions
// to execute. A signal whose payload already carries an explicit Instruction
// bypasses pattern matching entirely.
type Router struct {
	mu     sync.RWMutex
	routes []installedRoute
}

type installedRoute struct {
	route Route
	order int
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Install validates and installs a route.
func (r *Router) Install(route Route) error {
	if err := route.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.routes = append(r.routes, installedRoute{route: route, order: len(r.routes)})
	r.mu.Unlock()
	return nil
}

// InstallAll validates and installs the given routes, stopping at the first
// invalid one.
func (r *Router) InstallAll(routes ...Route) error {
	for _, route := range routes {
		if err := r.Install(route); err != nil {
			return err
		}
	}
	return nil
}

// Routes returns a snapshot of the installed routes in install order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]Route, 0, len(r.routes))
	for _, installed := range r.routes {
		routes = append(routes, installed.route)
	}
	return routes
}

// Len returns the number of installed routes.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// route resolves the instructions for a signal. An explicit instruction
// payload is returned unchanged. Otherwise matching routes are materialized
// in priority order, highest first, install order preserved on ties. Zero
// matches is an execution error, not fatal to the agent.
func (r *Router) route(signal *Signal) ([]*Instruction, error) {
	if instruction, ok := signal.Instruction(); ok {
		return []*Instruction{instruction}, nil
	}

	r.mu.RLock()
	matches := make([]installedRoute, 0, len(r.routes))
	for _, installed := range r.routes {
		if installed.route.Matches(signal.Type()) {
			matches = append(matches, installed)
		}
	}
	r.mu.RUnlock()

	if len(matches) == 0 {
		return nil, gerrors.NewErrNoMatchingRoute(signal.Type())
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].route.Priority > matches[j].route.Priority
	})

	instructions := make([]*Instruction, 0, len(matches))
	for _, installed := range matches {
		instructions = append(instructions, installed.route.instruction())
	}
	return instructions, nil
}
