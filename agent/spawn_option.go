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
	"time"

	"github.com/tochemey/agentic/log"
)

// Mode selects how the processing loop drains the mailbox.
type Mode int

const (
	// Auto keeps draining the mailbox until it is empty.
	Auto Mode = iota
	// Manual processes exactly one signal per Step call.
	Manual
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Manual:
		return "manual"
	default:
		return "unknown"
	}
}

const (
	// DefaultInitMaxRetries is the boot hook retry budget.
	DefaultInitMaxRetries = 5
	// DefaultInitTimeout bounds the whole boot hook retry loop.
	DefaultInitTimeout = time.Second
	// DefaultChildMaxRestarts is the restart budget of a permanent child.
	DefaultChildMaxRestarts = 3
	// DefaultChildRestartWait caps the backoff between child restarts.
	DefaultChildRestartWait = 5 * time.Second
)

// spawnConfig defines the configuration to apply when spawning an agent
type spawnConfig struct {
	mailbox          Mailbox
	maxQueueSize     int
	routes           []Route
	actions          []Action
	skills           []Skill
	skillOpts        map[string]map[string]any
	initialState     map[string]any
	mode             Mode
	logger           log.Logger
	runner           Runner
	dispatcher       Dispatcher
	dispatchConfig   *DispatchConfig
	runOpts          RunOptions
	initMaxRetries   int
	initTimeout      time.Duration
	childMaxRestarts int
	childRestartWait time.Duration
}

// newSpawnConfig creates an instance of spawnConfig
func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		maxQueueSize:     DefaultMailboxCapacity,
		mode:             Auto,
		runner:           NewSingleRunner(),
		initMaxRetries:   DefaultInitMaxRetries,
		initTimeout:      DefaultInitTimeout,
		childMaxRestarts: DefaultChildMaxRestarts,
		childRestartWait: DefaultChildRestartWait,
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies to a spawn configuration.
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

// enforce compilation error
var _ SpawnOption = spawnOption(nil)

// spawnOption implements the SpawnOption interface.
type spawnOption func(config *spawnConfig)

// Apply applies the options to the spawn config
func (f spawnOption) Apply(config *spawnConfig) {
	f(config)
}

// WithMailbox sets a custom mailbox implementation. It overrides
// WithMaxQueueSize; the mailbox carries its own capacity.
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = mailbox
	})
}

// WithMaxQueueSize caps the default mailbox
func WithMaxQueueSize(size int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.maxQueueSize = size
	})
}

// WithRoutes installs the initial routes
func WithRoutes(routes ...Route) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.routes = append(config.routes, routes...)
	})
}

// WithActions registers the initial action implementations as enabled
// capabilities
func WithActions(actions ...Action) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.actions = append(config.actions, actions...)
	})
}

// WithSkills attaches the given skills at boot
func WithSkills(skills ...Skill) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.skills = append(config.skills, skills...)
	})
}

// WithSkillOptions sets the option bag handed to the skill registered under
// the given opts key
func WithSkillOptions(optsKey string, opts map[string]any) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		if config.skillOpts == nil {
			config.skillOpts = make(map[string]map[string]any)
		}
		config.skillOpts[optsKey] = opts
	})
}

// WithInitialState seeds the agent state before the mount hooks run
func WithInitialState(state map[string]any) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initialState = state
	})
}

// WithMode sets the mailbox draining mode
func WithMode(mode Mode) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mode = mode
	})
}

// WithSpawnLogger sets the agent custom logger
func WithSpawnLogger(logger log.Logger) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.logger = logger
	})
}

// WithRunner sets the execution strategy
func WithRunner(runner Runner) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.runner = runner
	})
}

// WithDispatcher sets the outbound dispatcher and its default config
func WithDispatcher(dispatcher Dispatcher, config *DispatchConfig) SpawnOption {
	return spawnOption(func(sc *spawnConfig) {
		sc.dispatcher = dispatcher
		sc.dispatchConfig = config
	})
}

// WithRunOptions sets the run options used when an instruction carries none
func WithRunOptions(opts RunOptions) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.runOpts = opts
	})
}

// WithInitMaxRetries sets the number of times to retry the boot hook
func WithInitMaxRetries(max int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initMaxRetries = max
	})
}

// WithInitTimeout bounds the boot hook retry loop
func WithInitTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initTimeout = timeout
	})
}

// WithChildSupervision tunes the restart budget of permanent children
func WithChildSupervision(maxRestarts int, restartWait time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.childMaxRestarts = maxRestarts
		config.childRestartWait = restartWait
	})
}
