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
	"regexp"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/eventstream"
	"github.com/tochemey/agentic/internal/syncmap"
	"github.com/tochemey/agentic/log"
	"github.com/tochemey/agentic/metric"
)

const (
	// DefaultShutdownTimeout defines the per-agent shutdown timeout
	DefaultShutdownTimeout = time.Minute
	// DefaultTaskPoolSize defines the size of the pool running child tasks
	DefaultTaskPoolSize = 100
)

// System hosts a set of named agents. It owns the shared events stream and
// the task pool the agents' children run on, and spawns, looks up and stops
// agents by name.
type System struct {
	name   string
	logger log.Logger

	agents       *syncmap.SyncMap[string, *PID]
	eventsStream eventstream.Stream
	taskPool     *ants.Pool

	metricEnabled  atomic.Bool
	metricProvider *metric.Provider

	started   atomic.Bool
	startedAt atomic.Int64

	shutdownTimeout time.Duration
	taskPoolSize    int
}

// NewSystem creates an agent system with the given name. The name must start
// with an alphanumeric character and contain only alphanumerics, '-' or '_'.
func NewSystem(name string, opts ...Option) (*System, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}
	if match, _ := regexp.MatchString("^[a-zA-Z0-9][a-zA-Z0-9-_]*$", name); !match {
		return nil, gerrors.ErrInvalidSystemName
	}

	system := &System{
		name:            name,
		logger:          log.DefaultLogger,
		agents:          syncmap.New[string, *PID](),
		eventsStream:    eventstream.New(),
		shutdownTimeout: DefaultShutdownTimeout,
		taskPoolSize:    DefaultTaskPoolSize,
	}
	for _, opt := range opts {
		opt.Apply(system)
	}
	return system, nil
}

// Name returns the system name.
func (x *System) Name() string {
	return x.name
}

// Logger returns the system logger.
func (x *System) Logger() log.Logger {
	return x.logger
}

// Uptime returns the number of seconds since the system started.
func (x *System) Uptime() int64 {
	if x.started.Load() {
		return time.Now().Unix() - x.startedAt.Load()
	}
	return 0
}

// Start starts the system. Agents can only be spawned on a started system.
func (x *System) Start(_ context.Context) error {
	if !x.started.CompareAndSwap(false, true) {
		return gerrors.ErrSystemAlreadyStarted
	}

	pool, err := ants.NewPool(x.taskPoolSize)
	if err != nil {
		x.started.Store(false)
		return gerrors.NewInternalError(err)
	}
	x.taskPool = pool
	x.startedAt.Store(time.Now().Unix())

	if x.metricEnabled.Load() {
		x.metricProvider = metric.NewProvider()
		if err := x.registerMetrics(); err != nil {
			x.logger.Errorf("failed to register system metrics: %v", err)
			x.taskPool.Release()
			x.started.Store(false)
			return gerrors.NewInternalError(err)
		}
	}

	x.logger.Infof("agent system=(%s) successfully started", x.name)
	return nil
}

// Stop stops every agent and tears the system down. Each agent gets the
// configured shutdown timeout; stop errors are aggregated.
func (x *System) Stop(ctx context.Context) error {
	if !x.started.CompareAndSwap(true, false) {
		return gerrors.ErrSystemNotStarted
	}

	x.logger.Infof("stopping agent system=(%s)...", x.name)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, pid := range x.agents.Values() {
		pid := pid
		eg.Go(func() error {
			cctx, cancel := context.WithTimeout(egCtx, x.shutdownTimeout)
			defer cancel()
			return pid.Shutdown(cctx)
		})
	}
	err := eg.Wait()

	x.agents.Reset()
	x.eventsStream.Close()
	if x.taskPool != nil {
		x.taskPool.Release()
	}
	x.startedAt.Store(0)

	if err != nil {
		x.logger.Errorf("agent system=(%s) failed to stop cleanly: %v", x.name, err)
		return err
	}
	x.logger.Infof("agent system=(%s) successfully stopped", x.name)
	return nil
}

// Spawn creates and starts an agent under the given name. Names are unique
// within the system; spawning an existing name fails.
func (x *System) Spawn(ctx context.Context, name string, agent Agent, opts ...SpawnOption) (*PID, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrSystemNotStarted
	}
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}
	if agent == nil {
		return nil, gerrors.NewErrValidation(errors.New("agent is required"))
	}
	if _, ok := x.agents.Get(name); ok {
		return nil, gerrors.NewErrAgentAlreadyExists(name)
	}

	config := newSpawnConfig(opts...)
	pid, err := newPID(ctx, name, agent, config, x)
	if err != nil {
		return nil, gerrors.NewSpawnError(err)
	}
	x.agents.Set(name, pid)
	return pid, nil
}

// Agent returns the PID registered under the given name.
func (x *System) Agent(name string) (*PID, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrSystemNotStarted
	}
	pid, ok := x.agents.Get(name)
	if !ok {
		return nil, gerrors.NewErrAgentNotFound(name)
	}
	return pid, nil
}

// Agents returns a snapshot of the live agents.
func (x *System) Agents() []*PID {
	return x.agents.Values()
}

// AgentsCount returns the number of live agents.
func (x *System) AgentsCount() int {
	return x.agents.Len()
}

// StopAgent shuts the named agent down and removes it from the system.
func (x *System) StopAgent(ctx context.Context, name string) error {
	pid, err := x.Agent(name)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()
	return pid.Shutdown(cctx)
}

// Subscribe returns a subscriber fed with the runtime events of every agent
// in the system: lifecycle transitions, queue overflows, execution failures,
// child terminations.
func (x *System) Subscribe() (eventstream.Subscriber, error) {
	if !x.started.Load() {
		return nil, gerrors.ErrSystemNotStarted
	}
	subscriber := x.eventsStream.AddSubscriber()
	x.eventsStream.Subscribe(subscriber, agentsTopic)
	return subscriber, nil
}

// Unsubscribe stops feeding the given subscriber.
func (x *System) Unsubscribe(subscriber eventstream.Subscriber) error {
	if !x.started.Load() {
		return gerrors.ErrSystemNotStarted
	}
	x.eventsStream.Unsubscribe(subscriber, agentsTopic)
	x.eventsStream.RemoveSubscriber(subscriber)
	return nil
}

// Stream returns the system events stream.
func (x *System) Stream() eventstream.Stream {
	return x.eventsStream
}

// Metric returns a point-in-time snapshot of the system counters. It returns
// nil when the system is stopped.
func (x *System) Metric() *Metric {
	if !x.started.Load() {
		return nil
	}
	return &Metric{
		agentsCount: int64(x.agents.Len()),
		uptime:      x.Uptime(),
	}
}

// removeAgent drops a stopped agent from the registry.
func (x *System) removeAgent(name string) {
	x.agents.Delete(name)
}

// registerMetrics registers the observable instruments reading the system
// counters.
func (x *System) registerMetrics() error {
	if x.metricProvider == nil || x.metricProvider.Meter() == nil {
		return nil
	}
	meter := x.metricProvider.Meter()
	metrics, err := metric.NewSystemMetric(meter)
	if err != nil {
		return err
	}

	observeOptions := []otelmetric.ObserveOption{
		otelmetric.WithAttributes(attribute.String("agent.system", x.Name())),
	}

	_, err = meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(metrics.AgentsCount(), int64(x.agents.Len()), observeOptions...)
		observer.ObserveInt64(metrics.Uptime(), x.Uptime(), observeOptions...)
		return nil
	}, metrics.AgentsCount(),
		metrics.Uptime(),
	)
	return err
}
