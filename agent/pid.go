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
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/eventstream"
	"github.com/tochemey/agentic/log"
	"github.com/tochemey/agentic/metric"
)

// specifies the state in which the PID is
// regarding signal processing
const (
	// idle means there are no signals to process
	idle int32 = iota
	// busy means the PID is processing signals
	busy
)

// PID is the runtime handle of a spawned agent. It owns the mailbox, the
// lifecycle status, the agent state and the processing loop; exactly one
// signal is in flight at any time, which is what makes directive application
// and state mutation race free without locks.
type PID struct {
	name  string
	agent Agent

	system *System
	logger log.Logger

	mailbox      Mailbox
	replies      replyRegistry
	router       *Router
	capabilities *capabilityRegistry
	skills       []Skill
	pipeline     *pipeline
	runner       Runner
	state        *State
	supervisor   *supervisor

	dispatcher     Dispatcher
	dispatchConfig *DispatchConfig
	eventsStream   eventstream.Stream

	mode    Mode
	runOpts RunOptions

	initMaxRetries atomic.Int32
	initTimeout    atomic.Duration

	status     atomic.Uint32
	started    atomic.Bool
	stopping   atomic.Bool
	processing atomic.Int32

	currentSignal atomic.Pointer[Signal]

	startedAt               atomic.Int64
	processedCount          atomic.Int64
	failureCount            atomic.Int64
	latestProcessedDuration atomic.Duration
}

// newPID spawns an agent: it builds the runtime bookkeeping, runs the boot
// sequence and starts in Idle. A boot failure aborts the spawn entirely.
func newPID(ctx context.Context, name string, agent Agent, config *spawnConfig, system *System) (*PID, error) {
	logger := config.logger
	if logger == nil {
		logger = system.logger
	}

	mailbox := config.mailbox
	if mailbox == nil {
		mailbox = NewBoundedMailbox(config.maxQueueSize)
	}

	dispatcher := config.dispatcher
	dispatchConfig := config.dispatchConfig
	if dispatcher == nil {
		dispatcher = NewLogDispatcher(logger)
		if dispatchConfig == nil {
			dispatchConfig = &DispatchConfig{Level: log.DebugLevel}
		}
	}

	pid := &PID{
		name:           name,
		agent:          agent,
		system:         system,
		logger:         logger,
		mailbox:        mailbox,
		replies:        newReplyRegistry(),
		router:         NewRouter(),
		capabilities:   newCapabilityRegistry(),
		skills:         config.skills,
		runner:         config.runner,
		dispatcher:     dispatcher,
		dispatchConfig: dispatchConfig,
		eventsStream:   system.eventsStream,
		mode:           config.mode,
		runOpts:        config.runOpts,
	}
	pid.pipeline = newPipeline(agent, config.skills, logger)
	pid.supervisor = newSupervisor(logger, system.taskPool, config.childMaxRestarts, config.childRestartWait, func(ref ChildRef, err error) {
		if err != nil {
			pid.logger.Warnf("agent=(%s) child=(%s) name=(%s) terminated: %v", name, ref.Handle, ref.Name, err)
		}
		pid.publishEvent(NewChildTerminated(pid.name, ref, err))
	})
	pid.initMaxRetries.Store(int32(config.initMaxRetries))
	pid.initTimeout.Store(config.initTimeout)
	pid.status.Store(uint32(Initializing))

	if err := pid.boot(ctx, config); err != nil {
		if stopErr := pid.supervisor.stopAll(ctx); stopErr != nil {
			logger.Errorf("agent=(%s) failed to stop children after boot failure: %v", name, stopErr)
		}
		pid.mailbox.Dispose()
		logger.Errorf("agent=(%s) failed to boot: %v", name, err)
		return nil, gerrors.NewErrBootFailure(err)
	}
	return pid, nil
}

// boot runs the spawn sequence: install routes, register capabilities,
// install skills, start children, then run the mount hook under the init
// retrier. Success transitions the agent from Initializing to Idle.
func (pid *PID) boot(ctx context.Context, config *spawnConfig) error {
	pid.logger.Infof("boot process started for agent=(%s)...", pid.name)

	if err := pid.router.InstallAll(config.routes...); err != nil {
		return err
	}
	for _, action := range config.actions {
		pid.capabilities.registerAction(action)
	}

	state := config.initialState
	var childSpecs []ChildSpec
	for _, skill := range pid.skills {
		opts := config.skillOpts[skill.OptsKey()]
		if err := pid.router.InstallAll(skill.Router(opts)...); err != nil {
			return fmt.Errorf("installing routes of skill=(%s): %w", skill.Name(), err)
		}
		for _, action := range skill.Actions(opts) {
			pid.capabilities.registerAction(action)
		}
		var err error
		if state, err = skill.Mount(ctx, state, opts); err != nil {
			return fmt.Errorf("mounting skill=(%s): %w", skill.Name(), err)
		}
		childSpecs = append(childSpecs, skill.ChildSpecs(opts)...)
	}

	for _, spec := range childSpecs {
		if err := pid.applySpawnChild(ctx, &SpawnChild{Spec: spec}); err != nil {
			return fmt.Errorf("starting child=(%s): %w", spec.Name, err)
		}
	}

	cctx, cancel := context.WithTimeout(ctx, pid.initTimeout.Load())
	defer cancel()
	retrier := retry.NewRetrier(int(pid.initMaxRetries.Load()), time.Millisecond, pid.initTimeout.Load())
	if err := retrier.RunContext(cctx, func(_ context.Context) error {
		mounted, err := pid.agent.PreStart(ctx, state)
		if err != nil {
			return err
		}
		if mounted != nil {
			state = mounted
		}
		return nil
	}); err != nil {
		return err
	}
	pid.state = NewStateFrom(state)

	pid.started.Store(true)
	pid.startedAt.Store(time.Now().Unix())
	if err := pid.Transition(Idle); err != nil {
		return err
	}
	if err := pid.registerMetrics(); err != nil {
		return err
	}
	pid.publishEvent(NewAgentStarted(pid.name))
	pid.logger.Infof("agent=(%s) successfully booted", pid.name)
	return nil
}

// Name returns the agent's registered name.
func (pid *PID) Name() string {
	return pid.name
}

// Agent returns the underlying agent implementation.
func (pid *PID) Agent() Agent {
	return pid.agent
}

// Logger returns the agent's logger.
func (pid *PID) Logger() log.Logger {
	return pid.logger
}

// Mode returns the mailbox draining mode.
func (pid *PID) Mode() Mode {
	return pid.mode
}

// IsStarted reports whether the agent accepts signals.
func (pid *PID) IsStarted() bool {
	return pid.started.Load() && !pid.stopping.Load()
}

// Status returns the agent's lifecycle status.
func (pid *PID) Status() Status {
	return Status(pid.status.Load())
}

// State returns a deep copy of the agent state. The live tree is mutated
// exclusively by StateMutation directives applied inside the loop.
func (pid *PID) State() map[string]any {
	return pid.state.Map()
}

// CurrentSignal returns the signal in flight, nil when the agent idles.
func (pid *PID) CurrentSignal() *Signal {
	return pid.currentSignal.Load()
}

// Routes returns the installed routes in install order.
func (pid *PID) Routes() []Route {
	return pid.router.Routes()
}

// Capabilities returns the ids of the enabled capabilities, sorted.
func (pid *PID) Capabilities() []string {
	return pid.capabilities.ids()
}

// Children returns a snapshot of the live children.
func (pid *PID) Children() []ChildRef {
	return pid.supervisor.refs()
}

// ChildrenCount returns the number of live children.
func (pid *PID) ChildrenCount() int {
	return pid.supervisor.count()
}

// MailboxSize returns the number of queued signals.
func (pid *PID) MailboxSize() int64 {
	return pid.mailbox.Len()
}

// ProcessedCount returns the total number of signals processed successfully.
func (pid *PID) ProcessedCount() int64 {
	return pid.processedCount.Load()
}

// FailureCount returns the total number of signals whose processing failed.
func (pid *PID) FailureCount() int64 {
	return pid.failureCount.Load()
}

// LatestProcessedDuration returns the duration of the latest signal processed.
func (pid *PID) LatestProcessedDuration() time.Duration {
	return pid.latestProcessedDuration.Load()
}

// Uptime returns the number of seconds since the agent started.
func (pid *PID) Uptime() int64 {
	if pid.started.Load() {
		return time.Now().Unix() - pid.startedAt.Load()
	}
	return 0
}

// Transition moves the agent to the given status when the transition table
// allows it. Disallowed pairs fail with an invalid transition error, leave
// the status unchanged and publish a TransitionFailed event. The reflexive
// idle to idle pair succeeds silently.
func (pid *PID) Transition(to Status) error {
	current := pid.Status()
	if !canTransition(current, to) {
		err := gerrors.NewErrInvalidTransition(current, to)
		pid.publishEvent(NewTransitionFailed(pid.name, current, to, err))
		return err
	}
	if current == to {
		return nil
	}
	pid.status.Store(uint32(to))
	pid.publishEvent(NewTransitionSucceeded(pid.name, current, to))
	if to == Running || to == Idle {
		if pid.mode == Auto && pid.IsStarted() {
			pid.process()
		}
	}
	return nil
}

// Send enqueues a signal without waiting for its processing and returns the
// signal id. Enqueueing on a full mailbox fails with a queue overflow.
func (pid *PID) Send(_ context.Context, signal *Signal) (string, error) {
	if err := pid.canReceive(signal); err != nil {
		return "", err
	}
	if err := pid.enqueue(signal); err != nil {
		return "", err
	}
	if pid.mode == Auto {
		pid.process()
	}
	return signal.ID(), nil
}

// Call enqueues a signal and blocks until the agent finishes processing it or
// the timeout elapses. The mailbox is strict FIFO: latency from unrelated
// signals queued ahead is expected. A timeout abandons the wait only, the
// work still completes inside the agent.
func (pid *PID) Call(ctx context.Context, signal *Signal, timeout time.Duration) (*Reply, error) {
	if timeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	if err := pid.canReceive(signal); err != nil {
		return nil, err
	}

	future := newReplyFuture()
	pid.replies.Store(signal.ID(), future)
	if err := pid.enqueue(signal); err != nil {
		pid.replies.Remove(signal.ID())
		return nil, err
	}
	if pid.mode == Auto {
		pid.process()
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	reply, err := future.Await(cctx)
	switch {
	case err == nil:
		return reply, nil
	case errors.Is(err, context.DeadlineExceeded):
		pid.replies.Remove(signal.ID())
		return nil, gerrors.ErrRequestTimeout
	default:
		return nil, err
	}
}

// Step dequeues and processes exactly one signal. It drives agents spawned in
// Manual mode; an empty mailbox is a no-op.
func (pid *PID) Step(ctx context.Context) error {
	if !pid.IsStarted() {
		return gerrors.ErrDead
	}
	if !pid.processing.CompareAndSwap(idle, busy) {
		return gerrors.ErrAlreadyProcessing
	}
	defer pid.processing.Store(idle)

	if !pid.canProcess() {
		return nil
	}
	if signal := pid.mailbox.Dequeue(); signal != nil {
		pid.processSignal(ctx, signal)
	}
	return nil
}

// Clear drops every queued signal and reports how many were discarded.
func (pid *PID) Clear() int {
	dropped := pid.mailbox.Clear()
	if dropped > 0 {
		pid.publishEvent(NewQueueCleared(pid.name, dropped))
	}
	return dropped
}

// Shutdown stops the agent: it waits for the in-flight signal to complete,
// drops the pending mailbox, unblocks waiting callers, tears down the
// children and hands the stop hook a final state snapshot. Repeated calls
// are no-ops.
func (pid *PID) Shutdown(ctx context.Context) error {
	if !pid.stopping.CompareAndSwap(false, true) {
		return nil
	}
	if !pid.started.Load() {
		return nil
	}

	pid.logger.Infof("shutdown process started for agent=(%s)...", pid.name)

	// acquire the processing slot so the loop cannot restart
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !pid.processing.CompareAndSwap(idle, busy) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown of agent=(%s): %w", pid.name, ctx.Err())
		case <-ticker.C:
		}
	}

	pid.started.Store(false)

	if dropped := pid.mailbox.Clear(); dropped > 0 {
		pid.publishEvent(NewQueueCleared(pid.name, dropped))
	}
	pid.replies.Drain(gerrors.ErrDead)
	pid.mailbox.Dispose()

	var errs []error
	if err := pid.supervisor.stopAll(ctx); err != nil {
		pid.logger.Errorf("agent=(%s) failed to tear down children: %v", pid.name, err)
		errs = append(errs, err)
	}
	if err := pid.runPostStop(ctx); err != nil {
		pid.logger.Errorf("agent=(%s) stop hook failed: %v", pid.name, err)
		errs = append(errs, err)
	}

	pid.status.Store(uint32(Stopped))
	pid.publishEvent(NewAgentStopped(pid.name))
	pid.system.removeAgent(pid.name)

	if len(errs) == 0 {
		pid.logger.Infof("agent=(%s) successfully shutdown", pid.name)
	}
	return multierr.Combine(errs...)
}

// Metric returns a point-in-time snapshot of the agent's runtime counters.
// It returns nil when the agent is stopped.
func (pid *PID) Metric() *AgentMetric {
	if !pid.started.Load() {
		return nil
	}
	return &AgentMetric{
		processedCount:          pid.processedCount.Load(),
		failureCount:            pid.failureCount.Load(),
		childrenCount:           int64(pid.ChildrenCount()),
		mailboxSize:             pid.MailboxSize(),
		uptime:                  pid.Uptime(),
		latestProcessedDuration: pid.LatestProcessedDuration(),
		status:                  pid.Status(),
	}
}

// canReceive gates the enqueue paths.
func (pid *PID) canReceive(signal *Signal) error {
	if !pid.IsStarted() {
		return gerrors.ErrDead
	}
	switch {
	case signal == nil:
		return gerrors.NewErrValidation(errors.New("signal is required"))
	case signal.Type() == "":
		return gerrors.NewErrValidation(errors.New("signal type is required"))
	}
	return nil
}

// enqueue appends to the mailbox, publishing an overflow event on rejection.
func (pid *PID) enqueue(signal *Signal) error {
	if err := pid.mailbox.Enqueue(signal); err != nil {
		if errors.Is(err, gerrors.ErrQueueOverflow) {
			pid.publishEvent(NewQueueOverflow(pid.name, signal, pid.mailbox.Capacity()))
		}
		return err
	}
	return nil
}

// canProcess reports whether the lifecycle status allows draining. A paused
// agent keeps accepting signals but does not process them.
func (pid *PID) canProcess() bool {
	switch pid.Status() {
	case Idle, Planning, Running:
		return true
	default:
		return false
	}
}

// process drains the mailbox. Only one drain loop runs at a time: the loop
// starts on an idle to busy transition and exits when the mailbox is empty,
// re-checking for signals that slipped in between the empty check and the
// flag store.
func (pid *PID) process() {
	if !pid.processing.CompareAndSwap(idle, busy) {
		return
	}

	go func() {
		for {
			if pid.stopping.Load() || !pid.canProcess() {
				pid.processing.Store(idle)
				return
			}

			if signal := pid.mailbox.Dequeue(); signal != nil {
				pid.processSignal(context.Background(), signal)
				continue
			}

			if pid.Status() == Running {
				_ = pid.Transition(Idle)
			}
			pid.processing.Store(idle)
			if !pid.mailbox.IsEmpty() && !pid.stopping.Load() && pid.processing.CompareAndSwap(idle, busy) {
				continue
			}
			return
		}
	}()
}

// processSignal runs one signal fully to completion: callback(pre), route,
// run, apply directives, callback(post), dispatch and reply.
func (pid *PID) processSignal(ctx context.Context, signal *Signal) {
	start := time.Now()
	pid.currentSignal.Store(signal)
	defer func() {
		pid.currentSignal.Store(nil)
		pid.latestProcessedDuration.Store(time.Since(start))
	}()

	if current := pid.Status(); current == Idle || current == Planning {
		_ = pid.Transition(Running)
	}

	processed := pid.pipeline.handleSignal(ctx, signal)

	instructions, err := pid.router.route(processed)
	if err != nil {
		pid.completeSignal(ctx, signal, processed, nil, err)
		return
	}

	opts := pid.effectiveRunOptions(instructions)
	rctx := newRunContext(processed, instructions, pid.capabilities, pid.pipeline, opts, pid.logger)
	outcome, err := pid.runner.Run(ctx, rctx)
	if err != nil {
		var partial *PartialOutcome
		if errors.As(err, &partial) && len(partial.Directives) > 0 {
			if applyErr := pid.applyDirectives(ctx, partial.Directives); applyErr != nil {
				pid.logger.Warnf("agent=(%s) failed to apply partial directives of signal=(%s): %v", pid.name, signal.ID(), applyErr)
			}
		}
		pid.completeSignal(ctx, signal, processed, nil, err)
		return
	}

	if err := pid.applyDirectives(ctx, outcome.Directives); err != nil {
		pid.completeSignal(ctx, signal, processed, nil, err)
		return
	}

	final := pid.pipeline.transformResult(ctx, processed, outcome.Result)
	pid.completeSignal(ctx, signal, processed, final, nil)
}

// completeSignal finishes a signal's processing: it updates the counters,
// publishes failure events, dispatches the outbound signal and completes the
// reply future of a waiting synchronous caller. The reply is keyed by the
// original signal id, untouched by the hook transforms.
func (pid *PID) completeSignal(ctx context.Context, original, processed *Signal, result map[string]any, err error) {
	if err != nil {
		err = gerrors.NewErrExecution(err)
		pid.failureCount.Inc()
		pid.logger.Errorf("agent=(%s) failed to process signal=(%s) type=(%s): %v", pid.name, original.ID(), processed.Type(), err)
		pid.publishEvent(NewExecutionFailed(pid.name, original, err))
		pid.dispatch(ctx, pid.outboundSignal(original, errorSignalType, map[string]any{"error": err.Error()}))
	} else {
		pid.processedCount.Inc()
		pid.dispatch(ctx, pid.outboundSignal(original, resultSignalType, result))
	}

	if future, ok := pid.replies.Remove(original.ID()); ok {
		if err != nil {
			future.complete(nil, err)
			return
		}
		future.complete(&Reply{SignalID: original.ID(), Output: result}, nil)
	}
}

// outboundSignal builds the output-stage signal for a processed inbound one.
func (pid *PID) outboundSignal(original *Signal, signalType string, data map[string]any) *Signal {
	opts := []SignalOption{
		WithSource(pid.name),
		WithSubject(original.ID()),
		WithData(data),
	}
	if correlationID := original.CorrelationID(); correlationID != "" {
		opts = append(opts, WithCorrelationID(correlationID))
	}
	if override := original.Dispatch(); override != nil {
		opts = append(opts, WithDispatch(override))
	}
	return NewSignal(signalType, opts...)
}

// dispatch hands an outbound signal to the dispatcher, best effort.
func (pid *PID) dispatch(ctx context.Context, outbound *Signal) {
	if pid.dispatcher == nil {
		return
	}
	config := pid.dispatchConfig
	if override := outbound.Dispatch(); override != nil {
		config = override
	}
	if err := pid.dispatcher.Dispatch(ctx, outbound, config); err != nil {
		pid.logger.Warnf("agent=(%s) failed to dispatch signal=(%s): %v", pid.name, outbound.ID(), err)
	}
}

// effectiveRunOptions picks the run options: the leading instruction's when
// it carries any, the spawn defaults otherwise.
func (pid *PID) effectiveRunOptions(pending []*Instruction) RunOptions {
	if len(pending) > 0 && pending[0].Opts != (RunOptions{}) {
		return pending[0].Opts
	}
	return pid.runOpts
}

// runPostStop hands the stop hook a final state snapshot, recovering panics.
func (pid *PID) runPostStop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()
	return pid.agent.PostStop(ctx, pid.state.Map())
}

// publishEvent puts a runtime event on the system events topic.
func (pid *PID) publishEvent(event any) {
	if pid.eventsStream != nil {
		pid.eventsStream.Publish(agentsTopic, event)
	}
}

// registerMetrics registers the observable instruments reading the agent's
// counters when the system carries a metric provider.
func (pid *PID) registerMetrics() error {
	provider := pid.system.metricProvider
	if provider == nil || provider.Meter() == nil {
		return nil
	}
	meter := provider.Meter()
	metrics, err := metric.NewAgentMetric(meter)
	if err != nil {
		return err
	}

	observeOptions := []otelmetric.ObserveOption{
		otelmetric.WithAttributes(
			attribute.String("agent.system", pid.system.Name()),
			attribute.String("agent.name", pid.name),
		),
	}

	_, err = meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(metrics.ProcessedCount(), pid.processedCount.Load(), observeOptions...)
		observer.ObserveInt64(metrics.FailureCount(), pid.failureCount.Load(), observeOptions...)
		observer.ObserveInt64(metrics.ChildrenCount(), int64(pid.ChildrenCount()), observeOptions...)
		observer.ObserveInt64(metrics.MailboxSize(), pid.MailboxSize(), observeOptions...)
		observer.ObserveInt64(metrics.Uptime(), pid.Uptime(), observeOptions...)
		return nil
	}, metrics.ProcessedCount(),
		metrics.FailureCount(),
		metrics.ChildrenCount(),
		metrics.MailboxSize(),
		metrics.Uptime(),
	)
	return err
}
