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

	"github.com/tochemey/agentic/eventstream"
	"github.com/tochemey/agentic/log"
)

const (
	// resultSignalType is the type of the outbound signal carrying a run result.
	resultSignalType = "agentic.result"
	// errorSignalType is the type of the outbound signal carrying a run failure.
	errorSignalType = "agentic.error"
)

// DispatchConfig shapes how the output stage hands a signal to a dispatcher.
// A signal can carry its own config which overrides the agent's default.
type DispatchConfig struct {
	// Level is the level leveled sinks emit at.
	Level log.Level
	// Topic overrides the sink's default topic or subject when set.
	Topic string
	// Metadata rides along untouched for external sinks.
	Metadata map[string]string
}

// Dispatcher is the outbound fan-out the output stage hands processed
// signals to. Delivery is best effort: the processing loop logs a dispatch
// failure and moves on.
type Dispatcher interface {
	Dispatch(ctx context.Context, signal *Signal, config *DispatchConfig) error
}

// LogDispatcher writes dispatched signals to a logger at the configured level.
type LogDispatcher struct {
	logger log.Logger
}

var _ Dispatcher = (*LogDispatcher)(nil)

// NewLogDispatcher creates a dispatcher writing to the given logger.
func NewLogDispatcher(logger log.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch implements Dispatcher.
func (d *LogDispatcher) Dispatch(_ context.Context, signal *Signal, config *DispatchConfig) error {
	level := log.InfoLevel
	if config != nil {
		level = config.Level
	}
	logf := d.logger.Infof
	switch level {
	case log.DebugLevel:
		logf = d.logger.Debugf
	case log.WarningLevel:
		logf = d.logger.Warnf
	case log.ErrorLevel:
		logf = d.logger.Errorf
	}
	logf("signal=(%s) type=(%s) source=(%s) subject=(%s) data=(%v)",
		signal.ID(), signal.Type(), signal.Source(), signal.Subject(), signal.Data())
	return nil
}

// StreamDispatcher publishes dispatched signals on an event stream topic so
// in-process consumers can subscribe to an agent's output.
type StreamDispatcher struct {
	stream eventstream.Stream
	topic  string
}

var _ Dispatcher = (*StreamDispatcher)(nil)

// NewStreamDispatcher creates a dispatcher publishing on the given stream.
// The default topic is used unless the dispatch config carries one.
func NewStreamDispatcher(stream eventstream.Stream) *StreamDispatcher {
	return &StreamDispatcher{stream: stream, topic: signalsTopic}
}

// Dispatch implements Dispatcher.
func (d *StreamDispatcher) Dispatch(_ context.Context, signal *Signal, config *DispatchConfig) error {
	topic := d.topic
	if config != nil && config.Topic != "" {
		topic = config.Topic
	}
	d.stream.Publish(topic, signal)
	return nil
}
