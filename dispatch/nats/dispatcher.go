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

// Package nats ships a dispatch sink publishing processed signals to a NATS
// subject as msgpack envelopes, zstd-compressed past a size threshold.
package nats

import (
	"context"
	"errors"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/klauspost/compress/zstd"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/agentic/agent"
	"github.com/tochemey/agentic/log"
)

const (
	contentTypeHeader     = "Content-Type"
	contentEncodingHeader = "Content-Encoding"
	msgpackContentType    = "application/msgpack"
	zstdEncoding          = "zstd"
)

// ErrNotConnected is returned when dispatching through a closed dispatcher.
var ErrNotConnected = errors.New("nats dispatcher is not connected")

// Envelope is the wire form of a dispatched signal.
type Envelope struct {
	ID            string    `msgpack:"id"`
	Type          string    `msgpack:"type"`
	Source        string    `msgpack:"source,omitempty"`
	Subject       string    `msgpack:"subject,omitempty"`
	CorrelationID string    `msgpack:"correlation_id,omitempty"`
	Data          any       `msgpack:"data,omitempty"`
	CreatedAt     time.Time `msgpack:"created_at"`
}

// Dispatcher publishes processed signals to a NATS subject. A dispatch
// config carrying a topic overrides the configured subject per signal, and
// its metadata rides along as message headers.
type Dispatcher struct {
	config     *Config
	logger     log.Logger
	connection *nats.Conn
	encoder    *zstd.Encoder
	decoder    *zstd.Decoder
	threshold  int
	connected  *atomic.Bool
}

// enforce compilation error
var _ agent.Dispatcher = (*Dispatcher)(nil)

// New creates a dispatcher connected to the configured NATS server. The
// connection is attempted with an exponential backoff before giving up.
func New(config *Config, opts ...Option) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dispatcher := &Dispatcher{
		config:    config,
		logger:    log.DefaultLogger,
		threshold: config.CompressionThreshold,
		connected: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(dispatcher)
	}
	if dispatcher.threshold == 0 {
		dispatcher.threshold = DefaultCompressionThreshold
	}

	// create the nats connection option
	natsOptions := nats.GetDefaultOptions()
	natsOptions.Url = config.Server
	natsOptions.Name = config.Name
	natsOptions.ReconnectWait = 2 * time.Second
	natsOptions.MaxReconnect = -1

	// let us connect using an exponential backoff mechanism
	const maxRetries = 5
	var connection *nats.Conn
	retrier := retry.NewRetrier(maxRetries, 100*time.Millisecond, natsOptions.ReconnectWait)
	err := retrier.Run(func() error {
		var err error
		connection, err = natsOptions.Connect()
		return err
	})
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		connection.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		encoder.Close()
		connection.Close()
		return nil, err
	}

	dispatcher.connection = connection
	dispatcher.encoder = encoder
	dispatcher.decoder = decoder
	dispatcher.connected.Store(true)
	dispatcher.logger.Infof("connected to nats server=(%s)", config.Server)
	return dispatcher, nil
}

// Dispatch implements agent.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, signal *agent.Signal, config *agent.DispatchConfig) error {
	if !d.connected.Load() {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := msgpack.Marshal(envelopeOf(signal))
	if err != nil {
		return err
	}

	message := nats.NewMsg(d.config.Subject)
	if config != nil {
		if config.Topic != "" {
			message.Subject = config.Topic
		}
		for key, value := range config.Metadata {
			message.Header.Set(key, value)
		}
	}
	message.Header.Set(contentTypeHeader, msgpackContentType)
	if d.threshold > 0 && len(payload) >= d.threshold {
		payload = d.encoder.EncodeAll(payload, nil)
		message.Header.Set(contentEncodingHeader, zstdEncoding)
	}
	message.Data = payload
	return d.connection.PublishMsg(message)
}

// Decode unmarshals a message published by a Dispatcher back into its
// envelope, decompressing when the message says it was compressed.
func (d *Dispatcher) Decode(message *nats.Msg) (*Envelope, error) {
	payload := message.Data
	if message.Header.Get(contentEncodingHeader) == zstdEncoding {
		var err error
		if payload, err = d.decoder.DecodeAll(payload, nil); err != nil {
			return nil, err
		}
	}
	envelope := new(Envelope)
	if err := msgpack.Unmarshal(payload, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// Close flushes the pending messages and tears the connection down.
// Dispatching after Close returns ErrNotConnected.
func (d *Dispatcher) Close() error {
	if !d.connected.CompareAndSwap(true, false) {
		return nil
	}
	err := d.connection.Flush()
	d.connection.Close()
	d.decoder.Close()
	return multierr.Append(err, d.encoder.Close())
}

func envelopeOf(signal *agent.Signal) *Envelope {
	return &Envelope{
		ID:            signal.ID(),
		Type:          signal.Type(),
		Source:        signal.Source(),
		Subject:       signal.Subject(),
		CorrelationID: signal.CorrelationID(),
		Data:          signal.Data(),
		CreatedAt:     signal.CreatedAt(),
	}
}
