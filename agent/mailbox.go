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
	"sync"

	gerrors "github.com/tochemey/agentic/errors"
)

// DefaultMailboxCapacity is used when a spawn does not set a queue size.
const DefaultMailboxCapacity = 1024

// Mailbox is the agent's bounded FIFO queue of pending signals.
//
// Characteristics
//   - Bounded capacity: enqueueing at capacity is rejected synchronously with
//     ErrQueueOverflow, never a silent drop and never a block.
//   - Front insert: EnqueueFront lets self-issued work jump ahead of
//     externally queued signals.
//   - Concurrency: safe for multiple producers and a single consumer.
type Mailbox interface {
	// Enqueue appends a signal, rejecting with ErrQueueOverflow when full.
	Enqueue(signal *Signal) error
	// EnqueueFront inserts a signal at the head, rejecting with
	// ErrQueueOverflow when full.
	EnqueueFront(signal *Signal) error
	// Dequeue pops the oldest signal, nil when the mailbox is empty.
	Dequeue() *Signal
	// Clear empties the mailbox and returns how many signals were dropped.
	Clear() int
	// IsEmpty reports whether the mailbox currently has no signals.
	IsEmpty() bool
	// Len returns the current number of signals.
	Len() int64
	// Capacity returns the maximum number of signals the mailbox holds.
	Capacity() int64
	// Dispose releases the mailbox. Operations after Dispose fail with
	// ErrMailboxDisposed.
	Dispose()
}

// BoundedMailbox is the default Mailbox: a mutex-guarded ring deque whose
// storage grows on demand up to a hard capacity.
type BoundedMailbox struct {
	mu       sync.Mutex
	items    []*Signal
	head     int
	length   int
	capacity int
	disposed bool
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a mailbox with the given capacity. A capacity of
// zero or less falls back to DefaultMailboxCapacity.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	initial := capacity
	if initial > 64 {
		initial = 64
	}
	return &BoundedMailbox{
		items:    make([]*Signal, initial),
		capacity: capacity,
	}
}

// Enqueue appends a signal to the tail of the mailbox.
func (m *BoundedMailbox) Enqueue(signal *Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return gerrors.ErrMailboxDisposed
	}
	if m.length == m.capacity {
		return gerrors.NewErrQueueOverflow(int64(m.capacity))
	}
	m.grow()
	m.items[(m.head+m.length)%len(m.items)] = signal
	m.length++
	return nil
}

// EnqueueFront inserts a signal at the head of the mailbox so it is dequeued
// before everything already queued.
func (m *BoundedMailbox) EnqueueFront(signal *Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return gerrors.ErrMailboxDisposed
	}
	if m.length == m.capacity {
		return gerrors.NewErrQueueOverflow(int64(m.capacity))
	}
	m.grow()
	m.head = (m.head - 1 + len(m.items)) % len(m.items)
	m.items[m.head] = signal
	m.length++
	return nil
}

// Dequeue pops the oldest signal or returns nil when the mailbox is empty.
func (m *BoundedMailbox) Dequeue() *Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.length == 0 {
		return nil
	}
	signal := m.items[m.head]
	m.items[m.head] = nil
	m.head = (m.head + 1) % len(m.items)
	m.length--
	return signal
}

// Clear empties the mailbox and returns the number of dropped signals.
func (m *BoundedMailbox) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return 0
	}
	dropped := m.length
	for i := range m.items {
		m.items[i] = nil
	}
	m.head = 0
	m.length = 0
	return dropped
}

// IsEmpty reports whether the mailbox currently has no signals.
func (m *BoundedMailbox) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.length == 0
}

// Len returns the current number of signals in the mailbox.
func (m *BoundedMailbox) Len() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(m.length)
}

// Capacity returns the maximum number of signals the mailbox holds.
func (m *BoundedMailbox) Capacity() int64 {
	return int64(m.capacity)
}

// Dispose releases the mailbox storage. Do not use the mailbox after calling
// Dispose.
func (m *BoundedMailbox) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.items = nil
	m.head = 0
	m.length = 0
}

// grow doubles the ring storage when full, bounded by the hard capacity.
// Callers hold the mutex.
func (m *BoundedMailbox) grow() {
	if m.length < len(m.items) {
		return
	}
	size := len(m.items) * 2
	if size > m.capacity {
		size = m.capacity
	}
	items := make([]*Signal, size)
	for i := 0; i < m.length; i++ {
		items[i] = m.items[(m.head+i)%len(m.items)]
	}
	m.items = items
	m.head = 0
}
