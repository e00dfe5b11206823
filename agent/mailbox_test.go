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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/agentic/errors"
)

func TestBoundedMailbox(t *testing.T) {
	t.Run("With FIFO ordering", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		for i := 0; i < 5; i++ {
			require.NoError(t, mailbox.Enqueue(NewSignal(fmt.Sprintf("t.%d", i))))
		}
		assert.EqualValues(t, 5, mailbox.Len())
		for i := 0; i < 5; i++ {
			signal := mailbox.Dequeue()
			require.NotNil(t, signal)
			assert.Equal(t, fmt.Sprintf("t.%d", i), signal.Type())
		}
		assert.True(t, mailbox.IsEmpty())
		assert.Nil(t, mailbox.Dequeue())
	})
	t.Run("With front insert jumping the queue", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		require.NoError(t, mailbox.Enqueue(NewSignal("t.first")))
		require.NoError(t, mailbox.Enqueue(NewSignal("t.second")))
		require.NoError(t, mailbox.EnqueueFront(NewSignal("t.urgent")))

		assert.Equal(t, "t.urgent", mailbox.Dequeue().Type())
		assert.Equal(t, "t.first", mailbox.Dequeue().Type())
		assert.Equal(t, "t.second", mailbox.Dequeue().Type())
	})
	t.Run("With overflow leaving the queue unchanged", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		require.NoError(t, mailbox.Enqueue(NewSignal("t.1")))
		require.NoError(t, mailbox.Enqueue(NewSignal("t.2")))

		err := mailbox.Enqueue(NewSignal("t.3"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrQueueOverflow)

		err = mailbox.EnqueueFront(NewSignal("t.0"))
		assert.ErrorIs(t, err, gerrors.ErrQueueOverflow)

		// queue untouched by the rejections
		assert.EqualValues(t, 2, mailbox.Len())
		assert.Equal(t, "t.1", mailbox.Dequeue().Type())
		assert.Equal(t, "t.2", mailbox.Dequeue().Type())
	})
	t.Run("With clear", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		for i := 0; i < 4; i++ {
			require.NoError(t, mailbox.Enqueue(NewSignal("t")))
		}
		assert.Equal(t, 4, mailbox.Clear())
		assert.True(t, mailbox.IsEmpty())
		assert.Zero(t, mailbox.Clear())

		// the mailbox stays usable after a clear
		require.NoError(t, mailbox.Enqueue(NewSignal("t.after")))
		assert.Equal(t, "t.after", mailbox.Dequeue().Type())
	})
	t.Run("With growth beyond the initial storage", func(t *testing.T) {
		mailbox := NewBoundedMailbox(200)
		for i := 0; i < 200; i++ {
			require.NoError(t, mailbox.Enqueue(NewSignal(fmt.Sprintf("t.%d", i))))
		}
		assert.ErrorIs(t, mailbox.Enqueue(NewSignal("t.over")), gerrors.ErrQueueOverflow)
		for i := 0; i < 200; i++ {
			assert.Equal(t, fmt.Sprintf("t.%d", i), mailbox.Dequeue().Type())
		}
	})
	t.Run("With dispose", func(t *testing.T) {
		mailbox := NewBoundedMailbox(10)
		require.NoError(t, mailbox.Enqueue(NewSignal("t")))
		mailbox.Dispose()

		assert.ErrorIs(t, mailbox.Enqueue(NewSignal("t")), gerrors.ErrMailboxDisposed)
		assert.ErrorIs(t, mailbox.EnqueueFront(NewSignal("t")), gerrors.ErrMailboxDisposed)
		assert.Nil(t, mailbox.Dequeue())
		assert.Zero(t, mailbox.Clear())
	})
	t.Run("With default capacity fallback", func(t *testing.T) {
		mailbox := NewBoundedMailbox(0)
		assert.EqualValues(t, DefaultMailboxCapacity, mailbox.Capacity())
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		mailbox := NewBoundedMailbox(1000)
		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					require.NoError(t, mailbox.Enqueue(NewSignal("t")))
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1000, mailbox.Len())
	})
}
