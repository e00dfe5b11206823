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
	"runtime"
	"sync"

	"github.com/zeebo/xxh3"
)

// Reply is what a synchronous caller receives once the signal it enqueued has
// been processed.
type Reply struct {
	// SignalID identifies the processed signal.
	SignalID string
	// Output is the final result of the run, after result transforms.
	Output map[string]any
}

// ReplyFuture is a single-assignment container completed by the agent loop
// when the awaited signal finishes processing, with either a reply or an
// error.
type ReplyFuture struct {
	acceptOnce   sync.Once
	completeOnce sync.Once
	done         chan any
	value        *Reply
	err          error
}

func newReplyFuture() *ReplyFuture {
	return &ReplyFuture{
		done: make(chan any, 1),
	}
}

// Await blocks until the future is completed or the context is canceled and
// returns either the reply or an error.
func (f *ReplyFuture) Await(ctx context.Context) (*Reply, error) {
	f.acceptOnce.Do(func() {
		select {
		case result := <-f.done:
			f.setResult(result)
		case <-ctx.Done():
			f.setResult(ctx.Err())
		}
	})
	return f.value, f.err
}

// complete completes the future with either a reply or an error.
func (f *ReplyFuture) complete(value *Reply, err error) {
	f.completeOnce.Do(func() {
		if err != nil {
			f.done <- err
			return
		}
		f.done <- value
	})
}

func (f *ReplyFuture) setResult(result any) {
	switch value := result.(type) {
	case error:
		f.err = value
	case *Reply:
		f.value = value
	}
}

const maxReplyShards = 64

// replyShard guards one slice of the reply table.
type replyShard struct {
	sync.RWMutex
	m map[string]*ReplyFuture
}

// replyRegistry maps signal ids to the futures of waiting synchronous
// callers. It is sharded so completion of unrelated signals does not contend.
// A lookup miss is not an error: the originating call was asynchronous.
type replyRegistry []*replyShard

func newReplyRegistry() replyRegistry {
	numShards := runtime.NumCPU() * 4
	if numShards > maxReplyShards {
		numShards = maxReplyShards
	}
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*replyShard, numShards)
	for i := range shards {
		shards[i] = &replyShard{
			m: make(map[string]*ReplyFuture),
		}
	}
	return shards
}

// Store registers the future awaiting the given signal id.
func (r replyRegistry) Store(signalID string, future *ReplyFuture) {
	shard := r.shardFor(signalID)
	shard.Lock()
	shard.m[signalID] = future
	shard.Unlock()
}

// Get returns the future awaiting the given signal id.
func (r replyRegistry) Get(signalID string) (*ReplyFuture, bool) {
	shard := r.shardFor(signalID)
	shard.RLock()
	future, ok := shard.m[signalID]
	shard.RUnlock()
	return future, ok
}

// Remove removes and returns the future awaiting the given signal id. A
// handle is removed exactly once, when its signal's processing completes.
func (r replyRegistry) Remove(signalID string) (*ReplyFuture, bool) {
	shard := r.shardFor(signalID)
	shard.Lock()
	future, ok := shard.m[signalID]
	if ok {
		delete(shard.m, signalID)
	}
	shard.Unlock()
	return future, ok
}

// Len returns the number of callers currently awaiting replies.
func (r replyRegistry) Len() int {
	total := 0
	for _, shard := range r {
		shard.RLock()
		total += len(shard.m)
		shard.RUnlock()
	}
	return total
}

// Drain removes every pending future and completes it with the given error.
// Used at shutdown so no synchronous caller is left hanging.
func (r replyRegistry) Drain(err error) {
	for _, shard := range r {
		shard.Lock()
		for id, future := range shard.m {
			future.complete(nil, err)
			delete(shard.m, id)
		}
		shard.Unlock()
	}
}

func (r replyRegistry) shardFor(key string) *replyShard {
	hash := xxh3.Hash([]byte(key)) % uint64(len(r))
	return r[int(hash)]
}
