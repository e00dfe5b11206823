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

// Status is the lifecycle status of an agent.
type Status uint32

const (
	// Initializing is the boot status. The agent registers capabilities,
	// installs routes and skills, starts children and runs the mount hook.
	Initializing Status = iota
	// Idle means the mailbox is drained and the agent waits for work.
	Idle
	// Planning marks a deliberation phase before running.
	Planning
	// Running means the agent is processing work.
	Running
	// Paused suspends processing without losing queued work.
	Paused
	// Stopped is terminal. It is entered by Shutdown only, never through
	// Transition.
	Stopped
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Idle:
		return "idle"
	case Planning:
		return "planning"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// canTransition reports whether from → to is in the allowed transition table.
// idle → idle is the only reflexive entry and succeeds as a no-op.
func canTransition(from, to Status) bool {
	switch from {
	case Initializing:
		return to == Idle
	case Idle:
		return to == Idle || to == Planning || to == Running
	case Planning:
		return to == Running || to == Idle
	case Running:
		return to == Paused || to == Idle
	case Paused:
		return to == Running || to == Idle
	default:
		return false
	}
}
