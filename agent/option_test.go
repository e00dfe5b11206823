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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tochemey/agentic/log"
)

func TestOption(t *testing.T) {
	testCases := []struct {
		name     string
		option   Option
		expected System
	}{
		{
			name:     "WithLogger",
			option:   WithLogger(log.DiscardLogger),
			expected: System{logger: log.DiscardLogger},
		},
		{
			name:     "WithShutdownTimeout",
			option:   WithShutdownTimeout(2 * time.Second),
			expected: System{shutdownTimeout: 2 * time.Second},
		},
		{
			name:     "WithTaskPoolSize",
			option:   WithTaskPoolSize(25),
			expected: System{taskPoolSize: 25},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var system System
			tc.option.Apply(&system)
			assert.Equal(t, tc.expected, system)
		})
	}

	t.Run("WithMetric", func(t *testing.T) {
		var system System
		WithMetric().Apply(&system)
		assert.True(t, system.metricEnabled.Load())
	})
}

func TestSpawnOption(t *testing.T) {
	mailbox := NewBoundedMailbox(8)
	route := Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}
	action := echoAction("echo")
	skill := planningSkill{}
	skillOpts := map[string]any{"depth": 3}
	state := map[string]any{"seed": true}
	runner := NewChainRunner()
	dispatcher := NewLogDispatcher(log.DiscardLogger)
	dispatchConfig := &DispatchConfig{Level: log.InfoLevel}
	runOpts := RunOptions{MergeResults: true, Timeout: time.Second}

	testCases := []struct {
		name     string
		option   SpawnOption
		expected spawnConfig
	}{
		{
			name:     "WithMailbox",
			option:   WithMailbox(mailbox),
			expected: spawnConfig{mailbox: mailbox},
		},
		{
			name:     "WithMaxQueueSize",
			option:   WithMaxQueueSize(8),
			expected: spawnConfig{maxQueueSize: 8},
		},
		{
			name:     "WithRoutes",
			option:   WithRoutes(route),
			expected: spawnConfig{routes: []Route{route}},
		},
		{
			name:     "WithActions",
			option:   WithActions(action),
			expected: spawnConfig{actions: []Action{action}},
		},
		{
			name:     "WithSkills",
			option:   WithSkills(skill),
			expected: spawnConfig{skills: []Skill{skill}},
		},
		{
			name:     "WithSkillOptions",
			option:   WithSkillOptions("planner", skillOpts),
			expected: spawnConfig{skillOpts: map[string]map[string]any{"planner": skillOpts}},
		},
		{
			name:     "WithInitialState",
			option:   WithInitialState(state),
			expected: spawnConfig{initialState: state},
		},
		{
			name:     "WithMode",
			option:   WithMode(Manual),
			expected: spawnConfig{mode: Manual},
		},
		{
			name:     "WithSpawnLogger",
			option:   WithSpawnLogger(log.DiscardLogger),
			expected: spawnConfig{logger: log.DiscardLogger},
		},
		{
			name:     "WithRunner",
			option:   WithRunner(runner),
			expected: spawnConfig{runner: runner},
		},
		{
			name:     "WithDispatcher",
			option:   WithDispatcher(dispatcher, dispatchConfig),
			expected: spawnConfig{dispatcher: dispatcher, dispatchConfig: dispatchConfig},
		},
		{
			name:     "WithRunOptions",
			option:   WithRunOptions(runOpts),
			expected: spawnConfig{runOpts: runOpts},
		},
		{
			name:     "WithInitMaxRetries",
			option:   WithInitMaxRetries(10),
			expected: spawnConfig{initMaxRetries: 10},
		},
		{
			name:     "WithInitTimeout",
			option:   WithInitTimeout(5 * time.Second),
			expected: spawnConfig{initTimeout: 5 * time.Second},
		},
		{
			name:     "WithChildSupervision",
			option:   WithChildSupervision(7, 2*time.Second),
			expected: spawnConfig{childMaxRestarts: 7, childRestartWait: 2 * time.Second},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var config spawnConfig
			tc.option.Apply(&config)
			assert.Equal(t, tc.expected, config)
		})
	}

	t.Run("WithDefaults", func(t *testing.T) {
		config := newSpawnConfig()
		assert.Equal(t, DefaultMailboxCapacity, config.maxQueueSize)
		assert.Equal(t, Auto, config.mode)
		assert.IsType(t, new(SingleRunner), config.runner)
		assert.Equal(t, DefaultInitMaxRetries, config.initMaxRetries)
		assert.Equal(t, DefaultInitTimeout, config.initTimeout)
		assert.Equal(t, DefaultChildMaxRestarts, config.childMaxRestarts)
		assert.Equal(t, DefaultChildRestartWait, config.childRestartWait)
		assert.Nil(t, config.mailbox)
		assert.Nil(t, config.dispatcher)
	})
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "manual", Manual.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
