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

// State is the agent-owned state tree: nested string-keyed maps holding
// opaque values. It is mutated exclusively through StateMutation directives
// applied by the agent's own processing loop, which is what makes access
// race-free without locks. Callers observe it through deep-copied snapshots.
type State struct {
	data map[string]any
}

// NewState creates an empty state tree.
func NewState() *State {
	return &State{data: make(map[string]any)}
}

// NewStateFrom creates a state tree seeded with a deep copy of the given map.
func NewStateFrom(data map[string]any) *State {
	if data == nil {
		return NewState()
	}
	return &State{data: deepCopyMap(data)}
}

// Get returns the value at the given path. An empty path returns the whole
// tree. The second return value reports whether the path resolved.
func (s *State) Get(path ...string) (any, bool) {
	if len(path) == 0 {
		return s.data, true
	}
	return valueAt(s.data, path)
}

// Len returns the number of top-level keys.
func (s *State) Len() int {
	return len(s.data)
}

// Map returns a deep copy of the state tree.
func (s *State) Map() map[string]any {
	return deepCopyMap(s.data)
}

// copy returns a deep copy of the state.
func (s *State) copy() *State {
	return &State{data: deepCopyMap(s.data)}
}

// set writes value at path, creating intermediate map segments as needed. An
// intermediate that is not a map is replaced by one. An empty path is a no-op.
func (s *State) set(path []string, value any) {
	if len(path) == 0 {
		return
	}
	setAt(s.data, path, value)
}

// update applies fn to the current value at path (nil when the path does not
// resolve) and stores the result at path. An empty path is a no-op.
func (s *State) update(path []string, fn UpdateFunc) {
	if len(path) == 0 || fn == nil {
		return
	}
	current, _ := valueAt(s.data, path)
	setAt(s.data, path, fn(current))
}

// delete removes the value at path. A path that does not resolve is a no-op,
// as is an empty path.
func (s *State) delete(path []string) {
	if len(path) == 0 {
		return
	}
	deleteAt(s.data, path)
}

// reset writes nil at path. An empty path is a no-op.
func (s *State) reset(path []string) {
	s.set(path, nil)
}

// valueAt walks the tree along path.
func valueAt(tree map[string]any, path []string) (any, bool) {
	current := tree
	for i, segment := range path {
		value, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// setAt writes value at path, materializing intermediate maps.
func setAt(tree map[string]any, path []string, value any) {
	current := tree
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

// deleteAt removes the value at path when it resolves.
func deleteAt(tree map[string]any, path []string) {
	current := tree
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, path[len(path)-1])
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return deepCopyMap(value)
	case []any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = deepCopyValue(item)
		}
		return items
	default:
		return v
	}
}
