package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StepData is the open-ended mapping completed uploads and configuration
// actions write into. Boolean flags live flattened at the root for predicate
// lookups; UpdateStepData additionally namespaces each patch under its step
// id for per-step history.
type StepData map[string]any

// Flag reads a boolean value, tolerating the types a JSON round-trip can
// produce.
func (d StepData) Flag(key string) bool {
	value, ok := d[key]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func (d StepData) merge(patch map[string]any) {
	for key, value := range patch {
		d[key] = value
	}
}

func (d StepData) clone() StepData {
	out := make(StepData, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// State is the orchestrator's mutable session state.
type State struct {
	CurrentStep StepID
	Completed   map[StepID]struct{}
	Data        StepData
}

func defaultState() State {
	return State{
		CurrentStep: StepImport,
		Completed:   make(map[StepID]struct{}),
		Data:        make(StepData),
	}
}

// persistedState is the durable JSON form of State.
type persistedState struct {
	CurrentStepID  string         `json:"currentStepId"`
	CompletedSteps []string       `json:"completedSteps"`
	StepData       map[string]any `json:"stepData"`
}

func marshalState(s State) ([]byte, error) {
	completed := make([]string, 0, len(s.Completed))
	for id := range s.Completed {
		completed = append(completed, string(id))
	}
	sort.Strings(completed)

	return json.Marshal(persistedState{
		CurrentStepID:  string(s.CurrentStep),
		CompletedSteps: completed,
		StepData:       s.Data,
	})
}

func unmarshalState(payload []byte) (State, error) {
	var persisted persistedState
	if err := json.Unmarshal(payload, &persisted); err != nil {
		return State{}, fmt.Errorf("decode workflow state: %w", err)
	}

	current, ok := ParseStepID(persisted.CurrentStepID)
	if !ok {
		return State{}, fmt.Errorf("unknown current step %q", persisted.CurrentStepID)
	}

	restored := defaultState()
	restored.CurrentStep = current
	for _, raw := range persisted.CompletedSteps {
		if id, known := ParseStepID(raw); known {
			restored.Completed[id] = struct{}{}
		}
	}
	for key, value := range persisted.StepData {
		restored.Data[key] = value
	}
	return restored, nil
}
