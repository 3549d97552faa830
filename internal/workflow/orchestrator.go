package workflow

import (
	"log/slog"
	"math"
	"sync"
)

// Store persists the workflow state blob between sessions. The CLI satisfies
// it with a thin adapter that binds a context to *state.Store's methods.
type Store interface {
	LoadWorkflowState() ([]byte, bool, error)
	SaveWorkflowState(payload []byte) error
	ClearWorkflowState() error
}

// Navigator reacts to step changes, typically by switching the active view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// StepStatus is the live view of a single step.
type StepStatus struct {
	Definition   Definition
	IsComplete   bool
	IsActive     bool
	IsAccessible bool
}

// Orchestrator owns the workflow state and the rules for moving through it.
type Orchestrator struct {
	mu        sync.Mutex
	state     State
	store     Store
	navigator Navigator
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithNavigator installs the step-change navigator.
func WithNavigator(nav Navigator) OrchestratorOption {
	return func(o *Orchestrator) {
		o.navigator = nav
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator hydrates workflow state from the store. A missing or
// corrupt persisted blob yields the default state; load errors beyond that
// are not fatal either, since the workflow can always restart from the
// beginning.
func NewOrchestrator(store Store, opts ...OrchestratorOption) *Orchestrator {
	orch := &Orchestrator{
		state:  defaultState(),
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(orch)
	}

	if store != nil {
		payload, found, err := store.LoadWorkflowState()
		if err != nil {
			orch.logger.Warn("workflow state load failed, starting fresh", "error", err)
		} else if found {
			restored, err := unmarshalState(payload)
			if err != nil {
				orch.logger.Warn("workflow state corrupt, starting fresh", "error", err)
			} else {
				orch.state = restored
			}
		}
	}
	return orch
}

// CurrentStep returns the active step id.
func (o *Orchestrator) CurrentStep() StepID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.CurrentStep
}

// Steps returns the live status of every step in order. Completion and
// accessibility are computed from step data on each call.
func (o *Orchestrator) Steps() []StepStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepsLocked()
}

func (o *Orchestrator) stepsLocked() []StepStatus {
	statuses := make([]StepStatus, 0, len(definitions))
	for _, def := range definitions {
		statuses = append(statuses, StepStatus{
			Definition:   def,
			IsComplete:   def.ID.Satisfied(o.state.Data),
			IsActive:     def.ID == o.state.CurrentStep,
			IsAccessible: o.accessibleLocked(def.ID),
		})
	}
	return statuses
}

// IsAccessible reports whether the step can be entered: the first step
// always, any later step only once every predecessor's predicate holds.
func (o *Orchestrator) IsAccessible(id StepID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.accessibleLocked(id)
}

func (o *Orchestrator) accessibleLocked(id StepID) bool {
	idx := stepIndex(id)
	if idx < 0 {
		return false
	}
	for _, def := range definitions[:idx] {
		if !def.ID.Satisfied(o.state.Data) {
			return false
		}
	}
	return true
}

// IsComplete reports whether the step's completion predicate holds.
func (o *Orchestrator) IsComplete(id StepID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return id.Satisfied(o.state.Data)
}

// StepData returns a copy of the current step data.
func (o *Orchestrator) StepData() StepData {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Data.clone()
}

// GoToStep activates the step if it is accessible, persists the change, and
// announces the step's path to the navigator. An inaccessible or unknown
// step is a silent no-op and reports false.
func (o *Orchestrator) GoToStep(id StepID) bool {
	o.mu.Lock()
	if !o.accessibleLocked(id) {
		o.mu.Unlock()
		return false
	}
	o.state.CurrentStep = id
	target := definitions[stepIndex(id)].TargetPath
	o.persistLocked()
	nav := o.navigator
	o.mu.Unlock()

	if nav != nil {
		nav.Navigate(target)
	}
	return true
}

// NextStep advances to the following step when it is accessible. At the last
// step it is a no-op.
func (o *Orchestrator) NextStep() bool {
	o.mu.Lock()
	idx := stepIndex(o.state.CurrentStep)
	o.mu.Unlock()
	if idx < 0 || idx >= len(definitions)-1 {
		return false
	}
	return o.GoToStep(definitions[idx+1].ID)
}

// PreviousStep moves back one step. Earlier steps are always accessible, so
// this only no-ops at the first step.
func (o *Orchestrator) PreviousStep() bool {
	o.mu.Lock()
	idx := stepIndex(o.state.CurrentStep)
	o.mu.Unlock()
	if idx <= 0 {
		return false
	}
	return o.GoToStep(definitions[idx-1].ID)
}

// MarkStepComplete records the step in the informational completed set and
// merges the patch into step data. It does not move the current step; actual
// completion remains whatever the predicates compute.
func (o *Orchestrator) MarkStepComplete(id StepID, patch map[string]any) {
	if stepIndex(id) < 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Completed[id] = struct{}{}
	o.state.Data.merge(patch)
	o.persistLocked()
}

// UpdateStepData merges the patch into the root data map (where the
// completion predicates read it) and additionally files a copy under the
// step's own id.
func (o *Orchestrator) UpdateStepData(id StepID, patch map[string]any) {
	if stepIndex(id) < 0 || len(patch) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	scoped, _ := o.state.Data[string(id)].(map[string]any)
	if scoped == nil {
		scoped = make(map[string]any, len(patch))
	}
	for key, value := range patch {
		scoped[key] = value
	}
	o.state.Data[string(id)] = scoped
	o.state.Data.merge(patch)
	o.persistLocked()
}

// ResetWorkflow drops all workflow state, in memory and in the store, and
// returns to the first step.
func (o *Orchestrator) ResetWorkflow() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = defaultState()
	if o.store == nil {
		return nil
	}
	return o.store.ClearWorkflowState()
}

// Progress reports overall completion as a rounded percentage of satisfied
// step predicates.
func (o *Orchestrator) Progress() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	satisfied := 0
	for _, def := range definitions {
		if def.ID.Satisfied(o.state.Data) {
			satisfied++
		}
	}
	return int(math.Round(float64(satisfied) / float64(len(definitions)) * 100))
}

func (o *Orchestrator) persistLocked() {
	if o.store == nil {
		return
	}
	payload, err := marshalState(o.state)
	if err != nil {
		o.logger.Warn("workflow state encode failed", "error", err)
		return
	}
	if err := o.store.SaveWorkflowState(payload); err != nil {
		o.logger.Warn("workflow state save failed", "error", err)
	}
}
