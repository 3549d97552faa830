package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"debtwatch/internal/logging"
	"debtwatch/internal/notifications"
	"debtwatch/internal/services/debtapi"
	"debtwatch/internal/state"
)

// ConflictWindow is the period after a usage upload during which a new upload
// is flagged as a possible unintended overwrite.
const ConflictWindow = 30 * 24 * time.Hour

// Timings controls the pipeline's fixed delays. Tests shrink these to keep
// runs fast; production uses DefaultTimings.
type Timings struct {
	ProgressInterval  time.Duration
	ProgressIncrement int
	ProgressCeiling   int
	ValidationDelay   time.Duration
	AutoResetDelay    time.Duration
}

// DefaultTimings returns the production pipeline timings.
func DefaultTimings() Timings {
	return Timings{
		ProgressInterval:  200 * time.Millisecond,
		ProgressIncrement: 10,
		ProgressCeiling:   90,
		ValidationDelay:   time.Second,
		AutoResetDelay:    2 * time.Second,
	}
}

// ConflictPolicy controls whether a recent-usage-upload conflict blocks the
// upload or is surfaced as advisory only.
type ConflictPolicy int

const (
	// PolicyAdvisory computes the warning but lets the upload proceed.
	PolicyAdvisory ConflictPolicy = iota
	// PolicyBlock refuses the upload until the caller forces it.
	PolicyBlock
)

// ConflictWarning flags a usage upload that would land inside the 30-day
// conflict window.
type ConflictWarning struct {
	Type       string
	Message    string
	LastUpload time.Time
}

// ConflictBlockedError is returned by Start when the block policy refuses a
// conflicting upload.
type ConflictBlockedError struct {
	Warning *ConflictWarning
}

func (e *ConflictBlockedError) Error() string {
	return e.Warning.Message
}

// ErrUploadInProgress is returned by Start while a session is still running.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// HistoryRecorder persists terminal upload outcomes.
type HistoryRecorder interface {
	RecordUpload(ctx context.Context, rec state.UploadRecord) error
}

// CompletionFunc receives the completion payload of a successful upload.
type CompletionFunc func(uploadType Type, result ValidationResult)

// Pipeline drives one upload type through validation, transmission, and
// finalization. All exported methods are safe for concurrent use.
type Pipeline struct {
	uploadType Type
	api        debtapi.Client
	notifier   notifications.Service
	logger     *slog.Logger
	sampler    *logging.ProgressSampler
	history    HistoryRecorder
	timings    Timings
	policy     ConflictPolicy
	onComplete CompletionFunc
	now        func() time.Time

	mu         sync.Mutex
	session    Session
	generation uint64
	done       chan struct{}
	doneOnce   *sync.Once
	validation *time.Timer
	autoReset  *time.Timer
}

// PipelineOption configures optional Pipeline behavior.
type PipelineOption func(*Pipeline)

// WithNotifier routes user-facing events through the given bridge.
func WithNotifier(notifier notifications.Service) PipelineOption {
	return func(p *Pipeline) { p.notifier = notifier }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithTimings overrides the fixed pipeline delays.
func WithTimings(timings Timings) PipelineOption {
	return func(p *Pipeline) { p.timings = timings }
}

// WithConflictPolicy sets the gating behavior for usage-upload conflicts.
func WithConflictPolicy(policy ConflictPolicy) PipelineOption {
	return func(p *Pipeline) { p.policy = policy }
}

// WithHistory records terminal upload outcomes in the given store.
func WithHistory(history HistoryRecorder) PipelineOption {
	return func(p *Pipeline) { p.history = history }
}

// WithCompletionFunc registers a callback invoked with each completion payload.
func WithCompletionFunc(fn CompletionFunc) PipelineOption {
	return func(p *Pipeline) { p.onComplete = fn }
}

// WithClock overrides the time source used for conflict-window checks.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline constructs a pipeline for the given upload type.
func NewPipeline(uploadType Type, api debtapi.Client, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		uploadType: uploadType,
		api:        api,
		notifier:   notifications.Noop(),
		logger:     logging.NewNop(),
		sampler:    logging.NewProgressSampler(10),
		timings:    DefaultTimings(),
		now:        time.Now,
		session:    Session{Type: uploadType, Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns a copy of the current session.
func (p *Pipeline) Snapshot() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.clone()
}

// SelectFile runs the synchronous pre-flight checks and, on success, makes
// the file the session's selected file with status reset to idle. A failing
// check leaves the session untouched and is surfaced both as the returned
// error and through the notification bridge.
func (p *Pipeline) SelectFile(file FileInfo) error {
	if err := ValidateFile(file); err != nil {
		_ = p.notifier.Error(context.Background(), "Invalid File", err.Error())
		return err
	}

	p.mu.Lock()
	p.invalidateLocked()
	p.session = Session{
		ID:           uuid.NewString(),
		Type:         p.uploadType,
		SelectedFile: &file,
		Status:       StatusIdle,
		Progress:     0,
	}
	p.mu.Unlock()
	return nil
}

// CheckConflict looks up the organization's most recent usage upload and
// returns an overwrite warning when it is less than 30 days old. Lookup
// failures are logged and swallowed; the upload is allowed to proceed.
func (p *Pipeline) CheckConflict(ctx context.Context, organization string) *ConflictWarning {
	if p.uploadType != TypeUsage {
		return nil
	}
	last, err := p.api.LastUploadDate(ctx, organization)
	if err != nil {
		p.logger.Warn("conflict lookup failed", "organization", organization, "error", err)
		return nil
	}
	if last == nil {
		return nil
	}
	if p.now().Sub(*last) >= ConflictWindow {
		return nil
	}
	return &ConflictWarning{
		Type: "overwrite",
		Message: fmt.Sprintf(
			"It has NOT been 30 days since the last upload (last upload: %s). Do you want to overwrite?",
			last.Format("Jan 2, 2006")),
		LastUpload: *last,
	}
}

// Start begins the asynchronous upload of the selected file. For usage
// uploads an organization is required, and under the block policy a conflict
// inside the 30-day window refuses the upload unless force is set. Start
// returns as soon as the transfer is in flight; use Await to observe the
// terminal session.
func (p *Pipeline) Start(ctx context.Context, organization string, force bool) error {
	p.mu.Lock()
	if p.session.Status == StatusUploading || p.session.Status == StatusValidating {
		p.mu.Unlock()
		return ErrUploadInProgress
	}
	file := p.session.SelectedFile
	p.mu.Unlock()

	if file == nil {
		err := &ValidationError{Message: "Please select a file"}
		_ = p.notifier.Error(context.Background(), "Upload Failed", err.Message)
		return err
	}
	if p.uploadType == TypeUsage && organization == "" {
		err := &ValidationError{Message: "Please select an organization"}
		_ = p.notifier.Error(context.Background(), "Upload Failed", err.Message)
		return err
	}
	if p.uploadType == TypeUsage && p.policy == PolicyBlock && !force {
		if warning := p.CheckConflict(ctx, organization); warning != nil {
			_ = p.notifier.Warning(context.Background(), "Overwrite Warning", warning.Message)
			return &ConflictBlockedError{Warning: warning}
		}
	}

	p.mu.Lock()
	if p.session.Status == StatusUploading || p.session.Status == StatusValidating {
		p.mu.Unlock()
		return ErrUploadInProgress
	}
	p.invalidateLocked()
	gen := p.generation
	p.session.Status = StatusUploading
	p.session.Progress = 0
	p.session.Message = fmt.Sprintf("Uploading %s...", file.Name)
	p.session.Result = nil
	p.done = make(chan struct{})
	p.doneOnce = &sync.Once{}
	p.sampler.Reset()
	p.mu.Unlock()

	p.logger.Info("upload started",
		"type", string(p.uploadType), "file", file.Name, "size", file.Size)

	go p.simulateProgress(gen)
	go p.transmit(ctx, gen, *file, organization, force)
	return nil
}

// Await blocks until the session started by the most recent Start reaches a
// terminal status, then returns a snapshot of it.
func (p *Pipeline) Await(ctx context.Context) (Session, error) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return p.Snapshot(), errors.New("no upload in progress")
	}
	select {
	case <-ctx.Done():
		return p.Snapshot(), ctx.Err()
	case <-done:
		return p.Snapshot(), nil
	}
}

// Reset cancels pending timers, clears the selected file and result, and
// returns the session to idle. An in-flight network transmission is not
// aborted; its late result is dropped by the generation guard.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.invalidateLocked()
	p.session = Session{
		ID:     uuid.NewString(),
		Type:   p.uploadType,
		Status: StatusIdle,
	}
	p.mu.Unlock()
}

// Retry re-enters the pipeline from idle after an error.
func (p *Pipeline) Retry() {
	p.Reset()
}

// invalidateLocked bumps the generation so in-flight callbacks become stale,
// stops pending timers, and releases any waiter. Callers hold p.mu.
func (p *Pipeline) invalidateLocked() {
	p.generation++
	if p.validation != nil {
		p.validation.Stop()
		p.validation = nil
	}
	if p.autoReset != nil {
		p.autoReset.Stop()
		p.autoReset = nil
	}
	if p.done != nil {
		p.doneOnce.Do(func() { close(p.done) })
		p.done = nil
		p.doneOnce = nil
	}
}

func (p *Pipeline) simulateProgress(gen uint64) {
	ticker := time.NewTicker(p.timings.ProgressInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !p.bumpProgress(gen) {
			return
		}
	}
}

func (p *Pipeline) bumpProgress(gen uint64) bool {
	p.mu.Lock()
	if p.generation != gen || p.session.Status != StatusUploading {
		p.mu.Unlock()
		return false
	}
	next := p.session.Progress + p.timings.ProgressIncrement
	if next > p.timings.ProgressCeiling {
		next = p.timings.ProgressCeiling
	}
	p.session.Progress = next
	p.mu.Unlock()

	if p.sampler.ShouldLog(float64(next), string(StatusUploading)) {
		p.logger.Debug("upload progress", "type", string(p.uploadType), "percent", next)
	}
	return true
}

func (p *Pipeline) transmit(ctx context.Context, gen uint64, file FileInfo, organization string, force bool) {
	handle, err := os.Open(file.Path)
	if err != nil {
		p.fail(gen, file, organization, fmt.Errorf("open file: %w", err))
		return
	}
	defer handle.Close()

	var result *debtapi.UploadResult
	switch p.uploadType {
	case TypeUsage:
		result, err = p.api.UploadUsage(ctx, file.Name, handle, organization, force)
	default:
		result, err = p.api.UploadTickets(ctx, file.Name, handle)
	}
	if err != nil {
		p.fail(gen, file, organization, err)
		return
	}
	p.beginValidation(gen, file, organization, result)
}

func (p *Pipeline) beginValidation(gen uint64, file FileInfo, organization string, result *debtapi.UploadResult) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	p.session.Status = StatusValidating
	p.session.Progress = 95
	p.session.Message = "Validating data..."
	p.validation = time.AfterFunc(p.timings.ValidationDelay, func() {
		p.complete(gen, file, organization, result)
	})
	p.mu.Unlock()

	p.logger.Info("upload transmitted, validating",
		"type", string(p.uploadType), "file", file.Name, "inserted", result.Inserted)
}

func (p *Pipeline) complete(gen uint64, file FileInfo, organization string, result *debtapi.UploadResult) {
	payload := ValidationResult{
		IsValid:     true,
		Errors:      append([]string{}, result.Errors...),
		Warnings:    []string{},
		RowCount:    result.Inserted,
		ValidRows:   result.Inserted,
		InvalidRows: len(result.Errors),
	}

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	p.session.Status = StatusComplete
	p.session.Progress = 100
	p.session.Message = "Upload complete"
	p.session.Result = &payload
	sessionID := p.session.ID
	done := p.done
	doneOnce := p.doneOnce
	p.autoReset = time.AfterFunc(p.timings.AutoResetDelay, func() {
		p.autoResetFire(gen)
	})
	p.mu.Unlock()

	p.logger.Info("upload complete",
		"type", string(p.uploadType), "file", file.Name, "rows", payload.RowCount)
	_ = p.notifier.Success(context.Background(), "Upload Complete",
		fmt.Sprintf("%s: %d rows imported", file.Name, payload.RowCount))
	p.recordHistory(sessionID, file, organization, StatusComplete, &payload, "")

	if p.onComplete != nil {
		p.onComplete(p.uploadType, payload)
	}
	if doneOnce != nil {
		doneOnce.Do(func() { close(done) })
	}
}

func (p *Pipeline) fail(gen uint64, file FileInfo, organization string, cause error) {
	message := deriveErrorMessage(cause)

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	p.session.Status = StatusError
	p.session.Progress = 0
	p.session.Message = message
	p.session.Result = nil
	sessionID := p.session.ID
	done := p.done
	doneOnce := p.doneOnce
	p.mu.Unlock()

	p.logger.Error("upload failed",
		"type", string(p.uploadType), "file", file.Name, "error", cause)
	_ = p.notifier.Error(context.Background(), "Upload Failed", message,
		notifications.WithDuration(0))
	p.recordHistory(sessionID, file, organization, StatusError, nil, message)

	if doneOnce != nil {
		doneOnce.Do(func() { close(done) })
	}
}

func (p *Pipeline) autoResetFire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen || p.session.Status != StatusComplete {
		return
	}
	p.session = Session{
		ID:     uuid.NewString(),
		Type:   p.uploadType,
		Status: StatusIdle,
	}
}

func (p *Pipeline) recordHistory(sessionID string, file FileInfo, organization string, status Status, result *ValidationResult, errMessage string) {
	if p.history == nil {
		return
	}
	rec := state.UploadRecord{
		SessionID:    sessionID,
		UploadType:   string(p.uploadType),
		Filename:     file.Name,
		SizeBytes:    file.Size,
		Organization: organization,
		Status:       string(status),
		ErrorMessage: errMessage,
	}
	if result != nil {
		rec.RowCount = result.RowCount
		rec.ValidRows = result.ValidRows
		rec.InvalidRows = result.InvalidRows
	}
	if err := p.history.RecordUpload(context.Background(), rec); err != nil {
		p.logger.Warn("record upload history failed", "error", err)
	}
}

func deriveErrorMessage(cause error) string {
	var conflict *debtapi.ConflictError
	if errors.As(cause, &conflict) {
		return fmt.Sprintf("Upload failed: %s", conflict.Message)
	}
	return fmt.Sprintf("Upload failed: %s", cause)
}
