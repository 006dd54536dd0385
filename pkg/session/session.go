// Package session sequences user intents against a pricing matrix: entering
// and leaving edit mode, validating cell input, clearing, and saving through a
// backend while keeping the working copy and the stored original in step.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/state"
	"tableflip.dev/pricematrix/pkg/tier"
)

const (
	// InvalidInputNote is shown when typed text is not a number.
	InvalidInputNote = "You can't enter letters & symbols, or more than 1 dot"
	// SaveFailedNote prefixes the note shown when the backend rejects a save.
	SaveFailedNote = "Saving failed, your changes were kept"
)

var (
	// ErrNotEditing is returned by intents that require edit mode.
	ErrNotEditing = errors.New("session: not in edit mode")
	// ErrSaveInFlight is returned when an intent arrives while a save is pending.
	ErrSaveInFlight = errors.New("session: save already in progress")
	// ErrNoBackend is returned when the session was built without a backend.
	ErrNoBackend = errors.New("session: no backend configured")
	// ErrBusy is returned by Reload when edits or a save would be overwritten.
	ErrBusy = errors.New("session: reload skipped while editing or saving")
	// ErrEmpty is returned by Clear when there is no matrix to clear.
	ErrEmpty = errors.New("session: no pricing rows loaded")
)

// Backend loads and stores the matrix document.
type Backend interface {
	LoadMatrix(ctx context.Context) (matrix.Matrix, error)
	SaveMatrix(ctx context.Context, m matrix.Matrix) (matrix.Matrix, error)
}

// Flags is the UI-visible session state.
type Flags struct {
	EditMode  bool
	Saving    bool
	Changed   bool
	ErrorNote string
}

// CanSave reports whether Save should be offered.
func (f Flags) CanSave() bool {
	return !f.Saving && f.EditMode && f.Changed
}

// CanClear reports whether Clear should be offered.
func (f Flags) CanClear() bool {
	return f.EditMode && !f.Saving
}

// CanEditCells reports whether cell inputs accept typing.
func (f Flags) CanEditCells() bool {
	return f.EditMode
}

// View is a snapshot of flags and matrices for rendering.
type View struct {
	Flags
	Original matrix.Matrix
	Working  matrix.Matrix
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds every backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// Session is the edit session controller. It owns the matrix store and only
// changes matrices through dispatched actions.
type Session struct {
	backend Backend
	store   *state.Store
	log     *slog.Logger
	timeout time.Duration

	// opMu serializes intents. mu guards the flags only and is never held
	// while dispatching, so store subscribers may read the session.
	opMu    sync.Mutex
	mu      sync.Mutex
	flags   Flags
	preSave Flags

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(View)
}

// New creates a session over backend.
func New(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		store:   state.New(),
		log:     slog.Default(),
		subs:    make(map[int]func(View)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Store exposes the underlying matrix store for read access and subscriptions.
// Store subscribers may read the session but must not call its intents.
func (s *Session) Store() *state.Store {
	return s.store
}

// Flags returns the current flags.
func (s *Session) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// View returns flags and matrices together.
func (s *Session) View() View {
	s.mu.Lock()
	f := s.flags
	s.mu.Unlock()
	st := s.store.State()
	return View{Flags: f, Original: st.Original, Working: st.Working}
}

// Subscribe registers fn to be called with a fresh View after every intent.
func (s *Session) Subscribe(fn func(View)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	subs := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	if len(subs) == 0 {
		return
	}
	v := s.View()
	for _, fn := range subs {
		fn(v)
	}
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Initialize loads the stored matrix and makes it both the baseline and the
// working copy. A failed load leaves the matrices empty and sets no note; the
// error is logged and returned for diagnostics only.
func (s *Session) Initialize(ctx context.Context) error {
	data, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.opMu.Lock()
	s.replace(data)
	s.opMu.Unlock()
	s.notify()
	return nil
}

// Reload refreshes the baseline from the backend, but only while the session
// is idle. The check is repeated once the load returns, so edits started while
// it was in flight are kept and ErrBusy is returned.
func (s *Session) Reload(ctx context.Context) error {
	if !s.idle() {
		return ErrBusy
	}
	data, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.opMu.Lock()
	if !s.idle() {
		s.opMu.Unlock()
		s.log.Debug("session: dropped reload, session busy")
		return ErrBusy
	}
	s.replace(data)
	s.opMu.Unlock()
	s.notify()
	return nil
}

func (s *Session) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.flags.EditMode && !s.flags.Saving
}

func (s *Session) load(ctx context.Context) (matrix.Matrix, error) {
	if s.backend == nil {
		return nil, ErrNoBackend
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.backend.LoadMatrix(ctx)
	if err != nil {
		s.log.Warn("session: load matrix failed", "error", err)
		return nil, err
	}
	return data, nil
}

// replace installs data as baseline and working copy. Callers hold opMu.
func (s *Session) replace(data matrix.Matrix) {
	s.store.Dispatch(state.ReplaceOriginal{Payload: data})
	s.store.Dispatch(state.ResetWorking{})
}

// EditToggle enters edit mode, or cancels it when already editing.
func (s *Session) EditToggle() error {
	s.opMu.Lock()
	s.mu.Lock()
	if s.flags.Saving {
		s.mu.Unlock()
		s.opMu.Unlock()
		return ErrSaveInFlight
	}
	if s.flags.EditMode {
		s.mu.Unlock()
		s.cancel()
		s.opMu.Unlock()
		s.notify()
		return nil
	}
	s.flags.EditMode = true
	s.flags.Changed = false
	s.mu.Unlock()
	s.opMu.Unlock()
	s.notify()
	return nil
}

// Cancel leaves edit mode and discards unsaved edits.
func (s *Session) Cancel() error {
	s.opMu.Lock()
	s.mu.Lock()
	editing := s.flags.EditMode
	s.mu.Unlock()
	if !editing {
		s.opMu.Unlock()
		return ErrNotEditing
	}
	s.cancel()
	s.opMu.Unlock()
	s.notify()
	return nil
}

// cancel is called with opMu held.
func (s *Session) cancel() {
	s.mu.Lock()
	s.flags.EditMode = false
	s.flags.Changed = false
	s.mu.Unlock()
	s.store.Dispatch(state.ResetWorking{})
}

// Clear zeroes every working cell. It only applies in edit mode and does not
// leave it. An empty matrix has nothing to clear and returns ErrEmpty.
func (s *Session) Clear() error {
	s.opMu.Lock()
	s.mu.Lock()
	if !s.flags.CanClear() {
		editing := s.flags.EditMode
		s.mu.Unlock()
		s.opMu.Unlock()
		if !editing {
			return ErrNotEditing
		}
		return ErrSaveInFlight
	}
	if s.store.State().Working.Len() == 0 {
		s.mu.Unlock()
		s.opMu.Unlock()
		return ErrEmpty
	}
	s.flags.Changed = true
	s.mu.Unlock()
	s.store.Dispatch(state.ResetWorking{ResetToEmpty: true})
	s.opMu.Unlock()
	s.notify()
	return nil
}

// Type applies text typed into a cell. The cell keeps the raw text until it
// is blurred.
func (s *Session) Type(row string, t tier.Tier, raw string) error {
	return s.edit(row, t, raw, false)
}

// Blur applies the final text of a cell that lost focus, committing it as a
// number.
func (s *Session) Blur(row string, t tier.Tier, raw string) error {
	return s.edit(row, t, raw, true)
}

func (s *Session) edit(row string, t tier.Tier, raw string, commit bool) error {
	if raw == "" {
		raw = "0"
	}
	// Digit strings too long for a float64 match the pattern but do not parse.
	parsed, err := matrix.ParseInput(raw)
	if err != nil {
		s.mu.Lock()
		s.flags.ErrorNote = InvalidInputNote
		s.mu.Unlock()
		s.notify()
		return apperrors.ValidationError(InvalidInputNote).
			WithField("row", row).
			WithField("tier", t.String()).
			WithField("input", raw)
	}

	value := matrix.Draft(raw)
	if commit {
		value = matrix.Number(parsed)
	}
	var action state.Action = state.SetCell{Row: row, Tier: t, Value: value}
	if t == tier.Lite {
		action = state.SetRowFromLite{Row: row, Lite: value, Derived: parsed}
	}

	s.opMu.Lock()
	s.mu.Lock()
	s.flags.ErrorNote = ""
	s.flags.Changed = true
	s.mu.Unlock()
	s.store.Dispatch(action)
	s.opMu.Unlock()
	s.notify()
	return nil
}

// Save sends the working copy to the backend and reconciles the result. A
// second Save while one is pending returns ErrSaveInFlight without side
// effects.
func (s *Session) Save(ctx context.Context) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	payload, err := s.BeginSave()
	if err != nil {
		return err
	}
	return s.CompleteSave(ctx, payload)
}

// CompleteSave sends a payload returned by BeginSave and records the outcome
// with FinishSave. It is meant to run off the UI goroutine.
func (s *Session) CompleteSave(ctx context.Context, payload matrix.Matrix) error {
	if s.backend == nil {
		return s.FinishSave(nil, ErrNoBackend)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	resp, err := s.backend.SaveMatrix(ctx, payload)
	return s.FinishSave(resp, err)
}

// BeginSave marks the session as saving, leaves edit mode without discarding
// edits and returns the committed working copy to send. Callers that run the
// backend call themselves must pass its outcome to FinishSave.
func (s *Session) BeginSave() (matrix.Matrix, error) {
	s.opMu.Lock()
	s.mu.Lock()
	if s.flags.Saving {
		s.mu.Unlock()
		s.opMu.Unlock()
		return nil, ErrSaveInFlight
	}
	s.preSave = s.flags
	s.flags.Saving = true
	s.flags.EditMode = false
	s.flags.Changed = false
	s.mu.Unlock()
	payload := s.store.State().Working.Committed()
	s.opMu.Unlock()
	s.notify()
	return payload, nil
}

// FinishSave reconciles a completed backend call. On success the response
// becomes both the baseline and the working copy. On failure the working copy
// is kept, edit mode and the dirty flag are restored and a note is set so the
// save can be retried.
func (s *Session) FinishSave(resp matrix.Matrix, err error) error {
	s.opMu.Lock()
	s.mu.Lock()
	if !s.flags.Saving {
		s.mu.Unlock()
		s.opMu.Unlock()
		return errors.New("session: no save in progress")
	}
	if err != nil {
		s.flags.Saving = false
		s.flags.EditMode = s.preSave.EditMode
		s.flags.Changed = s.preSave.Changed
		s.flags.ErrorNote = SaveFailedNote + ": " + describe(err)
		s.mu.Unlock()
		s.opMu.Unlock()
		s.log.Error("session: save matrix failed", "error", err)
		s.notify()
		return err
	}
	// The baseline is replaced before Saving drops so no reader sees an idle
	// session holding the pre-save matrix.
	s.replace(resp)
	s.mu.Lock()
	s.flags.Saving = false
	s.flags.ErrorNote = ""
	s.mu.Unlock()
	s.opMu.Unlock()
	s.notify()
	return nil
}

func describe(err error) string {
	var structuredErr *apperrors.Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return err.Error()
}
