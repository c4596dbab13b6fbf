package uistate

import (
	"sort"
	"strings"
	"sync"
)

// Snapshot is an immutable copy of the shared UI state used by Project.
type Snapshot struct {
	Loading bool
	// Errors maps form identifiers to their current message. Absence means the
	// form has no active error.
	Errors map[string]string
	// KnownForms lists the form identifiers the state has been told about.
	// Projection only emits clear commands for known forms.
	KnownForms []string
	// ClearOnNoError controls whether projection blanks error slots for known
	// forms without an active error. The historical behaviour leaves stale text
	// in place, so the default is false.
	ClearOnNoError bool
}

// Project converts a snapshot into the list of UI commands that would bring a
// surface in line with the state. It is pure: no DOM, no side effects, fully
// testable on its own.
func Project(snap Snapshot) []Command {
	commands := make([]Command, 0, 1+len(snap.Errors))
	if snap.Loading {
		commands = append(commands, Command{Kind: CommandShowLoading})
	} else {
		commands = append(commands, Command{Kind: CommandHideLoading})
	}

	formIDs := make([]string, 0, len(snap.Errors))
	for formID := range snap.Errors {
		formIDs = append(formIDs, formID)
	}
	sort.Strings(formIDs)
	for _, formID := range formIDs {
		commands = append(commands, Command{
			Kind:    CommandSetErrorText,
			FormID:  formID,
			Message: snap.Errors[formID],
		})
	}

	if snap.ClearOnNoError {
		for _, formID := range snap.KnownForms {
			if _, active := snap.Errors[formID]; active {
				continue
			}
			commands = append(commands, Command{
				Kind:   CommandClearErrorText,
				FormID: formID,
			})
		}
	}
	return commands
}

// Option customises state construction.
type Option func(*State)

// WithSinks attaches sinks that receive the command batch after every
// mutation.
func WithSinks(sinks ...Sink) Option {
	return func(s *State) {
		for _, sink := range sinks {
			if sink != nil {
				s.sinks = append(s.sinks, sink)
			}
		}
	}
}

// WithKnownForms declares the form identifiers the state manages. Only known
// forms receive clear commands when ClearOnNoError is enabled.
func WithKnownForms(formIDs ...string) Option {
	return func(s *State) {
		for _, formID := range formIDs {
			if trimmed := strings.TrimSpace(formID); trimmed != "" {
				s.knownForms = append(s.knownForms, trimmed)
			}
		}
	}
}

// WithClearOnNoError switches projection to blank error slots for known forms
// with no active error. Off by default to preserve the sticky-error behaviour
// existing surfaces rely on.
func WithClearOnNoError(clear bool) Option {
	return func(s *State) {
		s.clearOnNoError = clear
	}
}

// State owns the process-wide loading flag and the per-form error map. Every
// mutation recomputes the projection and delivers it to the attached sinks
// before returning, so two mutations made back to back are each separately
// repainted.
type State struct {
	mu             sync.Mutex
	loading        bool
	errors         map[string]string
	knownForms     []string
	clearOnNoError bool
	sinks          []Sink
}

// New constructs a State applying any provided options.
func New(options ...Option) *State {
	s := &State{
		errors: make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// AttachSink adds a sink after construction. It does not replay past commands.
func (s *State) AttachSink(sink Sink) {
	if s == nil || sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// SetLoading sets the loading flag and repaints.
func (s *State) SetLoading(active bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.loading = active
	snap := s.snapshotLocked()
	sinks := s.sinksLocked()
	s.mu.Unlock()

	deliver(sinks, Project(snap))
}

// SetError upserts the message stored for formID and repaints. A new error
// always overwrites the previous one, keeping at most one message per form.
func (s *State) SetError(formID, message string) {
	if s == nil {
		return
	}
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return
	}
	s.mu.Lock()
	s.errors[formID] = message
	snap := s.snapshotLocked()
	sinks := s.sinksLocked()
	s.mu.Unlock()

	deliver(sinks, Project(snap))
}

// ClearError removes the stored message for formID, if any, and repaints. The
// projection emits an explicit clear command for the form so sinks can blank
// the slot even when ClearOnNoError is disabled.
func (s *State) ClearError(formID string) {
	if s == nil {
		return
	}
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return
	}
	s.mu.Lock()
	_, had := s.errors[formID]
	delete(s.errors, formID)
	snap := s.snapshotLocked()
	sinks := s.sinksLocked()
	s.mu.Unlock()

	commands := Project(snap)
	if had && !snap.ClearOnNoError {
		commands = append(commands, Command{Kind: CommandClearErrorText, FormID: formID})
	}
	deliver(sinks, commands)
}

// RevealModal emits a one-shot command instructing sinks to reveal the named
// modal. Modal visibility is not part of the retained state.
func (s *State) RevealModal(modalID string) {
	if s == nil {
		return
	}
	modalID = strings.TrimSpace(modalID)
	if modalID == "" {
		return
	}
	s.mu.Lock()
	sinks := s.sinksLocked()
	s.mu.Unlock()

	deliver(sinks, []Command{{Kind: CommandRevealModal, ModalID: modalID}})
}

// Loading reports the current loading flag.
func (s *State) Loading() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ErrorFor returns the stored message for formID and whether one is active.
func (s *State) ErrorFor(formID string) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.errors[formID]
	return message, ok
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	errs := make(map[string]string, len(s.errors))
	for formID, message := range s.errors {
		errs[formID] = message
	}
	return Snapshot{
		Loading:        s.loading,
		Errors:         errs,
		KnownForms:     append([]string(nil), s.knownForms...),
		ClearOnNoError: s.clearOnNoError,
	}
}

func (s *State) sinksLocked() []Sink {
	return append([]Sink(nil), s.sinks...)
}

func deliver(sinks []Sink, commands []Command) {
	for _, sink := range sinks {
		sink.Apply(commands)
	}
}
