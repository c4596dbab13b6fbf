package uistate

// CommandKind enumerates the UI updates a projection can request.
type CommandKind string

const (
	// CommandShowLoading / CommandHideLoading toggle every loading indicator.
	CommandShowLoading CommandKind = "show-loading"
	CommandHideLoading CommandKind = "hide-loading"
	// CommandSetErrorText writes Message into the error slot for FormID.
	CommandSetErrorText CommandKind = "set-error-text"
	// CommandClearErrorText blanks the error slot for FormID.
	CommandClearErrorText CommandKind = "clear-error-text"
	// CommandRevealModal makes the modal identified by ModalID visible.
	CommandRevealModal CommandKind = "reveal-modal"
)

// Command is a single UI update. Commands carry no behaviour; sinks decide how
// to apply them to whatever surface they manage.
type Command struct {
	Kind    CommandKind
	FormID  string
	Message string
	ModalID string
}

// Sink consumes the commands produced by a state mutation. Each mutation
// delivers its full batch synchronously before the mutating call returns.
type Sink interface {
	Apply(commands []Command)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(commands []Command)

// Apply implements Sink.
func (f SinkFunc) Apply(commands []Command) {
	if f != nil {
		f(commands)
	}
}

// Recorder is a sink that retains every command it receives, in order. It is
// the test double used throughout the module.
type Recorder struct {
	commands []Command
}

// Apply implements Sink.
func (r *Recorder) Apply(commands []Command) {
	if r == nil {
		return
	}
	r.commands = append(r.commands, commands...)
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []Command {
	if r == nil || len(r.commands) == 0 {
		return nil
	}
	return append([]Command(nil), r.commands...)
}

// Reset discards the recorded commands.
func (r *Recorder) Reset() {
	if r != nil {
		r.commands = nil
	}
}
