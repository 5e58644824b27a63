package bot

import "context"

// Invocation is one parsed command invocation handed to a handler.
type Invocation struct {
	UserID      string
	DisplayName string

	// Args is everything after the command name, unparsed. Empty when the
	// command was sent bare.
	Args string
}

// Handler executes one named command. Implementations own their argument
// validation and cooldown checks; the router has already applied the rate
// limit and the in-flight lock by the time Handle runs.
type Handler interface {
	// Name is the command name without the prefix, e.g. "ai".
	Name() string

	Handle(ctx context.Context, inv *Invocation) error
}

// Sender delivers outbound chat messages.
type Sender interface {
	Send(message string) error
}
