// Package llm wraps the external generative-language model behind a
// small client interface with typed failure classification, so callers
// can fall back deterministically instead of inspecting provider
// errors.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a model call failure.
type Kind string

const (
	KindQuota     Kind = "quota"
	KindAuth      Kind = "auth"
	KindTransient Kind = "transient"
	KindOther     Kind = "other"
)

// Error is a classified model failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s failure: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, defaulting to other.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return KindOther
}

// Role tags a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of peripheral chat history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is the single boundary to the external model. A nil Client
// means the model is unconfigured and callers must use their degraded
// modes.
type Client interface {
	// Generate performs a single prompt-in, text-out call.
	Generate(ctx context.Context, system, user string) (string, error)
	// GenerateChat performs a multi-turn call for peripheral chat.
	GenerateChat(ctx context.Context, system string, messages []Message) (string, error)
}
