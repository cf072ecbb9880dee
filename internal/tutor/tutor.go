// internal/tutor/tutor.go
//
// The "AI Coding Buddy" chat widget.
//
// Responsibilities:
//   - Keep an append-only transcript that starts with a greeting.
//   - Turn a question into a Request carrying the game context and current code.
//   - Fold an assistant Result back into the transcript, substituting the
//     fixed fallback lines for failures and empty replies.
//
// The widget itself never blocks; calls run as Tasks (task.go) outside any
// session lock, and the caller resolves the widget when the task completes.

package tutor

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	Greeting      = "Hi! I'm your AI Coding Buddy. Stuck? Ask me anything!"
	FallbackCloud = "I'm having trouble connecting to the cloud right now. ☁️"
	FallbackFuzzy = "Oops! My brain circuit is fuzzy. Try again!"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is what the assistant sees for one question.
type Request struct {
	Context  string `json:"context"`
	Code     string `json:"code"`
	Question string `json:"question"`
}

// Assistant answers tutoring questions.
type Assistant interface {
	Help(ctx context.Context, req Request) (string, error)
}

// Widget is one chat transcript. A new widget is created on every navigation;
// replies addressed to an older widget ID are dropped.
type Widget struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Busy     bool      `json:"busy"`
}

func NewWidget() *Widget {
	return &Widget{
		ID:       uuid.NewString(),
		Messages: []Message{{Role: RoleModel, Text: Greeting}},
	}
}

// Submit appends the question and marks the widget busy. Blank questions are
// ignored; it reports whether a call should be made.
func (w *Widget) Submit(question string) bool {
	if strings.TrimSpace(question) == "" {
		return false
	}
	w.Messages = append(w.Messages, Message{Role: RoleUser, Text: question})
	w.Busy = true
	return true
}

// Resolve appends the reply for a finished call and clears busy.
func (w *Widget) Resolve(r Result) {
	w.Messages = append(w.Messages, Message{Role: RoleModel, Text: r.Reply()})
	w.Busy = false
}

// Last returns the newest message.
func (w *Widget) Last() Message { return w.Messages[len(w.Messages)-1] }
