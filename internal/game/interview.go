package game

import "strings"

const interviewCode = `print("Hello! What is your name?")
name = input()
print("Nice to meet you " + name)
print("What is your favorite color?")
color = input()
print("Wow! " + color + " is beautiful!")`

type LineKind string

const (
	LineSystem LineKind = "sys"
	LineUser   LineKind = "user"
)

// Line is one row of the interview console.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Interview simulates a program that reads two answers with input().
type Interview struct {
	Logs []Line `json:"logs"`
	Step int    `json:"step"`
}

func NewInterview() *Interview {
	return &Interview{Logs: []Line{{Kind: LineSystem, Text: "Hello! What is your name?"}}}
}

func (iv *Interview) Mode() Mode     { return ModeInterview }
func (iv *Interview) Render() string { return interviewCode }

// Done reports whether both questions have been answered.
func (iv *Interview) Done() bool { return iv.Step >= 2 }

// Answer feeds one line to the waiting input() call. Blank answers are
// ignored; it reports whether the answer was accepted.
func (iv *Interview) Answer(in string) (bool, error) {
	if iv.Done() {
		return false, ErrFinished
	}
	if strings.TrimSpace(in) == "" {
		return false, nil
	}
	iv.Logs = append(iv.Logs, Line{Kind: LineUser, Text: in})
	switch iv.Step {
	case 0:
		iv.Logs = append(iv.Logs,
			Line{Kind: LineSystem, Text: "Nice to meet you " + in},
			Line{Kind: LineSystem, Text: "What is your favorite color?"},
		)
	case 1:
		iv.Logs = append(iv.Logs,
			Line{Kind: LineSystem, Text: "Wow! " + in + " is beautiful!"},
			Line{Kind: LineSystem, Text: "Interview complete! Refresh to start again."},
		)
	}
	iv.Step++
	return true, nil
}

// Restart clears the console.
func (iv *Interview) Restart() { *iv = *NewInterview() }
