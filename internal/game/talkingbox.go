package game

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// DefaultTalkingBoxCode is the snippet a new talking box starts with.
const DefaultTalkingBoxCode = `print("Hello World")`

// printStatement recognises exactly one print call with a quoted string.
// The backreference keeps the opening and closing quote the same kind.
var printStatement = regexp2.MustCompile(`^print\s*\(\s*(['"])(.*?)\1\s*\)$`, regexp2.None)

// TalkingBox is the "Magic Talking Box": the learner types a print statement
// and the box says the text out loud.
type TalkingBox struct {
	Code   string   `json:"code"`
	Output []string `json:"output"`
	Error  string   `json:"error,omitempty"`
}

// NewTalkingBox returns a box holding the default snippet.
func NewTalkingBox() *TalkingBox {
	return &TalkingBox{Code: DefaultTalkingBoxCode, Output: []string{}}
}

func (t *TalkingBox) Mode() Mode     { return ModeTalkingBox }
func (t *TalkingBox) Render() string { return t.Code }

// SetCode replaces the editor contents.
func (t *TalkingBox) SetCode(code string) { t.Code = code }

// Run "executes" the code. It reports whether the statement was understood.
func (t *TalkingBox) Run() bool {
	t.Output = []string{}
	t.Error = ""

	m, err := printStatement.FindStringMatch(strings.TrimSpace(t.Code))
	if err == nil && m != nil {
		t.Output = []string{m.GroupByNumber(2).String()}
		return true
	}

	switch {
	case strings.Contains(t.Code, "print") && !strings.Contains(t.Code, "("):
		t.Error = "Missing parenthesis!"
	case strings.Contains(t.Code, "print") && !strings.Contains(t.Code, `"`) && !strings.Contains(t.Code, "'"):
		t.Error = "Missing quotes around the text!"
	default:
		t.Error = `I don't understand that command yet. Try print("text")`
	}
	return false
}
