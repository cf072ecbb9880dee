package game

import (
	"fmt"
	"strings"
	"time"
)

// Quiz is a "what will print?" question.
type Quiz struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Answer string `json:"answer" yaml:"answer"`
}

type QuizStatus string

const (
	QuizIdle    QuizStatus = "idle"
	QuizCorrect QuizStatus = "correct"
	QuizWrong   QuizStatus = "wrong"
)

// TreasureBoxes teaches variables: two inputs feed two "boxes" and a pop
// quiz checks the learner can predict print output.
type TreasureBoxes struct {
	Name       string     `json:"name"`
	Score      int        `json:"score"`
	Quizzes    []Quiz     `json:"quizzes"`
	QuizIndex  int        `json:"quizIndex"`
	QuizAnswer string     `json:"quizAnswer"`
	QuizStatus QuizStatus `json:"quizStatus"`
	AdvanceAt  time.Time  `json:"advanceAt,omitzero"`
}

func NewTreasureBoxes(quizzes []Quiz) (*TreasureBoxes, error) {
	if len(quizzes) == 0 {
		return nil, ErrEmptyContent
	}
	return &TreasureBoxes{Name: "Player", Quizzes: quizzes, QuizStatus: QuizIdle}, nil
}

func (t *TreasureBoxes) Mode() Mode { return ModeTreasureBoxes }

func (t *TreasureBoxes) Render() string {
	return strings.TrimSpace(fmt.Sprintf(`
player_name = "%s"
score = %d

print("Welcome " + player_name)
print("Score: " + str(score))
`, t.Name, t.Score))
}

func (t *TreasureBoxes) SetName(name string) { t.Name = name }
func (t *TreasureBoxes) SetScore(score int)  { t.Score = score }

// Quiz returns the current question.
func (t *TreasureBoxes) Quiz() Quiz { return t.Quizzes[t.QuizIndex] }

// SetAnswer edits the quiz answer; a previous "wrong" verdict is cleared.
func (t *TreasureBoxes) SetAnswer(answer string) {
	t.QuizAnswer = answer
	t.QuizStatus = QuizIdle
}

// CheckQuiz compares the trimmed answer with the expected output. On success
// the next question is scheduled for now+delay; see Settle.
func (t *TreasureBoxes) CheckQuiz(now time.Time, delay time.Duration) bool {
	if strings.TrimSpace(t.QuizAnswer) == t.Quiz().Answer {
		t.QuizStatus = QuizCorrect
		t.AdvanceAt = now.Add(delay)
		return true
	}
	t.QuizStatus = QuizWrong
	return false
}

// Settle applies a scheduled advance once its time has come. It reports
// whether anything changed.
func (t *TreasureBoxes) Settle(now time.Time, _ Rand) bool {
	if t.AdvanceAt.IsZero() || now.Before(t.AdvanceAt) {
		return false
	}
	t.AdvanceAt = time.Time{}
	t.QuizStatus = QuizIdle
	t.QuizAnswer = ""
	t.QuizIndex = (t.QuizIndex + 1) % len(t.Quizzes)
	return true
}
