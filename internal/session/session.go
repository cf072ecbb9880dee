// internal/session/session.go
//
// A learner's session: the selected mode, the active game, the derived
// "current code" and the tutor transcript.
//
// Responsibilities:
//   - Navigate between the menu and the nine games, creating fresh game and
//     tutor state on every entry.
//   - Apply a mutation to the active game and re-render its code right after.
//   - Settle delayed follow-ups (quiz advance, next monster) once due.
//   - Build tutor requests from the mode's context label and current code.
//
// A Session is plain data so stores can serialize it; callers serialize
// access to one session (see httpserver's per-session locks).

package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ashkam58/pythongrade3/internal/curriculum"
	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

var (
	ErrInvalidMode = errors.New("unknown mode")
	ErrWrongMode   = errors.New("game is not active")
	ErrNoTutor     = errors.New("tutor is only available inside a game")
)

type Session struct {
	ID   string    `json:"id"`
	Mode game.Mode `json:"mode"`
	Code string    `json:"code"`

	TalkingBox     *game.TalkingBox     `json:"talkingBox,omitempty"`
	BugSmash       *game.BugSmash       `json:"bugSmash,omitempty"`
	RobotChef      *game.RobotChef      `json:"robotChef,omitempty"`
	TreasureBoxes  *game.TreasureBoxes  `json:"treasureBoxes,omitempty"`
	NumberBattle   *game.NumberBattle   `json:"numberBattle,omitempty"`
	Interview      *game.Interview      `json:"interview,omitempty"`
	PasswordGate   *game.PasswordGate   `json:"passwordGate,omitempty"`
	AdventureFork  *game.AdventureFork  `json:"adventureFork,omitempty"`
	TrafficControl *game.TrafficControl `json:"trafficControl,omitempty"`

	Tutor *tutor.Widget `json:"tutor,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a session on the menu.
func New(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), Mode: game.ModeMenu, CreatedAt: now, UpdatedAt: now}
}

// Active returns the game for the current mode, or nil on the menu.
func (s *Session) Active() game.Game {
	switch {
	case s.Mode == game.ModeTalkingBox && s.TalkingBox != nil:
		return s.TalkingBox
	case s.Mode == game.ModeBugSmash && s.BugSmash != nil:
		return s.BugSmash
	case s.Mode == game.ModeRobotChef && s.RobotChef != nil:
		return s.RobotChef
	case s.Mode == game.ModeTreasureBoxes && s.TreasureBoxes != nil:
		return s.TreasureBoxes
	case s.Mode == game.ModeNumberBattle && s.NumberBattle != nil:
		return s.NumberBattle
	case s.Mode == game.ModeInterview && s.Interview != nil:
		return s.Interview
	case s.Mode == game.ModePasswordGate && s.PasswordGate != nil:
		return s.PasswordGate
	case s.Mode == game.ModeAdventureFork && s.AdventureFork != nil:
		return s.AdventureFork
	case s.Mode == game.ModeTrafficControl && s.TrafficControl != nil:
		return s.TrafficControl
	}
	return nil
}

// ContextLabel is the tutor context for the current mode.
func (s *Session) ContextLabel() string { return s.Mode.ContextLabel() }

// Navigate switches mode. Entering a game starts it from scratch with a new
// tutor widget and renders its code; returning to the menu drops both and
// leaves the last code in place.
func (s *Session) Navigate(mode game.Mode, content *curriculum.Content, rnd game.Rand) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	g, err := newGame(mode, content, rnd)
	if err != nil {
		return err
	}
	s.clearGames()
	s.Mode = mode
	if g == nil {
		s.Tutor = nil
		return nil
	}
	s.attach(g)
	s.Tutor = tutor.NewWidget()
	s.Code = g.Render()
	return nil
}

func newGame(mode game.Mode, c *curriculum.Content, rnd game.Rand) (game.Game, error) {
	switch mode {
	case game.ModeTalkingBox:
		return game.NewTalkingBox(), nil
	case game.ModeBugSmash:
		return game.NewBugSmash(c.Challenges)
	case game.ModeRobotChef:
		return game.NewRobotChef(c.Recipes, rnd)
	case game.ModeTreasureBoxes:
		return game.NewTreasureBoxes(c.Quizzes)
	case game.ModeNumberBattle:
		return game.NewNumberBattle(), nil
	case game.ModeInterview:
		return game.NewInterview(), nil
	case game.ModePasswordGate:
		return game.NewPasswordGate(), nil
	case game.ModeAdventureFork:
		return game.NewAdventureFork(), nil
	case game.ModeTrafficControl:
		return game.NewTrafficControl(), nil
	}
	return nil, nil
}

func (s *Session) clearGames() {
	s.TalkingBox, s.BugSmash, s.RobotChef = nil, nil, nil
	s.TreasureBoxes, s.NumberBattle, s.Interview = nil, nil, nil
	s.PasswordGate, s.AdventureFork, s.TrafficControl = nil, nil, nil
}

func (s *Session) attach(g game.Game) {
	switch v := g.(type) {
	case *game.TalkingBox:
		s.TalkingBox = v
	case *game.BugSmash:
		s.BugSmash = v
	case *game.RobotChef:
		s.RobotChef = v
	case *game.TreasureBoxes:
		s.TreasureBoxes = v
	case *game.NumberBattle:
		s.NumberBattle = v
	case *game.Interview:
		s.Interview = v
	case *game.PasswordGate:
		s.PasswordGate = v
	case *game.AdventureFork:
		s.AdventureFork = v
	case *game.TrafficControl:
		s.TrafficControl = v
	}
}

// Apply runs fn against the active game when it is a G, then re-renders the
// code. Nothing is re-rendered when fn fails.
func Apply[G game.Game](s *Session, fn func(G) error) error {
	g, ok := s.Active().(G)
	if !ok {
		return ErrWrongMode
	}
	if err := fn(g); err != nil {
		return err
	}
	s.Code = g.Render()
	return nil
}

// Settle applies any due follow-up on the active game.
func (s *Session) Settle(now time.Time, rnd game.Rand) bool {
	st, ok := s.Active().(game.Settler)
	if !ok || !st.Settle(now, rnd) {
		return false
	}
	s.Code = s.Active().Render()
	return true
}

// AskTutor records the question on the current widget and returns the request
// to send along with the widget ID the reply belongs to. ok is false for a
// blank question.
func (s *Session) AskTutor(question string) (req tutor.Request, widgetID string, ok bool, err error) {
	if s.Tutor == nil {
		return tutor.Request{}, "", false, ErrNoTutor
	}
	if !s.Tutor.Submit(question) {
		return tutor.Request{}, s.Tutor.ID, false, nil
	}
	return tutor.Request{Context: s.ContextLabel(), Code: s.Code, Question: question}, s.Tutor.ID, true, nil
}

// ResolveTutor appends a reply to the widget it was asked on. It reports false
// and drops the reply when that widget has since been replaced.
func (s *Session) ResolveTutor(widgetID string, r tutor.Result) bool {
	if s.Tutor == nil || s.Tutor.ID != widgetID {
		return false
	}
	s.Tutor.Resolve(r)
	return true
}
