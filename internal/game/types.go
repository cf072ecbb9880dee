// internal/game/types.go
//
// Core type definitions shared by the nine mini-games.
// Defines:
//   - Mode: which game (or the menu) a session is showing.
//   - Feedback: the tri-state answer indicator (idle / success / fail).
//   - Game: the contract every mini-game satisfies (Mode + Render).
//   - Rand: the randomness a game needs (shuffles, targets).
//   - Sentinel errors for invalid learner operations.

package game

import (
	"errors"
	"math/rand/v2"
	"time"
)

// Mode identifies the active game, or the menu.
type Mode string

const (
	ModeMenu           Mode = "menu"
	ModeTalkingBox     Mode = "talking_box"
	ModeBugSmash       Mode = "bug_smash"
	ModeRobotChef      Mode = "robot_chef"
	ModeTreasureBoxes  Mode = "treasure_boxes"
	ModeNumberBattle   Mode = "number_battle"
	ModeInterview      Mode = "interview"
	ModePasswordGate   Mode = "password_gate"
	ModeAdventureFork  Mode = "adventure_fork"
	ModeTrafficControl Mode = "traffic_control"
)

// Modes lists every game mode in menu order (menu itself excluded).
var Modes = []Mode{
	ModeTalkingBox, ModeBugSmash, ModeRobotChef,
	ModeTreasureBoxes, ModeNumberBattle, ModeInterview,
	ModePasswordGate, ModeAdventureFork, ModeTrafficControl,
}

// Valid reports whether m is the menu or one of the nine games.
func (m Mode) Valid() bool {
	if m == ModeMenu {
		return true
	}
	for _, x := range Modes {
		if x == m {
			return true
		}
	}
	return false
}

// ContextLabel is the short description handed to the tutor for each mode.
func (m Mode) ContextLabel() string {
	switch m {
	case ModeTalkingBox:
		return "Learning Python print() function"
	case ModeBugSmash:
		return "Debugging syntax errors in print statements"
	case ModeRobotChef:
		return "Understanding code execution order"
	case ModeTreasureBoxes:
		return "Understanding variables as containers"
	case ModeNumberBattle:
		return "Basic math operators in Python"
	case ModeInterview:
		return "Using Python input() function"
	case ModePasswordGate:
		return "Learning Python 'if' statements"
	case ModeAdventureFork:
		return "Learning Python 'if-else' logic"
	case ModeTrafficControl:
		return "Learning Python 'elif' conditions"
	default:
		return "Python Coding Menu"
	}
}

// Feedback is the tri-state indicator shown next to an answer box.
type Feedback string

const (
	FeedbackIdle    Feedback = "idle"
	FeedbackSuccess Feedback = "success"
	FeedbackFail    Feedback = "fail"
)

// Game is implemented by every mini-game.
// Render must be a pure function of the game's current state.
type Game interface {
	Mode() Mode
	Render() string
}

// Rand is the subset of *rand.Rand the games use.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// DefaultRand draws from the unseeded global source.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotSolved    = errors.New("not solved yet")
	ErrOutOfRange   = errors.New("step out of range")
	ErrFinished     = errors.New("already finished")
	ErrNoChallenge  = errors.New("no such challenge")
	ErrEmptyContent = errors.New("no content for game")
)

// Settler is implemented by games with a delayed follow-up (the quiz advance,
// the next monster). Settle applies it once now has passed its deadline.
type Settler interface {
	Settle(now time.Time, rnd Rand) bool
}
