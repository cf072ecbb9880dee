package game

import (
	"fmt"
	"strings"
)

// secretWord opens the password gate, compared case-insensitively.
const secretWord = "melon"

// PasswordGate mirrors a single if/else on a typed password.
type PasswordGate struct {
	Password string `json:"password"`
	Open     bool   `json:"open"`
}

func NewPasswordGate() *PasswordGate {
	g := &PasswordGate{}
	g.SetPassword("guest")
	return g
}

func (g *PasswordGate) Mode() Mode { return ModePasswordGate }

func (g *PasswordGate) Render() string {
	return fmt.Sprintf(`secret_word = "melon"
user_input = "%s"

if user_input == secret_word:
    print("Access Granted! Enter.")
else:
    print("Access Denied.")`, g.Password)
}

// SetPassword stores the input and re-evaluates the gate.
func (g *PasswordGate) SetPassword(pw string) bool {
	g.Password = pw
	g.Open = strings.ToLower(pw) == secretWord
	return g.Open
}

// Path is the Adventure Fork choice.
type Path string

const (
	PathLeft  Path = "left"
	PathRight Path = "right"
)

// AdventureFork mirrors an if/else on a two-valued choice.
type AdventureFork struct {
	Path    Path   `json:"path"`
	Outcome string `json:"outcome"`
}

func NewAdventureFork() *AdventureFork {
	a := &AdventureFork{}
	_ = a.SetPath(PathLeft)
	return a
}

func (a *AdventureFork) Mode() Mode { return ModeAdventureFork }

func (a *AdventureFork) Render() string {
	return fmt.Sprintf(`direction = "%s"

if direction == "left":
    print("You found the Enchanted Forest! 🌲")
else:
    print("You found the Crystal Beach! 🏖️")`, a.Path)
}

func (a *AdventureFork) SetPath(p Path) error {
	switch p {
	case PathLeft:
		a.Outcome = "You found the Enchanted Forest! 🌲"
	case PathRight:
		a.Outcome = "You found the Crystal Beach! 🏖️"
	default:
		return ErrInvalidInput
	}
	a.Path = p
	return nil
}

// Light is a traffic light colour.
type Light string

const (
	LightRed    Light = "red"
	LightYellow Light = "yellow"
	LightGreen  Light = "green"
)

// TrafficControl mirrors an if/elif/else on a three-valued choice.
type TrafficControl struct {
	Light  Light  `json:"light"`
	Branch string `json:"branch"`
	Car    string `json:"car"`
}

func NewTrafficControl() *TrafficControl {
	t := &TrafficControl{}
	_ = t.SetLight(LightRed)
	return t
}

func (t *TrafficControl) Mode() Mode { return ModeTrafficControl }

func (t *TrafficControl) Render() string {
	return fmt.Sprintf(`light = "%s"

if light == "red":
    print("Stop! 🛑")
elif light == "yellow":
    print("Slow down... ⚠️")
else:
    print("Go! 🏎️")`, t.Light)
}

func (t *TrafficControl) SetLight(l Light) error {
	switch l {
	case LightRed, LightYellow, LightGreen:
	default:
		return ErrInvalidInput
	}
	t.Light = l
	t.Branch = BranchFor(l)
	switch l {
	case LightRed:
		t.Car = "STOP"
	case LightYellow:
		t.Car = "WAIT"
	default:
		t.Car = "GO!"
	}
	return nil
}

// BranchFor evaluates the if/elif/else chain for a light value.
func BranchFor(l Light) string {
	if l == LightRed {
		return "Stop! 🛑"
	} else if l == LightYellow {
		return "Slow down... ⚠️"
	}
	return "Go! 🏎️"
}
