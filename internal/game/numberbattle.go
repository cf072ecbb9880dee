package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	messageHit       = "CRITICAL HIT! 💥 Next Monster!"
	messageMiss      = "Missed! Try different numbers. 🛡️"
	messageDivByZero = "You can't divide by zero! 🚫"
)

// Operators accepted by NumberBattle, in button order.
var Operators = []string{"+", "-", "*", "/"}

// NumberBattle teaches arithmetic operators. In target mode the learner has
// to make the damage equal a randomly chosen number.
type NumberBattle struct {
	Num1       float64   `json:"num1"`
	Num2       float64   `json:"num2"`
	Operator   string    `json:"operator"`
	Result     *float64  `json:"result"`
	TargetMode bool      `json:"targetMode"`
	Target     int       `json:"target"`
	Message    string    `json:"message,omitempty"`
	RetargetAt time.Time `json:"retargetAt,omitzero"`
}

func NewNumberBattle() *NumberBattle {
	return &NumberBattle{Num1: 5, Num2: 3, Operator: "+"}
}

func (n *NumberBattle) Mode() Mode { return ModeNumberBattle }

func (n *NumberBattle) Render() string {
	return fmt.Sprintf("monster_health = %s\nattack_power = %s\ndamage = monster_health %s attack_power\nprint(damage)",
		formatNumber(n.Num1), formatNumber(n.Num2), n.Operator)
}

// formatNumber prints integers without a decimal point.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SetNumbers edits both operands and clears the last result.
func (n *NumberBattle) SetNumbers(num1, num2 float64) {
	n.Num1, n.Num2 = num1, num2
	n.Result = nil
}

func (n *NumberBattle) SetOperator(op string) error {
	op = strings.TrimSpace(op)
	for _, o := range Operators {
		if o == op {
			n.Operator = op
			n.Result = nil
			return nil
		}
	}
	return ErrInvalidInput
}

// SetTargetMode toggles target mode. Entering it picks a target when none has
// been chosen yet (a target of zero counts as "none").
func (n *NumberBattle) SetTargetMode(on bool, rnd Rand) {
	n.TargetMode = on
	if !on {
		n.Message = ""
		return
	}
	if n.Target == 0 {
		n.newTarget(rnd)
	}
}

func (n *NumberBattle) newTarget(rnd Rand) {
	a := rnd.IntN(10) + 1
	b := rnd.IntN(10) + 1
	switch rnd.IntN(3) {
	case 0:
		n.Target = a + b
	case 1:
		n.Target = a - b
	default:
		n.Target = a * b
	}
	n.Result = nil
	n.Message = ""
	n.RetargetAt = time.Time{}
}

// Attack evaluates the expression. In target mode a hit schedules a new
// target for now+delay; see Settle. It reports whether the target was hit.
func (n *NumberBattle) Attack(now time.Time, delay time.Duration) bool {
	var res float64
	switch n.Operator {
	case "+":
		res = n.Num1 + n.Num2
	case "-":
		res = n.Num1 - n.Num2
	case "*":
		res = n.Num1 * n.Num2
	case "/":
		if n.Num2 == 0 {
			n.Result = nil
			n.Message = messageDivByZero
			return false
		}
		res = math.Round(n.Num1/n.Num2*100) / 100
	}
	n.Result = &res

	if !n.TargetMode {
		return false
	}
	if res == float64(n.Target) {
		n.Message = messageHit
		n.RetargetAt = now.Add(delay)
		return true
	}
	n.Message = messageMiss
	return false
}

// Settle picks the next target once a scheduled retarget is due.
func (n *NumberBattle) Settle(now time.Time, rnd Rand) bool {
	if n.RetargetAt.IsZero() || now.Before(n.RetargetAt) {
		return false
	}
	n.newTarget(rnd)
	return true
}
