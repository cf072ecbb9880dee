package game

import "strings"

// Step is one line of a recipe program.
type Step struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Recipe is a set of steps and the id order that cooks it correctly.
type Recipe struct {
	Title    string `json:"title" yaml:"title"`
	Steps    []Step `json:"steps" yaml:"steps"`
	Solution string `json:"solution" yaml:"solution"`
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

const (
	messageMess       = "Oh no! The robot made a mess! 🤖💥 Try changing the order."
	messageMasterChef = "You are a Master Chef Programmer! 👨‍🍳👩‍🍳"
)

// RobotChef asks the learner to put shuffled print statements in order.
type RobotChef struct {
	Recipes   []Recipe `json:"recipes"`
	Level     int      `json:"level"`
	Steps     []Step   `json:"steps"`
	Completed bool     `json:"completed"`
	Message   string   `json:"message,omitempty"`
}

// NewRobotChef starts on the first recipe with its steps shuffled.
func NewRobotChef(recipes []Recipe, rnd Rand) (*RobotChef, error) {
	if len(recipes) == 0 {
		return nil, ErrEmptyContent
	}
	r := &RobotChef{Recipes: recipes}
	r.Steps = shuffled(recipes[0].Steps, rnd)
	return r, nil
}

// shuffled returns a shuffled copy. The result may equal the solved order.
func shuffled(steps []Step, rnd Rand) []Step {
	out := append([]Step(nil), steps...)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (r *RobotChef) Mode() Mode { return ModeRobotChef }

func (r *RobotChef) Render() string {
	lines := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		lines[i] = s.Text
	}
	return strings.Join(lines, "\n")
}

// Recipe returns the recipe being cooked.
func (r *RobotChef) Recipe() Recipe { return r.Recipes[r.Level] }

// Order is the concatenation of the current step ids.
func (r *RobotChef) Order() string {
	var b strings.Builder
	for _, s := range r.Steps {
		b.WriteString(s.ID)
	}
	return b.String()
}

// Move swaps the step at index with its neighbour. Moving past either end is
// a no-op, but any move marks the recipe unsolved.
func (r *RobotChef) Move(index int, dir Direction) error {
	if index < 0 || index >= len(r.Steps) {
		return ErrOutOfRange
	}
	switch dir {
	case Up:
		if index > 0 {
			r.Steps[index], r.Steps[index-1] = r.Steps[index-1], r.Steps[index]
		}
	case Down:
		if index < len(r.Steps)-1 {
			r.Steps[index], r.Steps[index+1] = r.Steps[index+1], r.Steps[index]
		}
	default:
		return ErrInvalidInput
	}
	r.Completed = false
	r.Message = ""
	return nil
}

// Cook runs the program and reports whether the order is correct.
func (r *RobotChef) Cook() bool {
	r.Completed = r.Order() == r.Recipe().Solution
	if r.Completed {
		r.Message = ""
	} else {
		r.Message = messageMess
	}
	return r.Completed
}

// NextRecipe advances to the following recipe, wrapping after the last one,
// and reshuffles its steps. It reports whether the list wrapped.
func (r *RobotChef) NextRecipe(rnd Rand) (bool, error) {
	if !r.Completed {
		return false, ErrNotSolved
	}
	wrapped := r.Level == len(r.Recipes)-1
	r.Level = (r.Level + 1) % len(r.Recipes)
	r.Steps = shuffled(r.Recipes[r.Level].Steps, rnd)
	r.Completed = false
	r.Message = ""
	if wrapped {
		r.Message = messageMasterChef
	}
	return wrapped, nil
}
