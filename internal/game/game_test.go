package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand never shuffles and returns queued values from IntN.
type fixedRand struct{ ints []int }

func (f *fixedRand) IntN(n int) int {
	if len(f.ints) == 0 {
		return 0
	}
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v % n
}

func (f *fixedRand) Shuffle(int, func(i, j int)) {}

// reverseRand "shuffles" by reversing.
type reverseRand struct{ fixedRand }

func (reverseRand) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func sandwich() Recipe {
	return Recipe{
		Title: "Sandwich Routine",
		Steps: []Step{
			{ID: "1", Text: `print("Put bread on plate")`},
			{ID: "2", Text: `print("Spread peanut butter")`},
			{ID: "3", Text: `print("Put jelly on bread")`},
			{ID: "4", Text: `print("Put bread on top")`},
			{ID: "5", Text: `print("Eat sandwich")`},
		},
		Solution: "12345",
	}
}

func TestMatches(t *testing.T) {
	accepted := []string{`print("Hello World")`, `print('Hello World')`}

	t.Run("whitespace variations of each accepted answer match", func(t *testing.T) {
		for _, a := range accepted {
			assert.True(t, Matches(a, accepted...))
			assert.True(t, Matches(" "+a+"\n", accepted...))
			assert.True(t, Matches("print ( "+a[6:len(a)-1]+" )", accepted...))
			assert.True(t, Matches("\tprint(\n"+a[6:], accepted...))
		}
	})

	t.Run("internal spaces are ignored on both sides", func(t *testing.T) {
		assert.True(t, Matches(`print( "Hello World" )`, `print("Hello World")`))
		assert.True(t, Matches(`print("HelloWorld")`, `print("Hello World")`))
	})

	t.Run("case and content differences do not match", func(t *testing.T) {
		assert.False(t, Matches(`Print("Hello World")`, accepted...))
		assert.False(t, Matches(`print(Hello World)`, accepted...))
		assert.False(t, Matches("", accepted...))
		assert.False(t, Matches(`print("Hello World")`))
	})
}

func TestModeLabels(t *testing.T) {
	assert.Equal(t, "Python Coding Menu", ModeMenu.ContextLabel())
	assert.Equal(t, "Learning Python 'elif' conditions", ModeTrafficControl.ContextLabel())
	for _, m := range Modes {
		assert.True(t, m.Valid())
		assert.NotEqual(t, "Python Coding Menu", m.ContextLabel(), m)
	}
	assert.Len(t, Modes, 9)
	assert.False(t, Mode("LEVEL_9").Valid())
}

func TestTalkingBox(t *testing.T) {
	cases := []struct {
		code   string
		output string
		err    string
	}{
		{code: `print("Hello World")`, output: "Hello World"},
		{code: `  print ( 'Hi there' )  `, output: "Hi there"},
		{code: `print("")`, output: ""},
		{code: `print("Cat')`, err: `I don't understand that command yet. Try print("text")`},
		{code: `print "Cool"`, err: "Missing parenthesis!"},
		{code: `print(Hello)`, err: "Missing quotes around the text!"},
		{code: `say("hi")`, err: `I don't understand that command yet. Try print("text")`},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			box := NewTalkingBox()
			box.SetCode(tc.code)
			ok := box.Run()
			assert.Equal(t, tc.code, box.Render())
			if tc.err != "" {
				assert.False(t, ok)
				assert.Equal(t, tc.err, box.Error)
				assert.Empty(t, box.Output)
				return
			}
			assert.True(t, ok)
			assert.Empty(t, box.Error)
			assert.Equal(t, []string{tc.output}, box.Output)
		})
	}
}

func baseChallenges() []Challenge {
	return []Challenge{
		{ID: 1, BrokenCode: "print(Hello World)", CorrectCode: []string{`print("Hello World")`, `print('Hello World')`}, Hint: "Strings need quotes!"},
		{ID: 2, BrokenCode: `prit("Pizza")`, CorrectCode: []string{`print("Pizza")`, `print('Pizza')`}, Hint: "Check the spelling of the command."},
	}
}

func TestBugSmash(t *testing.T) {
	content := baseChallenges()
	b, err := NewBugSmash(content)
	require.NoError(t, err)
	assert.Equal(t, "print(Hello World)", b.Render())

	ok, err := b.Check()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, FeedbackFail, b.Feedback)

	b.SetCode(`print( "Hello World" )`)
	assert.Equal(t, FeedbackIdle, b.Feedback)
	ok, err = b.Check()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, FeedbackSuccess, b.Feedback)
	assert.True(t, b.Challenges[0].Solved)
	assert.False(t, content[0].Solved, "content must not be mutated")

	require.True(t, b.CanAdvance())
	require.NoError(t, b.Next())
	assert.Equal(t, 2, b.CurrentID)
	assert.Equal(t, `prit("Pizza")`, b.Render())
	assert.False(t, b.CanAdvance())
	assert.ErrorIs(t, b.Next(), ErrNoChallenge)

	_, err = NewBugSmash(nil)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestBugSmashAddGenerated(t *testing.T) {
	b, err := NewBugSmash(baseChallenges())
	require.NoError(t, err)

	c := b.AddGenerated(BugDraft{Broken: "print(Banana)", Hint: "Quotes!"})
	assert.Equal(t, 3, c.ID)
	assert.Equal(t, []string{`print("Banana")`, `print("Banana")`}, c.CorrectCode)
	assert.Equal(t, 3, b.CurrentID)
	assert.Equal(t, "print(Banana)", b.UserCode)
	assert.Equal(t, FeedbackIdle, b.Feedback)

	b.SetCode(`print("Banana")`)
	ok, err := b.Check()
	require.NoError(t, err)
	assert.True(t, ok)

	// Degenerate drafts are accepted as-is.
	c = b.AddGenerated(BugDraft{Broken: "hello", Hint: ""})
	assert.Equal(t, []string{`print("hello")`, "hello"}, c.CorrectCode)
}

func TestRobotChef(t *testing.T) {
	r, err := NewRobotChef([]Recipe{sandwich(), {Title: "Two", Steps: []Step{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}}, Solution: "12"}}, &reverseRand{})
	require.NoError(t, err)
	assert.Equal(t, "54321", r.Order())
	assert.False(t, r.Cook())
	assert.Contains(t, r.Message, "mess")

	_, err = r.NextRecipe(&reverseRand{})
	assert.ErrorIs(t, err, ErrNotSolved)

	// Bubble the reversed list back into order with adjacent swaps.
	for i := 0; i < 5; i++ {
		for j := 0; j < 4-i; j++ {
			if r.Steps[j].ID > r.Steps[j+1].ID {
				require.NoError(t, r.Move(j, Down))
			}
		}
	}
	assert.Equal(t, "12345", r.Order())
	assert.True(t, r.Cook())
	assert.True(t, r.Completed)
	assert.True(t, strings.HasPrefix(r.Render(), `print("Put bread on plate")`+"\n"+`print("Spread peanut butter")`))
	assert.Equal(t, 4, strings.Count(r.Render(), "\n"))

	// Any transposition unsolves it.
	require.NoError(t, r.Move(2, Up))
	assert.False(t, r.Completed)
	assert.Equal(t, "13245", r.Order())
	assert.False(t, r.Cook())
	require.NoError(t, r.Move(1, Down))
	assert.True(t, r.Cook())

	// Edge moves are no-ops but still reset completion.
	require.NoError(t, r.Move(0, Up))
	assert.Equal(t, "12345", r.Order())
	assert.False(t, r.Completed)
	assert.ErrorIs(t, r.Move(5, Up), ErrOutOfRange)
	assert.ErrorIs(t, r.Move(0, "sideways"), ErrInvalidInput)

	require.True(t, r.Cook())
	wrapped, err := r.NextRecipe(&fixedRand{})
	require.NoError(t, err)
	assert.False(t, wrapped)
	assert.Equal(t, 1, r.Level)
	// An unshuffled order is allowed to equal the solution.
	assert.Equal(t, "12", r.Order())
	assert.False(t, r.Completed)

	require.True(t, r.Cook())
	wrapped, err = r.NextRecipe(&fixedRand{})
	require.NoError(t, err)
	assert.True(t, wrapped)
	assert.Equal(t, 0, r.Level)
	assert.Contains(t, r.Message, "Master Chef")
}

func TestTreasureBoxes(t *testing.T) {
	tb, err := NewTreasureBoxes([]Quiz{
		{Prompt: "x = 10\nx = 20\nprint(x)", Answer: "20"},
		{Prompt: "name = \"Bob\"\nprint(name + name)", Answer: "BobBob"},
	})
	require.NoError(t, err)

	tb.SetName("Ada")
	tb.SetScore(30)
	assert.Equal(t, "player_name = \"Ada\"\nscore = 30\n\nprint(\"Welcome \" + player_name)\nprint(\"Score: \" + str(score))", tb.Render())

	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	delay := 1500 * time.Millisecond

	tb.SetAnswer("10")
	assert.False(t, tb.CheckQuiz(now, delay))
	assert.Equal(t, QuizWrong, tb.QuizStatus)
	tb.SetAnswer(" 20 ")
	assert.Equal(t, QuizIdle, tb.QuizStatus)
	assert.True(t, tb.CheckQuiz(now, delay))
	assert.Equal(t, QuizCorrect, tb.QuizStatus)

	assert.False(t, tb.Settle(now.Add(time.Second), nil))
	assert.Equal(t, 0, tb.QuizIndex)
	assert.True(t, tb.Settle(now.Add(delay), nil))
	assert.Equal(t, 1, tb.QuizIndex)
	assert.Equal(t, "", tb.QuizAnswer)
	assert.Equal(t, QuizIdle, tb.QuizStatus)

	// Case-sensitive, and the index wraps after the last question.
	tb.SetAnswer("bobbob")
	assert.False(t, tb.CheckQuiz(now, delay))
	tb.SetAnswer("BobBob")
	require.True(t, tb.CheckQuiz(now, delay))
	require.True(t, tb.Settle(now.Add(delay), nil))
	assert.Equal(t, 0, tb.QuizIndex)
}

func TestNumberBattle(t *testing.T) {
	n := NewNumberBattle()
	assert.Equal(t, "monster_health = 5\nattack_power = 3\ndamage = monster_health + attack_power\nprint(damage)", n.Render())

	n.Attack(time.Now(), 0)
	require.NotNil(t, n.Result)
	assert.Equal(t, 8.0, *n.Result)

	n.SetNumbers(10, 3)
	assert.Nil(t, n.Result)
	require.NoError(t, n.SetOperator("/"))
	n.Attack(time.Now(), 0)
	assert.Equal(t, 3.33, *n.Result)

	assert.ErrorIs(t, n.SetOperator("%"), ErrInvalidInput)

	n.SetNumbers(1, 0)
	n.Attack(time.Now(), 0)
	assert.Nil(t, n.Result)
	assert.Contains(t, n.Message, "divide by zero")
}

func TestNumberBattleTargetMode(t *testing.T) {
	// a=4 (3+1), b=3 (2+1), op=2 (multiply) -> 12
	rnd := &fixedRand{ints: []int{3, 2, 2, 0, 0, 0}}
	n := NewNumberBattle()
	n.SetTargetMode(true, rnd)
	assert.Equal(t, 12, n.Target)

	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, n.Attack(now, time.Second))
	assert.Equal(t, messageMiss, n.Message)

	n.SetNumbers(6, 2)
	require.NoError(t, n.SetOperator("*"))
	assert.True(t, n.Attack(now, time.Second))
	assert.Equal(t, messageHit, n.Message)

	assert.False(t, n.Settle(now, rnd))
	assert.True(t, n.Settle(now.Add(time.Second), rnd))
	// a=1, b=1, op=0 (plus) -> 2
	assert.Equal(t, 2, n.Target)
	assert.Empty(t, n.Message)
	assert.Nil(t, n.Result)

	n.SetTargetMode(false, rnd)
	assert.Empty(t, n.Message)
	n.SetTargetMode(true, rnd)
	assert.Equal(t, 2, n.Target, "an existing target is kept")
}

func TestInterview(t *testing.T) {
	iv := NewInterview()
	assert.Contains(t, iv.Render(), "name = input()")

	ok, err := iv.Answer("   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, iv.Logs, 1)

	ok, err = iv.Answer("Sam")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = iv.Answer("blue")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, iv.Done())

	texts := make([]string, len(iv.Logs))
	for i, l := range iv.Logs {
		texts[i] = l.Text
	}
	assert.Equal(t, []string{
		"Hello! What is your name?",
		"Sam",
		"Nice to meet you Sam",
		"What is your favorite color?",
		"blue",
		"Wow! blue is beautiful!",
		"Interview complete! Refresh to start again.",
	}, texts)

	_, err = iv.Answer("again")
	assert.ErrorIs(t, err, ErrFinished)

	iv.Restart()
	assert.Equal(t, 0, iv.Step)
	assert.Len(t, iv.Logs, 1)
}

func TestPasswordGate(t *testing.T) {
	g := NewPasswordGate()
	assert.False(t, g.Open)
	assert.Contains(t, g.Render(), `user_input = "guest"`)

	for _, pw := range []string{"MELON", "melon", "MeLoN"} {
		assert.True(t, g.SetPassword(pw), pw)
	}
	assert.False(t, g.SetPassword("lemon"))
	assert.False(t, g.SetPassword(" melon"))
}

func TestAdventureFork(t *testing.T) {
	a := NewAdventureFork()
	assert.Equal(t, PathLeft, a.Path)
	assert.Contains(t, a.Outcome, "Enchanted Forest")
	require.NoError(t, a.SetPath(PathRight))
	assert.Contains(t, a.Outcome, "Crystal Beach")
	assert.Contains(t, a.Render(), `direction = "right"`)
	assert.ErrorIs(t, a.SetPath("up"), ErrInvalidInput)
	assert.Equal(t, PathRight, a.Path)
}

func TestTrafficControl(t *testing.T) {
	tc := NewTrafficControl()
	assert.Equal(t, "Stop! 🛑", tc.Branch)

	require.NoError(t, tc.SetLight(LightYellow))
	assert.Equal(t, "Slow down... ⚠️", tc.Branch)
	assert.Equal(t, "WAIT", tc.Car)

	require.NoError(t, tc.SetLight(LightGreen))
	assert.Equal(t, "Go! 🏎️", tc.Branch)
	assert.Contains(t, tc.Render(), `light = "green"`)

	assert.ErrorIs(t, tc.SetLight("blue"), ErrInvalidInput)
	assert.Equal(t, "Go! 🏎️", BranchFor("blue"), "anything else takes the else branch")
}
