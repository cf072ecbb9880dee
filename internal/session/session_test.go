package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/pythongrade3/internal/curriculum"
	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

// keepOrder never reorders and always draws zero.
type keepOrder struct{}

func (keepOrder) IntN(int) int                { return 0 }
func (keepOrder) Shuffle(int, func(i, j int)) {}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func content(t *testing.T) *curriculum.Content {
	t.Helper()
	c, err := curriculum.Default()
	require.NoError(t, err)
	return c
}

func TestNewSessionStartsOnMenu(t *testing.T) {
	s := New(t0)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, game.ModeMenu, s.Mode)
	assert.Nil(t, s.Active())
	assert.Nil(t, s.Tutor)
	assert.Equal(t, "Python Coding Menu", s.ContextLabel())
}

func TestNavigateRendersEveryGame(t *testing.T) {
	c := content(t)
	for _, m := range game.Modes {
		t.Run(string(m), func(t *testing.T) {
			s := New(t0)
			require.NoError(t, s.Navigate(m, c, keepOrder{}))
			g := s.Active()
			require.NotNil(t, g)
			assert.Equal(t, m, g.Mode())
			assert.Equal(t, g.Render(), s.Code)
			require.NotNil(t, s.Tutor)
			assert.Equal(t, tutor.Greeting, s.Tutor.Messages[0].Text)
		})
	}
}

func TestNavigateInvalidMode(t *testing.T) {
	s := New(t0)
	assert.ErrorIs(t, s.Navigate("arcade", content(t), keepOrder{}), ErrInvalidMode)
	assert.Equal(t, game.ModeMenu, s.Mode)
}

func TestNavigateBackToMenuKeepsCode(t *testing.T) {
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModeTalkingBox, content(t), keepOrder{}))
	require.NoError(t, s.Navigate(game.ModeMenu, content(t), keepOrder{}))

	assert.Equal(t, game.ModeMenu, s.Mode)
	assert.Nil(t, s.TalkingBox)
	assert.Nil(t, s.Tutor)
	assert.Equal(t, game.DefaultTalkingBoxCode, s.Code)
}

func TestReenteringGameStartsFresh(t *testing.T) {
	c := content(t)
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModePasswordGate, c, keepOrder{}))
	require.NoError(t, Apply(s, func(g *game.PasswordGate) error {
		g.SetPassword("Melon")
		return nil
	}))
	oldWidget := s.Tutor.ID

	require.NoError(t, s.Navigate(game.ModePasswordGate, c, keepOrder{}))
	assert.Equal(t, "guest", s.PasswordGate.Password)
	assert.NotEqual(t, oldWidget, s.Tutor.ID)
}

func TestApplyRerenders(t *testing.T) {
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModeTrafficControl, content(t), keepOrder{}))

	require.NoError(t, Apply(s, func(g *game.TrafficControl) error {
		return g.SetLight(game.LightYellow)
	}))
	assert.Contains(t, s.Code, `light = "yellow"`)
}

func TestApplyWrongMode(t *testing.T) {
	s := New(t0)
	err := Apply(s, func(g *game.TalkingBox) error { return nil })
	assert.ErrorIs(t, err, ErrWrongMode)

	require.NoError(t, s.Navigate(game.ModeBugSmash, content(t), keepOrder{}))
	err = Apply(s, func(g *game.TalkingBox) error { return nil })
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestApplyErrorSkipsRender(t *testing.T) {
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModeAdventureFork, content(t), keepOrder{}))
	before := s.Code

	boom := errors.New("boom")
	err := Apply(s, func(g *game.AdventureFork) error {
		g.Path = game.PathRight
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Code)
}

func TestSettleAdvancesQuiz(t *testing.T) {
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModeTreasureBoxes, content(t), keepOrder{}))
	require.NoError(t, Apply(s, func(g *game.TreasureBoxes) error {
		g.SetAnswer("20")
		g.CheckQuiz(t0, 1500*time.Millisecond)
		return nil
	}))

	assert.False(t, s.Settle(t0.Add(time.Second), keepOrder{}))
	assert.Equal(t, 0, s.TreasureBoxes.QuizIndex)

	assert.True(t, s.Settle(t0.Add(1500*time.Millisecond), keepOrder{}))
	assert.Equal(t, 1, s.TreasureBoxes.QuizIndex)
	assert.Equal(t, game.QuizIdle, s.TreasureBoxes.QuizStatus)
}

func TestSettleOnMenuIsNoop(t *testing.T) {
	assert.False(t, New(t0).Settle(t0, keepOrder{}))
}

func TestTutorRoundTrip(t *testing.T) {
	s := New(t0)
	_, _, _, err := s.AskTutor("hello?")
	assert.ErrorIs(t, err, ErrNoTutor)

	require.NoError(t, s.Navigate(game.ModeTalkingBox, content(t), keepOrder{}))

	_, _, ok, err := s.AskTutor("  ")
	require.NoError(t, err)
	assert.False(t, ok)

	req, wid, ok, err := s.AskTutor("why no sound?")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tutor.Request{
		Context:  "Learning Python print() function",
		Code:     game.DefaultTalkingBoxCode,
		Question: "why no sound?",
	}, req)
	assert.True(t, s.Tutor.Busy)

	assert.True(t, s.ResolveTutor(wid, tutor.Result{Text: "Press Run! 🚀"}))
	assert.Equal(t, "Press Run! 🚀", s.Tutor.Last().Text)
	assert.False(t, s.Tutor.Busy)
}

func TestTutorReplyDroppedAfterNavigation(t *testing.T) {
	c := content(t)
	s := New(t0)
	require.NoError(t, s.Navigate(game.ModeTalkingBox, c, keepOrder{}))
	_, wid, ok, err := s.AskTutor("question")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Navigate(game.ModeBugSmash, c, keepOrder{}))
	assert.False(t, s.ResolveTutor(wid, tutor.Result{Text: "late"}))
	assert.Len(t, s.Tutor.Messages, 1)
}
