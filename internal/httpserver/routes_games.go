// internal/httpserver/routes_games.go
//
// One POST route per learner operation, all under /sessions/{id}.
// Each route applies the operation to the active game (409 if another game
// is showing), re-renders the code and returns the session view. Successful
// checks are counted in metrics and recorded as progress.

package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/metrics"
	"github.com/ashkam58/pythongrade3/internal/session"
)

// outcome describes what an operation meant for metrics and progress.
type outcome struct {
	checked bool // an answer was checked
	success bool // recorded as progress
	item    string
}

// on adapts a typed game operation to a session operation.
func on[G game.Game](fn func(g G) (outcome, error)) func(*session.Session) (outcome, error) {
	return func(sess *session.Session) (outcome, error) {
		var out outcome
		err := session.Apply(sess, func(g G) error {
			var err error
			out, err = fn(g)
			return err
		})
		return out, err
	}
}

// edit wraps an operation that never checks anything.
func edit[G game.Game](fn func(g G) error) func(*session.Session) (outcome, error) {
	return on(func(g G) (outcome, error) { return outcome{}, fn(g) })
}

// play decodes req (when non-nil), applies op and writes the view.
func (s *Server) play(req any, op func(*session.Session) (outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if req != nil {
			if err := decode(r, req); err != nil {
				writeError(w, err)
				return
			}
		}
		owner := s.owner(w, r)
		var out outcome
		sess, err := s.withSession(r.Context(), chi.URLParam(r, "id"), func(sess *session.Session) error {
			var err error
			out, err = op(sess)
			return err
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if out.checked {
			s.metrics.Check(sess.Mode, out.success)
		}
		if out.success {
			s.record(r.Context(), owner, sess.Mode, out.item)
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

type codeReq struct {
	Code string `json:"code"`
}

type moveReq struct {
	Index     int            `json:"index"`
	Direction game.Direction `json:"direction"`
}

type variablesReq struct {
	Name  *string `json:"name"`
	Score *int    `json:"score"`
}

type answerReq struct {
	Answer string `json:"answer"`
}

type numbersReq struct {
	Num1 *float64 `json:"num1"`
	Num2 *float64 `json:"num2"`
}

type operatorReq struct {
	Operator string `json:"operator"`
}

type targetModeReq struct {
	On bool `json:"on"`
}

type passwordReq struct {
	Password string `json:"password"`
}

type pathReq struct {
	Path game.Path `json:"path"`
}

type lightReq struct {
	Light game.Light `json:"light"`
}

// mountGames registers the game routes. Request structs are allocated per
// request inside each handler.
func (s *Server) mountGames(r chi.Router) {
	// Magic Talking Box
	r.Post("/talking-box/code", func(w http.ResponseWriter, r *http.Request) {
		var req codeReq
		s.play(&req, edit(func(g *game.TalkingBox) error {
			g.SetCode(req.Code)
			return nil
		}))(w, r)
	})
	r.Post("/talking-box/run", s.play(nil, on(func(g *game.TalkingBox) (outcome, error) {
		ok := g.Run()
		return outcome{checked: true, success: ok}, nil
	})))

	// Bug Smash
	r.Post("/bug-smash/code", func(w http.ResponseWriter, r *http.Request) {
		var req codeReq
		s.play(&req, edit(func(g *game.BugSmash) error {
			g.SetCode(req.Code)
			return nil
		}))(w, r)
	})
	r.Post("/bug-smash/check", s.play(nil, on(func(g *game.BugSmash) (outcome, error) {
		ok, err := g.Check()
		return outcome{checked: true, success: ok, item: strconv.Itoa(g.CurrentID)}, err
	})))
	r.Post("/bug-smash/next", s.play(nil, edit(func(g *game.BugSmash) error {
		return g.Next()
	})))
	r.Post("/bug-smash/generate", s.handleGenerateBug)

	// Robot Chef
	r.Post("/robot-chef/move", func(w http.ResponseWriter, r *http.Request) {
		var req moveReq
		s.play(&req, edit(func(g *game.RobotChef) error {
			return g.Move(req.Index, req.Direction)
		}))(w, r)
	})
	r.Post("/robot-chef/cook", s.play(nil, on(func(g *game.RobotChef) (outcome, error) {
		ok := g.Cook()
		return outcome{checked: true, success: ok, item: g.Recipe().Title}, nil
	})))
	r.Post("/robot-chef/next", s.play(nil, edit(func(g *game.RobotChef) error {
		_, err := g.NextRecipe(s.rnd)
		return err
	})))

	// Treasure Boxes
	r.Post("/treasure/variables", func(w http.ResponseWriter, r *http.Request) {
		var req variablesReq
		s.play(&req, edit(func(g *game.TreasureBoxes) error {
			if req.Name != nil {
				g.SetName(*req.Name)
			}
			if req.Score != nil {
				g.SetScore(*req.Score)
			}
			return nil
		}))(w, r)
	})
	r.Post("/treasure/answer", func(w http.ResponseWriter, r *http.Request) {
		var req answerReq
		s.play(&req, edit(func(g *game.TreasureBoxes) error {
			g.SetAnswer(req.Answer)
			return nil
		}))(w, r)
	})
	r.Post("/treasure/check", s.play(nil, on(func(g *game.TreasureBoxes) (outcome, error) {
		idx := g.QuizIndex
		ok := g.CheckQuiz(s.now(), s.cfg.AdvanceDelay)
		return outcome{checked: true, success: ok, item: strconv.Itoa(idx + 1)}, nil
	})))

	// Number Battle
	r.Post("/number-battle/numbers", func(w http.ResponseWriter, r *http.Request) {
		var req numbersReq
		s.play(&req, edit(func(g *game.NumberBattle) error {
			n1, n2 := g.Num1, g.Num2
			if req.Num1 != nil {
				n1 = *req.Num1
			}
			if req.Num2 != nil {
				n2 = *req.Num2
			}
			g.SetNumbers(n1, n2)
			return nil
		}))(w, r)
	})
	r.Post("/number-battle/operator", func(w http.ResponseWriter, r *http.Request) {
		var req operatorReq
		s.play(&req, edit(func(g *game.NumberBattle) error {
			return g.SetOperator(req.Operator)
		}))(w, r)
	})
	r.Post("/number-battle/target-mode", func(w http.ResponseWriter, r *http.Request) {
		var req targetModeReq
		s.play(&req, edit(func(g *game.NumberBattle) error {
			g.SetTargetMode(req.On, s.rnd)
			return nil
		}))(w, r)
	})
	r.Post("/number-battle/attack", s.play(nil, on(func(g *game.NumberBattle) (outcome, error) {
		hit := g.Attack(s.now(), s.cfg.AdvanceDelay)
		return outcome{checked: g.TargetMode, success: hit, item: strconv.Itoa(g.Target)}, nil
	})))

	// Interview Bot
	r.Post("/interview/answer", func(w http.ResponseWriter, r *http.Request) {
		var req answerReq
		s.play(&req, on(func(g *game.Interview) (outcome, error) {
			accepted, err := g.Answer(req.Answer)
			return outcome{success: accepted && g.Done()}, err
		}))(w, r)
	})
	r.Post("/interview/restart", s.play(nil, edit(func(g *game.Interview) error {
		g.Restart()
		return nil
	})))

	// Branching games
	r.Post("/password-gate", func(w http.ResponseWriter, r *http.Request) {
		var req passwordReq
		s.play(&req, on(func(g *game.PasswordGate) (outcome, error) {
			wasOpen := g.Open
			open := g.SetPassword(req.Password)
			return outcome{checked: true, success: open && !wasOpen}, nil
		}))(w, r)
	})
	r.Post("/adventure-fork", func(w http.ResponseWriter, r *http.Request) {
		var req pathReq
		s.play(&req, edit(func(g *game.AdventureFork) error {
			return g.SetPath(req.Path)
		}))(w, r)
	})
	r.Post("/traffic-control", func(w http.ResponseWriter, r *http.Request) {
		var req lightReq
		s.play(&req, edit(func(g *game.TrafficControl) error {
			return g.SetLight(req.Light)
		}))(w, r)
	})
}

// handleGenerateBug asks the assistant for a new challenge outside the lock
// and appends it if Bug Smash is still showing. Any failure substitutes the
// fallback challenge.
func (s *Server) handleGenerateBug(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.withSession(r.Context(), id, func(sess *session.Session) error {
		return session.Apply(sess, func(*game.BugSmash) error { return nil })
	}); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	draft, err := s.assistant.GenerateBug(r.Context())
	s.metrics.AssistantCall(metrics.KindGenerate, time.Since(start), err)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("generate challenge failed; using fallback")
		draft = game.FallbackDraft
	}

	ctx := context.WithoutCancel(r.Context())
	sess, err := s.withSession(ctx, id, func(sess *session.Session) error {
		return session.Apply(sess, func(g *game.BugSmash) error {
			g.AddGenerated(draft)
			return nil
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}
