// internal/httpserver/routes_daily.go
//
// HTTP routes for the Daily Bug Challenge.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's challenge
//   - POST /daily/check       → submit a fix for today's challenge
//   - GET  /daily/leaderboard → top 20 solves for today (or ?date=YYYY-MM-DD)
//
// Each learner can record one solve per day (enforced by DB + in-memory play).
// Plays are held in memory while in progress and persisted on the first solve.
// The challenge is chosen deterministically from the date and DAILY_SALT.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/daily"
	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/progress"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	salt  string
	plays map[string]*dailyPlay // keyed by player|date
	mu    sync.Mutex            // guards plays and their fields
}

// dailyPlay is an in-progress attempt at today's challenge.
type dailyPlay struct {
	Player   string
	Date     string
	Index    int
	Start    time.Time
	Attempts int
	Solved   bool
}

func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		salt:  s.cfg.DailySalt,
		plays: make(map[string]*dailyPlay),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/check", dd.handleCheck)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key, challenge index and challenge.
func (d *dailyServer) today() (string, int, game.Challenge, error) {
	now := d.srv.now()
	idx, ch, err := daily.Pick(d.srv.content.Challenges, now, d.salt)
	return daily.DateKey(now), idx, ch, err
}

// playerID is the learner id, or the anon cookie for guests.
func playerID(o progress.Owner) string {
	if o.LearnerID != "" {
		return o.LearnerID
	}
	return o.AnonID
}

// dailyChallenge is the public part of the challenge: no accepted fixes.
type dailyChallenge struct {
	BrokenCode string `json:"brokenCode"`
	Hint       string `json:"hint"`
}

type dailyNewRes struct {
	Date      string         `json:"date"`
	Challenge dailyChallenge `json:"challenge"`
	Solved    bool           `json:"solved"`
	Attempts  int            `json:"attempts"`
}

// handleNew reports whether today's challenge is already solved and
// otherwise starts (or resumes) the in-memory play.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid := playerID(d.srv.owner(w, r))
	date, idx, ch, err := d.today()
	if err != nil {
		writeError(w, err)
		return
	}
	res := dailyNewRes{Date: date, Challenge: dailyChallenge{BrokenCode: ch.BrokenCode, Hint: ch.Hint}}

	solved, err := d.srv.daily.AlreadySolved(r.Context(), pid, date)
	if err != nil {
		writeError(w, err)
		return
	}
	if solved {
		res.Solved = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	key := pid + "|" + date
	d.mu.Lock()
	p, ok := d.plays[key]
	if !ok {
		for k, old := range d.plays {
			if old.Date != date {
				delete(d.plays, k)
			}
		}
		p = &dailyPlay{Player: pid, Date: date, Index: idx, Start: d.srv.now()}
		d.plays[key] = p
	}
	res.Attempts = p.Attempts
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

type dailyCheckRes struct {
	State    string        `json:"state"` // in_progress | solved | locked
	Feedback game.Feedback `json:"feedback"`
	Attempts int           `json:"attempts"`
}

// handleCheck compares a fix with today's accepted answers. The first solve
// is stored and recorded as Bug Smash progress; later checks report locked.
func (d *dailyServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req codeReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	owner := d.srv.owner(w, r)
	pid := playerID(owner)
	date, _, ch, err := d.today()
	if err != nil {
		writeError(w, err)
		return
	}

	d.mu.Lock()
	p, ok := d.plays[pid+"|"+date]
	if !ok {
		d.mu.Unlock()
		writeJSON(w, http.StatusConflict, errorBody{Error: "no_play", Message: "start today's challenge first"})
		return
	}
	if p.Solved {
		attempts := p.Attempts
		d.mu.Unlock()
		writeJSON(w, http.StatusOK, dailyCheckRes{State: "locked", Feedback: game.FeedbackSuccess, Attempts: attempts})
		return
	}
	p.Attempts++
	won := game.Matches(req.Code, ch.CorrectCode...)
	if won {
		p.Solved = true
	}
	attempts, elapsed, idx := p.Attempts, d.srv.now().Sub(p.Start), p.Index
	d.mu.Unlock()

	d.srv.metrics.Check(game.ModeBugSmash, won)
	if !won {
		writeJSON(w, http.StatusOK, dailyCheckRes{State: "in_progress", Feedback: game.FeedbackFail, Attempts: attempts})
		return
	}

	stored, err := d.srv.daily.InsertResult(r.Context(), daily.Result{
		LearnerID:      pid,
		Date:           date,
		ChallengeIndex: idx,
		Attempts:       attempts,
		ElapsedMs:      elapsed.Milliseconds(),
	})
	if err != nil {
		log.Warn().Err(err).Str("player", pid).Msg("insert daily result")
	}
	if stored {
		d.srv.record(r.Context(), owner, game.ModeBugSmash, "daily:"+date)
	}
	writeJSON(w, http.StatusOK, dailyCheckRes{State: "solved", Feedback: game.FeedbackSuccess, Attempts: attempts})
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_input", Message: "date must be YYYY-MM-DD"})
		return
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
