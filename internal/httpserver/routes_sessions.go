// internal/httpserver/routes_sessions.go
//
// Session lifecycle, navigation and the tutor.
//   - POST   /sessions                 → new session on the menu
//   - GET    /sessions/{id}            → current view (settles due follow-ups)
//   - DELETE /sessions/{id}
//   - POST   /sessions/{id}/navigate   → {mode}
//   - POST   /sessions/{id}/tutor      → {question}; responds after the reply
//
// Game routes live in routes_games.go.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/metrics"
	"github.com/ashkam58/pythongrade3/internal/progress"
	"github.com/ashkam58/pythongrade3/internal/session"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

// sessionView is returned by every session route.
type sessionView struct {
	ID      string        `json:"id"`
	Mode    game.Mode     `json:"mode"`
	Context string        `json:"context"`
	Code    string        `json:"code"`
	Game    game.Game     `json:"game,omitempty"`
	Tutor   *tutor.Widget `json:"tutor,omitempty"`
}

func viewOf(s *session.Session) sessionView {
	return sessionView{
		ID:      s.ID,
		Mode:    s.Mode,
		Context: s.ContextLabel(),
		Code:    s.Code,
		Game:    s.Active(),
		Tutor:   s.Tutor,
	}
}

func (s *Server) mountSessions(r chi.Router) {
	r.Post("/sessions", s.handleNewSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/navigate", s.handleNavigate)
		r.Post("/tutor", s.handleTutor)
		s.mountGames(r)
	})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(s.now())
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(*session.Session) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type navigateReq struct {
	Mode game.Mode `json:"mode"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var replaced string
	sess, err := s.withSession(r.Context(), chi.URLParam(r, "id"), func(sess *session.Session) error {
		old := ""
		if sess.Tutor != nil {
			old = sess.Tutor.ID
		}
		if err := sess.Navigate(req.Mode, s.content, s.rnd); err != nil {
			return err
		}
		replaced = old
		s.metrics.Navigate(req.Mode)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// Replies for the old widget would be dropped; stop waiting for them.
	if replaced != "" {
		if n := s.calls.cancel(replaced); n > 0 {
			log.Debug().Str("session", sess.ID).Int("calls", n).Msg("cancelled tutor calls for replaced widget")
		}
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// withSession loads the session under its lock, settles any due follow-up,
// runs fn and saves the result. With a Locker the session is also locked
// across processes. ctx is used for the store; fn errors are returned after
// the save. The returned session is a private copy owned by the caller.
func (s *Server) withSession(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	if s.locker != nil {
		release, err := s.locker.Lock(ctx, id)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess.Settle(now, s.rnd)
	fnErr := fn(sess)
	sess.UpdatedAt = now
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, fnErr
}

// update runs fn through withSession and writes the view or the error.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	sess, err := s.withSession(r.Context(), chi.URLParam(r, "id"), fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

type tutorReq struct {
	Question string `json:"question"`
}

// handleTutor records the question, waits for the assistant outside the
// session lock, then appends the reply if the same widget is still showing.
func (s *Server) handleTutor(w http.ResponseWriter, r *http.Request) {
	var req tutorReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	var (
		ask      tutor.Request
		widgetID string
		asked    bool
	)
	sess, err := s.withSession(r.Context(), id, func(sess *session.Session) error {
		var err error
		ask, widgetID, asked, err = sess.AskTutor(req.Question)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if !asked {
		writeJSON(w, http.StatusOK, viewOf(sess))
		return
	}

	start := time.Now()
	task, remove := s.calls.start(r.Context(), widgetID, func(ctx context.Context) (string, error) {
		return s.assistant.Help(ctx, ask)
	})
	res := task.Wait(r.Context())
	remove()
	s.metrics.AssistantCall(metrics.KindHelp, time.Since(start), res.Err)
	switch {
	case res.OK():
	case errors.Is(res.Err, context.Canceled) && r.Context().Err() == nil:
		log.Debug().Str("session", id).Msg("tutor call cancelled: widget replaced")
	default:
		log.Warn().Err(res.Err).Str("session", id).Msg("tutor call failed")
	}

	// The reply is kept even if the client gave up waiting.
	ctx := context.WithoutCancel(r.Context())
	sess, err = s.withSession(ctx, id, func(sess *session.Session) error {
		if !sess.ResolveTutor(widgetID, res) {
			log.Debug().Str("session", id).Msg("tutor reply dropped: widget replaced")
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// record stores a success for the requester; failures are only logged.
func (s *Server) record(ctx context.Context, o progress.Owner, mode game.Mode, item string) {
	if err := s.learners.Record(ctx, o, mode, item, s.now()); err != nil {
		log.Warn().Err(err).Str("mode", string(mode)).Msg("record progress")
	}
}
