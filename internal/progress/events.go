package progress

import (
	"context"
	"errors"
	"time"

	"github.com/ashkam58/pythongrade3/internal/game"
)

// Owner identifies who made progress: a registered learner or, failing that,
// the anonymous cookie id.
type Owner struct {
	LearnerID string
	AnonID    string
}

var errNoOwner = errors.New("progress owner has no id")

func (o Owner) clause() (string, any, error) {
	switch {
	case o.LearnerID != "":
		return "learner_id=?", o.LearnerID, nil
	case o.AnonID != "":
		return "anonymous_id=? AND learner_id IS NULL", o.AnonID, nil
	}
	return "", nil, errNoOwner
}

// Event is one recorded success.
type Event struct {
	Mode      game.Mode `json:"mode"`
	Item      string    `json:"item,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the per-mode count of successes.
type Summary struct {
	Total  int               `json:"total"`
	ByMode map[game.Mode]int `json:"byMode"`
}

// Record stores one success at the given time. item optionally names what
// was solved (a challenge id, a recipe title).
func (s *Store) Record(ctx context.Context, o Owner, mode game.Mode, item string, at time.Time) error {
	if o.LearnerID == "" && o.AnonID == "" {
		return errNoOwner
	}
	var learner, anon any
	if o.LearnerID != "" {
		learner = o.LearnerID
	}
	if o.AnonID != "" {
		anon = o.AnonID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_events (learner_id, anonymous_id, mode, item, created_at) VALUES (?,?,?,?,?)`,
		learner, anon, string(mode), item, at.UTC().Format(time.RFC3339))
	return err
}

// Summary counts successes per mode.
func (s *Store) Summary(ctx context.Context, o Owner) (Summary, error) {
	where, arg, err := o.clause()
	if err != nil {
		return Summary{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, COUNT(1) FROM progress_events WHERE `+where+` GROUP BY mode`, arg)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	sum := Summary{ByMode: map[game.Mode]int{}}
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return Summary{}, err
		}
		sum.ByMode[game.Mode(mode)] = n
		sum.Total += n
	}
	return sum, rows.Err()
}

// Recent returns the newest events first.
func (s *Store) Recent(ctx context.Context, o Owner, limit int) ([]Event, error) {
	where, arg, err := o.clause()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, item, created_at FROM progress_events WHERE `+where+` ORDER BY id DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		var mode, created string
		if err := rows.Scan(&mode, &e.Item, &created); err != nil {
			return nil, err
		}
		e.Mode = game.Mode(mode)
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Claim moves anonymous progress to a learner after signup or login.
func (s *Store) Claim(ctx context.Context, anonID, learnerID string) (int64, error) {
	if anonID == "" || learnerID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE progress_events SET learner_id=? WHERE anonymous_id=? AND learner_id IS NULL`, learnerID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
