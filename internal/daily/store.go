package daily

import (
	"context"
	"database/sql"
)

// Result is one learner's solve of the daily challenge.
type Result struct {
	LearnerID      string `json:"learnerId"`
	Date           string `json:"date"`
	ChallengeIndex int    `json:"challengeIndex"`
	Attempts       int    `json:"attempts"`
	ElapsedMs      int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadySolved reports whether the learner has a result for date.
func (s *Store) AlreadySolved(ctx context.Context, learnerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE learner_id=? AND date=?`,
		learnerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r. A second result for the same learner and date is
// ignored; it reports whether r was stored.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results (learner_id, date, challenge_index, attempts, elapsed_ms)
		 VALUES (?,?,?,?,?)`,
		r.LearnerID, r.Date, r.ChallengeIndex, r.Attempts, r.ElapsedMs,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// LBRow is one leaderboard line. Name is empty for guests.
type LBRow struct {
	Name      string `json:"name,omitempty"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard lists the best results for date: fewest attempts, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(l.username, ''), d.attempts, d.elapsed_ms
		 FROM daily_results d
		 LEFT JOIN learners l ON l.id = d.learner_id
		 WHERE d.date=?
		 ORDER BY d.attempts ASC, d.elapsed_ms ASC, d.created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Name, &r.Attempts, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
