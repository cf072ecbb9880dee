// Package daily picks the Bug Smash challenge of the day and records who
// fixed it.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"time"

	"github.com/ashkam58/pythongrade3/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Pick returns the challenge of the day and its position in cs. Every server
// sharing salt agrees on it: the date key is signed with HMAC-SHA256 and the
// leading 64 bits choose the slot.
func Pick(cs []game.Challenge, day time.Time, salt string) (int, game.Challenge, error) {
	if len(cs) == 0 {
		return 0, game.Challenge{}, game.ErrNoChallenge
	}
	mac := hmac.New(sha256.New, []byte(salt))
	_, _ = io.WriteString(mac, DateKey(day))
	slot := binary.BigEndian.Uint64(mac.Sum(nil)) % uint64(len(cs))
	return int(slot), cs[slot], nil
}
