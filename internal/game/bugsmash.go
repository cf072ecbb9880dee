package game

import (
	"regexp"
	"strings"
)

// Challenge is one broken snippet the learner has to repair.
type Challenge struct {
	ID          int      `json:"id" yaml:"id"`
	BrokenCode  string   `json:"brokenCode" yaml:"broken"`
	CorrectCode []string `json:"correctCode" yaml:"correct"`
	Hint        string   `json:"hint" yaml:"hint"`
	Solved      bool     `json:"solved" yaml:"-"`
}

// BugDraft is a generated broken line plus its hint, before corrections are
// synthesised for it.
type BugDraft struct {
	Broken string `json:"broken"`
	Hint   string `json:"hint"`
}

// FallbackDraft replaces a generated challenge that could not be obtained.
var FallbackDraft = BugDraft{Broken: "print(Hello)", Hint: "Strings need quotes!"}

var printOrParens = regexp.MustCompile(`print|[()]`)

// BugSmash walks the learner through a list of broken print statements.
type BugSmash struct {
	Challenges []Challenge `json:"challenges"`
	CurrentID  int         `json:"currentId"`
	UserCode   string      `json:"userCode"`
	Feedback   Feedback    `json:"feedback"`
}

// NewBugSmash starts on the first challenge. The slice is copied so the
// caller's content is never marked solved.
func NewBugSmash(challenges []Challenge) (*BugSmash, error) {
	if len(challenges) == 0 {
		return nil, ErrEmptyContent
	}
	cs := make([]Challenge, len(challenges))
	for i, c := range challenges {
		c.CorrectCode = append([]string(nil), c.CorrectCode...)
		c.Solved = false
		cs[i] = c
	}
	return &BugSmash{
		Challenges: cs,
		CurrentID:  cs[0].ID,
		UserCode:   cs[0].BrokenCode,
		Feedback:   FeedbackIdle,
	}, nil
}

func (b *BugSmash) Mode() Mode     { return ModeBugSmash }
func (b *BugSmash) Render() string { return b.UserCode }

// Current returns the active challenge, or nil.
func (b *BugSmash) Current() *Challenge {
	return b.find(b.CurrentID)
}

func (b *BugSmash) find(id int) *Challenge {
	for i := range b.Challenges {
		if b.Challenges[i].ID == id {
			return &b.Challenges[i]
		}
	}
	return nil
}

// SetCode updates the editor and clears any previous verdict.
func (b *BugSmash) SetCode(code string) {
	b.UserCode = code
	b.Feedback = FeedbackIdle
}

// Check compares the editor against the accepted fixes for the active
// challenge and marks it solved on a match.
func (b *BugSmash) Check() (bool, error) {
	c := b.Current()
	if c == nil {
		return false, ErrNoChallenge
	}
	if Matches(b.UserCode, c.CorrectCode...) {
		b.Feedback = FeedbackSuccess
		c.Solved = true
		return true, nil
	}
	b.Feedback = FeedbackFail
	return false, nil
}

// CanAdvance reports whether a following challenge exists.
func (b *BugSmash) CanAdvance() bool {
	return b.CurrentID < len(b.Challenges) && b.find(b.CurrentID+1) != nil
}

// Next moves to challenge id+1.
func (b *BugSmash) Next() error {
	if !b.CanAdvance() {
		return ErrNoChallenge
	}
	next := b.find(b.CurrentID + 1)
	b.CurrentID = next.ID
	b.UserCode = next.BrokenCode
	b.Feedback = FeedbackIdle
	return nil
}

// AddGenerated appends a challenge built from d and moves to it. Accepted
// fixes are derived by plain string substitution on the broken line; they are
// not checked for being valid Python.
func (b *BugSmash) AddGenerated(d BugDraft) Challenge {
	c := Challenge{
		ID:         len(b.Challenges) + 1,
		BrokenCode: d.Broken,
		CorrectCode: []string{
			`print("` + printOrParens.ReplaceAllString(d.Broken, "") + `")`,
			strings.Replace(strings.Replace(d.Broken, "(", `("`, 1), ")", `")`, 1),
		},
		Hint: d.Hint,
	}
	b.Challenges = append(b.Challenges, c)
	b.CurrentID = c.ID
	b.UserCode = c.BrokenCode
	b.Feedback = FeedbackIdle
	return c
}
