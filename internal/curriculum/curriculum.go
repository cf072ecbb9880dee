// internal/curriculum/curriculum.go
//
// Lesson content for the content-driven games.
//
// Responsibilities:
//   - Load bug challenges, recipes and quizzes from a YAML document.
//   - Fall back to the embedded default document when no override file is configured.
//   - Validate content so the games never start on something unplayable.
//
// Environment variables:
//   CURRICULUM_FILE=/path/to/curriculum.yaml
//
// Constraints:
//   • Challenge ids run 1..n in order (Bug Smash advances by id+1).
//   • A recipe solution is a permutation of its step ids.
//   • Default content is parsed once (sync.Once).

package curriculum

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ashkam58/pythongrade3/assets"
	"github.com/ashkam58/pythongrade3/internal/game"
)

// Content is everything the content-driven games need.
type Content struct {
	Challenges []game.Challenge `yaml:"challenges"`
	Recipes    []game.Recipe    `yaml:"recipes"`
	Quizzes    []game.Quiz      `yaml:"quizzes"`
}

var (
	defaultOnce sync.Once
	defaultCur  *Content
	defaultErr  error
)

// Default returns the embedded curriculum.
func Default() (*Content, error) {
	defaultOnce.Do(func() {
		b, err := assets.Curriculum()
		if err != nil {
			defaultErr = fmt.Errorf("read embedded curriculum: %w", err)
			return
		}
		defaultCur, defaultErr = Parse(b)
	})
	return defaultCur, defaultErr
}

// Load reads the curriculum at path, or the embedded default when path is empty.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a curriculum document. Unknown keys are rejected.
func Parse(b []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the content is playable.
func (c *Content) Validate() error {
	var errs []error
	if len(c.Challenges) == 0 {
		errs = append(errs, errors.New("no challenges"))
	}
	for i, ch := range c.Challenges {
		if ch.ID != i+1 {
			errs = append(errs, fmt.Errorf("challenge %d: id %d, want %d", i, ch.ID, i+1))
		}
		if strings.TrimSpace(ch.BrokenCode) == "" {
			errs = append(errs, fmt.Errorf("challenge %d: empty broken code", ch.ID))
		}
		if len(ch.CorrectCode) == 0 {
			errs = append(errs, fmt.Errorf("challenge %d: no accepted fixes", ch.ID))
		}
	}

	if len(c.Recipes) == 0 {
		errs = append(errs, errors.New("no recipes"))
	}
	for _, r := range c.Recipes {
		if len(r.Steps) == 0 {
			errs = append(errs, fmt.Errorf("recipe %q: no steps", r.Title))
			continue
		}
		if !isPermutation(r.Steps, r.Solution) {
			errs = append(errs, fmt.Errorf("recipe %q: solution %q does not use each step once", r.Title, r.Solution))
		}
	}

	if len(c.Quizzes) == 0 {
		errs = append(errs, errors.New("no quizzes"))
	}
	for i, q := range c.Quizzes {
		if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
			errs = append(errs, fmt.Errorf("quiz %d: prompt and answer are required", i))
		}
	}
	return errors.Join(errs...)
}

// isPermutation reports whether solution is the step ids in some order.
// Ids are single characters so their concatenation is unambiguous.
func isPermutation(steps []game.Step, solution string) bool {
	ids := make([]string, len(steps))
	for i, s := range steps {
		if len([]rune(s.ID)) != 1 {
			return false
		}
		ids[i] = s.ID
	}
	sol := strings.Split(solution, "")
	if len(sol) != len(ids) {
		return false
	}
	sort.Strings(ids)
	sort.Strings(sol)
	for i := range ids {
		if ids[i] != sol[i] {
			return false
		}
	}
	return true
}
