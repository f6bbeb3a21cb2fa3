package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var naturalParser = buildNaturalParser()

func buildNaturalParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseOlderThan turns a `gc --older-than` value into a duration to pass
// to the engine's garbage collector. It accepts a plain Go duration
// ("720h") first, then falls back to natural-language phrases resolved
// relative to now ("2 weeks ago", "30 days ago").
func ParseOlderThan(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	now := time.Now()
	result, err := naturalParser.Parse(s, now)
	if err != nil {
		return 0, fmt.Errorf("parsing %q as a duration or natural-language phrase: %w", s, err)
	}
	if result == nil {
		return 0, fmt.Errorf("could not understand %q as a duration or natural-language phrase", s)
	}

	age := now.Sub(result.Time)
	if age <= 0 {
		return 0, fmt.Errorf("%q resolved to a time in the future, want something in the past", s)
	}
	return age, nil
}
