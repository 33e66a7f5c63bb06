package routing

import (
	"strconv"
	"strings"

	"github.com/hrygo/taskgpt/ai/internal/strutil"
)

// RuleMatcher answers the inputs that need no model: a bare option number
// or an exact label or alias.
type RuleMatcher struct{}

// NewRuleMatcher creates a rule matcher.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{}
}

// Match returns the option code for input, or 0 when no rule applies.
func (m *RuleMatcher) Match(input string, set OptionSet) int {
	s := strings.Trim(strutil.FoldTitle(input), " .!?")
	if s == "" {
		return 0
	}
	if code, err := strconv.Atoi(s); err == nil {
		if set.Contains(code) {
			return code
		}
		return 0
	}
	return matchLabel(s, set)
}

// matchLabel compares a folded string against labels and aliases.
func matchLabel(folded string, set OptionSet) int {
	for _, o := range set.Options {
		if strutil.FoldTitle(o.Label) == folded {
			return o.Code
		}
		for _, a := range o.Aliases {
			if a == folded {
				return o.Code
			}
		}
	}
	return 0
}
