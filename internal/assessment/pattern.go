package assessment

import (
	"time"

	"github.com/dlclark/regexp2"
)

// patternTimeout bounds a single match so a backtracking pattern cannot
// stall a respondent.
const patternTimeout = 250 * time.Millisecond

// CompilePattern compiles a text validation pattern with ECMAScript
// syntax and semantics, so lookarounds and backreferences are accepted.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = patternTimeout
	return re, nil
}
