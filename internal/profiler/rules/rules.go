// Package rules evaluates user-supplied force-profile override expressions
// against a disc's raw boot-sector identity, for discs the automatic
// classifier in internal/profiler leaves as Unknown. profiler.Identify
// applies a forced profile only to discs without the GameCube or Wii magic
// word, so a rule cannot reclassify a magic-matched disc.
package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/discripper/discripper/internal/core"
)

// Context is the set of variables a rule expression may reference.
type Context struct {
	GameID        string `expr:"game_id"`
	InternalTitle string `expr:"internal_title"`
	Unknown       bool   `expr:"unknown"`
}

// Rule pairs a boolean expression with the forced profile to apply when it
// matches. Example expressions:
//   - `game_id startsWith "DTL"` (match discs whose game id carries Datel's prefix)
//   - `unknown and internal_title contains "MINI"` (force Mini DVD on unknown discs)
type Rule struct {
	Expression string
	Forced     core.ForcedProfile
}

type compiledRule struct {
	program *vm.Program
	forced  core.ForcedProfile
	source  string
}

// Set is an ordered list of compiled rules; the first match wins.
type Set struct {
	rules []compiledRule
}

// Compile compiles every rule's expression once so Resolve never pays
// parse/compile cost per disc.
func Compile(rules []Rule) (*Set, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		program, err := expr.Compile(r.Expression, expr.Env(Context{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rules: invalid expression %q: %w", r.Expression, err)
		}
		compiled = append(compiled, compiledRule{program: program, forced: r.Forced, source: r.Expression})
	}
	return &Set{rules: compiled}, nil
}

// Resolve evaluates rules in order and returns the first match's forced
// profile, or core.ForcedNone if no rule matches (or the set is empty/nil).
func (s *Set) Resolve(ctx Context) (core.ForcedProfile, error) {
	if s == nil {
		return core.ForcedNone, nil
	}
	for _, r := range s.rules {
		result, err := expr.Run(r.program, ctx)
		if err != nil {
			return core.ForcedNone, fmt.Errorf("rules: evaluating %q: %w", r.source, err)
		}
		if result.(bool) {
			return r.forced, nil
		}
	}
	return core.ForcedNone, nil
}
