package tui

import "github.com/discripper/discripper/internal/ripsession"

// Null is a headless ripsession.UI for non-interactive runs and tests: it
// discards progress, reports no buttons pressed, and answers every prompt
// affirmatively, grounded on internal/testutil's hand-written-fake style.
type Null struct{}

func (Null) ProgressDetailed(ripsession.Progress) {}
func (Null) ButtonsPressed() ripsession.Buttons   { return ripsession.Buttons{} }
func (Null) YesNo(string, string) bool            { return true }

var _ ripsession.UI = Null{}
