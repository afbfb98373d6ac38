package tui

import (
	"testing"

	"github.com/discripper/discripper/internal/ripsession"
)

func TestNullAnswersYesAndReportsNoButtons(t *testing.T) {
	var n Null
	if !n.YesNo("title", "sub") {
		t.Fatal("Null.YesNo() = false, want true")
	}
	if b := n.ButtonsPressed(); b.B || b.Y {
		t.Fatalf("Null.ButtonsPressed() = %+v, want zero value", b)
	}
	n.ProgressDetailed(ripsession.Progress{Percent: 50})
}
