package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/discripper/discripper/internal/ripsession"
)

// Adapter bridges ripsession's synchronous UI calls, made from the rip
// goroutine, to the asynchronous bubbletea Program rendering on its own
// goroutine — the same split internal/cli/scrape/root.go keeps between its
// scrape goroutine and tea.Program.
type Adapter struct {
	program *tea.Program
	shared  *shared
}

// NewAdapter builds an Adapter and its backing tea.Program. The caller runs
// Program().Run() (typically on the main goroutine) while the rip itself
// runs on another, and calls Quit once the rip finishes.
func NewAdapter(opts ...tea.ProgramOption) *Adapter {
	sh := newShared()
	return &Adapter{
		program: tea.NewProgram(NewModel(sh), opts...),
		shared:  sh,
	}
}

// Program returns the backing tea.Program for the caller to Run.
func (a *Adapter) Program() *tea.Program { return a.program }

// Quit stops the program's render loop once the rip has finished.
func (a *Adapter) Quit() { a.program.Send(quitMsg{}) }

func (a *Adapter) ProgressDetailed(p ripsession.Progress) {
	a.program.Send(progressMsg(p))
}

func (a *Adapter) ButtonsPressed() ripsession.Buttons {
	return a.shared.drainButtons()
}

// YesNo blocks until the user answers y or n in the running program.
func (a *Adapter) YesNo(title, sub string) bool {
	resp := a.shared.beginPrompt()
	a.program.Send(promptMsg{title: title, sub: sub})
	answer := <-resp
	a.program.Send(clearPromptMsg{})
	return answer
}

var _ ripsession.UI = (*Adapter)(nil)
