package cli

import (
	"os"

	"github.com/discripper/discripper/internal/core"
)

// osFileOpener is the default, OS-backed ripsession.FileOpener.
type osFileOpener struct{}

func (osFileOpener) Create(path string) (core.OutputFile, error) {
	return os.Create(path)
}
