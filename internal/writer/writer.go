// Package writer runs the dedicated output-file goroutine described in
// spec.md §4.5: a single worker that owns the current file handle and
// drains a bounded command inbox, so the rip loop never blocks on disk I/O
// directly.
package writer

import (
	"context"
	"fmt"
	"sync"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// InboxDepth is the writer's command queue depth (spec.md §3's
// MSG_COUNT-sized bounded queues).
const InboxDepth = 8

// Task is the dedicated writer goroutine. It owns the current OutputFile
// exclusively; ownership only changes through a CmdSetFile command.
type Task struct {
	inbox     chan core.WriterCommand
	freeQueue chan<- *core.ReadBlock

	failOnce sync.Once
	failed   chan struct{}
	failErr  error
}

// NewTask builds a writer that returns completed blocks to freeQueue (the
// orchestrator's pool of reusable ReadBlocks).
func NewTask(freeQueue chan<- *core.ReadBlock) *Task {
	return &Task{
		inbox:     make(chan core.WriterCommand, InboxDepth),
		freeQueue: freeQueue,
		failed:    make(chan struct{}),
	}
}

// Inbox returns the channel callers send commands on.
func (t *Task) Inbox() chan<- core.WriterCommand {
	return t.inbox
}

// Failed reports whether a short write has already terminated the writer.
// The rip loop selects on this alongside its own suspension points so a
// write failure is noticed on the loop's very next iteration instead of
// waiting for a free-queue receive that will never come (spec.md §4.5's
// "jam semantics").
func (t *Task) Failed() <-chan struct{} {
	return t.failed
}

// Err returns the error that caused Failed to close, or nil before then.
func (t *Task) Err() error {
	return t.failErr
}

// Run drains the inbox until Shutdown or a write failure. It implements
// spec.md §4.5's command set:
//
//   - SetFile atomically swaps the current output file. The writer never
//     closes the file it is replacing; whoever issued SetFile owns that.
//   - Write writes exactly Block.Length bytes, then returns the block to
//     freeQueue. A short write is terminal: Run records the error, signals
//     Failed, and returns without touching the inbox again.
//   - Flush closes FlushAck once every preceding Write has been issued;
//     since the writer is single-threaded and the inbox is FIFO, reaching
//     the Flush command already implies that.
//   - Shutdown returns cleanly.
func (t *Task) Run(ctx context.Context) error {
	var file core.OutputFile

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-t.inbox:
			switch cmd.Kind {
			case core.CmdSetFile:
				file = cmd.File

			case core.CmdWrite:
				if err := t.write(file, cmd.Block); err != nil {
					t.fail(err)
					return err
				}
				select {
				case t.freeQueue <- cmd.Block:
				case <-ctx.Done():
					return ctx.Err()
				}

			case core.CmdFlush:
				if cmd.FlushAck != nil {
					close(cmd.FlushAck)
				}

			case core.CmdShutdown:
				return nil
			}
		}
	}
}

func (t *Task) write(file core.OutputFile, block *core.ReadBlock) error {
	if file == nil {
		return fmt.Errorf("writer: write with no file set: %w", riperr.ErrWriteFailure)
	}
	n, err := file.Write(block.Bytes())
	if err != nil {
		return fmt.Errorf("writer: write to %s: %w", file.Name(), riperr.ErrWriteFailure)
	}
	if n != block.Length {
		return fmt.Errorf("writer: short write to %s (%d/%d bytes): %w", file.Name(), n, block.Length, riperr.ErrWriteFailure)
	}
	return nil
}

func (t *Task) fail(err error) {
	t.failOnce.Do(func() {
		t.failErr = err
		close(t.failed)
	})
}
