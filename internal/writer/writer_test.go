package writer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// fakeFile is a hand-written core.OutputFile backed by a bytes.Buffer, with
// an optional short-write/error injection for failure-path tests.
type fakeFile struct {
	buf       bytes.Buffer
	name      string
	shortBy   int
	writeErr  error
	closed    bool
}

func (f *fakeFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	n := len(p) - f.shortBy
	if n < 0 {
		n = 0
	}
	f.buf.Write(p[:n])
	return n, nil
}

func (f *fakeFile) Close() error { f.closed = true; return nil }
func (f *fakeFile) Name() string { return f.name }

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestTaskWritesInOrder(t *testing.T) {
	free := make(chan *core.ReadBlock, core.BlockPoolSize)
	task := NewTask(free)
	ctx, cancel := context.WithCancel(withTimeout(t))

	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	file := &fakeFile{name: "out.iso"}
	task.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: file}

	blocks := []*core.ReadBlock{
		{Data: []byte("AAAA"), Length: 4},
		{Data: []byte("BBBB"), Length: 4},
		{Data: []byte("CCCC"), Length: 4},
	}
	for _, b := range blocks {
		task.Inbox() <- core.WriterCommand{Kind: core.CmdWrite, Block: b}
	}

	for range blocks {
		select {
		case <-free:
		case <-ctx.Done():
			t.Fatal("timed out waiting for blocks to return to free queue")
		}
	}

	if file.buf.String() != "AAAABBBBCCCC" {
		t.Errorf("written data = %q, want AAAABBBBCCCC", file.buf.String())
	}

	ack := make(chan struct{})
	task.Inbox() <- core.WriterCommand{Kind: core.CmdFlush, FlushAck: ack}
	select {
	case <-ack:
	case <-ctx.Done():
		t.Fatal("flush ack never arrived")
	}

	task.Inbox() <- core.WriterCommand{Kind: core.CmdShutdown}
	cancel()
	if err := <-done; err != nil && err != context.Canceled {
		t.Errorf("Run() error = %v, want nil or context.Canceled", err)
	}
}

func TestTaskShortWriteSignalsFailure(t *testing.T) {
	free := make(chan *core.ReadBlock, core.BlockPoolSize)
	task := NewTask(free)
	ctx := withTimeout(t)

	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	file := &fakeFile{name: "out.iso", shortBy: 1}
	task.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: file}
	task.Inbox() <- core.WriterCommand{Kind: core.CmdWrite, Block: &core.ReadBlock{Data: []byte("AAAA"), Length: 4}}

	select {
	case <-task.Failed():
	case <-ctx.Done():
		t.Fatal("timed out waiting for Failed()")
	}
	if !errors.Is(task.Err(), riperr.ErrWriteFailure) {
		t.Errorf("Err() = %v, want wrapping ErrWriteFailure", task.Err())
	}

	if err := <-done; !errors.Is(err, riperr.ErrWriteFailure) {
		t.Errorf("Run() returned %v, want ErrWriteFailure", err)
	}
}

func TestTaskSetFileDoesNotCloseOldHandle(t *testing.T) {
	free := make(chan *core.ReadBlock, core.BlockPoolSize)
	task := NewTask(free)
	ctx := withTimeout(t)

	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	first := &fakeFile{name: "part0.iso"}
	second := &fakeFile{name: "part1.iso"}

	task.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: first}
	task.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: second}
	task.Inbox() <- core.WriterCommand{Kind: core.CmdShutdown}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for shutdown")
	}

	if first.closed {
		t.Error("writer must not close the handle it is replacing")
	}
}
