package core

import "io"

// OutputFile is the minimal surface WriterTask needs from a destination
// file: sequential writes and a close. Chunk rollover opens a new
// OutputFile and hands it to the writer via a SetFile command; it never
// seeks backward.
type OutputFile interface {
	io.Writer
	io.Closer
	Name() string
}

// CommandKind tags a WriterCommand. This replaces the original dumper's
// pointer-pun message union (a C union with 32 bytes of padding) with an
// explicit enum, per the redesign guidance to never guess a command's
// shape from its bytes.
type CommandKind int

const (
	CmdSetFile CommandKind = iota
	CmdWrite
	CmdFlush
	CmdShutdown
)

// WriterCommand is one entry on the writer's inbox. Exactly one of File,
// Block or FlushAck is populated, matching Kind.
type WriterCommand struct {
	Kind CommandKind

	// File is set for CmdSetFile: the new output file to write to. The
	// previously set file is closed by whoever calls SetFile, not by the
	// writer.
	File OutputFile

	// Block is set for CmdWrite: the buffer to write Block.Length bytes
	// from, followed by returning the block to the free queue.
	Block *ReadBlock

	// FlushAck is set for CmdFlush: closed by the writer once every
	// preceding Write has been issued, so the orchestrator can wait on it
	// without a spin-yield loop.
	FlushAck chan struct{}
}
