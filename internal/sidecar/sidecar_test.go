package sidecar

import (
	"strings"
	"testing"
	"time"

	"github.com/discripper/discripper/internal/core"
)

func TestWAVHeaderSize(t *testing.T) {
	h := WAVHeader(WAVFormat{Channels: 2, SampleRate: 44100}, 0)
	if len(h) != HeaderSize {
		t.Fatalf("len(h) = %d, want %d", len(h), HeaderSize)
	}
	if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" {
		t.Fatalf("unexpected header: %q", h)
	}
}

func TestBuildHeaderPicksRF64Above4GiB(t *testing.T) {
	fmtInfo := WAVFormat{Channels: 2, SampleRate: 44100}

	small := BuildHeader(fmtInfo, 1<<20)
	if string(small[0:4]) != "RIFF" {
		t.Fatalf("expected RIFF header for small size, got %q", small[0:4])
	}

	big := BuildHeader(fmtInfo, 1<<32)
	if string(big[0:4]) != "RF64" {
		t.Fatalf("expected RF64 header for >=4GiB size, got %q", big[0:4])
	}
	if string(big[12:16]) != "WAVE" || string(big[16:20]) != "ds64" {
		t.Fatalf("malformed RF64 header: %q", big)
	}
}

func TestBCABitString(t *testing.T) {
	got := BCABitString([]byte{0b10100000, 0b00000001})
	want := "|_|____________|"
	if got != want {
		t.Fatalf("BCABitString() = %q, want %q", got, want)
	}
}

func TestBuildCUEWithTOC(t *testing.T) {
	toc := &core.AudioToc{
		AlbumPerformer: "ARTIST",
		AlbumTitle:     "DEMO",
		Tracks: []core.AudioTrack{
			{Number: 1, StartFrame: 150},
			{Number: 2, StartFrame: 150 + 2000},
		},
	}
	out := BuildCUE(toc, "ARTIST_-_DEMO.wav", false)

	if !strings.HasPrefix(out, "PERFORMER \"ARTIST\"\r\n") {
		t.Fatalf("missing PERFORMER header line: %q", out)
	}
	if !strings.Contains(out, "FILE \"ARTIST_-_DEMO.wav\" WAVE\r\n") {
		t.Fatalf("missing FILE line: %q", out)
	}
	if !strings.Contains(out, "INDEX 01 00:00:00\r\n") {
		t.Fatalf("expected first track INDEX at 00:00:00 (lead-in subtracted), got %q", out)
	}
	if !strings.Contains(out, "TRACK 02 AUDIO\r\n") {
		t.Fatalf("missing second track: %q", out)
	}
}

func TestBuildCUENoTOC(t *testing.T) {
	out := BuildCUE(nil, "disc1.bin", true)
	want := "FILE \"disc1.bin\" BINARY\r\n  TRACK 01 AUDIO\r\n    INDEX 01 00:00:00\r\n"
	if out != want {
		t.Fatalf("BuildCUE(nil) = %q, want %q", out, want)
	}
}

func TestBuildBadRangeLog(t *testing.T) {
	log := &core.BadRangeLog{}
	log.Add(1000, 2)
	out := BuildBadRangeLog(log)
	if !strings.HasPrefix(out, "# start_lba,length\n") {
		t.Fatalf("missing comment header: %q", out)
	}
	if !strings.Contains(out, "1000,2\n") {
		t.Fatalf("missing range line: %q", out)
	}
}

func TestBuildDumpInfoNotVerified(t *testing.T) {
	info := DumpInfo{
		FileName:      "GAME.iso",
		InternalTitle: "Some Game",
		Digest:        core.DigestResult{CRC32: 0xDEADBEEF},
		Duration:      90 * time.Second,
		Timestamp:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		TotalBytes:    1_459_978_240,
	}
	out := BuildDumpInfo(info)

	for _, want := range []string{"File: GAME.iso", "CRC32: DEADBEEF", "Verified: no", "Duration: 1 min 30 sec"} {
		if !strings.Contains(out, want) {
			t.Fatalf("BuildDumpInfo() missing %q in: %q", want, out)
		}
	}
}
