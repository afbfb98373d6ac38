package discio

import (
	"testing"

	"github.com/discripper/discripper/internal/core"
)

func textPacket(packType byte, track byte, block byte, text string) []byte {
	pkt := make([]byte, cdTextPacketSize)
	pkt[0] = packType
	pkt[1] = track
	pkt[2] = block << 4
	copy(pkt[4:16], []byte(text))
	return pkt
}

func TestApplyCDTextPacketsAlbumAndTracks(t *testing.T) {
	var data []byte
	// Album title "DEMO", then track 1 title "Song One"
	data = append(data, textPacket(packTypeTitle, 0, 0, "DEMO\x00Song One\x00")...)
	data = append(data, textPacket(packTypePerformer, 0, 0, "ARTIST\x00Band A\x00")...)

	toc := core.AudioToc{
		Tracks: []core.AudioTrack{{Number: 1}},
	}
	applyCDTextPackets(data, &toc)

	if toc.AlbumTitle != "DEMO" {
		t.Errorf("AlbumTitle = %q, want DEMO", toc.AlbumTitle)
	}
	if toc.AlbumPerformer != "ARTIST" {
		t.Errorf("AlbumPerformer = %q, want ARTIST", toc.AlbumPerformer)
	}
	if toc.Tracks[0].Title != "Song One" {
		t.Errorf("track title = %q, want %q", toc.Tracks[0].Title, "Song One")
	}
	if toc.Tracks[0].Performer != "Band A" {
		t.Errorf("track performer = %q, want %q", toc.Tracks[0].Performer, "Band A")
	}
}

func TestApplyCDTextPacketsIgnoresOtherBlocks(t *testing.T) {
	data := textPacket(packTypeTitle, 0, 1, "OTHERLANG\x00")
	toc := core.AudioToc{}
	applyCDTextPackets(data, &toc)
	if toc.AlbumTitle != "" {
		t.Errorf("expected block != 0 to be ignored, got AlbumTitle=%q", toc.AlbumTitle)
	}
}

func TestSplitNULTerminated(t *testing.T) {
	got := splitNULTerminated([]byte("a\x00bb\x00c"))
	want := []string{"a", "bb", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}
