// Package core holds the plain data types shared across the ripping
// pipeline: disc profiles, resolved options, the pooled read buffer, the
// writer command union, and digest/TOC state. Their methods are small
// helpers (String, TOC arithmetic, bad-range coalescing); the ripping
// logic lives in the packages that consume them.
package core

// DiscKind classifies the console-specific identity of an inserted disc.
type DiscKind int

const (
	KindUnknown DiscKind = iota
	KindGameCube
	KindWii
	KindDatel
	KindOther
)

func (k DiscKind) String() string {
	switch k {
	case KindGameCube:
		return "GameCube"
	case KindWii:
		return "Wii"
	case KindDatel:
		return "Datel"
	case KindOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// ForcedProfile is the user-selected disc profile override used when
// automatic classification can't determine a console-specific kind.
type ForcedProfile int

const (
	ForcedNone ForcedProfile = iota
	ForcedDvdVideoSL
	ForcedDvdVideoDL
	ForcedMiniDvd
	ForcedAudioCD
)

func (f ForcedProfile) String() string {
	switch f {
	case ForcedDvdVideoSL:
		return "DVD-Video (Single Layer)"
	case ForcedDvdVideoDL:
		return "DVD-Video (Dual Layer)"
	case ForcedMiniDvd:
		return "Mini DVD"
	case ForcedAudioCD:
		return "Audio CD"
	default:
		return "None"
	}
}

// Sector sizes understood by SourceReader implementations.
const (
	SectorSizeISO  = 2048
	SectorSizeCDDA = 2352
)

// Disc size constants, in sectors, taken from the original dumper's
// disc-geometry tables (WII_D1_SIZE/WII_D5_SIZE/WII_D9_SIZE/NGC_DISC_SIZE).
const (
	NGCDiscSize = 0x1182400
	WiiD1Size   = 0x118240
	WiiD5Size   = 0x1182400
	WiiD9Size   = 0x1F80A00
)

// DiscProfile identifies one inserted medium. It is created once by the
// profiler after a successful identification pass and is immutable for the
// lifetime of a rip session.
type DiscProfile struct {
	Kind          DiscKind
	Forced        ForcedProfile
	SectorSize    uint32
	EndLBA        uint32
	GameID        string // sanitized, <= 31 chars
	InternalTitle string // NUL-clamped, <= 511 bytes
}

// IsAudioCD reports whether the profile was classified as Audio CD (kind
// Other, forced AudioCd).
func (p DiscProfile) IsAudioCD() bool {
	return p.Kind == KindOther && p.Forced == ForcedAudioCD
}

// CanVerifyAgainstDat reports whether this profile kind has a checksum
// database associated with it (Redump/Datel cover GameCube, Wii, Datel;
// DVD-Video/Audio CD have no database).
func (p DiscProfile) CanVerifyAgainstDat() bool {
	switch p.Kind {
	case KindGameCube, KindWii, KindDatel:
		return true
	default:
		return false
	}
}
