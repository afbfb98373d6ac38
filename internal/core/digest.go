package core

// DigestResult is the final, read-only snapshot of a session's rolling
// checksums, produced once acquisition completes.
type DigestResult struct {
	CRC32 uint32

	// MD5/SHA1 are populated only when RipOptions.CalcChecksums was set;
	// both are hex-encoded, lowercase.
	MD5  string
	SHA1 string

	// CRC100000 is the CRC32 of exactly the first 1 MiB of output, used
	// as the Datel database's mid-rip identification key. Zero if fewer
	// than 1 MiB were ever written.
	CRC100000    uint32
	HasCRC100000 bool
}
