package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/verify"
	"github.com/discripper/discripper/internal/verify/datfile"
)

var (
	verifyKind      string
	verifyCRC32     string
	verifyMD5       string
	verifyRedumpDir string
	verifyDatelDir  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Look up a checksum against the Redump/Datel databases without ripping",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyKind, "kind", "", "disc kind: gamecube, wii, datel")
	verifyCmd.Flags().StringVar(&verifyCRC32, "crc32", "", "CRC32 checksum, hex")
	verifyCmd.Flags().StringVar(&verifyMD5, "md5", "", "MD5 checksum, hex")
	verifyCmd.Flags().StringVar(&verifyRedumpDir, "redump-dir", "", "directory of Redump gzip-compressed DAT files")
	verifyCmd.Flags().StringVar(&verifyDatelDir, "datel-dir", "", "directory of Datel xz-compressed DAT files")
	verifyCmd.MarkFlagRequired("kind")
}

func runVerify(cmd *cobra.Command, args []string) error {
	kind, err := parseDiscKind(verifyKind)
	if err != nil {
		return err
	}
	if verifyCRC32 == "" && verifyMD5 == "" {
		return fmt.Errorf("verify: one of --crc32 or --md5 is required")
	}
	if verifyRedumpDir == "" && verifyDatelDir == "" {
		return fmt.Errorf("verify: at least one of --redump-dir or --datel-dir is required")
	}

	var redump, datel verify.Database
	if verifyRedumpDir != "" {
		redump = datfile.NewRedumpStore(verifyRedumpDir)
	}
	if verifyDatelDir != "" {
		datel = datfile.NewDatelStore(verifyDatelDir)
	}
	verifier := verify.New(redump, datel)

	digest := core.DigestResult{MD5: strings.ToLower(verifyMD5)}
	if verifyCRC32 != "" {
		v, err := strconv.ParseUint(verifyCRC32, 16, 32)
		if err != nil {
			return fmt.Errorf("verify: --crc32 %q is not valid hex: %w", verifyCRC32, err)
		}
		digest.CRC32 = uint32(v)
	}

	profile := core.DiscProfile{Kind: kind}
	result := verifier.VerifyFinal(profile, digest)

	fmt.Printf("%s", result.Status)
	if result.CanonicalName != "" {
		fmt.Printf(": %s", result.CanonicalName)
	}
	fmt.Println()
	return nil
}

func parseDiscKind(s string) (core.DiscKind, error) {
	switch s {
	case "gamecube":
		return core.KindGameCube, nil
	case "wii":
		return core.KindWii, nil
	case "datel":
		return core.KindDatel, nil
	default:
		return core.KindUnknown, fmt.Errorf("verify: unknown --kind value %q (want gamecube, wii, datel)", s)
	}
}
