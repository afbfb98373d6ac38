// Package cli is the cobra command tree for discripper, grounded directly
// on the teacher's internal/cli/root.go + subcommand-package layout.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var RootCmd = &cobra.Command{
	Use:   "discripper",
	Short: "Rip GameCube, Wii, DVD-Video and Audio CD discs to disk images",
	Long: `discripper acquires a byte-exact image of an inserted optical disc,
verifying it against the Redump and Datel checksum databases and emitting
the sidecar artifacts (CUE sheet, BCA dump, dump-info report) that match
its profile.`,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: ~/.config/discripper/config.yaml)")
	RootCmd.AddCommand(ripCmd, drivesCmd, verifyCmd)
}

// Execute runs the command tree.
func Execute() error {
	return RootCmd.Execute()
}
