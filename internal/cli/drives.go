package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/discio"
)

var (
	drivesOpticalPaths []string
	drivesUsbPaths     []string
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Probe the given device paths without ripping",
	Long: `drives opens each device path given via --optical/--usb and reports
whether it responds, without reading any sectors. There is no portable way
to enumerate optical/USB devices across platforms, so the caller names the
candidates (e.g. /dev/sr0, \\.\PhysicalDrive1).`,
	RunE: runDrives,
}

func init() {
	drivesCmd.Flags().StringArrayVar(&drivesOpticalPaths, "optical", nil, "optical drive device path to probe (repeatable)")
	drivesCmd.Flags().StringArrayVar(&drivesUsbPaths, "usb", nil, "USB mass-storage device path to probe (repeatable)")
}

func runDrives(cmd *cobra.Command, args []string) error {
	if len(drivesOpticalPaths) == 0 && len(drivesUsbPaths) == 0 {
		return fmt.Errorf("drives: at least one --optical or --usb path is required")
	}

	for _, p := range drivesOpticalPaths {
		probeDrive(p, "optical", func() (discio.SourceReader, error) {
			return discio.NewOpticalDrive(p, core.SectorSizeISO)
		})
	}
	for _, p := range drivesUsbPaths {
		probeDrive(p, "usb", func() (discio.SourceReader, error) {
			return discio.NewUsbMassStorage(p)
		})
	}
	return nil
}

func probeDrive(path, kind string, open func() (discio.SourceReader, error)) {
	d, err := open()
	if err != nil {
		fmt.Printf("%-8s %-20s unavailable: %v\n", kind, path, err)
		return
	}
	defer d.Close()
	fmt.Printf("%-8s %-20s ok\n", kind, path)
}
