package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/discripper/discripper/internal/config"
	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/discio"
	"github.com/discripper/discripper/internal/ripsession"
	"github.com/discripper/discripper/internal/tui"
	"github.com/discripper/discripper/internal/verify"
	"github.com/discripper/discripper/internal/verify/datfile"
)

var (
	ripOpticalPaths []string
	ripUsbPaths     []string
	ripOutDir       string
	ripForced       string
	ripDualLayer    string
	ripChunkSize    string
	ripNewDevice    string
	ripAudioOutput  string
	ripAutoEject    bool
	ripChecksums    bool
	ripNoTUI        bool
	ripRedumpDir    string
	ripDatelDir     string
)

var ripCmd = &cobra.Command{
	Use:   "rip",
	Short: "Rip one disc to an image, verifying it against the checksum databases",
	RunE:  runRip,
}

func init() {
	ripCmd.Flags().StringArrayVar(&ripOpticalPaths, "optical", nil, "optical drive device path (repeatable; striped together)")
	ripCmd.Flags().StringArrayVar(&ripUsbPaths, "usb", nil, "USB mass-storage device path (repeatable; striped together)")
	ripCmd.Flags().StringVar(&ripOutDir, "out", ".", "output directory for the image and sidecar files")
	ripCmd.Flags().StringVar(&ripForced, "force", "", "force a profile when automatic detection is ambiguous: dvd-sl, dvd-dl, mini-dvd, audio-cd")
	ripCmd.Flags().StringVar(&ripDualLayer, "dual-layer", "", "override Wii dual-layer sizing: auto, mini, single, dual")
	ripCmd.Flags().StringVar(&ripChunkSize, "chunk-size", "", "output split policy: max, 1gb, 2gb, 3gb")
	ripCmd.Flags().StringVar(&ripNewDevice, "new-device", "", "chunk-rollover device policy: ask, auto")
	ripCmd.Flags().StringVar(&ripAudioOutput, "audio-output", "", "Audio CD output mode: bin, wav, wav-fast, wav-best")
	ripCmd.Flags().BoolVar(&ripAutoEject, "auto-eject", false, "eject the drive once the rip completes")
	ripCmd.Flags().BoolVar(&ripChecksums, "checksums", false, "calculate MD5/SHA-1 in addition to CRC32")
	ripCmd.Flags().BoolVar(&ripNoTUI, "no-tui", false, "disable the interactive progress display")
	ripCmd.Flags().StringVar(&ripRedumpDir, "redump-dir", "", "directory of Redump gzip-compressed DAT files")
	ripCmd.Flags().StringVar(&ripDatelDir, "datel-dir", "", "directory of Datel xz-compressed DAT files")
}

func runRip(cmd *cobra.Command, args []string) error {
	if len(ripOpticalPaths) == 0 && len(ripUsbPaths) == 0 {
		return fmt.Errorf("rip: at least one --optical or --usb device is required")
	}

	forced, err := parseForcedProfile(ripForced)
	if err != nil {
		return err
	}

	overrides, err := buildOverrides()
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	opts, err := config.Resolve(path, overrides)
	if err != nil {
		return err
	}

	source, opticalDrives, err := openSource(ripOpticalPaths, ripUsbPaths, forced == core.ForcedAudioCD)
	if err != nil {
		return err
	}
	defer source.Close()

	var verifier *verify.Verifier
	if ripRedumpDir != "" || ripDatelDir != "" {
		var redump, datel verify.Database
		if ripRedumpDir != "" {
			redump = datfile.NewRedumpStore(ripRedumpDir)
		}
		if ripDatelDir != "" {
			datel = datfile.NewDatelStore(ripDatelDir)
		}
		verifier = verify.New(redump, datel)
	}

	cmd.SilenceUsage = true
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := ripsession.Config{
		Source:     source,
		Options:    opts,
		Forced:     forced,
		OutDir:     ripOutDir,
		Verifier:   verifier,
		Logger:     log.New(os.Stderr, "discripper: ", log.LstdFlags),
		FileOpener: osFileOpener{},
	}

	interactive := !ripNoTUI && isTerminal()
	if !interactive {
		cfg.UI = tui.Null{}
		result, err := ripsession.New(cfg).Run(ctx)
		printResult(result)
		ejectIfRequested(opts, opticalDrives, result)
		return err
	}

	adapter := tui.NewAdapter(tea.WithContext(ctx))
	cfg.UI = adapter
	session := ripsession.New(cfg)

	type outcome struct {
		result ripsession.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := session.Run(ctx)
		adapter.Quit()
		done <- outcome{result, err}
	}()

	if _, err := adapter.Program().Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("rip: TUI error: %w", err)
	}

	out := <-done
	printResult(out.result)
	ejectIfRequested(opts, opticalDrives, out.result)
	return out.err
}

// ejectIfRequested opens the tray of every optical drive once a rip
// completes without cancellation, per RipOptions.AutoEject (spec.md §3).
func ejectIfRequested(opts core.RipOptions, drives []*discio.OpticalDrive, result ripsession.Result) {
	if !opts.AutoEject || result.Cancelled {
		return
	}
	for _, d := range drives {
		if err := d.Eject(); err != nil {
			fmt.Fprintf(os.Stderr, "discripper: eject: %v\n", err)
		}
	}
}

func printResult(r ripsession.Result) {
	fmt.Printf("\nProfile: %s", r.Profile.Kind)
	if r.Profile.GameID != "" {
		fmt.Printf(" (%s)", r.Profile.GameID)
	}
	fmt.Println()
	if r.Cancelled {
		fmt.Println("Rip cancelled; partial image kept.")
	}
	for _, p := range r.ImagePaths {
		fmt.Printf("Image:   %s\n", p)
	}
	for _, p := range r.Sidecars {
		fmt.Printf("Sidecar: %s\n", p)
	}
	fmt.Printf("Verify:  %s", r.Verify.Status)
	if r.Verify.CanonicalName != "" {
		fmt.Printf(" (%s)", r.Verify.CanonicalName)
	}
	fmt.Println()
	if len(r.BadRanges.Ranges) > 0 {
		fmt.Printf("Bad ranges: %d\n", len(r.BadRanges.Ranges))
	}
}

func openSource(opticalPaths, usbPaths []string, audioCD bool) (discio.SourceReader, []*discio.OpticalDrive, error) {
	sectorSize := uint32(core.SectorSizeISO)
	if audioCD {
		sectorSize = core.SectorSizeCDDA
	}

	var drives []discio.SourceReader
	var opticalDrives []*discio.OpticalDrive
	for _, p := range opticalPaths {
		d, err := discio.NewOpticalDrive(p, sectorSize)
		if err != nil {
			return nil, nil, fmt.Errorf("rip: open optical drive %s: %w", p, err)
		}
		drives = append(drives, d)
		opticalDrives = append(opticalDrives, d)
	}
	for _, p := range usbPaths {
		d, err := discio.NewUsbMassStorage(p)
		if err != nil {
			return nil, nil, fmt.Errorf("rip: open USB device %s: %w", p, err)
		}
		drives = append(drives, d)
	}

	if len(drives) == 1 {
		return drives[0], opticalDrives, nil
	}
	striper, err := discio.NewStriper(drives)
	return striper, opticalDrives, err
}

func parseForcedProfile(s string) (core.ForcedProfile, error) {
	switch s {
	case "":
		return core.ForcedNone, nil
	case "dvd-sl":
		return core.ForcedDvdVideoSL, nil
	case "dvd-dl":
		return core.ForcedDvdVideoDL, nil
	case "mini-dvd":
		return core.ForcedMiniDvd, nil
	case "audio-cd":
		return core.ForcedAudioCD, nil
	default:
		return 0, fmt.Errorf("rip: unknown --force value %q (want dvd-sl, dvd-dl, mini-dvd, audio-cd)", s)
	}
}

func buildOverrides() (config.Overrides, error) {
	var o config.Overrides

	if ripDualLayer != "" {
		v, err := config.ParseDualLayer(ripDualLayer)
		if err != nil {
			return o, err
		}
		o.DualLayer = &v
	}
	if ripChunkSize != "" {
		v, err := config.ParseChunkSize(ripChunkSize)
		if err != nil {
			return o, err
		}
		o.ChunkSize = &v
	}
	if ripNewDevice != "" {
		v, err := config.ParseNewDevicePolicy(ripNewDevice)
		if err != nil {
			return o, err
		}
		o.NewDevicePerChunk = &v
	}
	if ripAudioOutput != "" {
		v, err := config.ParseAudioOutput(ripAudioOutput)
		if err != nil {
			return o, err
		}
		o.AudioOutput = &v
	}
	if ripAutoEject {
		o.AutoEject = &ripAutoEject
	}
	if ripChecksums {
		o.CalcChecksums = &ripChecksums
	}
	return o, nil
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	return err == nil && (info.Mode()&os.ModeCharDevice) != 0
}
