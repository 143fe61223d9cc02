package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/config"
	"github.com/yildizm/ChatLens/internal/emoji"
	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/monitor"
	"github.com/yildizm/ChatLens/internal/surface"
	"github.com/yildizm/ChatLens/internal/upload"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Analyze chat exports saved into a folder",
		Long: `Watch a folder and analyze every chat export saved into it.

A file counts as dropped once it has not been written for the settle delay.
Only one analysis runs at a time; files dropped meanwhile are skipped.
Results are printed in the --output format. Press Ctrl+C to stop watching.

Examples:
  chatlens watch ~/Downloads
  chatlens watch --output json ./exports`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	dir := cfg.Upload.DropDir
	if len(args) == 1 {
		dir = args[0]
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("a directory is required (argument or upload.drop_dir)")
	}
	dir = config.ExpandPath(dir)
	if err := validateWatchDirPath(dir); err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger(cmd.ErrOrStderr())
	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}

	return runWatchLoop(ctx, ctrl, surface.New(ctrl, log), log, dir, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runWatchLoop feeds drop folder events to the surface until ctx is done
func runWatchLoop(ctx context.Context, ctrl *analysis.Controller, s *surface.Surface, log *logger.Logger, dir string, cfg *config.Config, out, errOut io.Writer) error {
	unsubscribe := ctrl.Subscribe(func(state analysis.RequestState) {
		reportWatchState(state, out, errOut, log)
	})
	defer unsubscribe()

	stats := monitor.NewSessionStats()
	defer ctrl.Subscribe(stats.Observe)()

	zone, err := surface.NewDropZone(surface.DropZoneConfig{
		Dir:         dir,
		SettleDelay: cfg.Upload.SettleDelay,
	}, func(ev surface.Event) {
		handleDropEvent(ctx, s, ev, log)
	}, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(errOut, "%s Watching %s for chat exports\n", emoji.GetEmoji("folder"), zone.Dir())
	fmt.Fprintf(errOut, "Press Ctrl+C to stop...\n\n")

	if err := zone.Run(ctx); err != nil {
		return err
	}

	if isVerbose() {
		fmt.Fprintf(errOut, "\nReceived interrupt signal, stopping...\n")
	}
	// An interrupted request fails promptly; let its result print
	if err := ctrl.Wait(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(errOut, "%s Session: %s\n", emoji.GetEmoji("statistics"), stats.Summary())
	return nil
}

// handleDropEvent forwards one drop folder event and logs rejected drops
func handleDropEvent(ctx context.Context, s *surface.Surface, ev surface.Event, log *logger.Logger) {
	_, err := s.Handle(ctx, ev)
	switch {
	case err == nil:
	case errors.Is(err, surface.ErrBusy):
		log.Warn("analysis already running, skipping %s", fileNames(ev.Files))
	default:
		log.WarnWithFields("skipping dropped file", []logger.Field{logger.File(fileNames(ev.Files)), logger.Error(err)})
	}
}

// reportWatchState prints terminal states. It runs as a controller observer.
func reportWatchState(state analysis.RequestState, out, errOut io.Writer, log *logger.Logger) {
	switch state := state.(type) {
	case analysis.Pending:
		fmt.Fprintf(errOut, "%s Analyzing %s...\n", emoji.GetEmoji("hourglass"), state.FileName)
	case analysis.Succeeded:
		if err := formatAndOutputResults(state, out); err != nil {
			log.Error("failed to print result for %s: %v", state.FileName, err)
		}
	case analysis.Failed:
		fmt.Fprintf(errOut, "%s %s: %s\n", emoji.GetEmoji("error"), state.FileName, state.Message)
	}
}

func fileNames(files []upload.Candidate) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}

// validateWatchDirPath validates that a directory is safe to watch
func validateWatchDirPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch a file, must be a directory")
	}

	return nil
}
