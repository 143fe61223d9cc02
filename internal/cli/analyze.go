package cli

import (
	"context"
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
	"github.com/yildizm/ChatLens/internal/formatter"
	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/surface"
	"github.com/yildizm/ChatLens/internal/ui"
	"github.com/yildizm/ChatLens/internal/upload"
)

var (
	analyzeNoTUI      bool
	analyzeOutputFile string
	analyzeDropDir    string
	analyzeLogFile    string
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze an exported WhatsApp chat",
		Long: `Upload an exported WhatsApp group chat (.txt, at most 10MB) to the analysis
service and show user activity for the last 7 days.

Without --no-tui an interactive screen opens. Drop or paste a chat file onto
the terminal, or type its path. A file given as argument is analyzed
immediately.

Examples:
  chatlens analyze
  chatlens analyze "WhatsApp Chat with Book Club.txt"
  chatlens analyze --no-tui --output json chat.txt
  chatlens analyze --drop-dir ~/Downloads`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&analyzeDropDir, "drop-dir", "", "also accept chat files saved into this directory")
	cmd.Flags().StringVar(&analyzeLogFile, "log-file", "", "write logs to this file while the interactive screen is open")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if shouldUseTUIMode() {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runInteractive(ctx, cfg, path)
	}

	if len(args) == 0 {
		return fmt.Errorf("a chat file is required with --no-tui")
	}

	log := newLogger(cmd.ErrOrStderr())
	return runHeadless(ctx, cfg, log, args[0], cmd.OutOrStdout())
}

// shouldUseTUIMode reports whether the interactive screen should be used
func shouldUseTUIMode() bool {
	return !analyzeNoTUI && getOutputFormat() == "text" && !isVerbose()
}

// runHeadless validates and analyzes one file, then prints the result
func runHeadless(ctx context.Context, cfg *config.Config, log *logger.Logger, path string, out io.Writer) error {
	candidate, err := upload.CandidateFromPath(config.ExpandPath(path))
	if err != nil {
		return err
	}
	if err := upload.Validate(candidate); err != nil {
		return err
	}

	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}

	log.InfoWithFields("uploading chat", []logger.Field{logger.File(candidate.Name), logger.Size(candidate.SizeBytes)})

	final, err := ctrl.Submit(ctx, candidate)
	if err != nil {
		return err
	}

	switch state := final.(type) {
	case analysis.Succeeded:
		return formatAndOutputResults(state, out)
	case analysis.Failed:
		return fmt.Errorf("%s %s", emoji.GetEmoji("error"), state.Message)
	default:
		return fmt.Errorf("analysis ended in unexpected state %s", final.Phase())
	}
}

// runInteractive opens the upload screen. Logs go to a file or nowhere
// while the screen owns the terminal.
func runInteractive(ctx context.Context, cfg *config.Config, path string) error {
	logPath := analyzeLogFile
	if logPath == "" {
		logPath = cfg.Output.LogFile
	}

	var logOut io.Writer = io.Discard
	if logPath != "" {
		file, err := openLogFile(logPath)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		logOut = file
	}
	log := newLogger(logOut)

	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}

	theme, ok := ui.ThemeByName(cfg.UI.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q", cfg.UI.Theme)
	}

	var drops chan surface.Event
	if dir := analyzeDropDir; dir != "" {
		drops = make(chan surface.Event, 16)
		zone, err := surface.NewDropZone(surface.DropZoneConfig{
			Dir:         config.ExpandPath(dir),
			SettleDelay: cfg.Upload.SettleDelay,
		}, func(ev surface.Event) {
			select {
			case drops <- ev:
			case <-ctx.Done():
			}
		}, log)
		if err != nil {
			return err
		}

		go func() {
			if err := zone.Run(ctx); err != nil {
				log.Error("drop folder stopped: %v", err)
			}
		}()
	}

	opts := ui.Options{
		Theme:       theme,
		ChartWidth:  cfg.UI.ChartWidth,
		InitialPath: path,
	}

	return ui.Run(ctx, ctrl, log, opts, drops)
}

// newController wires the service client to a fresh controller
func newController(cfg *config.Config, log *logger.Logger) (*analysis.Controller, error) {
	client, err := analysis.NewClient(analysis.ClientConfig{BaseURL: cfg.Service.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to create service client: %w", err)
	}
	return analysis.NewController(client, log), nil
}

// formatAndOutputResults formats a result and writes it to the output file or out
func formatAndOutputResults(result analysis.Succeeded, out io.Writer) error {
	formatterInstance, err := formatter.New(getOutputFormat(), !noColor, !isEmojiDisabled())
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}

	output, err := formatterInstance.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if analyzeOutputFile != "" {
		if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
			return err
		}
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Output written to %s\n", analyzeOutputFile)
		}
		return nil
	}

	if _, err := out.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(output) > 0 && !strings.HasSuffix(string(output), "\n") {
		_, _ = io.WriteString(out, "\n")
	}
	return nil
}

func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	// #nosec G304 - path comes from the command line
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}

func openLogFile(path string) (*os.File, error) {
	cleanPath := filepath.Clean(config.ExpandPath(path))
	// #nosec G304 - path comes from the command line or config
	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
