package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/yildizm/ChatLens/internal/config"
	"github.com/yildizm/ChatLens/internal/emoji"
	"github.com/yildizm/ChatLens/internal/logger"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
	serverURL string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatlens",
		Short: "WhatsApp group chat activity analytics",
		Long: `ChatLens uploads an exported WhatsApp group chat (.txt) to the chat
analysis service and shows who was active over the last 7 days.

Drop or paste a file on the interactive screen, analyze a file directly,
or watch a folder and analyze every chat export saved into it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
			if noColor {
				disableColor()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "analysis service URL (default from config)")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newPingCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ChatLens %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadGlobalConfig loads the configuration once and applies the flags that override it
func loadGlobalConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.Service.URL = serverURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	switch cfg.Output.ColorMode {
	case "never":
		disableColor()
	case "always":
		if !noColor {
			// Honored by the terminal color detection
			_ = os.Setenv("CLICOLOR_FORCE", "1")
		}
	}
	if !cfg.UI.Emoji {
		emoji.SetEmojiDisabled(true)
	}

	globalConfig = cfg
	return cfg, nil
}

// GetGlobalConfig returns the loaded configuration, or the defaults before loading
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// disableColor turns color off for every renderer in the process
func disableColor() {
	noColor = true
	_ = os.Setenv("NO_COLOR", "1")
}

// newLogger creates the command logger writing to w
func newLogger(w io.Writer) *logger.Logger {
	log := logger.NewWithCallback("main", isVerbose)
	log.SetOutput(w)
	return log
}

// Global helpers
func isVerbose() bool {
	return verbose || (globalConfig != nil && globalConfig.Output.Verbose)
}

// getOutputFormat returns the --output flag, falling back to the configured default
func getOutputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	return GetGlobalConfig().Output.DefaultFormat
}

func isEmojiDisabled() bool {
	return emoji.IsEmojiDisabled()
}
