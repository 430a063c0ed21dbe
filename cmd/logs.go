package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/logtail"
	"github.com/bimmerbailey/surprise/internal/output"
	"github.com/bimmerbailey/surprise/internal/prompt"
	"github.com/bimmerbailey/surprise/internal/redact"
)

var logsCmd = &cobra.Command{
	Use:   "logs [file]",
	Short: "Show the tail of a log file",
	Long: `Print the last lines of a log file, optionally following it like
'tail -f' or asking the model to summarize it. Secrets are redacted before
anything is sent to the model.

A missing file prints "Log file does not exist." and is not an error.
When no file is given, logs.path from the config is used.

Examples:
  surprise logs /var/log/app.log
  surprise logs -n 50 --level warn /var/log/app.log
  surprise logs -f --follow-rotate /var/log/app.log
  surprise logs --color always /var/log/app.log | less -R
  surprise logs --summarize /var/log/app.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func addLogsFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("lines", "n", logtail.DefaultMaxLines, "number of lines to show (<= 0 for the whole file)")
	cmd.Flags().BoolP("follow", "f", false, "keep printing lines as they are appended")
	cmd.Flags().Bool("follow-rotate", false, "follow through log rotations (continue when file is renamed/removed)")
	cmd.Flags().StringP("pattern", "p", "", "only show lines matching regex pattern")
	cmd.Flags().StringP("level", "l", "", "minimum log level to display (debug, info, warn, error, fatal)")
	cmd.Flags().String("color", "auto", "color log levels: auto, always or never")
	cmd.Flags().Bool("summarize", false, "summarize the tail with the configured LLM")
}

func init() {
	addLogsFlags(logsCmd)
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetInt("lines")
	follow, _ := cmd.Flags().GetBool("follow")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")
	patternStr, _ := cmd.Flags().GetString("pattern")
	levelStr, _ := cmd.Flags().GetString("level")
	colorFlag, _ := cmd.Flags().GetString("color")
	summarize, _ := cmd.Flags().GetBool("summarize")

	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	path := cfg.Logs.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no log file given (pass a path or set logs.path)")
	}
	if !cmd.Flags().Changed("lines") && cfg.Logs.MaxLines != 0 {
		lines = cfg.Logs.MaxLines
	}
	if follow && summarize {
		return errors.New("--follow and --summarize cannot be combined")
	}

	var pattern *regexp.Regexp
	if patternStr != "" {
		pattern, err = regexp.Compile(patternStr)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}

	minLevel := config.LevelUnknown
	if levelStr != "" {
		minLevel = config.ParseLevel(levelStr)
		if minLevel == config.LevelUnknown {
			return fmt.Errorf("invalid level: %s", levelStr)
		}
	}

	if summarize {
		return summarizeLog(cmd, cfg, path, lines)
	}

	colorMode := output.ParseColorMode(colorFlag)
	filtered := pattern != nil || minLevel != config.LevelUnknown
	format := outputFormat()
	colorize := output.Colorize(colorMode, cmd.OutOrStdout())
	if !follow && !filtered && !colorize && format == output.FormatText {
		fmt.Fprint(cmd.OutOrStdout(), ensureNewline(logtail.Read(path, lines)))
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(cmd.OutOrStdout(), logtail.MissingFile)
			return nil
		}
		return err
	}

	writer := output.New(cmd.OutOrStdout(), format)

	var collected []logtail.Line
	outputFunc := func(line logtail.Line) error {
		if format == output.FormatText {
			return writer.WriteColoredLine(line, colorMode)
		}
		collected = append(collected, line)
		return nil
	}

	// The follower only reads a tail when asked for a positive count.
	initial := lines
	if initial <= 0 {
		initial = math.MaxInt
	}

	follower := logtail.NewFollower(logtail.Options{
		FilePath:     path,
		Lines:        initial,
		Follow:       follow && format == output.FormatText,
		FollowRotate: followRotate,
		Pattern:      pattern,
		MinLevel:     minLevel,
		OutputFunc:   outputFunc,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = follower.Run(ctx)
	if errors.Is(err, logtail.ErrRotated) {
		fmt.Fprintln(cmd.ErrOrStderr(), "log file rotated; use --follow-rotate to keep following")
		err = nil
	}
	if err != nil {
		return err
	}

	if format != output.FormatText {
		return writer.WriteLines(collected)
	}
	return nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// summarizeLog redacts the tail and asks the model for a summary.
func summarizeLog(cmd *cobra.Command, cfg *config.Config, path string, lines int) error {
	content := logtail.Read(path, lines)
	if logtail.Unreadable(content) {
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to summarize.")
		return nil
	}

	redactor := redact.New(cfg.Redaction.Enabled, cfg.Redaction.Patterns)
	redacted, count := redactor.RedactAndCount(content)

	logger := newLogger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := requireProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	r := prompt.Request{Subject: "the log file " + path, Detail: redacted}
	resp, err := provider.Chat(ctx, prompt.Messages(prompt.VariantSummary, r), chatOptions(cfg))
	if err != nil {
		return fmt.Errorf("summary request failed: %w", err)
	}

	writer := output.New(cmd.OutOrStdout(), outputFormat())
	if writer.Format() == output.FormatJSON {
		return writer.WriteJSON(map[string]any{
			"file":           path,
			"lines":          lines,
			"redacted_count": count,
			"summary":        strings.TrimSpace(resp.Content),
		})
	}
	if count > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d sensitive value(s) redacted before sending.\n", count)
	}
	return writer.WriteText(resp.Content)
}
