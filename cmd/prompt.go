package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/surprise/internal/output"
	"github.com/bimmerbailey/surprise/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <variant>",
	Short: "Print the prompt for a variant without calling any model",
	Long: `Build and print the instruction text for one of the prompt variants.
Nothing is sent over the network.

Variants: press-release, action-plan, joke, haiku, summary,
tictactoe-move, market-brief

Examples:
  surprise prompt press-release --subject Acme --year 2100 --detail "space expansion"
  surprise prompt action-plan --subject GadgetPro --detail "the buttons are too small"`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

var generateCmd = &cobra.Command{
	Use:   "generate <variant>",
	Short: "Build a prompt and stream the model's reply",
	Long: `Validate the fields, build the prompt for the variant and stream the
configured LLM's answer to stdout.

Examples:
  surprise generate press-release --subject Acme --year 2100 --detail "space expansion"
  surprise generate haiku --subject autumn --provider ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func addPromptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subject", "s", "", "company, product, topic or ticker")
	cmd.Flags().StringP("detail", "d", "", "announcement, feedback or text to summarize")
	cmd.Flags().IntP("year", "y", 0, "year for press releases (0 = omit)")
	cmd.Flags().String("tone", "", "optional style hint, e.g. playful")
}

func init() {
	addPromptFlags(promptCmd)
	addPromptFlags(generateCmd)

	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(generateCmd)
}

// promptRequest reads the variant argument and the shared flags, and
// validates them.
func promptRequest(cmd *cobra.Command, args []string) (prompt.Variant, prompt.Request, error) {
	v, err := prompt.ParseVariant(args[0])
	if err != nil {
		names := make([]string, 0, len(prompt.Variants()))
		for _, known := range prompt.Variants() {
			names = append(names, strings.ReplaceAll(string(known), "_", "-"))
		}
		return "", prompt.Request{}, fmt.Errorf("%w (must be one of: %s)", err, strings.Join(names, ", "))
	}

	subject, _ := cmd.Flags().GetString("subject")
	detail, _ := cmd.Flags().GetString("detail")
	year, _ := cmd.Flags().GetInt("year")
	tone, _ := cmd.Flags().GetString("tone")

	r := prompt.Request{Subject: subject, Detail: detail, Year: year, Tone: tone}
	if err := prompt.Validate(v, r); err != nil {
		return "", prompt.Request{}, err
	}
	return v, r, nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	v, r, err := promptRequest(cmd, args)
	if err != nil {
		return err
	}

	text := prompt.Build(v, r)
	writer := output.New(cmd.OutOrStdout(), outputFormat())
	if writer.Format() == output.FormatJSON {
		return writer.WriteJSON(map[string]any{
			"variant": v,
			"prompt":  text,
			"system":  prompt.Messages(v, r)[0].Content,
		})
	}
	return writer.WriteText(text)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	v, r, err := promptRequest(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := requireProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := chatOptions(cfg)
	stream, err := provider.ChatStream(ctx, prompt.Messages(v, r), opts)
	if err != nil {
		return fmt.Errorf("failed to start LLM stream: %w", err)
	}

	format := outputFormat()
	out := cmd.OutOrStdout()

	var full strings.Builder
	for event := range stream {
		if event.Error != nil {
			if full.Len() > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			return event.Error
		}
		if event.Content != "" {
			if format != output.FormatJSON {
				fmt.Fprint(out, event.Content)
			}
			full.WriteString(event.Content)
		}
	}

	if format == output.FormatJSON {
		return output.New(out, output.FormatJSON).WriteJSON(map[string]any{
			"variant": v,
			"prompt":  prompt.Build(v, r),
			"text":    strings.TrimSpace(full.String()),
			"metadata": map[string]string{
				"provider": cfg.LLM.Provider,
				"model":    opts.Model,
			},
		})
	}
	fmt.Fprintln(out)
	return nil
}
