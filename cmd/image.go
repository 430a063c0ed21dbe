package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/output"
)

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image from a prompt",
	Long: `Render a prompt with the Gemini image model and write it to a file.
Requires a Gemini key (GEMINI_API_KEY or [gemini] api_key in the secrets file).

Examples:
  surprise image "a lighthouse in a storm" -o lighthouse.png
  surprise image "a cat astronaut" --size 1792x1024`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImage,
}

func init() {
	imageCmd.Flags().StringP("output", "o", "image.png", "file to write the image to")
	imageCmd.Flags().String("size", "1024x1024", "image size (1024x1024, 1792x1024, 1024x1792)")

	rootCmd.AddCommand(imageCmd)
}

// newImageGenerator is replaced in tests.
var newImageGenerator = llm.NewImageGenerator

func runImage(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("image prompt must not be empty")
	}
	path, _ := cmd.Flags().GetString("output")
	size, _ := cmd.Flags().GetString("size")

	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := newImageGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("image generation unavailable: %w", err)
	}

	img, err := gen.GenerateImage(ctx, text, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	out := output.New(cmd.OutOrStdout(), outputFormat())
	if outputFormat() == output.FormatJSON {
		return out.WriteJSON(map[string]any{
			"prompt":    text,
			"size":      size,
			"file":      path,
			"mime_type": img.MIMEType,
			"bytes":     len(img.Data),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(img.Data))
	return nil
}
