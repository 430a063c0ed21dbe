package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/surprise/internal/output"
	"github.com/bimmerbailey/surprise/internal/session"
)

var jokeCmd = &cobra.Command{
	Use:   "joke <topic>",
	Short: "Tell jokes about a topic without repeating yourself",
	Long: `Ask the model for jokes about a topic. Each joke is checked against the
ones already told in this run; a repeat is retried up to three times.

Examples:
  surprise joke cats
  surprise joke "kubernetes" --count 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJoke,
}

func init() {
	jokeCmd.Flags().IntP("count", "c", 1, "number of jokes to tell")
	jokeCmd.Flags().Float32("temperature", 1.0, "sampling temperature; higher values repeat less")

	rootCmd.AddCommand(jokeCmd)
}

func runJoke(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	count, _ := cmd.Flags().GetInt("count")
	temperature, _ := cmd.Flags().GetFloat32("temperature")
	if count < 1 {
		return fmt.Errorf("invalid --count: %d (must be at least 1)", count)
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
	opts.Temperature = temperature
	gen, err := session.NewJokeGenerator(provider, opts, logger)
	if err != nil {
		return err
	}

	var told session.Jokes
	jokes := make([]session.Joke, 0, count)
	for i := 0; i < count; i++ {
		j, err := gen.Generate(ctx, topic, &told)
		if err != nil {
			return err
		}
		jokes = append(jokes, j)
	}

	return writeJokes(cmd, jokes)
}

func writeJokes(cmd *cobra.Command, jokes []session.Joke) error {
	out := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.New(out, output.FormatJSON).WriteJSON(jokes)
	default:
		for i, j := range jokes {
			if len(jokes) > 1 {
				fmt.Fprintf(out, "%d. ", i+1)
			}
			fmt.Fprintln(out, j.Text)
			if j.Repeat {
				fmt.Fprintf(cmd.ErrOrStderr(), "(no fresh joke after %d attempts, this one repeats)\n", j.Attempts)
			}
		}
		return nil
	}
}
