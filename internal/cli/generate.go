package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/phrazzld/diary-api/internal/domain"
	"github.com/phrazzld/diary-api/internal/service/diary"
	"github.com/spf13/cobra"
)

type entryFlags struct {
	style    string
	mood     string
	provider string
	asJSON   bool
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", "", "writing style (warm, poetic, real, funny)")
	cmd.Flags().StringVar(&f.mood, "mood", "", "mood to layer on the style")
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "AI provider (default from config)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the entry as JSON")
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	flags := &entryFlags{}

	cmd := &cobra.Command{
		Use:   "generate [note...]",
		Short: "Generate a diary entry from a short note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeDeps(cmd.Context(), deps)

			entry, err := deps.Diary.Generate(cmd.Context(), diary.GenerateInput{
				Content:  strings.Join(args, " "),
				Style:    flags.style,
				Mood:     flags.mood,
				Provider: flags.provider,
			})
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			return printEntry(entry, flags.asJSON)
		},
	}
	flags.register(cmd)

	return cmd
}

func newRegenerateCmd(opts *rootOptions) *cobra.Command {
	flags := &entryFlags{}
	var original, previous, previousFile string

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Generate a different take on a note that was already expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if previousFile != "" {
				if previous != "" {
					return errors.New("use either --previous or --previous-file, not both")
				}
				data, err := os.ReadFile(previousFile)
				if err != nil {
					return fmt.Errorf("reading previous entry: %w", err)
				}
				previous = string(data)
			}

			deps, err := buildDeps(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeDeps(cmd.Context(), deps)

			entry, err := deps.Diary.Regenerate(cmd.Context(), diary.RegenerateInput{
				OriginalContent: original,
				PreviousContent: previous,
				Style:           flags.style,
				Mood:            flags.mood,
				Provider:        flags.provider,
			})
			if err != nil {
				return fmt.Errorf("regeneration failed: %w", err)
			}

			return printEntry(entry, flags.asJSON)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&original, "original", "", "the original note")
	cmd.Flags().StringVar(&previous, "previous", "", "the previously generated entry")
	cmd.Flags().StringVar(&previousFile, "previous-file", "", "read the previously generated entry from a file")
	_ = cmd.MarkFlagRequired("original")

	return cmd
}

func printEntry(entry *domain.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(ioOut)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	}

	_, _ = fmt.Fprintf(ioOut, "%s\n\n", strings.TrimSpace(entry.Text))
	_, _ = fmt.Fprintf(ioOut, "-- %s (%s), style %s", entry.Provider, entry.Model, entry.Style)
	if entry.Mood != "" {
		_, _ = fmt.Fprintf(ioOut, ", mood %s", entry.Mood)
	}
	_, _ = fmt.Fprintln(ioOut)
	return nil
}
