package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newProvidersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List AI providers and whether they are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(cmd.Context(), opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(ioOut, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PROVIDER\tAVAILABLE\tDETAIL")
			for _, s := range deps.Registry.Statuses() {
				name := s.Name
				if name == deps.Registry.DefaultName() {
					name += " (default)"
				}
				detail := s.Model
				if !s.Available {
					detail = s.Error
				}
				_, _ = fmt.Fprintf(w, "%s\t%t\t%s\n", name, s.Available, detail)
			}
			return w.Flush()
		},
	}
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the diary API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if deps.JWTService == nil {
				return errors.New("authentication is disabled: set auth.jwt_secret (DIARY_AUTH_JWT_SECRET)")
			}

			token, err := deps.JWTService.GenerateToken(cmd.Context(), subject, ttl)
			if err != nil {
				return fmt.Errorf("minting token: %w", err)
			}

			_, _ = fmt.Fprintln(ioOut, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "diaryctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from auth.token_lifetime_minutes)")

	return cmd
}
