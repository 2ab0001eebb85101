package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/app"
	"github.com/checkfix-tools/surveypulse_backend/internal/auth"
	"github.com/checkfix-tools/surveypulse_backend/internal/config"
	"github.com/checkfix-tools/surveypulse_backend/internal/database"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/middleware"
)

// cliOptions holds the persistent flags
type cliOptions struct {
	envFile string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "surveypulse",
		Short: "Operate the SurveyPulse analytics engine",
		Long: `surveypulse runs analytics refreshes outside the API server, seeds demo data
and mints development tokens.

Configuration is loaded from a .env file and/or SURVEYPULSE_* environment variables.
Environment variables take precedence over .env file values.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadEnvFile(opts.envFile, cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "Abort the command after this long")

	root.AddCommand(newRefreshCmd(opts), newSeedCmd(opts), newTokenCmd(opts))
	return root
}

func newRefreshCmd(opts *cliOptions) *cobra.Command {
	var (
		questionnaire string
		all           bool
		granularities []string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute KPI, trend and breakdown rollups",
		Example: `  surveypulse refresh --all
  surveypulse refresh --questionnaire 65f000000000000000000001 --granularity day,week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (questionnaire != "") {
				return fmt.Errorf("exactly one of --questionnaire or --all is required")
			}
			var questionnaireID primitive.ObjectID
			if questionnaire != "" {
				id, err := primitive.ObjectIDFromHex(questionnaire)
				if err != nil {
					return fmt.Errorf("invalid questionnaire ID %q", questionnaire)
				}
				questionnaireID = id
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				gs, err := resolveGranularities(granularities, a.Granularities)
				if err != nil {
					return err
				}

				if all {
					summary, err := a.Refresher.RefreshAll(ctx, gs)
					if summary != nil {
						if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
							return werr
						}
					}
					if err != nil {
						return err
					}
					if summary != nil && len(summary.Failures) > 0 {
						return fmt.Errorf("%d of %d questionnaires failed", len(summary.Failures), summary.Questionnaires)
					}
					return nil
				}

				summary, err := a.Refresher.RefreshAnalytics(ctx, questionnaireID, gs)
				if summary != nil {
					if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
						return werr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&questionnaire, "questionnaire", "", "Questionnaire ID to refresh")
	cmd.Flags().BoolVar(&all, "all", false, "Refresh every questionnaire")
	cmd.Flags().StringSliceVar(&granularities, "granularity", nil, "Granularities to refresh (default from SURVEYPULSE_DEFAULT_GRANULARITIES)")
	return cmd
}

func newSeedCmd(opts *cliOptions) *cobra.Command {
	var (
		owner     string
		days      int
		perDay    int
		randSeed  int64
		refreshAt bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo customer-satisfaction survey",
		Long:  "Inserts the demo survey with generated responses. Does nothing when the demo survey already exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := primitive.ObjectIDFromHex(owner)
			if err != nil {
				return fmt.Errorf("--owner must be an organization ID: %w", err)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.DB.EnsureIndexes(ctx); err != nil {
					a.Log.Warn("failed to create indexes", "error", err)
				}

				seeder := database.NewSeeder(a.DB.Database(), a.Log)
				result, err := seeder.SeedDemo(ctx, database.SeedOptions{
					OwnerID:         ownerID,
					Days:            days,
					ResponsesPerDay: perDay,
					RandSeed:        randSeed,
				})
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}

				if !refreshAt {
					return nil
				}
				summary, err := a.Refresher.RefreshAnalytics(ctx, result.QuestionnaireID, a.Granularities)
				if summary != nil {
					if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
						return werr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Organization ID that owns the demo survey (required)")
	cmd.Flags().IntVar(&days, "days", 30, "Days of responses to generate")
	cmd.Flags().IntVar(&perDay, "per-day", 5, "Responses generated per day")
	cmd.Flags().Int64Var(&randSeed, "seed", 1, "Random seed for generated answers")
	cmd.Flags().BoolVar(&refreshAt, "refresh", false, "Refresh rollups of the demo survey afterwards")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newTokenCmd(opts *cliOptions) *cobra.Command {
	var (
		user string
		org  string
		role string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Long:  "Signs an access token with SURVEYPULSE_JWT_PRIVATE_KEY_PATH. Refused in production.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTokenFlags(org, role); err != nil {
				return err
			}
			if user == "" {
				user = uuid.NewString()
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			// #SECURITY_ASSUMPTION: Production tokens come from the identity service, never from this CLI
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}

			jwtService, err := auth.NewJWTService(auth.JWTConfig{
				PrivateKeyPath:    cfg.JWTPrivateKeyPath,
				PublicKeyPath:     cfg.JWTPublicKeyPath,
				AccessTokenExpiry: cfg.AccessTokenExpiry,
				Issuer:            cfg.JWTIssuer,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, expiresAt, err := jwtService.GenerateAccessToken(user, org, role)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"token_type":   "Bearer",
				"expires_at":   expiresAt.UTC().Format(time.RFC3339),
				"user_id":      user,
				"org_id":       org,
				"role":         role,
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User ID (random UUID when empty)")
	cmd.Flags().StringVar(&org, "org", "", "Organization ID (required)")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAnalyst, "Role: admin, analyst or viewer")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

// withApp loads configuration, connects the container and runs fn under the command timeout
func withApp(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	return fn(ctx, a)
}

// resolveGranularities parses the flag values, falling back to the configured defaults
func resolveGranularities(values []string, defaults []analytics.Granularity) ([]analytics.Granularity, error) {
	if len(values) == 0 {
		return defaults, nil
	}
	return analytics.ParseGranularities(values)
}

// validateTokenFlags checks the organization ID and role of a token request
func validateTokenFlags(org, role string) error {
	if _, err := primitive.ObjectIDFromHex(org); err != nil {
		return fmt.Errorf("--org must be an organization ID: %w", err)
	}
	switch role {
	case middleware.RoleAdmin, middleware.RoleAnalyst, middleware.RoleViewer:
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadEnvFile loads .env from path, or from the current or backend directory when path is empty
func loadEnvFile(path string, stderr io.Writer) {
	if path == "" {
		path = findEnvFile()
	}
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(stderr, "Error loading .env file: %v\n", err)
	}
}

func findEnvFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, candidate := range []string{filepath.Join(cwd, ".env"), filepath.Join(cwd, "backend", ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
