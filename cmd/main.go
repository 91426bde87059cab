package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/paperrec-backend/internal/app"
	"github.com/yungbote/paperrec-backend/internal/data/db"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

var version = "dev"

var (
	envFile string
	log     *logger.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "paperrec",
	Short:         "Paper recommendation backend",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		// a missing default .env is fine; an explicit one must exist
		if err := godotenv.Load(envFile); err != nil {
			if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
		l, err := app.NewLogger()
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file")

	issueTokenCmd.Flags().Uint("user", 0, "User id the token is issued for")
	issueTokenCmd.Flags().String("session", "", "Session id embedded in the token")
	_ = issueTokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(aggregateTagsCmd)
	rootCmd.AddCommand(issueTokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("paperrec", version)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := app.New(ctx, log)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := db.NewService(db.LoadConfig(), log)
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.AutoMigrateAll(); err != nil {
			return err
		}
		log.Info("migration complete")
		return nil
	},
}

var aggregateTagsCmd = &cobra.Command{
	Use:   "aggregate-tags",
	Short: "Recompute tag popularity from like and favorite actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := app.Open(ctx, log)
		if err != nil {
			return err
		}
		defer a.Close()
		n, err := a.Services.Catalog.RecomputeTagPopularity(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("updated %d tags\n", n)
		return nil
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a signed access token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetUint("user")
		session, _ := cmd.Flags().GetString("session")

		ctx, cancel := signalContext()
		defer cancel()
		a, err := app.Open(ctx, log)
		if err != nil {
			return err
		}
		defer a.Close()
		tok, err := a.Services.Auth.IssueToken(ctx, userID, session)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}
