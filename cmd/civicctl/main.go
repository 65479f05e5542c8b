// Package main provides civicctl, an operator CLI that runs exports and
// analytics against a seed dataset without starting the HTTP server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/repository"
	"github.com/civicdesk/issue-admin/internal/seed"
	"github.com/civicdesk/issue-admin/internal/service"
)

const appName = "civicctl"

// Version is overridden at build time.
var Version = "dev"

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Operator tools for the civic issue admin service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&seedPath, "seed", "", "Seed dataset path (YAML); embedded dataset when empty")

	cmd.AddCommand(exportCmd(&seedPath))
	cmd.AddCommand(analyticsCmd(&seedPath))
	cmd.AddCommand(auditCmd(&seedPath))
	cmd.AddCommand(hashPasswordCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func exportCmd(seedPath *string) *cobra.Command {
	var (
		dataset string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a dataset in the delimited export format",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context(), *seedPath)
			if err != nil {
				return err
			}
			body, err := service.NewAnalyticsService(store).Export(cmd.Context(), dataset)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, body)
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", service.DatasetIssues, "Dataset: issues, categories, wards, response-times")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file; stdout when empty")
	return cmd
}

func analyticsCmd(seedPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print dashboard aggregates as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := loadStore(ctx, *seedPath)
			if err != nil {
				return err
			}
			svc := service.NewAnalyticsService(store)
			summary, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			status, err := svc.StatusCounts(ctx)
			if err != nil {
				return err
			}
			categories, err := svc.Categories(ctx)
			if err != nil {
				return err
			}
			wards, err := svc.Wards(ctx)
			if err != nil {
				return err
			}
			responseTimes, err := svc.ResponseTimes(ctx)
			if err != nil {
				return err
			}
			trend, err := svc.Trend(ctx)
			if err != nil {
				return err
			}
			report := map[string]any{
				"summary":        summary,
				"status":         status,
				"categories":     categories,
				"wards":          wards,
				"response_times": responseTimes,
				"trend":          trend,
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

func auditCmd(seedPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List references that no longer resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd.Context(), *seedPath)
			if err != nil {
				return err
			}
			warnings, err := service.NewOrgService(store, 0, zap.NewNop()).Audit(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(warnings) == 0 {
				_, err = fmt.Fprintln(w, "no integrity warnings")
				return err
			}
			for _, warning := range warnings {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", warning.Kind, warning.EntityID, warning.Ref); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for a staff password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

// loadStore materializes the seed dataset into an in-memory store. Staff
// carry no password hash since nobody signs in through the CLI.
func loadStore(ctx context.Context, seedPath string) (*repository.Store, error) {
	dataset, err := seed.LoadFile(seedPath)
	if err != nil {
		return nil, err
	}
	fixtures, err := dataset.Build(time.Now().UTC(), "")
	if err != nil {
		return nil, err
	}
	store := repository.NewMemoryStore()
	if err := seed.Apply(ctx, store, fixtures); err != nil {
		return nil, err
	}
	return store, nil
}

func writeOutput(stdout io.Writer, path, body string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, body)
		return err
	}
	return os.WriteFile(path, []byte(body+"\n"), 0o644)
}
