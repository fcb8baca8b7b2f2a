package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pulse-ai/internal/app"
	"pulse-ai/internal/config"
	"pulse-ai/internal/httpapi"
	"pulse-ai/internal/logger"
	"pulse-ai/internal/mcpserver"
	"pulse-ai/internal/scheduler"
)

var version = "dev"

type rootFlags struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "pulse",
		Short:         "pulse finds AI events and promotes them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(flags),
		newScrapeCmd(flags),
		newNotifyCmd(flags),
		newPipelineCmd(flags),
		newGmailAuthCmd(),
	)
	return root
}

// bootstrap loads configuration and builds the services. Commands that write
// results to stdout pass os.Stderr as logOut.
func bootstrap(ctx context.Context, flags *rootFlags, logOut io.Writer) (*app.App, error) {
	if err := godotenv.Load(flags.envFile); err != nil {
		logrus.Debugf("dotenv not loaded: %v", err)
	}
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, logOut)
	return app.New(ctx, cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the MCP SSE endpoint and the pipeline scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, flags, nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			sched := scheduler.New(a.Config.PipelineSchedule, func(ctx context.Context) error {
				_, err := a.Pipeline.Run(ctx)
				return err
			})
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			mcpSrv := mcpserver.NewServer(mcpserver.NewHandlers(a.Search, a.Selection, a.Subscriptions, a.Interests), version)
			srv := httpapi.New(httpapi.Deps{
				Search:        a.Search,
				Selection:     a.Selection,
				Subscriptions: a.Subscriptions,
				Interests:     a.Interests,
				Pipeline:      a.Pipeline,
				Mounts: map[string]http.Handler{
					"/mcp": mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return mcpSrv }),
				},
			})
			return srv.ListenAndServe(ctx, a.Config.HTTPAddr)
		},
	}
}

func newScrapeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape posts for the selected event and print {\"result\": ...} as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out, err := a.Pipeline.Scrape(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"result": out.Text})
		},
	}
}

func newNotifyCmd(flags *rootFlags) *cobra.Command {
	var collected string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send the promotional email and tweet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.Pipeline.Notify(ctx, collected)
			if werr := writeJSON(cmd.OutOrStdout(), n); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&collected, "collected", "", "scraped text recorded alongside the notification")
	return cmd
}

func newPipelineCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Scrape then notify once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := bootstrap(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			rep, err := a.Pipeline.Run(ctx)
			if err != nil {
				return errors.Wrap(err, "pipeline run")
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
