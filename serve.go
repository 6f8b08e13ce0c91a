package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/zaynkorai/gemini-deepcrawl-research/api"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
)

const runTTL = 7 * 24 * time.Hour

func serveCMD() *cobra.Command {
	var port string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the research HTTP API and the frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if logging.ParseLevel(rt.settings.LogLevel) > zapcore.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			var runs api.RunStore = api.NewMemoryRunStore()
			if rt.redis != nil {
				runs = api.NewRedisRunStore(rt.redis, runTTL)
			}

			s := api.NewServer(rt.workflow, runs, rt.logger)
			s.SetupFrontend(rt.settings.FrontendDir)

			if port == "" {
				port = rt.settings.Port
			}
			return s.Start(ctx, port)
		},
	}
	serve.Flags().StringVar(&port, "port", "", "listen port (default from PORT)")
	return serve
}
