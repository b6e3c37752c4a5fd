package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-kratos/scout/internal/server"
	"github.com/go-kratos/scout/pipeline"
	"github.com/spf13/cobra"
)

var (
	searchType  string
	searchTopic string
	listenAddr  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a built-in registry search",
	Long:  `Search the registry with a built-in prompt and ask the first server found about a topic.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := pipeline.ParseTopicKind(searchType)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.execute(cmd.Context(), cmd.OutOrStdout(), pipeline.FixedTopic{Kind: kind, Topic: searchTopic})
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt...>",
	Short: "Find an MCP server for a request and run it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.execute(cmd.Context(), cmd.OutOrStdout(), pipeline.FreeForm{Text: strings.Join(args, " ")})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cfg := a.cfg.Server
		if listenAddr != "" {
			cfg.Addr = listenAddr
		}
		srv := server.New(a.pipeline, server.Config{
			Addr:            cfg.ListenAddr(),
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			ShutdownTimeout: cfg.ShutdownTimeout,
			RateLimit:       cfg.RateLimit,
			Burst:           cfg.Burst,
			BodyLimit:       cfg.BodyLimit,
		},
			server.WithLogger(a.logger),
			server.WithDefaults(server.Defaults{
				Model:       a.modelConfig(),
				RegistryURL: a.cfg.Registry.URL,
			}),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		errc := make(chan error, 1)
		go func() {
			errc <- srv.Start()
		}()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		return srv.Shutdown(context.Background())
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "search-type", "s", string(pipeline.TopicChuckNorris), "Search type: chuck-norris or github-issues")
	searchCmd.Flags().StringVarP(&searchTopic, "topic", "t", pipeline.DefaultTopic, "Topic to ask the server about")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default :$PORT or :3000)")
}
