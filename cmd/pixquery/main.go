package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pixquery/pixquery/internal/config"
	"github.com/pixquery/pixquery/internal/download"
	"github.com/pixquery/pixquery/internal/metrics"
	"github.com/pixquery/pixquery/internal/server"
	"github.com/pixquery/pixquery/photosearch"
	"github.com/pixquery/pixquery/photosearch/mock"
	"github.com/pixquery/pixquery/photosearch/pexels"
	"github.com/pixquery/pixquery/photosearch/pixabay"
	"github.com/pixquery/pixquery/photosearch/unsplash"
)

var version = "0.1.0"

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	searchers map[string]photosearch.Searcher
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		searchers: map[string]photosearch.Searcher{
			config.ProviderUnsplash: unsplash.New(unsplash.Config{
				BaseURL:   cfg.Unsplash.BaseURL,
				UserAgent: cfg.Search.UserAgent,
				Timeout:   cfg.Search.Timeout,
			}, logger),
			config.ProviderPexels: pexels.New(pexels.Config{
				BaseURL:   cfg.Pexels.BaseURL,
				UserAgent: cfg.Search.UserAgent,
				Timeout:   cfg.Search.Timeout,
			}, logger),
			config.ProviderPixabay: pixabay.New(pixabay.Config{
				BaseURL:   cfg.Pixabay.BaseURL,
				UserAgent: cfg.Search.UserAgent,
				Timeout:   cfg.Search.Timeout,
			}, logger),
			config.ProviderMock: mock.New().WithURLs([]string{
				"https://images.example.com/one.jpg",
				"https://images.example.com/two.jpg",
			}),
		},
	}, nil
}

func (a *app) search(ctx context.Context, provider, query string, opts photosearch.Options) (*photosearch.ResultSet, error) {
	searcher, ok := a.searchers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	key, err := a.cfg.AccessKey(provider)
	if err != nil {
		return nil, err
	}
	return searcher.Search(ctx, query, key, opts)
}

func main() {
	var (
		flagProvider    string
		flagCount       int
		flagOrientation string
		flagSize        string
		flagRandom      bool
		flagJSON        bool
		flagDir         string
		flagConcurrency int
		flagAddr        string
	)

	rootCmd := &cobra.Command{
		Use:           "pixquery",
		Short:         "Search stock photo APIs from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "search provider (unsplash, pexels, pixabay, mock)")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for photos and print the image URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			provider := providerOrDefault(flagProvider, a.cfg)
			results, err := a.search(cmd.Context(), provider, joinArgs(args), photosearch.Options{
				Count:       flagCount,
				Orientation: photosearch.Orientation(flagOrientation),
				Size:        photosearch.Size(flagSize),
			})
			if err != nil {
				return err
			}

			if flagRandom {
				fmt.Println(results.Random())
				return nil
			}
			if flagJSON {
				return json.NewEncoder(os.Stdout).Encode(results.All())
			}
			for i, u := range results.All() {
				fmt.Printf("%s %s\n", color.CyanString("%2d.", i+1), u)
			}
			return nil
		},
	}
	searchCmd.Flags().IntVarP(&flagCount, "count", "n", 0, "number of results (1-30, default 5)")
	searchCmd.Flags().StringVar(&flagOrientation, "orientation", "", "orientation filter (landscape, portrait, squarish)")
	searchCmd.Flags().StringVar(&flagSize, "size", "", "image size tier (raw, full, regular, small, thumb)")
	searchCmd.Flags().BoolVar(&flagRandom, "random", false, "print one random result instead of the full list")
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "print results as a JSON array")

	downloadCmd := &cobra.Command{
		Use:   "download <query>",
		Short: "Search for photos and save them to a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			provider := providerOrDefault(flagProvider, a.cfg)
			results, err := a.search(cmd.Context(), provider, joinArgs(args), photosearch.Options{
				Count: flagCount,
				Size:  photosearch.Size(flagSize),
			})
			if err != nil {
				return err
			}

			dl := download.New(a.logger, metrics.New(), flagConcurrency)
			paths, err := dl.Fetch(cmd.Context(), results.All(), flagDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(color.GreenString("saved"), p)
			}
			return nil
		},
	}
	downloadCmd.Flags().IntVarP(&flagCount, "count", "n", 0, "number of results (1-30, default 5)")
	downloadCmd.Flags().StringVar(&flagSize, "size", "", "image size tier (raw, full, regular, small, thumb)")
	downloadCmd.Flags().StringVarP(&flagDir, "dir", "d", "images", "output directory")
	downloadCmd.Flags().IntVar(&flagConcurrency, "concurrency", 4, "parallel downloads")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			addr := flagAddr
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(a.searchers, a.cfg.AccessKey, a.cfg.Search.DefaultProvider, metrics.New(), a.logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()
			a.logger.Info("proxy listening", zap.String("addr", addr))

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-stop:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pixquery %s\n", version)
		},
	}

	rootCmd.AddCommand(searchCmd, downloadCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func providerOrDefault(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Search.DefaultProvider
}

func joinArgs(args []string) string {
	query := args[0]
	for _, a := range args[1:] {
		query += " " + a
	}
	return query
}
