package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	// Optional .env for local development; env vars win over config.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Personalized content dashboard aggregating news, movies, music and social posts",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(trendingCmd())

	return root
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server with the trending refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func fetchCmd() *cobra.Command {
	var (
		page       int
		query      string
		filter     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one aggregation call and print the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(page, query, filter, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&query, "query", "", "search query")
	cmd.Flags().StringVar(&filter, "filter", "all", "source filter (all|news|movie|music|social)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func trendingCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Fetch the trending feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrending(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
