package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/instasite/internal/mcp"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing blueprint, page and section generation plus preview rendering to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, usage, err := openLedger(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		gen, err := createGeneratorFromConfig(cfg, usage)
		if err != nil {
			return err
		}
		renderer, err := sandbox.NewRenderer()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "instasite MCP server started on stdio (provider=%s)\n", cfg.Provider)

		srv := mcpserver.NewServer(gen, renderer)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
