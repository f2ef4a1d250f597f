package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/instasite/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "instasite",
	Short: "AI-powered multi-page website builder",
	Long: `InstaSite turns a short brief into a multi-page website. A language
model plans the site as a blueprint of pages and sections, then writes each
page as a React component that is previewed live in a sandboxed frame.
Use the web editor (serve), the headless generator (generate), or expose
the generation tools to AI agents over MCP (mcp).`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
