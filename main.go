package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "deepcrawl-research",
		Short:        "Gemini research agent with deep content enhancement",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "settings file (yaml), optional")

	root.AddCommand(serveCMD(), askCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
