package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CrushDope/Telegram-Assistant/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:          "assistant",
		Short:        "Telegram media filing assistant",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant",
		Run: func(cmd *cobra.Command, args []string) {
			if cfgPath == "" {
				cfgPath = os.Getenv("CONFIG_PATH")
			}
			runServe(cfgPath)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config.toml")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetInfo())
		},
	}
}
