package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coursewarehq/courseware/pkg/config"
)

// configurationWatchCmd represents the configuration watch command
var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the config file and print each reloaded configuration",
	Long: `Watch the config file and print the effective configuration
after every change. Useful when editing courseware.yml next to a running
server started with the same COURSEWARE_CONFIG_PATH.

Stops on Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := config.Get()
		fmt.Printf("Watching %s\n\n", cfg.ConfigFilePath())
		fmt.Print(cfg.FormatText())

		err := config.Watch(ctx, func(reloaded *config.CoursewareConfig) {
			fmt.Println("\nConfiguration reloaded:")
			fmt.Print(reloaded.FormatText())
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}
