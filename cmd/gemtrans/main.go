package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/gemtrans/internal/cli"
	"codeberg.org/snonux/gemtrans/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	proc := processor.NewProcessor(flags)
	defer proc.Close()

	// Handle --list-languages flag
	if flags.ListLanguages {
		return proc.ListLanguages()
	}

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	// Handle --set-key flag
	if flags.SetKey != "" {
		return proc.SetKey(ctx, flags.SetKey)
	}

	if flags.BatchFile != "" {
		// Process batch file
		return proc.ProcessBatch(ctx)
	} else if len(args) > 0 {
		// Translate the arguments as one text
		return proc.TranslateText(ctx, strings.Join(args, " "))
	}

	// No input provided - launch GUI mode by default
	return proc.RunGUIMode()
}
