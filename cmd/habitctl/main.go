package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haneulpark/habit-diary/cmd/habitctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "habitctl",
		Short: "Admin tool for the habit diary API",
		Long:  "CLI tool for managing user accounts and exporting routine data",
	}

	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewExportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
