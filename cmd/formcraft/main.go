package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/formcraft-io/formcraft/internal/interfaces/cli/migrate"
	"github.com/formcraft-io/formcraft/internal/interfaces/cli/server"
	"github.com/formcraft-io/formcraft/internal/interfaces/cli/worker"
	"github.com/formcraft-io/formcraft/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "formcraft",
		Short:   "Formcraft - form builder with subscription billing",
		Long:    `Formcraft serves the form builder API, runs database migrations and executes the billing background jobs.`,
		Version: version.Get().Version,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		worker.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
