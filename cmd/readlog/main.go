// Package main provides the readlog maintenance CLI: offline discipline classification,
// batch concept extraction, and vocabulary health reports against the same database the server uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readlog/readlog-server/internal/di"
)

// globalFlags are translated into configuration flags for every command.
type globalFlags struct {
	envFile    string
	dataPath   string
	vocabulary string
	logLevel   string
}

func (f *globalFlags) configArgs() []string {
	var args []string
	add := func(name, value string) {
		if value != "" {
			args = append(args, "-"+name, value)
		}
	}
	add("env-file", f.envFile)
	add("data-path", f.dataPath)
	add("vocabulary", f.vocabulary)
	add("log-level", f.logLevel)
	return args
}

// container builds a DI container without starting the HTTP server.
func (f *globalFlags) container() *do.RootScope {
	return di.NewContainer(f.configArgs())
}

func main() {
	flags := &globalFlags{}

	rootCommand := &cobra.Command{
		Use:           "readlog",
		Short:         "Maintenance commands for the reading log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to .env file")
	rootCommand.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "directory holding the database")
	rootCommand.PersistentFlags().StringVar(&flags.vocabulary, "vocabulary", "", "path to the concept vocabulary JSON array")
	rootCommand.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCommand.AddCommand(
		newClassifyCommand(flags),
		newExtractCommand(flags),
		newResetCommand(flags),
		newSeedCategoriesCommand(flags),
		newVocabHealthCommand(flags),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCommand.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "readlog: %v\n", err)
		os.Exit(1)
	}
}

// withContainer runs fn against a fresh container and shuts it down afterwards.
func withContainer(flags *globalFlags, fn func(injector *do.RootScope) error) error {
	injector := flags.container()
	defer func() {
		if shutdownErr := injector.Shutdown(); shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "readlog: shutdown: %v\n", shutdownErr)
		}
	}()
	return fn(injector)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
