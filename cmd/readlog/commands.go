package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/extraction"
	"github.com/readlog/readlog-server/internal/service"
)

func newClassifyCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Assign a discipline to every book that has none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(injector *do.RootScope) error {
				classifier, err := do.Invoke[*extraction.Classifier](injector)
				if err != nil {
					return err
				}
				result, err := classifier.ClassifyPending(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum books to classify, 0 for all")

	return cmd
}

func newExtractCommand(flags *globalFlags) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run concept extraction batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(injector *do.RootScope) error {
				concepts, err := do.Invoke[*service.ConceptService](injector)
				if err != nil {
					return err
				}

				var total extraction.BatchResult
				for {
					batch, err := concepts.Refresh(cmd.Context(), limit)
					if err != nil {
						return err
					}
					total.Processed += batch.Processed
					total.Errors += batch.Errors
					total.Remaining = batch.Remaining
					total.Retryable = batch.Retryable
					total.Done = batch.Done

					fmt.Fprintf(cmd.ErrOrStderr(), "batch: processed=%d errors=%d remaining=%d retryable=%d\n",
						batch.Processed, batch.Errors, batch.Remaining, batch.Retryable)

					if !all || batch.Done || batch.Processed+batch.Errors == 0 {
						break
					}
				}
				return printJSON(cmd, total)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "books per batch, the configured batch size when 0")
	cmd.Flags().BoolVar(&all, "all", false, "keep running batches until no pending book remains")

	return cmd
}

func newResetCommand(flags *globalFlags) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Queue books for re-extraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(injector *do.RootScope) error {
				concepts, err := do.Invoke[*service.ConceptService](injector)
				if err != nil {
					return err
				}
				n, err := concepts.Reset(cmd.Context(), domain.ResetScope(scope))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d books reset\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scope, "scope", string(domain.ResetEmpty), "empty or all")

	return cmd
}

func newSeedCategoriesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories",
		Short: "Create the default categories that do not exist yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(injector *do.RootScope) error {
				categories, err := do.Invoke[*service.CategoryService](injector)
				if err != nil {
					return err
				}
				n, err := categories.SeedDefaults(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d categories added\n", n)
				return nil
			})
		},
	}
}

func newVocabHealthCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab-health",
		Short: "Report how well the vocabulary covers extracted concepts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(flags, func(injector *do.RootScope) error {
				concepts, err := do.Invoke[*service.ConceptService](injector)
				if err != nil {
					return err
				}
				health, err := concepts.VocabularyHealth(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, health)
			})
		},
	}
}
