package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stemsi/mockprep-backend/internal/database"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/repository"
	"github.com/stemsi/mockprep-backend/internal/validator"
)

var seedCmd = &cobra.Command{
	Use:   "seed <questions.json>",
	Short: "Validate a question file and upsert it into PostgreSQL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().Bool("dry-run", false, "Validate only, write nothing")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log := loadConfig(cmd)
	validator.Setup()

	questions, err := repository.ReadQuestionsFile(args[0])
	if err != nil {
		return err
	}
	if invalid := validateQuestions(questions); len(invalid) > 0 {
		out := cmd.ErrOrStderr()
		for _, line := range invalid {
			fmt.Fprintln(out, line)
		}
		return fmt.Errorf("%d invalid question(s) in %s", len(invalid), args[0])
	}

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		fmt.Fprintf(cmd.OutOrStdout(), "%d questions valid\n", len(questions))
		return nil
	}

	ctx := cmd.Context()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := repository.NewQuestionRepository(pool).UpsertMany(ctx, questions); err != nil {
		return err
	}
	log.Info().Int("questions", len(questions)).Str("file", args[0]).Msg("Question bank seeded")
	return nil
}

// validateQuestions returns one line per failing field, plus duplicate ids.
func validateQuestions(questions []model.Question) []string {
	var out []string
	seen := make(map[string]int, len(questions))
	for i := range questions {
		q := &questions[i]
		if fields := validator.Validate(q); fields != nil {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				out = append(out, fmt.Sprintf("#%d %s: %s", i, q.ID, fields[k]))
			}
		}
		if prev, dup := seen[q.ID]; dup && q.ID != "" {
			out = append(out, fmt.Sprintf("#%d %s: duplicate of #%d", i, q.ID, prev))
		}
		seen[q.ID] = i
	}
	return out
}
