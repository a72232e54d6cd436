package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stemsi/mockprep-backend/internal/database"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/repository"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Count questions per subject and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig(cmd)
		ctx := cmd.Context()

		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		counts, err := repository.NewQuestionRepository(pool).CountBySubject(ctx)
		if err != nil {
			return err
		}
		writeBank(cmd, counts)
		return nil
	},
}

func writeBank(cmd *cobra.Command, counts map[string]map[model.Difficulty]int) {
	subjects := make([]string, 0, len(counts))
	for s := range counts {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tEASY\tMEDIUM\tHARD")
	for _, s := range subjects {
		c := counts[s]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s, c[model.DifficultyEasy], c[model.DifficultyMedium], c[model.DifficultyHard])
	}
	w.Flush()
}
