package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/service"
)

var mocksCmd = &cobra.Command{
	Use:   "mocks <exam-id> <subject-id>",
	Short: "List the mocks of a subject with a user's completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig(cmd)
		ctx := cmd.Context()

		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		recorder := progress.NewRecorder(store, log)
		catalog, err := service.NewCatalogService(store, recorder, log)
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		list, err := catalog.ListMocks(ctx, service.UserIDFor(username), args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d/%d cleared\n", list.Subject, list.Cleared, list.Total)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MOCK\tDIFFICULTY\tDONE\tBEST")
		for _, m := range list.Mocks {
			best := "-"
			if m.BestScore != nil {
				best = fmt.Sprintf("%d%%", *m.BestScore)
			}
			done := ""
			if m.Completed {
				done = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Difficulty, done, best)
		}
		return w.Flush()
	},
}

func init() {
	mocksCmd.Flags().String("username", "", "Login name whose progress to show (default user when empty)")
}
