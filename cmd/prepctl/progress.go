package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/service"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print a user's completed mocks and best scores as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig(cmd)
		ctx := cmd.Context()

		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		username, _ := cmd.Flags().GetString("username")
		p, err := progress.NewRecorder(store, log).Progress(ctx, service.UserIDFor(username))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	progressCmd.Flags().String("username", "", "Login name whose progress to show (default user when empty)")
}
