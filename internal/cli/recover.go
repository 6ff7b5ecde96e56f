package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luaraujo/continuity/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Reconstruct the most relevant prior working context",
		Long:  "Recover a session by id, by project, or the most recently updated active session.",
		Run:   runRecover,
	}

	cmd.Flags().StringP("session", "s", "", "Session id")
	cmd.Flags().StringP("project", "p", "", "Project name")

	RootCmd.AddCommand(cmd)
}

func runRecover(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	projectName, _ := cmd.Flags().GetString("project")

	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	payload, err := eng.Recover(cmd.Context(), sessionID, projectName)
	if errors.Is(err, model.ErrNotFound) {
		// Reportable, non-fatal: the caller decides whether to start
		// a fresh session.
		fmt.Println(`{"error": "not_found"}`)
		return
	}
	if err != nil {
		exitErr("recover", err)
	}

	b, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Println(string(b))
}
