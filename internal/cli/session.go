package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luaraujo/continuity/internal/store"
)

func init() {
	session := &cobra.Command{
		Use:   "session",
		Short: "Manage session state",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start a new active session",
		Run:   runSessionStart,
	}
	start.Flags().StringP("project", "p", "", "Project name (required)")
	start.Flags().String("id", "", "Session id (generated when omitted)")
	start.Flags().String("focus", "", "Initial focus")
	start.MarkFlagRequired("project")

	focus := &cobra.Command{
		Use:   "focus [session-id] [focus text]",
		Short: "Update the current focus of an active session",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSessionFocus,
	}

	event := &cobra.Command{
		Use:   "event [session-id] [description]",
		Short: "Append a timeline event to an active session",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSessionEvent,
	}
	event.Flags().StringP("importance", "i", "normal", "Importance: low, normal, high")

	task := &cobra.Command{
		Use:   "task [session-id] [task]",
		Short: "Add a pending task to an active session",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSessionTask,
	}

	done := &cobra.Command{
		Use:   "done [session-id] [task]",
		Short: "Complete a pending task",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSessionDone,
	}

	end := &cobra.Command{
		Use:   "end [session-id]",
		Short: "End an active session",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionEnd,
	}

	archive := &cobra.Command{
		Use:   "archive [session-id]",
		Short: "Archive an ended session",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionArchive,
	}

	show := &cobra.Command{
		Use:   "show [session-id]",
		Short: "Show a session's full state",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionShow,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active sessions, most recently updated first",
		Run:   runSessionList,
	}

	session.AddCommand(start, focus, event, task, done, end, archive, show, list)
	RootCmd.AddCommand(session)
}

func runSessionStart(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	id, _ := cmd.Flags().GetString("id")
	focus, _ := cmd.Flags().GetString("focus")

	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	state, err := eng.StartSession(cmd.Context(), store.StartParams{
		SessionID:   id,
		ProjectName: project,
		Focus:       focus,
	})
	if err != nil {
		exitErr("start session", err)
	}

	b, _ := json.MarshalIndent(state, "", "  ")
	fmt.Println(string(b))
}

func runSessionFocus(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	if err := eng.UpdateFocus(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
		exitErr("update focus", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionEvent(cmd *cobra.Command, args []string) {
	importance, _ := cmd.Flags().GetString("importance")

	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	err = eng.AppendTimelineEvent(cmd.Context(), store.EventParams{
		SessionID:   args[0],
		Description: strings.Join(args[1:], " "),
		Importance:  importance,
	})
	if err != nil {
		exitErr("append event", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionTask(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	if err := eng.AddPendingTask(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
		exitErr("add task", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionDone(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	if err := eng.CompletePendingTask(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
		exitErr("complete task", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionEnd(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	if err := eng.EndSession(cmd.Context(), args[0]); err != nil {
		exitErr("end session", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionArchive(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	if err := eng.ArchiveSession(cmd.Context(), args[0]); err != nil {
		exitErr("archive session", err)
	}
	fmt.Println(`{"ok": true}`)
}

func runSessionShow(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	state, err := eng.GetSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("show session", err)
	}

	b, _ := json.MarshalIndent(state, "", "  ")
	fmt.Println(string(b))
}

func runSessionList(cmd *cobra.Command, args []string) {
	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	states, err := eng.ListActive(cmd.Context())
	if err != nil {
		exitErr("list sessions", err)
	}
	if len(states) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(states, "", "  ")
	fmt.Println(string(b))
}
