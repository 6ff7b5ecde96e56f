package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luaraujo/continuity/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "learn [text]",
		Short: "Record a labeled continuity example",
		Long:  "Append a labeled example to improve semantic scoring. Text can be a positional arg or piped via stdin.",
		Run:   runLearn,
	}

	cmd.Flags().Bool("continuity", true, "Label: whether the text is a continuity question")
	cmd.Flags().StringP("language", "l", "", "Language tag (pt, en, ...); identified when omitted")

	RootCmd.AddCommand(cmd)
}

func runLearn(cmd *cobra.Command, args []string) {
	label, _ := cmd.Flags().GetBool("continuity")
	language, _ := cmd.Flags().GetString("language")
	text := readText(args)

	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	result, err := eng.Learn(cmd.Context(), text, label, model.Language(language))
	if err != nil {
		exitErr("learn", err)
	}

	b, _ := json.Marshal(result)
	fmt.Println(string(b))
}
