package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Decide whether text is a continuity question",
		Long:  "Classify free-form text. Text can be a positional arg or piped via stdin.",
		Run:   runClassify,
	}
	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	text := readText(args)

	eng, closer, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer closer()

	result := eng.Classify(cmd.Context(), text)
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

// readText joins positional args, falling back to stdin when piped.
func readText(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}
