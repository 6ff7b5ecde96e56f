package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luaraujo/continuity/internal/config"
	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/pattern"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show the loaded continuity pattern tables",
		Run:   runPatterns,
	}
	RootCmd.AddCommand(cmd)
}

type patternsOutput struct {
	Version   string                           `json:"version"`
	Languages map[model.Language][]pattern.Rule `json:"languages"`
}

func runPatterns(cmd *cobra.Command, args []string) {
	table := pattern.Default()
	if path := config.PatternFile(); path != "" {
		var err error
		table, err = pattern.Load(path)
		if err != nil {
			exitErr("load patterns", err)
		}
	}

	out := patternsOutput{
		Version:   table.Version(),
		Languages: make(map[model.Language][]pattern.Rule),
	}
	for _, language := range table.Languages() {
		out.Languages[language] = table.Rules(language)
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
