package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cmd.PrintErrln("encode:", err)
		return
	}

	cmd.Println(string(data))
}

// printRow prints the fields of a flat struct as key: value lines
func printRow(cmd *cobra.Command, v interface{}) {
	m := structs.Map(v)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cmd.Printf("%-24s %v\n", k+":", m[k])
	}
	cmd.Println()
}

// readJSON decodes the json file at name into v
func readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}
