package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// renderStructured prints data as JSON or YAML on the command's stdout.
// It returns false for any other format so the caller can fall back to
// its table rendering.
func renderStructured(cmd *cobra.Command, format string, data any) (bool, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return true, fmt.Errorf("encoding output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return true, nil
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return true, fmt.Errorf("encoding output: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return true, nil
	}
	return false, nil
}

// sortedKeys returns the map keys in lexical order for stable output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
