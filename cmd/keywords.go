package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Print the keyword tables used for scoring as YAML",
	Long: "Print the keyword tables used for scoring as YAML.\n" +
		"The output can be edited and passed back with the keywords-file config key.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := getConfig()
		if err != nil {
			return err
		}

		tables, err := compatibility.LoadTables(config.KeywordsFile)
		if err != nil {
			return fmt.Errorf("loading keyword tables: %w", err)
		}

		out, err := tables.Marshal()
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}
