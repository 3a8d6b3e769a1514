package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

func rulesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:       "rules {heading|number|bullet}",
		Short:     "Print a rule table in rule-file form",
		Long:      "Print the built-in rule table, or the table loaded from --file, as JSON usable as a rule file.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"heading", "number", "bullet"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			switch args[0] {
			case "heading":
				var t *rules.Table
				if t, err = rules.HeadingTable(file); err == nil {
					data, err = rules.MarshalTable(t)
				}
			case "number":
				var t *rules.Table
				if t, err = rules.NumberTable(file); err == nil {
					data, err = rules.MarshalTable(t)
				}
			case "bullet":
				var t *rules.BulletTable
				if t, err = rules.BulletGlyphs(file); err == nil {
					data, err = rules.MarshalBulletTable(t)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "rule file to load instead of the built-in table")
	return cmd
}
