package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(env *environment) *cobra.Command {
	var global bool
	var limit int
	var region string

	cmd := &cobra.Command{
		Use:   "tables [table]",
		Short: "List tables, or describe one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := tablesQuery(args, global, limit, region)

			ctx := cmd.Context()
			cur, err := env.cursor(ctx)
			if err != nil {
				return err
			}
			defer cur.Close()

			if err := cur.Execute(ctx, query); err != nil {
				return err
			}
			return printResult(cmd, cur)
		},
	}

	cmd.Flags().BoolVarP(&global, "global", "g", false, "global tables")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of tables to list")
	cmd.Flags().StringVar(&region, "replica-region", "", "only list global tables with a replica in this region")
	return cmd
}

func tablesQuery(args []string, global bool, limit int, region string) string {
	scope := ""
	if global {
		scope = "GLOBAL "
	}
	if len(args) == 1 {
		return fmt.Sprintf(`DESCRIBE %sTABLE "%s"`, scope, args[0])
	}

	query := fmt.Sprintf("LIST %sTABLES", scope)
	if global && region != "" {
		query += " RegionName " + region
	}
	if limit > 0 {
		query += fmt.Sprintf(" Limit %d", limit)
	}
	return query
}
