package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kent-id/dynamosql"
	"github.com/kent-id/dynamosql/internal/ui"
	"github.com/kent-id/dynamosql/parser"
	"github.com/kent-id/dynamosql/types"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(env *environment) *cobra.Command {
	var params []string
	var yes bool

	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Execute one statement and print its result",
		Long: `Execute one SQL statement. Positional parameters (?) are given with
--param as JSON values, e.g. --param 42 --param '"open"'.

Dropping a table asks for confirmation unless --yes is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			stmt, err := parser.Compile(query)
			if err != nil {
				return err
			}
			if destructive(stmt.Kind) && !yes {
				ok, err := ui.Confirm(fmt.Sprintf("%s cannot be undone. Continue?", stmt.Kind))
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintWarning("aborted")
					return nil
				}
			}

			values, err := parseParams(params)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cur, err := env.cursor(ctx)
			if err != nil {
				return err
			}
			defer cur.Close()

			if err := cur.Execute(ctx, query, values...); err != nil {
				return err
			}
			return printResult(cmd, cur)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "positional parameter as a JSON value")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func destructive(kind types.QueryKind) bool {
	return kind == types.QueryKindDropTable || kind == types.QueryKindDropGlobalTable
}

// parseParams decodes JSON parameter values. Numbers keep their printed form.
func parseParams(raw []string) ([]interface{}, error) {
	values := make([]interface{}, 0, len(raw))
	for _, r := range raw {
		dec := json.NewDecoder(strings.NewReader(r))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", r, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func printResult(cmd *cobra.Command, cur *dynamosql.Cursor) error {
	rows, err := cur.FetchAll(cmd.Context())
	if err != nil {
		return err
	}
	ui.PrintItemErrors(cur.Errors())
	if len(cur.Columns()) == 0 {
		ui.PrintTitle("OK", fmt.Sprintf("%d row(s)", len(rows)))
		return nil
	}
	if err := ui.PrintRows(os.Stdout, cur.Columns(), rows); err != nil {
		return err
	}
	ui.PrintTitle("OK", fmt.Sprintf("%d row(s)", len(rows)))
	return nil
}
