package commands

import (
	"bufio"
	"os"
	"strings"

	"github.com/kent-id/dynamosql"
	"github.com/spf13/cobra"
)

// NewBatchCommand creates the batch command.
func NewBatchCommand(env *environment) *cobra.Command {
	var transaction bool
	var token string

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Execute the statements of a file as one batch or transaction",
		Long: `Execute every statement of a file, one per line, as a single batch.
Blank lines and lines starting with -- are skipped. All statements must be
reads, or all writes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statements, err := readStatements(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cur, err := env.cursor(ctx)
			if err != nil {
				return err
			}
			defer cur.Close()

			if transaction {
				err = cur.ExecuteTransaction(ctx, statements, token)
			} else {
				err = cur.ExecuteBatch(ctx, statements)
			}
			if err != nil {
				return err
			}
			return printResult(cmd, cur)
		},
	}

	cmd.Flags().BoolVarP(&transaction, "transaction", "t", false, "execute as one transaction")
	cmd.Flags().StringVar(&token, "token", "", "client request token of the transaction")
	return cmd
}

func readStatements(path string) ([]dynamosql.BatchStatement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var statements []dynamosql.BatchStatement
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		statements = append(statements, dynamosql.BatchStatement{Query: line})
	}
	return statements, scanner.Err()
}
