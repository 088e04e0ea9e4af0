package dynamosql

import (
	"context"
	"fmt"

	"github.com/kent-id/dynamosql/types"
)

// executor wraps exactly one native call. Each fetch issues that call once,
// resuming from token when it is non-nil, and never loops over pages itself.
type executor interface {
	fetch(ctx context.Context, token *string) (*page, error)
}

// page is one normalized native response.
type page struct {
	rows   []Row
	errors []ItemError

	// next is the continuation token, nil on the last page.
	next *string
}

type executorKind int

const (
	executorStatement executorKind = iota
	executorBatch
	executorTransaction
	executorCreateTable
	executorUpdateTable
	executorDeleteTable
	executorCreateGlobalTable
	executorUpdateGlobalTable
	executorListTables
	executorListGlobalTables
	executorDescribeTable
	executorDescribeGlobalTable
)

var executorNames = map[executorKind]string{
	executorStatement:           "ExecuteStatement",
	executorBatch:               "BatchExecuteStatement",
	executorTransaction:         "ExecuteTransaction",
	executorCreateTable:         "CreateTable",
	executorUpdateTable:         "UpdateTable",
	executorDeleteTable:         "DeleteTable",
	executorCreateGlobalTable:   "CreateGlobalTable",
	executorUpdateGlobalTable:   "UpdateGlobalTable",
	executorListTables:          "ListTables",
	executorListGlobalTables:    "ListGlobalTables",
	executorDescribeTable:       "DescribeTable",
	executorDescribeGlobalTable: "DescribeGlobalTable",
}

func (k executorKind) String() string {
	return executorNames[k]
}

var controlExecutors = map[types.QueryKind]executorKind{
	types.QueryKindCreateTable:         executorCreateTable,
	types.QueryKindAlterTable:          executorUpdateTable,
	types.QueryKindDropTable:           executorDeleteTable,
	types.QueryKindCreateGlobalTable:   executorCreateGlobalTable,
	types.QueryKindDropGlobalTable:     executorUpdateGlobalTable,
	types.QueryKindListTables:          executorListTables,
	types.QueryKindListGlobalTables:    executorListGlobalTables,
	types.QueryKindDescribeTable:       executorDescribeTable,
	types.QueryKindDescribeGlobalTable: executorDescribeGlobalTable,
}

// dispatch selects the executor for a batch led by kind.
// The transaction flag wins over batch size for item statements.
func dispatch(kind types.QueryKind, size int, transaction bool) (executorKind, error) {
	if size < 1 {
		return 0, &ValidationError{Reason: "empty statement batch"}
	}
	if kind.Category() == types.CategoryDML {
		switch {
		case transaction:
			return executorTransaction, nil
		case size == 1:
			return executorStatement, nil
		default:
			return executorBatch, nil
		}
	}

	if transaction {
		return 0, &ValidationError{Reason: fmt.Sprintf("transaction not supported for %s", kind)}
	}
	if size > 1 {
		return 0, &ValidationError{Reason: "batch DDL/Utility not supported"}
	}
	ek, ok := controlExecutors[kind]
	if !ok {
		return 0, fmt.Errorf("no executor for query kind %s", kind)
	}
	return ek, nil
}

// executorConfig carries what every executor needs besides its statements.
type executorConfig struct {
	client   Client
	retry    RetryPolicy
	registry *columnRegistry

	// projected rows follow the pre-registered SELECT column list.
	projected bool

	clientRequestToken string
	consistentRead     *bool
}

func newExecutor(batch *statementBatch, transaction bool, cfg executorConfig) (executor, error) {
	first := batch.first()
	if first == nil {
		return nil, &ValidationError{Reason: "empty statement batch"}
	}
	kind, err := dispatch(first.Kind, batch.size(), transaction)
	if err != nil {
		return nil, err
	}
	LogDebugf("selected %s executor for %d %s statement(s)", kind, batch.size(), first.Kind)

	switch kind {
	case executorStatement:
		return &statementExecutor{cfg: cfg, statement: batch.statements[0]}, nil
	case executorBatch:
		return &batchExecutor{cfg: cfg, statements: batch.statements}, nil
	case executorTransaction:
		return &transactionExecutor{cfg: cfg, statements: batch.statements}, nil
	case executorListTables:
		return newListTablesExecutor(cfg, first)
	case executorListGlobalTables:
		return newListGlobalTablesExecutor(cfg, first)
	default:
		return newControlExecutor(kind, cfg, first)
	}
}
