package dynamosql

import (
	"fmt"
	"reflect"

	"github.com/kent-id/dynamosql/types"
)

// boundStatement is a compiled statement with its positional parameters.
type boundStatement struct {
	stmt   *types.Statement
	params []interface{}
}

// statementBatch groups compiled statements that can be sent in one native call.
// Once non-empty, every member shares the category of the first one and,
// for item statements, its read/write family.
type statementBatch struct {
	statements []boundStatement
	category   types.Category
	family     types.Family
	limit      int
}

func (b *statementBatch) add(stmt *types.Statement, params []interface{}) error {
	if stmt == nil {
		return &ValidationError{Reason: "nil statement"}
	}
	if err := checkParams(stmt, params); err != nil {
		return err
	}

	if len(b.statements) == 0 {
		b.category = stmt.Kind.Category()
		b.family = stmt.Kind.Family()
		if stmt.Kind.ProducesRows() {
			b.limit = stmt.Limit
		}
		b.statements = append(b.statements, boundStatement{stmt: stmt, params: params})
		return nil
	}

	if b.category != types.CategoryDML || stmt.Kind.Category() != types.CategoryDML {
		return &ValidationError{Reason: fmt.Sprintf("batch %s not supported", batchCategoryName(b.category, stmt.Kind.Category()))}
	}
	if stmt.Kind.Family() != b.family {
		return &ValidationError{Reason: "mixed read and write not supported"}
	}
	b.statements = append(b.statements, boundStatement{stmt: stmt, params: params})
	return nil
}

func (b *statementBatch) size() int {
	return len(b.statements)
}

func (b *statementBatch) first() *types.Statement {
	if len(b.statements) == 0 {
		return nil
	}
	return b.statements[0].stmt
}

// sharedProjection returns the column list when every statement projects the
// same columns, and nil when any is SELECT * or the lists differ.
func (b *statementBatch) sharedProjection() []types.ProjectionColumn {
	first := b.first()
	if first == nil || first.Item == nil || len(first.Item.Columns) == 0 {
		return nil
	}
	for _, bs := range b.statements[1:] {
		if bs.stmt.Item == nil || !reflect.DeepEqual(bs.stmt.Item.Columns, first.Item.Columns) {
			return nil
		}
	}
	return first.Item.Columns
}

func checkParams(stmt *types.Statement, params []interface{}) error {
	expected := 0
	if stmt.Item != nil {
		expected = stmt.Item.ParameterCount
	}
	if len(params) != expected {
		return &ValidationError{Reason: fmt.Sprintf("statement %q expects %d parameter(s), got %d", stmt.Query, expected, len(params))}
	}
	return nil
}

func batchCategoryName(categories ...types.Category) string {
	for _, c := range categories {
		if c != types.CategoryDML {
			return "DDL/Utility"
		}
	}
	return "DML"
}
