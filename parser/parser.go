// Package parser compiles SQL-flavored statement text into DynamoDB requests.
//
// Each statement is first classified by its leading keywords, then parsed by
// the grammar of that one statement shape:
//   - control-plane statements (CREATE/ALTER/DROP [GLOBAL] TABLE) compile into
//     native input structs such as *dynamodb.CreateTableInput
//   - utility statements (LIST [GLOBAL] TABLES, DESC[RIBE] [GLOBAL] TABLE) compile
//     into listing and description inputs
//   - item statements (SELECT/INSERT/UPDATE/DELETE) compile into canonical
//     PartiQL text plus projection metadata
//
// Compilation is pure: it never touches the network.
package parser

import (
	"github.com/kent-id/dynamosql/types"
)

// Compile classifies and compiles one statement.
func Compile(query string) (*types.Statement, error) {
	kind, err := Classify(query)
	if err != nil {
		return nil, err
	}
	text := trimStatement(query)

	switch kind {
	case types.QueryKindCreateTable:
		return compileCreateTable(query, text)
	case types.QueryKindAlterTable:
		return compileAlterTable(query, text)
	case types.QueryKindDropTable:
		return compileDropTable(query, text)
	case types.QueryKindCreateGlobalTable:
		return compileCreateGlobalTable(query, text)
	case types.QueryKindDropGlobalTable:
		return compileDropGlobalTable(query, text)
	case types.QueryKindInsert:
		return compileInsert(query, text)
	case types.QueryKindUpdate:
		return compileUpdate(query, text)
	case types.QueryKindDelete:
		return compileDelete(query, text)
	case types.QueryKindSelect:
		return compileSelect(query, text)
	case types.QueryKindListTables:
		return compileListTables(query, text)
	case types.QueryKindListGlobalTables:
		return compileListGlobalTables(query, text)
	case types.QueryKindDescribeTable:
		return compileDescribeTable(query, text)
	case types.QueryKindDescribeGlobalTable:
		return compileDescribeGlobalTable(query, text)
	}
	return nil, compileError(query, firstWords(query), ErrUnsupportedQuery)
}
