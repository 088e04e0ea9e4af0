package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
)

type functionSpec struct {
	resultType types.LogicalType
	minParams  int
	maxParams  int
}

// projectionFunctions are evaluated client-side; the store only sees the bare column.
var projectionFunctions = map[string]functionSpec{
	"DATE":      {types.LogicalTypeDate, 0, 1},
	"DATETIME":  {types.LogicalTypeDateTime, 0, 1},
	"NUMBER":    {types.LogicalTypeNumber, 0, 0},
	"BOOL":      {types.LogicalTypeBool, 0, 0},
	"SUBSTR":    {types.LogicalTypeString, 1, 2},
	"SUBSTRING": {types.LogicalTypeString, 1, 2},
	"TRIM":      {types.LogicalTypeString, 0, 1},
	"LTRIM":     {types.LogicalTypeString, 0, 1},
	"RTRIM":     {types.LogicalTypeString, 0, 1},
	"UPPER":     {types.LogicalTypeString, 0, 0},
	"LOWER":     {types.LogicalTypeString, 0, 0},
	"REPLACE":   {types.LogicalTypeString, 1, 2},
}

func compileSelect(query, text string) (*types.Statement, error) {
	stmt, err := selectParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}

	item := &types.ItemStatement{}
	projectionText := "*"
	if !stmt.Projection.Star {
		columns, paths, err := projectionColumns(stmt.Projection.Items)
		if err != nil {
			return nil, compileError(query, "", err)
		}
		item.Columns = columns
		projectionText = strings.Join(paths, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + projectionText + " FROM " + stmt.From.String())
	if stmt.Where != nil {
		sb.WriteString(" WHERE " + stmt.Where.String())
	}
	if len(stmt.OrderBy) > 0 {
		parts := make([]string, 0, len(stmt.OrderBy))
		for _, o := range stmt.OrderBy {
			parts = append(parts, o.String())
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	limit := 0
	if stmt.Limit != nil {
		if *stmt.Limit <= 0 {
			return nil, compileError(query, "LIMIT", fmt.Errorf("limit must be positive, got %d", *stmt.Limit))
		}
		limit = *stmt.Limit
	}

	for _, opt := range stmt.Options {
		switch strings.ToLower(opt.Name) {
		case "consistentread":
			v, err := strconv.ParseBool(unquote(opt.Value))
			if err != nil {
				return nil, compileError(query, opt.Name+" "+opt.Value, err)
			}
			item.ConsistentRead = &v
		case "returnconsumedcapacity":
			v := ddbtypes.ReturnConsumedCapacity(strings.ToUpper(unquote(opt.Value)))
			if !validConsumedCapacity(v) {
				return nil, compileError(query, opt.Name+" "+opt.Value, &LookupError{Kind: "ReturnConsumedCapacity", Value: opt.Value})
			}
			item.ReturnConsumedCapacity = v
		default:
			return nil, compileError(query, opt.Name, fmt.Errorf("unknown option %s", opt.Name))
		}
	}

	return itemStatement(query, types.QueryKindSelect, sb.String(), item, limit)
}

func compileInsert(query, text string) (*types.Statement, error) {
	stmt, err := insertParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	statement := "INSERT INTO " + stmt.Table.String() + " VALUE " + stmt.Value.String()
	return itemStatement(query, types.QueryKindInsert, statement, &types.ItemStatement{}, 0)
}

func compileUpdate(query, text string) (*types.Statement, error) {
	stmt, err := updateParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	statement := "UPDATE " + stmt.Table.String() + " " + sourceText(text, stmt.Clauses.Tokens, stmt.Clauses.Words) +
		" WHERE " + stmt.Where.String()
	if stmt.Returning != nil {
		statement += " " + stmt.Returning.String()
	}
	return itemStatement(query, types.QueryKindUpdate, statement, &types.ItemStatement{}, 0)
}

func compileDelete(query, text string) (*types.Statement, error) {
	stmt, err := deleteParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	statement := "DELETE FROM " + stmt.Table.String() + " WHERE " + stmt.Where.String()
	if stmt.Returning != nil {
		statement += " " + stmt.Returning.String()
	}
	return itemStatement(query, types.QueryKindDelete, statement, &types.ItemStatement{}, 0)
}

func itemStatement(query string, kind types.QueryKind, statement string, item *types.ItemStatement, limit int) (*types.Statement, error) {
	count, err := countParams(statement)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	item.Statement = statement
	item.ParameterCount = count
	return &types.Statement{
		Query: query,
		Kind:  kind,
		Item:  item,
		Limit: limit,
	}, nil
}

// projectionColumns extracts column metadata in source order and the bare
// paths to request from the store, deduplicated.
func projectionColumns(items []*projectionItem) ([]types.ProjectionColumn, []string, error) {
	columns := make([]types.ProjectionColumn, 0, len(items))
	var paths []string
	seenPaths := map[string]bool{}
	seenNames := map[string]bool{}

	for _, it := range items {
		col := types.ProjectionColumn{}
		p := it.Path
		if it.Call != nil {
			fn, argPath, resultType, err := projectionFunction(it.Call)
			if err != nil {
				return nil, nil, err
			}
			p = argPath
			col.Function = fn
			col.Type = resultType
		}
		col.Path = p.displayName()
		col.Segments = p.segments()
		col.Name = col.Path
		if it.Alias != nil {
			col.Alias = unquote(*it.Alias)
			col.Name = col.Alias
		}
		if seenNames[col.Name] {
			return nil, nil, fmt.Errorf("duplicate column name %s", col.Name)
		}
		seenNames[col.Name] = true
		columns = append(columns, col)

		rendered := p.String()
		if !seenPaths[rendered] {
			seenPaths[rendered] = true
			paths = append(paths, rendered)
		}
	}
	return columns, paths, nil
}

func projectionFunction(call *funcCall) (*types.Function, *path, types.LogicalType, error) {
	fnName := strings.ToUpper(call.Name)
	spec, ok := projectionFunctions[fnName]
	if !ok {
		return nil, nil, types.LogicalTypeUnknown, &LookupError{Kind: "function", Value: call.Name}
	}
	if len(call.Args) == 0 || call.Args[0].Path == nil {
		return nil, nil, types.LogicalTypeUnknown, fmt.Errorf("%s: first argument must be a column", fnName)
	}
	params := call.Args[1:]
	if len(params) < spec.minParams || len(params) > spec.maxParams {
		return nil, nil, types.LogicalTypeUnknown, fmt.Errorf("%s: expected %d to %d parameters, got %d",
			fnName, spec.minParams, spec.maxParams, len(params))
	}
	fn := &types.Function{Name: fnName}
	for _, op := range params {
		v, err := literalValue(op)
		if err != nil {
			return nil, nil, types.LogicalTypeUnknown, fmt.Errorf("%s: %w", fnName, err)
		}
		fn.Params = append(fn.Params, v)
	}
	return fn, call.Args[0].Path, spec.resultType, nil
}

// literalValue converts a literal operand to string, int64 or float64.
func literalValue(op *operand) (interface{}, error) {
	switch {
	case op.Str != nil:
		return unquote(*op.Str), nil
	case op.Num != nil:
		if i, err := strconv.ParseInt(*op.Num, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(*op.Num, 64)
	}
	return nil, fmt.Errorf("parameter %s is not a literal", op.String())
}

func validConsumedCapacity(v ddbtypes.ReturnConsumedCapacity) bool {
	for _, allowed := range v.Values() {
		if v == allowed {
			return true
		}
	}
	return false
}

// sourceText returns the query text spanned by tokens, falling back to the joined words.
func sourceText(text string, tokens []lexer.Token, words []string) string {
	if len(tokens) > 0 {
		first, last := tokens[0], tokens[len(tokens)-1]
		start, end := first.Pos.Offset, last.Pos.Offset+len(last.Value)
		if start >= 0 && end <= len(text) && start < end {
			return strings.TrimSpace(text[start:end])
		}
	}
	return strings.Join(words, " ")
}

var paramToken = itemLexer.Symbols()["Param"]

func countParams(statement string) (int, error) {
	lex, err := itemLexer.LexString("", statement)
	if err != nil {
		return 0, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, tok := range tokens {
		if tok.Type == paramToken {
			count++
		}
	}
	return count, nil
}
