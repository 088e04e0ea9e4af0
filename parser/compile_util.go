package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kent-id/dynamosql/types"
)

// maxListPageSize is the largest page the list operations accept.
const maxListPageSize = 100

func compileListTables(query, text string) (*types.Statement, error) {
	stmt, err := listTablesParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	options, warnings := nestOptions(stmt.Options)
	limit, err := optionLimit(options)
	if err != nil {
		return nil, compileError(query, "Limit", err)
	}
	input := &dynamodb.ListTablesInput{}
	unused, err := decodeOptions(options, input)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	input.Limit = pageSize(limit)
	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindListTables,
		Request:  input,
		Limit:    limit,
		Warnings: append(warnings, unused...),
	}, nil
}

func compileListGlobalTables(query, text string) (*types.Statement, error) {
	stmt, err := listGlobalTablesParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	options, warnings := nestOptions(stmt.Options)
	limit, err := optionLimit(options)
	if err != nil {
		return nil, compileError(query, "Limit", err)
	}
	input := &dynamodb.ListGlobalTablesInput{}
	unused, err := decodeOptions(options, input)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	input.Limit = pageSize(limit)
	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindListGlobalTables,
		Request:  input,
		Limit:    limit,
		Warnings: append(warnings, unused...),
	}, nil
}

func compileDescribeTable(query, text string) (*types.Statement, error) {
	stmt, err := describeTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	return &types.Statement{
		Query:   query,
		Kind:    types.QueryKindDescribeTable,
		Request: &dynamodb.DescribeTableInput{TableName: aws.String(stmt.Table.String())},
	}, nil
}

func compileDescribeGlobalTable(query, text string) (*types.Statement, error) {
	stmt, err := describeGlobalTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	return &types.Statement{
		Query:   query,
		Kind:    types.QueryKindDescribeGlobalTable,
		Request: &dynamodb.DescribeGlobalTableInput{GlobalTableName: aws.String(stmt.Table.String())},
	}, nil
}

// optionLimit reads the Limit option, which doubles as the client row limit.
func optionLimit(options optionMap) (int, error) {
	for key, value := range options {
		if !strings.EqualFold(key, "Limit") {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return 0, fmt.Errorf("limit must be a number")
		}
		limit, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		if limit <= 0 {
			return 0, fmt.Errorf("limit must be positive, got %d", limit)
		}
		return limit, nil
	}
	return 0, nil
}

func pageSize(limit int) *int32 {
	if limit <= 0 {
		return nil
	}
	if limit > maxListPageSize {
		limit = maxListPageSize
	}
	return aws.Int32(int32(limit))
}
