package dynamosql

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kent-id/dynamosql/types"
	"github.com/kent-id/dynamosql/util"
)

const (
	responseNameColumn  = "response_name"
	responseValueColumn = "response_value"
)

// controlExecutor issues one control-plane call and flattens its output
// into response_name/response_value rows.
type controlExecutor struct {
	cfg       executorConfig
	operation string
	call      func(ctx context.Context) (interface{}, error)
}

func newControlExecutor(kind executorKind, cfg executorConfig, stmt *types.Statement) (executor, error) {
	c := cfg.client
	var call func(ctx context.Context) (interface{}, error)

	switch kind {
	case executorCreateTable:
		input, ok := stmt.Request.(*dynamodb.CreateTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.CreateTable(ctx, input) }
	case executorUpdateTable:
		input, ok := stmt.Request.(*dynamodb.UpdateTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.UpdateTable(ctx, input) }
	case executorDeleteTable:
		input, ok := stmt.Request.(*dynamodb.DeleteTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.DeleteTable(ctx, input) }
	case executorCreateGlobalTable:
		input, ok := stmt.Request.(*dynamodb.CreateGlobalTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.CreateGlobalTable(ctx, input) }
	case executorUpdateGlobalTable:
		input, ok := stmt.Request.(*dynamodb.UpdateGlobalTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.UpdateGlobalTable(ctx, input) }
	case executorDescribeTable:
		input, ok := stmt.Request.(*dynamodb.DescribeTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.DescribeTable(ctx, input) }
	case executorDescribeGlobalTable:
		input, ok := stmt.Request.(*dynamodb.DescribeGlobalTableInput)
		if !ok {
			return nil, requestTypeError(stmt)
		}
		call = func(ctx context.Context) (interface{}, error) { return c.DescribeGlobalTable(ctx, input) }
	default:
		return nil, fmt.Errorf("%s is not a control-plane executor", kind)
	}

	cfg.registry.register(responseNameColumn).Type = types.LogicalTypeString
	cfg.registry.register(responseValueColumn).Type = types.LogicalTypeString
	return &controlExecutor{cfg: cfg, operation: kind.String(), call: call}, nil
}

func (e *controlExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	if token != nil {
		return &page{}, nil
	}

	var output interface{}
	err := e.cfg.retry.do(e.operation, func() (err error) {
		LogInfof("calling %s", e.operation)
		output, err = e.call(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	fields, err := flattenResponse(output)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.operation, err)
	}
	p := &page{}
	for _, f := range fields {
		p.rows = append(p.rows, e.cfg.registry.rowFromValues(map[string]interface{}{
			responseNameColumn:  f[0],
			responseValueColumn: f[1],
		}))
	}
	return p, nil
}

// flattenResponse lists the set exported fields of an output struct in
// declaration order as name and JSON-encoded value pairs.
func flattenResponse(output interface{}) ([][2]string, error) {
	rv := reflect.ValueOf(output)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("response of type %T is not a struct", output)
	}

	var out [][2]string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" || field.Name == "ResultMetadata" {
			continue
		}
		value := rv.Field(i)
		if value.IsZero() {
			continue
		}
		encoded, err := json.Marshal(value.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field.Name, err)
		}
		out = append(out, [2]string{field.Name, string(encoded)})
	}
	return out, nil
}

func requestTypeError(stmt *types.Statement) error {
	return fmt.Errorf("statement %s carries request of type %T", stmt.Kind, stmt.Request)
}

const listTableNameColumn = "TableName"

// listTablesExecutor produces one row per table and resumes from the last
// evaluated table name.
type listTablesExecutor struct {
	cfg   executorConfig
	input *dynamodb.ListTablesInput
}

func newListTablesExecutor(cfg executorConfig, stmt *types.Statement) (executor, error) {
	input, ok := stmt.Request.(*dynamodb.ListTablesInput)
	if !ok {
		return nil, requestTypeError(stmt)
	}
	cfg.registry.register(listTableNameColumn).Type = types.LogicalTypeString
	return &listTablesExecutor{cfg: cfg, input: input}, nil
}

func (e *listTablesExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	input := *e.input
	input.ExclusiveStartTableName = token

	var output *dynamodb.ListTablesOutput
	err := e.cfg.retry.do("ListTables", func() (err error) {
		LogInfof("listing tables from: %s", util.SafeString(token))
		output, err = e.cfg.client.ListTables(ctx, &input)
		return err
	})
	if err != nil {
		return nil, err
	}

	p := &page{next: continuation(output.LastEvaluatedTableName)}
	for _, name := range output.TableNames {
		p.rows = append(p.rows, e.cfg.registry.rowFromValues(map[string]interface{}{listTableNameColumn: name}))
	}
	return p, nil
}

const (
	listGlobalTableNameColumn  = "GlobalTableName"
	listReplicationGroupColumn = "ReplicationGroup"
)

type listGlobalTablesExecutor struct {
	cfg   executorConfig
	input *dynamodb.ListGlobalTablesInput
}

func newListGlobalTablesExecutor(cfg executorConfig, stmt *types.Statement) (executor, error) {
	input, ok := stmt.Request.(*dynamodb.ListGlobalTablesInput)
	if !ok {
		return nil, requestTypeError(stmt)
	}
	cfg.registry.register(listGlobalTableNameColumn).Type = types.LogicalTypeString
	cfg.registry.register(listReplicationGroupColumn).Type = types.LogicalTypeObject
	return &listGlobalTablesExecutor{cfg: cfg, input: input}, nil
}

func (e *listGlobalTablesExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	input := *e.input
	input.ExclusiveStartGlobalTableName = token

	var output *dynamodb.ListGlobalTablesOutput
	err := e.cfg.retry.do("ListGlobalTables", func() (err error) {
		LogInfof("listing global tables from: %s", util.SafeString(token))
		output, err = e.cfg.client.ListGlobalTables(ctx, &input)
		return err
	})
	if err != nil {
		return nil, err
	}

	p := &page{next: continuation(output.LastEvaluatedGlobalTableName)}
	for _, gt := range output.GlobalTables {
		regions := make([]interface{}, 0, len(gt.ReplicationGroup))
		for _, r := range gt.ReplicationGroup {
			regions = append(regions, util.SafeString(r.RegionName))
		}
		p.rows = append(p.rows, e.cfg.registry.rowFromValues(map[string]interface{}{
			listGlobalTableNameColumn:  util.SafeString(gt.GlobalTableName),
			listReplicationGroupColumn: regions,
		}))
	}
	return p, nil
}
