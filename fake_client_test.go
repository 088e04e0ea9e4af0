package dynamosql

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// fakeClient records every request and answers from the configured funcs.
// Methods without a func return an empty output.
type fakeClient struct {
	executeStatement      func(*dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error)
	batchExecuteStatement func(*dynamodb.BatchExecuteStatementInput) (*dynamodb.BatchExecuteStatementOutput, error)
	executeTransaction    func(*dynamodb.ExecuteTransactionInput) (*dynamodb.ExecuteTransactionOutput, error)
	listTables            func(*dynamodb.ListTablesInput) (*dynamodb.ListTablesOutput, error)
	describeTable         func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)

	calls    []string
	requests []interface{}
}

func (f *fakeClient) record(name string, input interface{}) {
	f.calls = append(f.calls, name)
	f.requests = append(f.requests, input)
}

func (f *fakeClient) ExecuteStatement(ctx context.Context, params *dynamodb.ExecuteStatementInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ExecuteStatementOutput, error) {
	f.record("ExecuteStatement", params)
	if f.executeStatement != nil {
		return f.executeStatement(params)
	}
	return &dynamodb.ExecuteStatementOutput{}, nil
}

func (f *fakeClient) BatchExecuteStatement(ctx context.Context, params *dynamodb.BatchExecuteStatementInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchExecuteStatementOutput, error) {
	f.record("BatchExecuteStatement", params)
	if f.batchExecuteStatement != nil {
		return f.batchExecuteStatement(params)
	}
	return &dynamodb.BatchExecuteStatementOutput{}, nil
}

func (f *fakeClient) ExecuteTransaction(ctx context.Context, params *dynamodb.ExecuteTransactionInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ExecuteTransactionOutput, error) {
	f.record("ExecuteTransaction", params)
	if f.executeTransaction != nil {
		return f.executeTransaction(params)
	}
	return &dynamodb.ExecuteTransactionOutput{}, nil
}

func (f *fakeClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.record("CreateTable", params)
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeClient) UpdateTable(ctx context.Context, params *dynamodb.UpdateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTableOutput, error) {
	f.record("UpdateTable", params)
	return &dynamodb.UpdateTableOutput{}, nil
}

func (f *fakeClient) DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	f.record("DeleteTable", params)
	return &dynamodb.DeleteTableOutput{}, nil
}

func (f *fakeClient) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	f.record("ListTables", params)
	if f.listTables != nil {
		return f.listTables(params)
	}
	return &dynamodb.ListTablesOutput{}, nil
}

func (f *fakeClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.record("DescribeTable", params)
	if f.describeTable != nil {
		return f.describeTable(params)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func (f *fakeClient) CreateGlobalTable(ctx context.Context, params *dynamodb.CreateGlobalTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateGlobalTableOutput, error) {
	f.record("CreateGlobalTable", params)
	return &dynamodb.CreateGlobalTableOutput{}, nil
}

func (f *fakeClient) UpdateGlobalTable(ctx context.Context, params *dynamodb.UpdateGlobalTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateGlobalTableOutput, error) {
	f.record("UpdateGlobalTable", params)
	return &dynamodb.UpdateGlobalTableOutput{}, nil
}

func (f *fakeClient) ListGlobalTables(ctx context.Context, params *dynamodb.ListGlobalTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListGlobalTablesOutput, error) {
	f.record("ListGlobalTables", params)
	return &dynamodb.ListGlobalTablesOutput{}, nil
}

func (f *fakeClient) DescribeGlobalTable(ctx context.Context, params *dynamodb.DescribeGlobalTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeGlobalTableOutput, error) {
	f.record("DescribeGlobalTable", params)
	return &dynamodb.DescribeGlobalTableOutput{}, nil
}

// noSleep is a retry policy that records waits instead of sleeping.
func noSleep(policy RetryPolicy, waits *[]time.Duration) RetryPolicy {
	policy.sleep = func(d time.Duration) {
		*waits = append(*waits, d)
	}
	return policy
}
