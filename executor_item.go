package dynamosql

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
	"github.com/kent-id/dynamosql/util"
)

type statementExecutor struct {
	cfg       executorConfig
	statement boundStatement
}

func (e *statementExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	item := e.statement.stmt.Item
	params, err := SerializeParams(e.statement.params)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.ExecuteStatementInput{
		Statement:              aws.String(item.Statement),
		Parameters:             params,
		ConsistentRead:         consistentRead(item, e.cfg.consistentRead),
		ReturnConsumedCapacity: item.ReturnConsumedCapacity,
		NextToken:              token,
	}

	var output *dynamodb.ExecuteStatementOutput
	err = e.cfg.retry.do("ExecuteStatement", func() (err error) {
		LogInfof("executing statement: %s", item.Statement)
		output, err = e.cfg.client.ExecuteStatement(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	p := &page{next: continuation(output.NextToken)}
	for _, it := range output.Items {
		row, err := e.cfg.registry.rowFromItem(it, e.cfg.projected)
		if err != nil {
			return nil, err
		}
		p.rows = append(p.rows, row)
	}
	LogInfof("fetched %d item(s), more pages: %t", len(p.rows), p.next != nil)
	return p, nil
}

type batchExecutor struct {
	cfg        executorConfig
	statements []boundStatement
}

func (e *batchExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	if token != nil {
		return &page{}, nil
	}

	requests := make([]ddbtypes.BatchStatementRequest, 0, len(e.statements))
	for _, bs := range e.statements {
		params, err := SerializeParams(bs.params)
		if err != nil {
			return nil, err
		}
		requests = append(requests, ddbtypes.BatchStatementRequest{
			Statement:      aws.String(bs.stmt.Item.Statement),
			Parameters:     params,
			ConsistentRead: consistentRead(bs.stmt.Item, e.cfg.consistentRead),
		})
	}
	input := &dynamodb.BatchExecuteStatementInput{
		Statements:             requests,
		ReturnConsumedCapacity: e.statements[0].stmt.Item.ReturnConsumedCapacity,
	}

	var output *dynamodb.BatchExecuteStatementOutput
	err := e.cfg.retry.do("BatchExecuteStatement", func() (err error) {
		LogInfof("executing batch of %d statement(s)", len(requests))
		output, err = e.cfg.client.BatchExecuteStatement(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	p := &page{}
	for i, resp := range output.Responses {
		if resp.Error != nil {
			itemErr := ItemError{
				Index:   i,
				Code:    string(resp.Error.Code),
				Message: util.SafeString(resp.Error.Message),
			}
			LogWarnf("batch %s", itemErr)
			p.errors = append(p.errors, itemErr)
			continue
		}
		if resp.Item == nil {
			continue
		}
		row, err := e.cfg.registry.rowFromItem(resp.Item, e.cfg.projected)
		if err != nil {
			return nil, err
		}
		p.rows = append(p.rows, row)
	}
	return p, nil
}

type transactionExecutor struct {
	cfg        executorConfig
	statements []boundStatement
}

func (e *transactionExecutor) fetch(ctx context.Context, token *string) (*page, error) {
	if token != nil {
		return &page{}, nil
	}

	statements := make([]ddbtypes.ParameterizedStatement, 0, len(e.statements))
	for _, bs := range e.statements {
		params, err := SerializeParams(bs.params)
		if err != nil {
			return nil, err
		}
		statements = append(statements, ddbtypes.ParameterizedStatement{
			Statement:  aws.String(bs.stmt.Item.Statement),
			Parameters: params,
		})
	}
	input := &dynamodb.ExecuteTransactionInput{
		TransactStatements:     statements,
		ReturnConsumedCapacity: e.statements[0].stmt.Item.ReturnConsumedCapacity,
	}
	if e.cfg.clientRequestToken != "" {
		input.ClientRequestToken = aws.String(e.cfg.clientRequestToken)
	}

	var output *dynamodb.ExecuteTransactionOutput
	err := e.cfg.retry.do("ExecuteTransaction", func() (err error) {
		LogInfof("executing transaction of %d statement(s), token: %s", len(statements), e.cfg.clientRequestToken)
		output, err = e.cfg.client.ExecuteTransaction(ctx, input)
		return err
	})
	if err != nil {
		return &page{errors: cancellationReasons(err)}, err
	}

	p := &page{}
	for _, resp := range output.Responses {
		if resp.Item == nil {
			continue
		}
		row, err := e.cfg.registry.rowFromItem(resp.Item, e.cfg.projected)
		if err != nil {
			return nil, err
		}
		p.rows = append(p.rows, row)
	}
	return p, nil
}

// cancellationReasons turns the per-statement reasons of a cancelled
// transaction into error log entries. Reasons with code None are skipped.
func cancellationReasons(err error) []ItemError {
	var cancelled *ddbtypes.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		return nil
	}
	var out []ItemError
	for i, reason := range cancelled.CancellationReasons {
		code := util.SafeString(reason.Code)
		if code == "" || code == "None" {
			continue
		}
		out = append(out, ItemError{Index: i, Code: code, Message: util.SafeString(reason.Message)})
	}
	return out
}

// consistentRead applies the connection default to SELECT statements that set none.
func consistentRead(item *types.ItemStatement, fallback *bool) *bool {
	if item.ConsistentRead != nil {
		return item.ConsistentRead
	}
	if strings.HasPrefix(item.Statement, "SELECT ") {
		return fallback
	}
	return nil
}

// continuation treats an empty token as the last page.
func continuation(token *string) *string {
	return util.NilIfEmpty(util.SafeString(token))
}
