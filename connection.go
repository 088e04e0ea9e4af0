// Package dynamosql runs SQL-flavored statements against DynamoDB.
//
// Statements are compiled by the parser package into PartiQL item statements
// or control-plane requests, then executed through a Cursor that pages
// through the results and converts items into rows.
//
// Example:
//
//	conn := dynamosql.NewConnection(dynamodb.NewFromConfig(cfg))
//	cur := conn.Cursor()
//	err := cur.Execute(ctx, `SELECT * FROM "Issues" WHERE IssueId = ?`, 42)
//	rows, err := cur.FetchAll(ctx)
package dynamosql

import (
	"github.com/kent-id/dynamosql/parser"
	"github.com/kent-id/dynamosql/types"
)

// Options configures a Connection.
type Options struct {
	Retry RetryPolicy

	// ConsistentRead is applied to SELECT statements that do not set it.
	ConsistentRead *bool
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) func(*Options) {
	return func(o *Options) {
		o.Retry = policy
	}
}

// WithConsistentRead sets the default read consistency of SELECT statements.
func WithConsistentRead(consistent bool) func(*Options) {
	return func(o *Options) {
		o.ConsistentRead = &consistent
	}
}

// Connection binds a network client to the statement engine.
// It is safe to share; each Cursor owns its own result state.
type Connection struct {
	client  Client
	options Options
}

// NewConnection creates a Connection over client, usually a *dynamodb.Client.
func NewConnection(client Client, optFns ...func(*Options)) *Connection {
	options := Options{Retry: DefaultRetryPolicy()}
	for _, fn := range optFns {
		fn(&options)
	}
	LogInfof("creating connection with retry policy: %+v", options.Retry)
	return &Connection{client: client, options: options}
}

// Cursor returns a new open cursor.
func (c *Connection) Cursor() *Cursor {
	return &Cursor{conn: c}
}

// Compile compiles one statement without executing it.
func (c *Connection) Compile(query string) (*types.Statement, error) {
	stmt, err := parser.Compile(query)
	if err != nil {
		return nil, err
	}
	for _, w := range stmt.Warnings {
		LogWarnf("%s: %s", stmt.Kind, w)
	}
	LogDebugf("compiled %s statement: %+v", stmt.Kind, stmt.Item)
	return stmt, nil
}
