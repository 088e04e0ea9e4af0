package dynamosql

import (
	"context"
	"sync"

	"github.com/kent-id/dynamosql/types"
	"github.com/pborman/uuid"
)

// BatchStatement is one statement text with its positional parameters.
type BatchStatement struct {
	Query  string
	Params []interface{}
}

// Cursor executes statements and pages through their results.
//
// A cursor holds one result set at a time: each Execute* call replaces the
// previous one. Rows are fetched lazily, one native call per page, and a
// client row limit (SELECT ... LIMIT n, LIST TABLES Limit n) is enforced here.
// All methods are serialized by one mutex.
type Cursor struct {
	mu   sync.Mutex
	conn *Connection

	closed bool
	active bool

	batch    *statementBatch
	exec     executor
	registry *columnRegistry
	buffer   []Row
	token    *string
	returned int
	limit    int
	errors   []ItemError
}

// Execute runs one statement.
func (c *Cursor) Execute(ctx context.Context, query string, params ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCursorClosed
	}
	stmt, err := c.conn.Compile(query)
	if err != nil {
		return err
	}
	batch := &statementBatch{}
	if err := batch.add(stmt, params); err != nil {
		return err
	}
	return c.run(ctx, batch, false, "")
}

// ExecuteMany runs one statement once per parameter set, as a single batch call.
func (c *Cursor) ExecuteMany(ctx context.Context, query string, paramSets [][]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCursorClosed
	}
	if len(paramSets) == 0 {
		return &ValidationError{Reason: "empty statement batch"}
	}
	stmt, err := c.conn.Compile(query)
	if err != nil {
		return err
	}
	batch := &statementBatch{}
	for _, params := range paramSets {
		if err := batch.add(stmt, params); err != nil {
			return err
		}
	}
	return c.run(ctx, batch, false, "")
}

// ExecuteBatch runs several statements of the same family as a single batch call.
func (c *Cursor) ExecuteBatch(ctx context.Context, statements []BatchStatement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCursorClosed
	}
	batch, err := c.compileBatch(statements)
	if err != nil {
		return err
	}
	return c.run(ctx, batch, false, "")
}

// ExecuteTransaction runs statements as one transaction. An empty
// clientRequestToken is replaced by a random one.
func (c *Cursor) ExecuteTransaction(ctx context.Context, statements []BatchStatement, clientRequestToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCursorClosed
	}
	batch, err := c.compileBatch(statements)
	if err != nil {
		return err
	}
	if clientRequestToken == "" {
		clientRequestToken = uuid.New()
	}
	return c.run(ctx, batch, true, clientRequestToken)
}

func (c *Cursor) compileBatch(statements []BatchStatement) (*statementBatch, error) {
	if len(statements) == 0 {
		return nil, &ValidationError{Reason: "empty statement batch"}
	}
	batch := &statementBatch{}
	for _, s := range statements {
		stmt, err := c.conn.Compile(s.Query)
		if err != nil {
			return nil, err
		}
		if err := batch.add(stmt, s.Params); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

// run replaces the current result set and fetches the first page.
func (c *Cursor) run(ctx context.Context, batch *statementBatch, transaction bool, clientRequestToken string) error {
	c.reset()

	registry := newColumnRegistry()
	projection := batch.sharedProjection()
	if projection != nil {
		registry = newProjectionRegistry(projection)
	}

	exec, err := newExecutor(batch, transaction, executorConfig{
		client:             c.conn.client,
		retry:              c.conn.options.Retry,
		registry:           registry,
		projected:          projection != nil,
		clientRequestToken: clientRequestToken,
		consistentRead:     c.conn.options.ConsistentRead,
	})
	if err != nil {
		return err
	}

	p, err := exec.fetch(ctx, nil)
	if p != nil {
		c.errors = append(c.errors, p.errors...)
	}
	if err != nil {
		return err
	}

	c.batch = batch
	c.exec = exec
	c.registry = registry
	c.limit = batch.limit
	c.active = true
	c.buffer = append(c.buffer, p.rows...)
	c.token = p.next
	return nil
}

func (c *Cursor) reset() {
	c.active = false
	c.batch = nil
	c.exec = nil
	c.registry = nil
	c.buffer = nil
	c.token = nil
	c.returned = 0
	c.limit = 0
	c.errors = nil
}

// FetchOne returns the next row, or nil when no rows remain.
func (c *Cursor) FetchOne(ctx context.Context) (Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkState(); err != nil {
		return nil, err
	}
	return c.fetchOne(ctx)
}

// FetchMany returns up to size rows, fewer at the end of the result set.
// A size of zero or less returns no rows and fetches nothing.
func (c *Cursor) FetchMany(ctx context.Context, size int) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkState(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return []Row{}, nil
	}
	rows := make([]Row, 0, size)
	for len(rows) < size {
		row, err := c.fetchOne(ctx)
		if err != nil {
			return rows, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchAll returns every remaining row.
func (c *Cursor) FetchAll(ctx context.Context) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkState(); err != nil {
		return nil, err
	}
	var rows []Row
	for {
		row, err := c.fetchOne(ctx)
		if err != nil {
			return rows, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

func (c *Cursor) fetchOne(ctx context.Context) (Row, error) {
	if c.limitReached() {
		c.buffer = nil
		return nil, nil
	}

	for len(c.buffer) == 0 && c.token != nil {
		LogInfof("fetching next page using token: %s", *c.token)
		p, err := c.exec.fetch(ctx, c.token)
		if err != nil {
			return nil, err
		}
		c.errors = append(c.errors, p.errors...)
		c.buffer = append(c.buffer, p.rows...)
		c.token = p.next
	}
	if len(c.buffer) == 0 {
		return nil, nil
	}

	row := c.buffer[0]
	c.buffer = c.buffer[1:]
	c.returned++
	if c.limitReached() {
		c.buffer = nil
	}
	return row, nil
}

func (c *Cursor) limitReached() bool {
	return c.limit > 0 && c.returned >= c.limit
}

func (c *Cursor) checkState() error {
	if c.closed {
		return ErrCursorClosed
	}
	if !c.active {
		return ErrNoResultSet
	}
	return nil
}

// Close discards the result set. A closed cursor rejects every further call.
func (c *Cursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.closed = true
	return nil
}

// Columns returns the column metadata discovered so far.
func (c *Cursor) Columns() []Column {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry == nil {
		return nil
	}
	return c.registry.snapshot()
}

// Errors returns the per-item failures reported by batch and transaction calls.
func (c *Cursor) Errors() []ItemError {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]ItemError(nil), c.errors...)
}

// RowCount returns the number of rows fetched so far.
func (c *Cursor) RowCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.returned
}

// Limit returns the client row limit of the current result set, 0 when unlimited.
func (c *Cursor) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.limit
}

// Statements returns the compiled statements of the current result set.
func (c *Cursor) Statements() []*types.Statement {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batch == nil {
		return nil
	}
	out := make([]*types.Statement, 0, c.batch.size())
	for _, bs := range c.batch.statements {
		out = append(out, bs.stmt)
	}
	return out
}

// buffered is the number of rows waiting in the buffer.
func (c *Cursor) buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.buffer)
}
