package parser

import (
	"strings"
)

// Shared rules of the control-plane dialect.

type name struct {
	Value string `@(Ident | QuotedIdent | String)`
}

func (n *name) String() string {
	return unquote(n.Value)
}

// option is a dotted option path followed by its value, e.g.
// ProvisionedThroughput.ReadCapacityUnits 5 or Tags (env:prod, team:data).
type option struct {
	Path  []string     `@Ident ( "." @Ident )*`
	Value *optionValue `@@`
}

type optionValue struct {
	List   []*listItem `  "(" ( @@ ( "," @@ )* )? ")"`
	Scalar *string     `| @(Ident | Number | String | QuotedIdent)`
}

// listItem is either a plain value or a key:value pair.
type listItem struct {
	Key   string  `@(Ident | Number | String | QuotedIdent)`
	Value *string `( ":" @(Ident | Number | String | QuotedIdent) )?`
}

// attributeDef declares an attribute with its type keyword and an optional key role.
// Role words are captured loosely so an unknown role surfaces as a LookupError.
// Attribute names that are keywords (Key, Index, ...) must be quoted.
type attributeDef struct {
	Name string   `@(Ident | QuotedIdent)`
	Type string   `@Ident`
	Role []string `@(Keyword | Ident)*`
}

func (a *attributeDef) role() string {
	return strings.ToUpper(strings.Join(a.Role, " "))
}

// indexElement is a key attribute with its role, or an index option.
type indexElement struct {
	Path   []string     `@(Ident | QuotedIdent) ( "." @Ident )*`
	Role   []string     `( @Keyword+`
	Option *optionValue `| @@ )`
}

func (e *indexElement) role() string {
	return strings.ToUpper(strings.Join(e.Role, " "))
}

type indexDef struct {
	Name     string          `"INDEX" @(Ident | QuotedIdent)`
	Type     string          `@(Keyword | Ident)`
	Elements []*indexElement `"(" @@ ( "," @@ )* ")"`
}

type tableElement struct {
	Index     *indexDef     `  @@`
	Attribute *attributeDef `| @@`
}

type createTableStmt struct {
	Table    *name           `"CREATE" "TABLE" @@`
	Elements []*tableElement `"(" @@ ( "," @@ )* ")"`
	Options  []*option       `@@*`
}

type indexAction struct {
	Verb     string          `@("CREATE" | "UPDATE" | "DELETE")`
	Name     string          `"INDEX" @(Ident | QuotedIdent)`
	Type     string          `@(Keyword | Ident)`
	Elements []*indexElement `( "(" @@ ( "," @@ )* ")" )?`
}

type replicaAction struct {
	Verb    string    `@("CREATE" | "UPDATE" | "DELETE")`
	Options []*option `"REPLICA" "(" @@ ( "," @@ )* ")"`
}

type alterAction struct {
	Index   *indexAction   `  @@`
	Replica *replicaAction `| @@`
}

type alterTableStmt struct {
	Table      *name           `"ALTER" "TABLE" @@`
	Attributes []*attributeDef `( "(" @@ ( "," @@ )* ")" )?`
	Options    []*option       `@@*`
	Actions    []*alterAction  `@@*`
}

type dropTableStmt struct {
	Table *name `"DROP" "TABLE" @@`
}

type createGlobalTableStmt struct {
	Table   *name     `"CREATE" "GLOBAL" "TABLE" @@`
	Options []*option `@@*`
}

type dropGlobalTableStmt struct {
	Table   *name     `"DROP" "GLOBAL" "TABLE" @@`
	Options []*option `@@*`
}

type listTablesStmt struct {
	Options []*option `"LIST" "TABLES" @@*`
}

type listGlobalTablesStmt struct {
	Options []*option `"LIST" "GLOBAL" "TABLES" @@*`
}

type describeTableStmt struct {
	Table *name `("DESC" | "DESCRIBE") "TABLE" @@`
}

type describeGlobalTableStmt struct {
	Table *name `("DESC" | "DESCRIBE") "GLOBAL" "TABLE" @@`
}

var (
	createTableParser         = buildControlParser[createTableStmt]()
	alterTableParser          = buildControlParser[alterTableStmt]()
	dropTableParser           = buildControlParser[dropTableStmt]()
	createGlobalTableParser   = buildControlParser[createGlobalTableStmt]()
	dropGlobalTableParser     = buildControlParser[dropGlobalTableStmt]()
	listTablesParser          = buildControlParser[listTablesStmt]()
	listGlobalTablesParser    = buildControlParser[listGlobalTablesStmt]()
	describeTableParser       = buildControlParser[describeTableStmt]()
	describeGlobalTableParser = buildControlParser[describeGlobalTableStmt]()
)
