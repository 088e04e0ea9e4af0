package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Shared rules of the item-query dialect. Each node renders itself back into
// canonical statement text; rendering walks the tree left to right, so the
// grouping captured by the grammar is what decides precedence in the output.

type tableRef struct {
	Name  string  `@(Ident | QuotedIdent)`
	Index *string `( "." @(Ident | QuotedIdent) )?`
}

func (t *tableRef) String() string {
	s := quoteIdent(unquote(t.Name))
	if t.Index != nil {
		s += "." + quoteIdent(unquote(*t.Index))
	}
	return s
}

type path struct {
	Head  string      `@(Ident | QuotedIdent)`
	Steps []*pathStep `@@*`
}

type pathStep struct {
	Field *string `  "." @(Ident | QuotedIdent)`
	Index *string `| "[" @(Number | String) "]"`
}

func (p *path) String() string {
	var sb strings.Builder
	sb.WriteString(p.Head)
	for _, step := range p.Steps {
		if step.Field != nil {
			sb.WriteString("." + *step.Field)
		} else {
			sb.WriteString("[" + *step.Index + "]")
		}
	}
	return sb.String()
}

// segments returns the unquoted attribute names and bracketed indexes of the path.
func (p *path) segments() []string {
	segs := []string{unquote(p.Head)}
	for _, step := range p.Steps {
		if step.Field != nil {
			segs = append(segs, unquote(*step.Field))
		} else {
			segs = append(segs, "["+unquote(*step.Index)+"]")
		}
	}
	return segs
}

// displayName renders the path without identifier quoting, e.g. map.A or list[0].
func (p *path) displayName() string {
	var sb strings.Builder
	for i, seg := range p.segments() {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			sb.WriteString(".")
		}
		sb.WriteString(seg)
	}
	return sb.String()
}

type operand struct {
	Param bool      `  @Param`
	Str   *string   `| @String`
	Num   *string   `| @Number`
	List  *listLit  `| @@`
	Map   *mapLit   `| @@`
	Call  *funcCall `| @@`
	Path  *path     `| @@`
}

func (o *operand) String() string {
	switch {
	case o.Param:
		return "?"
	case o.Str != nil:
		return *o.Str
	case o.Num != nil:
		return *o.Num
	case o.List != nil:
		return o.List.String()
	case o.Map != nil:
		return o.Map.String()
	case o.Call != nil:
		return o.Call.String()
	case o.Path != nil:
		return o.Path.String()
	}
	return ""
}

type listLit struct {
	Items []*operand `"[" ( @@ ( "," @@ )* )? "]"`
}

func (l *listLit) String() string {
	return "[" + joinOperands(l.Items) + "]"
}

type mapLit struct {
	Entries []*mapEntry `"{" ( @@ ( "," @@ )* )? "}"`
}

type mapEntry struct {
	Key   string   `@(String | QuotedIdent) ":"`
	Value *operand `@@`
}

func (m *mapLit) String() string {
	parts := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		parts = append(parts, e.Key+": "+e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type funcCall struct {
	Name string     `@Ident "("`
	Args []*operand `( @@ ( "," @@ )* )? ")"`
}

func (f *funcCall) String() string {
	return f.Name + "(" + joinOperands(f.Args) + ")"
}

func joinOperands(ops []*operand) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, ", ")
}

// condition is an OR of conjunctions; conjunction an AND of negations.
type condition struct {
	Or []*conjunction `@@ ( "OR" @@ )*`
}

type conjunction struct {
	And []*negation `@@ ( "AND" @@ )*`
}

type negation struct {
	Not       bool       `@"NOT"?`
	Predicate *predicate `@@`
}

type predicate struct {
	Group   *condition  `  "(" @@ ")"`
	Left    *operand    `| @@`
	Compare *comparison `  ( @@`
	Between *between    `  | @@`
	In      *inList     `  | @@`
	Is      *isCheck    `  | @@ )?`
}

type comparison struct {
	Op    string   `@("=" | "<>" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *operand `@@`
}

type between struct {
	Low  *operand `"BETWEEN" @@`
	High *operand `"AND" @@`
}

type inList struct {
	Items []*operand `"IN" ( "[" @@ ( "," @@ )* "]" | "(" @@ ( "," @@ )* ")" )`
}

type isCheck struct {
	Not  bool   `"IS" @"NOT"?`
	What string `@("MISSING" | "NULL")`
}

func (c *condition) String() string {
	parts := make([]string, 0, len(c.Or))
	for _, conj := range c.Or {
		parts = append(parts, conj.String())
	}
	return strings.Join(parts, " OR ")
}

func (c *conjunction) String() string {
	parts := make([]string, 0, len(c.And))
	for _, neg := range c.And {
		parts = append(parts, neg.String())
	}
	return strings.Join(parts, " AND ")
}

func (n *negation) String() string {
	if n.Not {
		return "NOT " + n.Predicate.String()
	}
	return n.Predicate.String()
}

func (p *predicate) String() string {
	if p.Group != nil {
		return "(" + p.Group.String() + ")"
	}
	left := p.Left.String()
	switch {
	case p.Compare != nil:
		return left + " " + p.Compare.Op + " " + p.Compare.Right.String()
	case p.Between != nil:
		return left + " BETWEEN " + p.Between.Low.String() + " AND " + p.Between.High.String()
	case p.In != nil:
		return left + " IN [" + joinOperands(p.In.Items) + "]"
	case p.Is != nil:
		if p.Is.Not {
			return left + " IS NOT " + strings.ToUpper(p.Is.What)
		}
		return left + " IS " + strings.ToUpper(p.Is.What)
	}
	return left
}

type returning struct {
	Words []string `"RETURNING" @( Ident | Operator )+`
}

func (r *returning) String() string {
	return "RETURNING " + strings.Join(r.Words, " ")
}

// SELECT

type selectStmt struct {
	Projection *projection     `"SELECT" @@`
	From       *tableRef       `"FROM" @@`
	Where      *condition      `( "WHERE" @@ )?`
	OrderBy    []*orderItem    `( "ORDER" "BY" @@ ( "," @@ )* )?`
	Limit      *int            `( "LIMIT" @Number )?`
	Options    []*selectOption `@@*`
}

type projection struct {
	Star  bool              `  @"*"`
	Items []*projectionItem `| @@ ( "," @@ )*`
}

type projectionItem struct {
	Call  *funcCall `(  @@`
	Path  *path     ` | @@ )`
	Alias *string   `( "AS"? @(Ident | QuotedIdent) )?`
}

type orderItem struct {
	Path      *path  `@@`
	Direction string `@("ASC" | "DESC")?`
}

func (o *orderItem) String() string {
	if o.Direction != "" {
		return o.Path.String() + " " + strings.ToUpper(o.Direction)
	}
	return o.Path.String()
}

type selectOption struct {
	Name  string `@Ident`
	Value string `@(Ident | Number | String)`
}

// INSERT / UPDATE / DELETE

type insertStmt struct {
	Table *tableRef `"INSERT" "INTO" @@`
	Value *operand  `"VALUE" @@`
}

type updateStmt struct {
	Table     *tableRef      `"UPDATE" @@`
	Clauses   *updateClauses `@@`
	Where     *condition     `"WHERE" @@`
	Returning *returning     `@@?`
}

// updateClauses is the SET/REMOVE section, carried over as source text.
type updateClauses struct {
	Tokens []lexer.Token
	Words  []string `@( ~"WHERE" )+`
}

type deleteStmt struct {
	Table     *tableRef  `"DELETE" "FROM" @@`
	Where     *condition `"WHERE" @@`
	Returning *returning `@@?`
}

var (
	selectParser = buildItemParser[selectStmt]()
	insertParser = buildItemParser[insertStmt]()
	updateParser = buildItemParser[updateStmt]()
	deleteParser = buildItemParser[deleteStmt]()
)
