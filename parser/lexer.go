package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// itemLexer tokenizes the item-query dialect (SELECT/INSERT/UPDATE/DELETE).
// Only words that would otherwise be ambiguous with identifiers are keywords;
// everything else (VALUE, SET, MISSING, ASC, ...) is an Ident matched case-insensitively.
var itemLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Keyword", Pattern: `(?i)\b(SELECT|FROM|WHERE|AND|OR|NOT|BETWEEN|IN|IS|ORDER|BY|LIMIT|AS|RETURNING)\b`},
	{Name: "QuotedIdent", Pattern: `"(?:""|[^"])*"`},
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Param", Pattern: `\?`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|\|\||[-+*/=<>]`},
	{Name: "Punct", Pattern: `[(),.\[\]{}:;]`},
})

// controlLexer tokenizes the control-plane and utility dialect.
// Identifiers may carry hyphens and lead with digits, so region names like
// us-east-1 and table names like 2024-logs or list-items lex as one token.
// Keywords lex as Ident first and are retyped by controlKeywords; the Keyword
// rule is never reached and only declares the symbol.
var controlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "QuotedIdent", Pattern: `"(?:""|[^"])*"`},
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "Ident", Pattern: `\d[A-Za-z0-9_\-]*[A-Za-z_\-][A-Za-z0-9_\-]*|[A-Za-z_][A-Za-z0-9_\-]*`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Keyword", Pattern: `(?i)\b(CREATE|ALTER|DROP|TABLE|TABLES|GLOBAL|LOCAL|INDEX|REPLICA|UPDATE|DELETE|PARTITION|SORT|KEY|HASH|RANGE|LIST|DESC|DESCRIBE)\b`},
	{Name: "Punct", Pattern: `[(),.:;]`},
})

var controlKeywords = map[string]bool{
	"CREATE": true, "ALTER": true, "DROP": true, "TABLE": true, "TABLES": true,
	"GLOBAL": true, "LOCAL": true, "INDEX": true, "REPLICA": true, "UPDATE": true,
	"DELETE": true, "PARTITION": true, "SORT": true, "KEY": true, "HASH": true,
	"RANGE": true, "LIST": true, "DESC": true, "DESCRIBE": true,
}

// retypeControlKeyword turns whole-word keyword Idents into Keyword tokens.
func retypeControlKeyword(token lexer.Token) (lexer.Token, error) {
	if controlKeywords[strings.ToUpper(token.Value)] {
		token.Type = controlLexer.Symbols()["Keyword"]
	}
	return token, nil
}

func buildItemParser[G any]() *participle.Parser[G] {
	return participle.MustBuild[G](
		participle.Lexer(itemLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword", "Ident"),
		participle.UseLookahead(4),
	)
}

func buildControlParser[G any]() *participle.Parser[G] {
	return participle.MustBuild[G](
		participle.Lexer(controlLexer),
		participle.Map(retypeControlKeyword, "Ident"),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword", "Ident"),
		participle.UseLookahead(4),
	)
}

// parseError turns a participle error into a CompileError pointing at the offending fragment.
func parseError(query string, err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		offset := perr.Position().Offset
		if offset >= 0 && offset < len(query) {
			fragment := query[offset:]
			if len(fragment) > 32 {
				fragment = fragment[:32]
			}
			return compileError(query, fragment, errors.New(perr.Message()))
		}
		return compileError(query, "", errors.New(perr.Message()))
	}
	return compileError(query, "", err)
}

// unquote strips one level of '...' or "..." quoting, collapsing doubled quote characters.
func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '\'' || q == '"') && s[len(s)-1] == q {
			inner := s[1 : len(s)-1]
			return strings.ReplaceAll(inner, string([]byte{q, q}), string(q))
		}
	}
	return s
}

// quoteIdent renders a name in double-quoted identifier form.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// trimStatement drops surrounding whitespace and one trailing semicolon.
func trimStatement(query string) string {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	return strings.TrimSpace(q)
}
