package parser

import (
	"regexp"

	"github.com/kent-id/dynamosql/types"
)

// kindPatterns match the leading keywords of each statement shape.
// The patterns are mutually exclusive, so the evaluation order does not matter.
var kindPatterns = map[types.QueryKind]*regexp.Regexp{
	types.QueryKindCreateTable:         regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE\b`),
	types.QueryKindAlterTable:          regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\b`),
	types.QueryKindDropTable:           regexp.MustCompile(`(?i)^\s*DROP\s+TABLE\b`),
	types.QueryKindCreateGlobalTable:   regexp.MustCompile(`(?i)^\s*CREATE\s+GLOBAL\s+TABLE\b`),
	types.QueryKindDropGlobalTable:     regexp.MustCompile(`(?i)^\s*DROP\s+GLOBAL\s+TABLE\b`),
	types.QueryKindInsert:              regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\b`),
	types.QueryKindUpdate:              regexp.MustCompile(`(?i)^\s*UPDATE\b`),
	types.QueryKindDelete:              regexp.MustCompile(`(?i)^\s*DELETE\s+FROM\b`),
	types.QueryKindSelect:              regexp.MustCompile(`(?i)^\s*SELECT\b`),
	types.QueryKindListTables:          regexp.MustCompile(`(?i)^\s*LIST\s+TABLES\b`),
	types.QueryKindListGlobalTables:    regexp.MustCompile(`(?i)^\s*LIST\s+GLOBAL\s+TABLES\b`),
	types.QueryKindDescribeTable:       regexp.MustCompile(`(?i)^\s*DESC(?:RIBE)?\s+TABLE\b`),
	types.QueryKindDescribeGlobalTable: regexp.MustCompile(`(?i)^\s*DESC(?:RIBE)?\s+GLOBAL\s+TABLE\b`),
}

// Classify tags query text with its QueryKind without parsing the full statement.
func Classify(query string) (types.QueryKind, error) {
	for kind, pattern := range kindPatterns {
		if pattern.MatchString(query) {
			return kind, nil
		}
	}
	return 0, compileError(query, firstWords(query), ErrUnsupportedQuery)
}

var leadingWords = regexp.MustCompile(`^\s*\S+(?:\s+\S+)?`)

func firstWords(query string) string {
	return leadingWords.FindString(query)
}
