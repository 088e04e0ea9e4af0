package types

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Category groups query kinds by the API surface they are sent to.
type Category int

const (
	CategoryDDL Category = iota
	CategoryDML
	CategoryUtility
)

func (c Category) String() string {
	switch c {
	case CategoryDDL:
		return "DDL"
	case CategoryDML:
		return "DML"
	case CategoryUtility:
		return "UTILITY"
	}
	return "UNKNOWN"
}

// Family tells reads from writes among item-query statements.
// Control-plane and utility statements have FamilyNone.
type Family int

const (
	FamilyNone Family = iota
	FamilyRead
	FamilyWrite
)

func (f Family) String() string {
	switch f {
	case FamilyRead:
		return "READ"
	case FamilyWrite:
		return "WRITE"
	}
	return "NONE"
}

// QueryKind is the statement shape assigned by the classifier.
type QueryKind int

const (
	QueryKindCreateTable QueryKind = iota
	QueryKindAlterTable
	QueryKindDropTable
	QueryKindCreateGlobalTable
	QueryKindDropGlobalTable
	QueryKindInsert
	QueryKindUpdate
	QueryKindDelete
	QueryKindSelect
	QueryKindListTables
	QueryKindListGlobalTables
	QueryKindDescribeTable
	QueryKindDescribeGlobalTable
)

var queryKindNames = map[QueryKind]string{
	QueryKindCreateTable:         "CREATE_TABLE",
	QueryKindAlterTable:          "ALTER_TABLE",
	QueryKindDropTable:           "DROP_TABLE",
	QueryKindCreateGlobalTable:   "CREATE_GLOBAL_TABLE",
	QueryKindDropGlobalTable:     "DROP_GLOBAL_TABLE",
	QueryKindInsert:              "INSERT",
	QueryKindUpdate:              "UPDATE",
	QueryKindDelete:              "DELETE",
	QueryKindSelect:              "SELECT",
	QueryKindListTables:          "LIST_TABLES",
	QueryKindListGlobalTables:    "LIST_GLOBAL_TABLES",
	QueryKindDescribeTable:       "DESCRIBE_TABLE",
	QueryKindDescribeGlobalTable: "DESCRIBE_GLOBAL_TABLE",
}

func (k QueryKind) String() string {
	if name, ok := queryKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Category returns the API surface of the query kind.
func (k QueryKind) Category() Category {
	switch k {
	case QueryKindCreateTable, QueryKindAlterTable, QueryKindDropTable,
		QueryKindCreateGlobalTable, QueryKindDropGlobalTable:
		return CategoryDDL
	case QueryKindInsert, QueryKindUpdate, QueryKindDelete, QueryKindSelect:
		return CategoryDML
	default:
		return CategoryUtility
	}
}

// Family returns the read/write family used for batch homogeneity checks.
func (k QueryKind) Family() Family {
	switch k {
	case QueryKindSelect:
		return FamilyRead
	case QueryKindInsert, QueryKindUpdate, QueryKindDelete:
		return FamilyWrite
	}
	return FamilyNone
}

// ProducesRows reports whether the kind is SELECT/LIST-like, i.e. a client row limit applies.
func (k QueryKind) ProducesRows() bool {
	return k == QueryKindSelect || k == QueryKindListTables || k == QueryKindListGlobalTables
}

// LogicalType is the output type of a result column.
type LogicalType int

const (
	LogicalTypeUnknown LogicalType = iota
	LogicalTypeString
	LogicalTypeNumber
	LogicalTypeBool
	LogicalTypeNull
	LogicalTypeDate
	LogicalTypeDateTime
	LogicalTypeBinary
	LogicalTypeObject
)

func (t LogicalType) String() string {
	switch t {
	case LogicalTypeString:
		return "STRING"
	case LogicalTypeNumber:
		return "NUMBER"
	case LogicalTypeBool:
		return "BOOL"
	case LogicalTypeNull:
		return "NULL"
	case LogicalTypeDate:
		return "DATE"
	case LogicalTypeDateTime:
		return "DATETIME"
	case LogicalTypeBinary:
		return "BINARY"
	case LogicalTypeObject:
		return "OBJECT"
	}
	return "UNKNOWN"
}

// Function is a conversion or string function applied client-side to a projected column.
type Function struct {
	// Name is upper case, e.g. SUBSTR.
	Name string

	// Params are the literal arguments following the column reference,
	// as string, int64 or float64.
	Params []interface{}
}

// ProjectionColumn is one entry of a SELECT column list.
type ProjectionColumn struct {
	// Path is the request path, e.g. map.A or list[0].
	Path string

	// Segments is Path split into attribute names and list indexes.
	// Indexes are kept as their decimal text inside brackets, e.g. "[0]".
	Segments []string

	// Name is the display name: Alias when set, else Path.
	Name string

	Alias    string
	Function *Function
	Type     LogicalType
}

// ItemStatement is the item-query payload of a DML statement.
type ItemStatement struct {
	// Statement is the canonical statement text sent to the store.
	Statement string

	// ParameterCount is the number of positional ? slots in Statement.
	ParameterCount int

	// Columns is empty for SELECT * and non-SELECT statements.
	Columns []ProjectionColumn

	ConsistentRead         *bool
	ReturnConsumedCapacity ddbtypes.ReturnConsumedCapacity
}

// Statement is the immutable result of compiling one query text.
type Statement struct {
	// Query is the original text.
	Query string
	Kind  QueryKind

	// Request holds the native control-plane input (e.g. *dynamodb.CreateTableInput)
	// for DDL and utility statements; nil for DML.
	Request interface{}

	// Item holds the item-query payload for DML statements; nil otherwise.
	Item *ItemStatement

	// Limit is the client-side row limit, 0 when absent.
	Limit int

	// Warnings lists lenient-compile notes, e.g. option paths that were ignored.
	Warnings []string
}
