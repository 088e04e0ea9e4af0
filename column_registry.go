package dynamosql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
)

// Row is one result row aligned to the column order at the time it was built.
// A nil entry means the source item had no value for that column.
type Row []interface{}

// Column describes one result column.
type Column struct {
	// Name is the attribute name (or request path) the values come from.
	Name        string
	DisplayName string
	Function    *types.Function
	Type        types.LogicalType

	// WireTypes lists the observed wire type codes in first-seen order, e.g. S, N, M.
	WireTypes []string

	segments []string
}

// columnRegistry is an insertion-ordered set of columns that only grows.
type columnRegistry struct {
	columns []*Column
	index   map[string]int
}

func newColumnRegistry() *columnRegistry {
	return &columnRegistry{index: make(map[string]int)}
}

// newProjectionRegistry registers the SELECT column list up front, in source order.
func newProjectionRegistry(projection []types.ProjectionColumn) *columnRegistry {
	r := newColumnRegistry()
	for _, p := range projection {
		c := r.register(p.Name)
		c.Name = p.Path
		c.DisplayName = p.Name
		c.Function = p.Function
		c.Type = p.Type
		c.segments = p.Segments
	}
	return r
}

// register returns the column keyed by key, adding it at the end if absent.
func (r *columnRegistry) register(key string) *Column {
	if i, ok := r.index[key]; ok {
		return r.columns[i]
	}
	c := &Column{Name: key, DisplayName: key}
	r.index[key] = len(r.columns)
	r.columns = append(r.columns, c)
	return c
}

// snapshot returns a copy of the current column metadata.
func (r *columnRegistry) snapshot() []Column {
	out := make([]Column, 0, len(r.columns))
	for _, c := range r.columns {
		cp := *c
		cp.WireTypes = append([]string(nil), c.WireTypes...)
		cp.segments = nil
		out = append(out, cp)
	}
	return out
}

func (c *Column) observe(av ddbtypes.AttributeValue) {
	code := wireType(av)
	for _, t := range c.WireTypes {
		if t == code {
			return
		}
	}
	c.WireTypes = append(c.WireTypes, code)
	if c.Function == nil && (c.Type == types.LogicalTypeUnknown || c.Type == types.LogicalTypeNull) {
		c.Type = logicalType(code)
	}
}

// rowFromItem converts one item into a Row.
//
// With a projection the row has exactly the projected columns. Without one
// (SELECT *) unseen attributes are registered in sorted key order, so the
// row is as wide as the registry after this item.
func (r *columnRegistry) rowFromItem(item map[string]ddbtypes.AttributeValue, projected bool) (Row, error) {
	if !projected {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.register(k)
		}
	}

	row := make(Row, len(r.columns))
	for i, c := range r.columns {
		var av ddbtypes.AttributeValue
		if projected {
			av = resolvePath(item, c)
		} else {
			av = item[c.Name]
		}
		if av == nil {
			continue
		}
		c.observe(av)

		v, err := Deserialize(av)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.DisplayName, err)
		}
		v, err = applyFunction(v, c.Function)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.DisplayName, err)
		}
		row[i] = v
	}
	return row, nil
}

// rowFromValues builds a row for fixed columns registered in order.
func (r *columnRegistry) rowFromValues(values map[string]interface{}) Row {
	row := make(Row, len(r.columns))
	for i, c := range r.columns {
		row[i] = values[c.Name]
	}
	return row
}

// resolvePath finds a projected value: the full nested path first, then a
// top-level attribute named like the path, then one named like its leaf.
func resolvePath(item map[string]ddbtypes.AttributeValue, c *Column) ddbtypes.AttributeValue {
	if av := traverse(item, c.segments); av != nil {
		return av
	}
	if av, ok := item[c.Name]; ok {
		return av
	}
	if n := len(c.segments); n > 1 {
		if av, ok := item[strings.Trim(c.segments[n-1], "[]")]; ok {
			return av
		}
	}
	return nil
}

func traverse(item map[string]ddbtypes.AttributeValue, segments []string) ddbtypes.AttributeValue {
	if len(segments) == 0 {
		return nil
	}
	current, ok := item[segments[0]]
	if !ok {
		return nil
	}
	for _, seg := range segments[1:] {
		switch v := current.(type) {
		case *ddbtypes.AttributeValueMemberM:
			next, ok := v.Value[seg]
			if !ok {
				return nil
			}
			current = next
		case *ddbtypes.AttributeValueMemberL:
			if !strings.HasPrefix(seg, "[") {
				return nil
			}
			idx, err := strconv.Atoi(strings.Trim(seg, "[]"))
			if err != nil || idx < 0 || idx >= len(v.Value) {
				return nil
			}
			current = v.Value[idx]
		default:
			return nil
		}
	}
	return current
}

func wireType(av ddbtypes.AttributeValue) string {
	switch av.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return "S"
	case *ddbtypes.AttributeValueMemberN:
		return "N"
	case *ddbtypes.AttributeValueMemberB:
		return "B"
	case *ddbtypes.AttributeValueMemberSS:
		return "SS"
	case *ddbtypes.AttributeValueMemberNS:
		return "NS"
	case *ddbtypes.AttributeValueMemberBS:
		return "BS"
	case *ddbtypes.AttributeValueMemberM:
		return "M"
	case *ddbtypes.AttributeValueMemberL:
		return "L"
	case *ddbtypes.AttributeValueMemberNULL:
		return "NULL"
	case *ddbtypes.AttributeValueMemberBOOL:
		return "BOOL"
	}
	return "UNKNOWN"
}

func logicalType(wireType string) types.LogicalType {
	switch wireType {
	case "S":
		return types.LogicalTypeString
	case "N":
		return types.LogicalTypeNumber
	case "BOOL":
		return types.LogicalTypeBool
	case "NULL":
		return types.LogicalTypeNull
	case "B":
		return types.LogicalTypeBinary
	case "SS", "NS", "BS", "M", "L":
		return types.LogicalTypeObject
	}
	return types.LogicalTypeUnknown
}
