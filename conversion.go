package dynamosql

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Set is serialized as a STRING_SET, NUMBER_SET or BINARY_SET, picked from the
// type of its first element. Deserialized sets come back as Set too.
type Set []interface{}

// Serialize converts a native value into a wire attribute value.
//
// Supported: nil, string, bool, []byte, integers, floats, json.Number,
// decimal.Decimal, time.Time, Set, slices/arrays, maps with string keys and
// pointers to any of these. Anything else is sent as its fmt.Sprint form.
func Serialize(v interface{}) (ddbtypes.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
	case ddbtypes.AttributeValue:
		return val, nil
	case string:
		return &ddbtypes.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &ddbtypes.AttributeValueMemberBOOL{Value: val}, nil
	case []byte:
		return &ddbtypes.AttributeValueMemberB{Value: val}, nil
	case json.Number:
		return &ddbtypes.AttributeValueMemberN{Value: val.String()}, nil
	case decimal.Decimal:
		return &ddbtypes.AttributeValueMemberN{Value: val.String()}, nil
	case time.Time:
		return &ddbtypes.AttributeValueMemberS{Value: val.Format(time.RFC3339Nano)}, nil
	case Set:
		return serializeSet(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(rv.Int(), 10)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(rv.Uint(), 10)}, nil
	case reflect.Float32, reflect.Float64:
		n, err := formatFloat(rv.Float(), rv.Type().Bits())
		if err != nil {
			return nil, err
		}
		return &ddbtypes.AttributeValueMemberN{Value: n}, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
		}
		return Serialize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
		}
		list := make([]ddbtypes.AttributeValue, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			av, err := Serialize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list = append(list, av)
		}
		return &ddbtypes.AttributeValueMemberL{Value: list}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
		}
		m := make(map[string]ddbtypes.AttributeValue, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			av, err := Serialize(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("map key %s: %w", key, err)
			}
			m[key] = av
		}
		return &ddbtypes.AttributeValueMemberM{Value: m}, nil
	}

	LogWarnf("type %T has no wire mapping, sending it as a string", v)
	return &ddbtypes.AttributeValueMemberS{Value: fmt.Sprint(v)}, nil
}

// SerializeParams serializes positional statement parameters.
func SerializeParams(params []interface{}) ([]ddbtypes.AttributeValue, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]ddbtypes.AttributeValue, 0, len(params))
	for i, p := range params {
		av, err := Serialize(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		out = append(out, av)
	}
	return out, nil
}

func serializeSet(set Set) (ddbtypes.AttributeValue, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("empty set cannot be serialized")
	}
	first, err := Serialize(set[0])
	if err != nil {
		return nil, err
	}

	switch first.(type) {
	case *ddbtypes.AttributeValueMemberS:
		values := make([]string, 0, len(set))
		for _, e := range set {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("string set has non-string element %T", e)
			}
			values = append(values, s)
		}
		return &ddbtypes.AttributeValueMemberSS{Value: values}, nil
	case *ddbtypes.AttributeValueMemberN:
		values := make([]string, 0, len(set))
		for _, e := range set {
			av, err := Serialize(e)
			if err != nil {
				return nil, err
			}
			n, ok := av.(*ddbtypes.AttributeValueMemberN)
			if !ok {
				return nil, fmt.Errorf("number set has non-number element %T", e)
			}
			values = append(values, n.Value)
		}
		return &ddbtypes.AttributeValueMemberNS{Value: values}, nil
	case *ddbtypes.AttributeValueMemberB:
		values := make([][]byte, 0, len(set))
		for _, e := range set {
			b, ok := e.([]byte)
			if !ok {
				return nil, fmt.Errorf("binary set has non-binary element %T", e)
			}
			values = append(values, b)
		}
		return &ddbtypes.AttributeValueMemberBS{Value: values}, nil
	}
	return nil, fmt.Errorf("set element type %T is not supported", set[0])
}

// formatFloat keeps a trailing ".0" on integral values so 2.0 survives a round trip.
func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("number %v is not representable", f)
	}
	format := byte('f')
	if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// Deserialize converts a wire attribute value into a native value.
//
// NUMBER becomes int64 when integral, float64 when it fits, else decimal.Decimal.
// NULL becomes nil.
func Deserialize(av ddbtypes.AttributeValue) (interface{}, error) {
	switch val := av.(type) {
	case nil:
		return nil, nil
	case *ddbtypes.AttributeValueMemberS:
		return val.Value, nil
	case *ddbtypes.AttributeValueMemberN:
		return parseNumber(val.Value)
	case *ddbtypes.AttributeValueMemberB:
		return val.Value, nil
	case *ddbtypes.AttributeValueMemberBOOL:
		return val.Value, nil
	case *ddbtypes.AttributeValueMemberNULL:
		return nil, nil
	case *ddbtypes.AttributeValueMemberSS:
		set := make(Set, 0, len(val.Value))
		for _, s := range val.Value {
			set = append(set, s)
		}
		return set, nil
	case *ddbtypes.AttributeValueMemberNS:
		set := make(Set, 0, len(val.Value))
		for _, s := range val.Value {
			n, err := parseNumber(s)
			if err != nil {
				return nil, err
			}
			set = append(set, n)
		}
		return set, nil
	case *ddbtypes.AttributeValueMemberBS:
		set := make(Set, 0, len(val.Value))
		for _, b := range val.Value {
			set = append(set, b)
		}
		return set, nil
	case *ddbtypes.AttributeValueMemberL:
		list := make([]interface{}, 0, len(val.Value))
		for i, e := range val.Value {
			v, err := Deserialize(e)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case *ddbtypes.AttributeValueMemberM:
		m := make(map[string]interface{}, len(val.Value))
		for k, e := range val.Value {
			v, err := Deserialize(e)
			if err != nil {
				return nil, fmt.Errorf("map key %s: %w", k, err)
			}
			m[k] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown attribute value type %T", av)
}

const maxFloatDigits = 15

func parseNumber(s string) (interface{}, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if significantDigits(s) <= maxFloatDigits {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

func significantDigits(s string) int {
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimLeft(s, "+-0.")
	return len(strings.Replace(s, ".", "", 1))
}

// applyFunction post-processes a projected STRING value; other values pass through.
func applyFunction(v interface{}, fn *types.Function) (interface{}, error) {
	s, ok := v.(string)
	if fn == nil || !ok {
		return v, nil
	}

	switch fn.Name {
	case "DATE", "DATETIME":
		t, err := parseTime(s, fn.Params)
		if err != nil {
			return nil, fmt.Errorf("%s(%q): %w", fn.Name, s, err)
		}
		if fn.Name == "DATE" {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
		}
		return t, nil
	case "NUMBER":
		return parseNumber(strings.TrimSpace(s))
	case "BOOL":
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("BOOL(%q): %w", s, err)
		}
		return b, nil
	case "SUBSTR", "SUBSTRING":
		return substr(s, fn.Params)
	case "TRIM":
		if cutset, ok := stringParam(fn.Params, 0); ok {
			return strings.Trim(s, cutset), nil
		}
		return strings.TrimSpace(s), nil
	case "LTRIM":
		if cutset, ok := stringParam(fn.Params, 0); ok {
			return strings.TrimLeft(s, cutset), nil
		}
		return strings.TrimLeftFunc(s, isSpace), nil
	case "RTRIM":
		if cutset, ok := stringParam(fn.Params, 0); ok {
			return strings.TrimRight(s, cutset), nil
		}
		return strings.TrimRightFunc(s, isSpace), nil
	case "UPPER":
		return strings.ToUpper(s), nil
	case "LOWER":
		return strings.ToLower(s), nil
	case "REPLACE":
		old, _ := stringParam(fn.Params, 0)
		repl, _ := stringParam(fn.Params, 1)
		return strings.ReplaceAll(s, old, repl), nil
	}
	return nil, fmt.Errorf("unsupported function %s", fn.Name)
}

func substr(s string, params []interface{}) (string, error) {
	runes := []rune(s)
	start, ok := intParam(params, 0)
	if !ok || start < 0 {
		return "", fmt.Errorf("SUBSTR start must be a non-negative integer")
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	if length, ok := intParam(params, 1); ok {
		if length < 0 {
			return "", fmt.Errorf("SUBSTR length must be non-negative")
		}
		if start+length < end {
			end = start + length
		}
	}
	return string(runes[start:end]), nil
}

func intParam(params []interface{}, i int) (int, bool) {
	if i >= len(params) {
		return 0, false
	}
	n, err := cast.ToIntE(params[i])
	return n, err == nil
}

func stringParam(params []interface{}, i int) (string, bool) {
	if i >= len(params) {
		return "", false
	}
	return cast.ToString(params[i]), true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string, params []interface{}) (time.Time, error) {
	if format, ok := stringParam(params, 0); ok {
		layout, err := strftimeLayout(format)
		if err != nil {
			return time.Time{}, err
		}
		return time.Parse(layout, s)
	}

	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// strftimeLayout translates a %-directive date format into a Go time layout.
func strftimeLayout(format string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% in date format %q", format)
		}
		i++
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		sb.WriteString(layout)
	}
	return sb.String(), nil
}
