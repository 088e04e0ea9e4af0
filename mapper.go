package dynamosql

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

type dataMapper struct {
	modelType             reflect.Type
	modelDefinitionSchema modelDefinitionMap
	dest                  reflect.Value
	pointerElems          bool
}

// DataMapper provides abstraction to convert cursor rows to arbitrary user-defined struct
type DataMapper interface {
	FromRows(ctx context.Context, columns []Column, rows []Row) ([]interface{}, error)
	AppendRows(ctx context.Context, columns []Column, rows []Row) error
}

// NewMapperFor creates new DataMapper for dest.
// dest should be a pointer to a slice, or a channel, of a struct (or pointer
// to struct) type whose fields carry `dynamosql:"col"` tags.
//
// Example:
//
// var issues []Issue
// mapper, err := dynamosql.NewMapperFor(&issues)
func NewMapperFor(dest interface{}) (DataMapper, error) {
	destValue := reflect.ValueOf(dest)
	var elemType reflect.Type

	switch destValue.Kind() {
	case reflect.Ptr:
		if destValue.IsNil() || destValue.Elem().Kind() != reflect.Slice {
			return nil, fmt.Errorf("dest should be a pointer to a slice, got: %T", dest)
		}
		destValue = destValue.Elem()
		elemType = destValue.Type().Elem()
	case reflect.Chan:
		elemType = destValue.Type().Elem()
	default:
		return nil, fmt.Errorf("dest should be a pointer to a slice or a channel, got: %T", dest)
	}

	pointerElems := false
	modelType := elemType
	if modelType.Kind() == reflect.Ptr {
		pointerElems = true
		modelType = modelType.Elem()
	}

	modelDefinitionSchema, err := newModelDefinitionMap(modelType)
	if err != nil {
		return nil, err
	}

	return &dataMapper{
		modelType:             modelType,
		modelDefinitionSchema: modelDefinitionSchema,
		dest:                  destValue,
		pointerElems:          pointerElems,
	}, nil
}

// FromRows converts rows into new *modelType values.
// columns is the cursor column list, as returned by Cursor.Columns after fetching.
func (m *dataMapper) FromRows(ctx context.Context, columns []Column, rows []Row) ([]interface{}, error) {
	if err := validateColumns(columns, m.modelDefinitionSchema); err != nil {
		return nil, err
	}

	result := make([]interface{}, 0, len(rows))
	for i, row := range rows {
		model := reflect.New(m.modelType)
		if err := m.decodeRow(columns, row, model.Interface()); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		result = append(result, model.Interface())
	}
	return result, nil
}

// AppendRows converts rows and appends them to the dest slice, or sends them to the dest channel.
func (m *dataMapper) AppendRows(ctx context.Context, columns []Column, rows []Row) error {
	mapped, err := m.FromRows(ctx, columns, rows)
	if err != nil {
		return err
	}

	for _, model := range mapped {
		v := reflect.ValueOf(model)
		if !m.pointerElems {
			v = v.Elem()
		}
		if m.dest.Kind() == reflect.Chan {
			m.dest.Send(v)
		} else {
			m.dest.Set(reflect.Append(m.dest, v))
		}
	}
	return nil
}

func (m *dataMapper) decodeRow(columns []Column, row Row, target interface{}) error {
	values := make(map[string]interface{}, len(m.modelDefinitionSchema))
	for i, c := range columns {
		if i >= len(row) || row[i] == nil {
			continue
		}
		if _, ok := m.modelDefinitionSchema[c.DisplayName]; ok {
			values[c.DisplayName] = row[i]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          modelTagName,
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook converts decimal NUMBER values into the numeric kind of the field.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from != decimalType || to == decimalType {
		return data, nil
	}
	d := data.(decimal.Decimal)
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return d.InexactFloat64(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return d.IntPart(), nil
	case reflect.String:
		return d.String(), nil
	}
	return data, nil
}
