package dynamosql

import (
	"fmt"
	"reflect"
	"strings"
)

const modelTagName = "dynamosql"

// modelDefinitionMap is a map of column name to each field defined in struct tags
type modelDefinitionMap map[string]modelDefinitionColInfo

// modelDefinitionColInfo as defined in the user-defined struct field tags
type modelDefinitionColInfo struct {
	fieldName string
	fieldType reflect.Type
}

// newModelDefinitionMap reads `dynamosql:"col"` tags of a struct type.
// Every exported field needs a tag; `dynamosql:"-"` skips a field.
func newModelDefinitionMap(modelType reflect.Type) (modelDefinitionMap, error) {
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model type should be a struct, got: %s", modelType.String())
	}
	if modelType.NumField() <= 0 {
		return nil, fmt.Errorf("at least one field should be defined for struct of type: %s", modelType.String())
	}

	schema := make(modelDefinitionMap)
	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		tag := field.Tag.Get(modelTagName)
		colName := strings.Split(tag, ",")[0]
		if colName == "-" {
			continue
		}
		if colName == "" {
			return nil, fmt.Errorf("missing %s tag for fieldName: %s", modelTagName, field.Name)
		}

		if _, ok := schema[colName]; ok {
			return nil, fmt.Errorf("duplicate column name found: %s", colName)
		}
		schema[colName] = modelDefinitionColInfo{
			fieldName: field.Name,
			fieldType: field.Type,
		}
	}

	if len(schema) == 0 {
		return nil, fmt.Errorf("no tagged exported field in struct of type: %s", modelType.String())
	}
	return schema, nil
}

// validateColumns checks that the result columns can fill the model.
// Columns missing from the result leave their fields at the zero value,
// but a result sharing no column with the model is rejected.
func validateColumns(columns []Column, modelDefSchema modelDefinitionMap) error {
	matched := 0
	for _, c := range columns {
		if _, ok := modelDefSchema[c.DisplayName]; ok {
			matched++
		}
	}
	if matched == 0 && len(columns) > 0 {
		return fmt.Errorf("none of the %d result columns is defined in model schema", len(columns))
	}
	for key := range modelDefSchema {
		found := false
		for _, c := range columns {
			if c.DisplayName == key {
				found = true
				break
			}
		}
		if !found {
			LogDebugf("column '%s' is defined in model schema but not found in result set", key)
		}
	}
	return nil
}
