package parser

import (
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
)

var attributeTypes = map[string]ddbtypes.ScalarAttributeType{
	"NUMERIC": ddbtypes.ScalarAttributeTypeN,
	"STRING":  ddbtypes.ScalarAttributeTypeS,
	"BINARY":  ddbtypes.ScalarAttributeTypeB,
}

var keyRoles = map[string]ddbtypes.KeyType{
	"PARTITION KEY": ddbtypes.KeyTypeHash,
	"HASH":          ddbtypes.KeyTypeHash,
	"SORT KEY":      ddbtypes.KeyTypeRange,
	"RANGE":         ddbtypes.KeyTypeRange,
}

const (
	indexTypeGlobal = "GLOBAL"
	indexTypeLocal  = "LOCAL"
)

var indexTypes = map[string]string{
	indexTypeGlobal: indexTypeGlobal,
	indexTypeLocal:  indexTypeLocal,
}

// control-plane verbs of index and replica sub-operations
const (
	verbCreate = "Create"
	verbUpdate = "Update"
	verbDelete = "Delete"
)

var actionVerbs = map[string]string{
	"CREATE": verbCreate,
	"UPDATE": verbUpdate,
	"DELETE": verbDelete,
}

func lookupAttributeType(keyword string) (ddbtypes.ScalarAttributeType, error) {
	if t, ok := attributeTypes[strings.ToUpper(keyword)]; ok {
		return t, nil
	}
	return "", &LookupError{Kind: "attribute type", Value: keyword}
}

func lookupKeyRole(keyword string) (ddbtypes.KeyType, error) {
	if r, ok := keyRoles[strings.ToUpper(keyword)]; ok {
		return r, nil
	}
	return "", &LookupError{Kind: "key role", Value: keyword}
}

func lookupIndexType(keyword string) (string, error) {
	if t, ok := indexTypes[strings.ToUpper(keyword)]; ok {
		return t, nil
	}
	return "", &LookupError{Kind: "index type", Value: keyword}
}

func lookupVerb(keyword string) (string, error) {
	if v, ok := actionVerbs[strings.ToUpper(keyword)]; ok {
		return v, nil
	}
	return "", &LookupError{Kind: "operation", Value: keyword}
}

func compileCreateTable(query, text string) (*types.Statement, error) {
	stmt, err := createTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}

	input := &dynamodb.CreateTableInput{}
	options, warnings := nestOptions(stmt.Options)
	unused, err := decodeOptions(options, input)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	warnings = append(warnings, unused...)
	input.TableName = aws.String(stmt.Table.String())

	for _, el := range stmt.Elements {
		if el.Attribute != nil {
			def, key, err := attributeDefinition(el.Attribute)
			if err != nil {
				return nil, compileError(query, el.Attribute.Name, err)
			}
			input.AttributeDefinitions = append(input.AttributeDefinitions, def)
			if key != nil {
				input.KeySchema = append(input.KeySchema, *key)
			}
			continue
		}

		idx := el.Index
		indexType, err := lookupIndexType(idx.Type)
		if err != nil {
			return nil, compileError(query, idx.Name, err)
		}
		keySchema, idxOptions, idxWarnings, err := indexParts(idx.Elements)
		if err != nil {
			return nil, compileError(query, idx.Name, err)
		}
		warnings = append(warnings, idxWarnings...)

		switch indexType {
		case indexTypeGlobal:
			gsi := ddbtypes.GlobalSecondaryIndex{}
			unused, err := decodeOptions(idxOptions, &gsi)
			if err != nil {
				return nil, compileError(query, idx.Name, err)
			}
			warnings = append(warnings, unused...)
			gsi.IndexName = aws.String(unquote(idx.Name))
			gsi.KeySchema = keySchema
			input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, gsi)
		case indexTypeLocal:
			lsi := ddbtypes.LocalSecondaryIndex{}
			unused, err := decodeOptions(idxOptions, &lsi)
			if err != nil {
				return nil, compileError(query, idx.Name, err)
			}
			warnings = append(warnings, unused...)
			lsi.IndexName = aws.String(unquote(idx.Name))
			lsi.KeySchema = keySchema
			input.LocalSecondaryIndexes = append(input.LocalSecondaryIndexes, lsi)
		}
	}

	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindCreateTable,
		Request:  input,
		Warnings: warnings,
	}, nil
}

func compileAlterTable(query, text string) (*types.Statement, error) {
	stmt, err := alterTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}

	input := &dynamodb.UpdateTableInput{}
	options, warnings := nestOptions(stmt.Options)
	unused, err := decodeOptions(options, input)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	warnings = append(warnings, unused...)
	input.TableName = aws.String(stmt.Table.String())

	for _, attr := range stmt.Attributes {
		def, _, err := attributeDefinition(attr)
		if err != nil {
			return nil, compileError(query, attr.Name, err)
		}
		input.AttributeDefinitions = append(input.AttributeDefinitions, def)
	}

	for _, action := range stmt.Actions {
		if action.Index != nil {
			update, w, err := globalIndexUpdate(action.Index)
			if err != nil {
				return nil, compileError(query, action.Index.Name, err)
			}
			warnings = append(warnings, w...)
			input.GlobalSecondaryIndexUpdates = append(input.GlobalSecondaryIndexUpdates, update)
			continue
		}
		update, w, err := replicaUpdate(action.Replica)
		if err != nil {
			return nil, compileError(query, action.Replica.Verb+" REPLICA", err)
		}
		warnings = append(warnings, w...)
		input.ReplicaUpdates = append(input.ReplicaUpdates, update)
	}

	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindAlterTable,
		Request:  input,
		Warnings: warnings,
	}, nil
}

func compileDropTable(query, text string) (*types.Statement, error) {
	stmt, err := dropTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}
	return &types.Statement{
		Query:   query,
		Kind:    types.QueryKindDropTable,
		Request: &dynamodb.DeleteTableInput{TableName: aws.String(stmt.Table.String())},
	}, nil
}

func compileCreateGlobalTable(query, text string) (*types.Statement, error) {
	stmt, err := createGlobalTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}

	input := &dynamodb.CreateGlobalTableInput{}
	options, warnings := nestOptions(stmt.Options)
	unused, err := decodeOptions(options, input)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	warnings = append(warnings, unused...)
	input.GlobalTableName = aws.String(stmt.Table.String())

	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindCreateGlobalTable,
		Request:  input,
		Warnings: warnings,
	}, nil
}

// compileDropGlobalTable removes the listed replicas from the global table.
func compileDropGlobalTable(query, text string) (*types.Statement, error) {
	stmt, err := dropGlobalTableParser.ParseString("", text)
	if err != nil {
		return nil, parseError(query, err)
	}

	options, warnings := nestOptions(stmt.Options)
	var group struct {
		ReplicationGroup []ddbtypes.Replica
	}
	unused, err := decodeOptions(options, &group)
	if err != nil {
		return nil, compileError(query, "", err)
	}
	warnings = append(warnings, unused...)
	if len(group.ReplicationGroup) == 0 {
		return nil, compileError(query, stmt.Table.String(), errors.New("ReplicationGroup is required"))
	}

	input := &dynamodb.UpdateGlobalTableInput{
		GlobalTableName: aws.String(stmt.Table.String()),
	}
	for _, replica := range group.ReplicationGroup {
		input.ReplicaUpdates = append(input.ReplicaUpdates, ddbtypes.ReplicaUpdate{
			Delete: &ddbtypes.DeleteReplicaAction{RegionName: replica.RegionName},
		})
	}

	return &types.Statement{
		Query:    query,
		Kind:     types.QueryKindDropGlobalTable,
		Request:  input,
		Warnings: warnings,
	}, nil
}

// attributeDefinition maps one declared attribute to its definition and, when
// it carries a key role, its key schema element.
func attributeDefinition(attr *attributeDef) (ddbtypes.AttributeDefinition, *ddbtypes.KeySchemaElement, error) {
	attrType, err := lookupAttributeType(attr.Type)
	if err != nil {
		return ddbtypes.AttributeDefinition{}, nil, err
	}
	attrName := unquote(attr.Name)
	def := ddbtypes.AttributeDefinition{
		AttributeName: aws.String(attrName),
		AttributeType: attrType,
	}
	if len(attr.Role) == 0 {
		return def, nil, nil
	}
	role, err := lookupKeyRole(attr.role())
	if err != nil {
		return def, nil, err
	}
	return def, &ddbtypes.KeySchemaElement{AttributeName: aws.String(attrName), KeyType: role}, nil
}

// indexParts splits index elements into the key schema and the nested index options.
func indexParts(elements []*indexElement) ([]ddbtypes.KeySchemaElement, optionMap, []string, error) {
	var keySchema []ddbtypes.KeySchemaElement
	var options []*option
	for _, el := range elements {
		if el.Option != nil {
			options = append(options, &option{Path: el.Path, Value: el.Option})
			continue
		}
		role, err := lookupKeyRole(el.role())
		if err != nil {
			return nil, nil, nil, err
		}
		keySchema = append(keySchema, ddbtypes.KeySchemaElement{
			AttributeName: aws.String(unquote(strings.Join(el.Path, "."))),
			KeyType:       role,
		})
	}
	nested, warnings := nestOptions(options)
	return keySchema, nested, warnings, nil
}

func globalIndexUpdate(action *indexAction) (ddbtypes.GlobalSecondaryIndexUpdate, []string, error) {
	var update ddbtypes.GlobalSecondaryIndexUpdate
	indexType, err := lookupIndexType(action.Type)
	if err != nil {
		return update, nil, err
	}
	if indexType != indexTypeGlobal {
		return update, nil, &LookupError{Kind: "index type", Value: action.Type}
	}
	verb, err := lookupVerb(action.Verb)
	if err != nil {
		return update, nil, err
	}
	keySchema, options, warnings, err := indexParts(action.Elements)
	if err != nil {
		return update, nil, err
	}
	indexName := aws.String(unquote(action.Name))

	var target interface{}
	switch verb {
	case verbCreate:
		create := &ddbtypes.CreateGlobalSecondaryIndexAction{}
		update.Create, target = create, create
	case verbUpdate:
		upd := &ddbtypes.UpdateGlobalSecondaryIndexAction{}
		update.Update, target = upd, upd
	case verbDelete:
		update.Delete = &ddbtypes.DeleteGlobalSecondaryIndexAction{IndexName: indexName}
		return update, warnings, nil
	}

	unused, err := decodeOptions(options, target)
	if err != nil {
		return update, nil, err
	}
	warnings = append(warnings, unused...)
	if update.Create != nil {
		update.Create.IndexName = indexName
		update.Create.KeySchema = keySchema
	} else {
		update.Update.IndexName = indexName
	}
	return update, warnings, nil
}

func replicaUpdate(action *replicaAction) (ddbtypes.ReplicationGroupUpdate, []string, error) {
	var update ddbtypes.ReplicationGroupUpdate
	verb, err := lookupVerb(action.Verb)
	if err != nil {
		return update, nil, err
	}
	options, warnings := nestOptions(action.Options)

	var target interface{}
	switch verb {
	case verbCreate:
		update.Create = &ddbtypes.CreateReplicationGroupMemberAction{}
		target = update.Create
	case verbUpdate:
		update.Update = &ddbtypes.UpdateReplicationGroupMemberAction{}
		target = update.Update
	case verbDelete:
		update.Delete = &ddbtypes.DeleteReplicationGroupMemberAction{}
		target = update.Delete
	}
	unused, err := decodeOptions(options, target)
	if err != nil {
		return update, nil, err
	}
	warnings = append(warnings, unused...)

	var region *string
	switch {
	case update.Create != nil:
		region = update.Create.RegionName
	case update.Update != nil:
		region = update.Update.RegionName
	case update.Delete != nil:
		region = update.Delete.RegionName
	}
	if region == nil || *region == "" {
		return update, nil, errors.New("RegionName is required")
	}
	return update, warnings, nil
}
