package dynamodb

import (
	"context"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kent-id/dynamosql"
	"github.com/kent-id/dynamosql/util"
)

const (
	defaultPageSize = 100
)

type dynamoDBClientV2 struct {
	conn     *dynamosql.Connection
	pageSize int
}

// DynamoDBClientV2 is a client to AWS DynamoDB providing strongly-typed model binding of SQL statements.
// Underlying AWS client from aws-sdk-go-v2 is used.
type DynamoDBClientV2 interface {
	GetQueryResults(ctx context.Context, query string, dest interface{}, params ...interface{}) error
	GetQueryResultsIntoChannel(ctx context.Context, query string, dest interface{}, params ...interface{}) error
	Cursor() *dynamosql.Cursor
}

// NewClientV2 constructs new DynamoDBClientV2 using specified aws-sdk-go-v2/aws/config.
// Retries are done by the statement engine, so the SDK retryer is disabled.
func NewClientV2(ctx context.Context, awsConfig aws.Config, optFns ...func(*dynamosql.Options)) DynamoDBClientV2 {
	return newClientV2(dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		o.Retryer = aws.NopRetryer{}
	}), optFns...)
}

// LoadClientV2 loads the default aws config for region and profile, and
// constructs new DynamoDBClientV2. A non-empty endpoint overrides the service endpoint,
// e.g. http://localhost:8000 for DynamoDB local.
func LoadClientV2(ctx context.Context, region, endpoint, profile string, optFns ...func(*dynamosql.Options)) (DynamoDBClientV2, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	dynamosql.LogInfof("creating dynamodb client with region: %s, endpoint: %s, profile: %s", region, endpoint, profile)
	return newClientV2(dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		o.Retryer = aws.NopRetryer{}
		o.BaseEndpoint = util.NilIfEmpty(endpoint)
	}), optFns...), nil
}

func newClientV2(client dynamosql.Client, optFns ...func(*dynamosql.Options)) *dynamoDBClientV2 {
	return &dynamoDBClientV2{
		conn:     dynamosql.NewConnection(client, optFns...),
		pageSize: defaultPageSize,
	}
}

// Cursor returns a new cursor over the underlying connection.
func (c *dynamoDBClientV2) Cursor() *dynamosql.Cursor {
	return c.conn.Cursor()
}

// GetQueryResults executes the given statement and outputs every resulting row into dest slice.
//
// Example:
// var output []myStruct
// err := client.GetQueryResults(ctx, "SELECT * FROM Issues WHERE IssueId = ?", &output, 42)
func (c *dynamoDBClientV2) GetQueryResults(ctx context.Context, query string, dest interface{}, params ...interface{}) error {
	// 1. first initialize mapper which will also validate the dest model before we execute anything
	mapper, err := dynamosql.NewMapperFor(dest)
	if err != nil {
		return err
	}
	return c.fetchInto(ctx, mapper, query, params)
}

// GetQueryResultsIntoChannel executes the given statement and sends every resulting row into dest channel.
// dest is closed once all rows are sent or an error occurs.
func (c *dynamoDBClientV2) GetQueryResultsIntoChannel(ctx context.Context, query string, dest interface{}, params ...interface{}) error {
	destChannel := reflect.ValueOf(dest)
	if destChannel.Kind() == reflect.Chan {
		defer destChannel.Close()
	}

	mapper, err := dynamosql.NewMapperFor(dest)
	if err != nil {
		return err
	}
	return c.fetchInto(ctx, mapper, query, params)
}

func (c *dynamoDBClientV2) fetchInto(ctx context.Context, mapper dynamosql.DataMapper, query string, params []interface{}) error {
	cur := c.conn.Cursor()
	defer cur.Close()

	// 2. execute statement, the first page is fetched here
	if err := cur.Execute(ctx, query, params...); err != nil {
		return err
	}

	// 3. page through the rows and map them into dest
	var page uint = 1
	for {
		rows, err := cur.FetchMany(ctx, c.pageSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			dynamosql.LogInfof("finished fetching results from dynamodb")
			break
		}

		err = mapper.AppendRows(ctx, cur.Columns(), rows)
		if err != nil {
			return err
		}

		dynamosql.LogDebugf("mapped page %d with %d row(s)", page, len(rows))
		page++
	}

	for _, itemErr := range cur.Errors() {
		dynamosql.LogWarnf("statement failed: %s", itemErr)
	}
	return nil
}
