package dynamodb

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// statementClient answers ExecuteStatement from a fixed list of pages.
// Other calls are not expected.
type statementClient struct {
	dynamosql.Client
	pages []*dynamodb.ExecuteStatementOutput
	calls int
}

func (s *statementClient) ExecuteStatement(ctx context.Context, params *dynamodb.ExecuteStatementInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ExecuteStatementOutput, error) {
	out := s.pages[s.calls]
	s.calls++
	return out, nil
}

type issue struct {
	ID    int    `dynamosql:"IssueId"`
	Title string `dynamosql:"Title"`
}

func issuePage(from, to int, next string) *dynamodb.ExecuteStatementOutput {
	out := &dynamodb.ExecuteStatementOutput{NextToken: aws.String(next)}
	for i := from; i < to; i++ {
		out.Items = append(out.Items, map[string]ddbtypes.AttributeValue{
			"IssueId": &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(i)},
			"Title":   &ddbtypes.AttributeValueMemberS{Value: "issue " + strconv.Itoa(i)},
		})
	}
	return out
}

var _ = Describe("DynamoDBClientV2", func() {
	var ctx context.Context
	var fake *statementClient
	var client *dynamoDBClientV2

	BeforeEach(func() {
		ctx = context.Background()
		fake = &statementClient{pages: []*dynamodb.ExecuteStatementOutput{
			issuePage(0, 150, "next"),
			issuePage(150, 160, ""),
		}}
		client = newClientV2(fake)
	})

	It("should map every page into dest slice", func() {
		var output []issue
		Expect(client.GetQueryResults(ctx, `SELECT * FROM Issues`, &output)).To(Succeed())
		Expect(output).To(HaveLen(160))
		Expect(output[159]).To(Equal(issue{ID: 159, Title: "issue 159"}))
		Expect(fake.calls).To(Equal(2))
	})

	It("should validate dest before executing", func() {
		var output []string
		Expect(client.GetQueryResults(ctx, `SELECT * FROM Issues`, &output)).ToNot(Succeed())
		Expect(fake.calls).To(Equal(0))
	})

	It("should send rows into dest channel and close it", func() {
		ch := make(chan *issue, 200)
		Expect(client.GetQueryResultsIntoChannel(ctx, `SELECT * FROM Issues`, ch)).To(Succeed())

		count := 0
		for range ch {
			count++
		}
		Expect(count).To(Equal(160))
	})

	It("should close dest channel on error", func() {
		ch := make(chan *issue, 1)
		Expect(client.GetQueryResultsIntoChannel(ctx, `SELECT * FROM Issues WHERE IssueId = ?`, ch)).ToNot(Succeed())
		_, open := <-ch
		Expect(open).To(BeFalse())
	})
})
