package parser

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kent-id/dynamosql/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Utility compiler", func() {
	Context("LIST TABLES", func() {
		It("should compile without options", func() {
			stmt, err := Compile(`LIST TABLES`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Kind).To(Equal(types.QueryKindListTables))
			Expect(stmt.Request).To(Equal(&dynamodb.ListTablesInput{}))
			Expect(stmt.Limit).To(Equal(0))
		})

		It("should use Limit as the client row limit and cap the page size", func() {
			stmt, err := Compile(`LIST TABLES Limit 250`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Limit).To(Equal(250))
			input := stmt.Request.(*dynamodb.ListTablesInput)
			Expect(aws.ToInt32(input.Limit)).To(Equal(int32(100)))
		})

		It("should reject a non-numeric limit", func() {
			_, err := Compile(`LIST TABLES Limit many`)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("LIST GLOBAL TABLES", func() {
		It("should carry the region filter", func() {
			stmt, err := Compile(`LIST GLOBAL TABLES RegionName us-east-1 Limit 5`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Kind).To(Equal(types.QueryKindListGlobalTables))
			input := stmt.Request.(*dynamodb.ListGlobalTablesInput)
			Expect(aws.ToString(input.RegionName)).To(Equal("us-east-1"))
			Expect(aws.ToInt32(input.Limit)).To(Equal(int32(5)))
			Expect(stmt.Limit).To(Equal(5))
		})
	})

	Context("DESCRIBE", func() {
		It("should accept DESC and DESCRIBE", func() {
			stmt, err := Compile(`DESC TABLE Issues`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Request).To(Equal(&dynamodb.DescribeTableInput{TableName: aws.String("Issues")}))

			stmt, err = Compile(`describe table "Issues"`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Request).To(Equal(&dynamodb.DescribeTableInput{TableName: aws.String("Issues")}))
		})

		It("should describe global tables", func() {
			stmt, err := Compile(`DESCRIBE GLOBAL TABLE Issues`)
			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Kind).To(Equal(types.QueryKindDescribeGlobalTable))
			Expect(stmt.Request).To(Equal(&dynamodb.DescribeGlobalTableInput{GlobalTableName: aws.String("Issues")}))
		})
	})
})
