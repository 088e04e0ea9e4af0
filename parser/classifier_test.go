package parser

import (
	"errors"

	"github.com/kent-id/dynamosql/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classifier", func() {
	DescribeTable("should tag statements by their leading keywords",
		func(query string, expected types.QueryKind) {
			kind, err := Classify(query)
			Expect(err).ToNot(HaveOccurred())
			Expect(kind).To(Equal(expected))
		},
		Entry("create table", "CREATE TABLE T (Id numeric HASH)", types.QueryKindCreateTable),
		Entry("alter table", "alter table T BillingMode PAY_PER_REQUEST", types.QueryKindAlterTable),
		Entry("drop table", "  DROP TABLE T", types.QueryKindDropTable),
		Entry("create global table", "CREATE GLOBAL TABLE T ReplicationGroup (us-east-1)", types.QueryKindCreateGlobalTable),
		Entry("drop global table", "DROP GLOBAL TABLE T ReplicationGroup (us-east-1)", types.QueryKindDropGlobalTable),
		Entry("insert", "INSERT INTO T VALUE {'a': 1}", types.QueryKindInsert),
		Entry("update", "UPDATE T SET a = 1 WHERE k = 'x'", types.QueryKindUpdate),
		Entry("delete", "DELETE FROM T WHERE k = 'x'", types.QueryKindDelete),
		Entry("select", "\n\tselect * from T", types.QueryKindSelect),
		Entry("list tables", "LIST TABLES", types.QueryKindListTables),
		Entry("list global tables", "LIST GLOBAL TABLES", types.QueryKindListGlobalTables),
		Entry("desc table", "DESC TABLE T", types.QueryKindDescribeTable),
		Entry("describe table", "DESCRIBE TABLE T", types.QueryKindDescribeTable),
		Entry("describe global table", "DESCRIBE GLOBAL TABLE T", types.QueryKindDescribeGlobalTable),
	)

	It("should reject statements with no known shape", func() {
		_, err := Classify("EXPLAIN SELECT * FROM T")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, ErrUnsupportedQuery)).To(BeTrue())

		var compileErr *CompileError
		Expect(errors.As(err, &compileErr)).To(BeTrue())
		Expect(compileErr.Fragment).To(ContainSubstring("EXPLAIN"))
	})

	It("should not match keywords that are only a prefix of a word", func() {
		_, err := Classify("SELECTED * FROM T")
		Expect(errors.Is(err, ErrUnsupportedQuery)).To(BeTrue())
	})
})
