package dynamosql

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type validModel struct {
	ID   int    `dynamosql:"IssueId"`
	Name string `dynamosql:"Title"`
}

type invalidModel struct {
	ID   int `dynamosql:"IssueId"`
	Name string
}

type richModel struct {
	ID      int64     `dynamosql:"IssueId"`
	Score   float64   `dynamosql:"Score"`
	Tags    []string  `dynamosql:"Tags"`
	Created time.Time `dynamosql:"Created"`
	Done    bool      `dynamosql:"Done"`
}

var _ = Describe("Mapper", func() {
	var ctx context.Context
	BeforeEach(func() {
		ctx = context.Background()
	})

	columns := []Column{{Name: "IssueId", DisplayName: "IssueId"}, {Name: "Title", DisplayName: "Title"}}

	Context("NewMapperFor", func() {
		When("dest is a pointer to a slice of a valid model", func() {
			It("should not return any error", func() {
				var dest []validModel
				_, err := NewMapperFor(&dest)
				Expect(err).ToNot(HaveOccurred())

				var ptrDest []*validModel
				_, err = NewMapperFor(&ptrDest)
				Expect(err).ToNot(HaveOccurred())
			})
		})

		When("dest is a channel of a valid model", func() {
			It("should not return any error", func() {
				_, err := NewMapperFor(make(chan *validModel))
				Expect(err).ToNot(HaveOccurred())
			})
		})

		When("model type/definition is not valid", func() {
			It("should return error", func() {
				var dest []invalidModel
				_, err := NewMapperFor(&dest)
				Expect(err).To(HaveOccurred())
			})
		})

		When("dest is a slice instead of a pointer", func() {
			It("should return error", func() {
				_, err := NewMapperFor([]validModel{})
				Expect(err).To(HaveOccurred())
			})
		})

		When("dest is a pointer to a map", func() {
			It("should return error", func() {
				testMap := make(map[string]int)
				_, err := NewMapperFor(&testMap)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Context("FromRows", func() {
		var mapper DataMapper

		BeforeEach(func() {
			var dest []validModel
			var err error
			mapper, err = NewMapperFor(&dest)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should correctly map the values with no row data", func() {
			mapped, err := mapper.FromRows(ctx, columns, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(mapped).ToNot(BeNil())
			Expect(len(mapped)).To(Equal(0))
		})

		It("should correctly map the values with row data", func() {
			rows := make([]Row, 0)
			for i := 0; i < 100; i++ {
				rows = append(rows, Row{int64(i), "name " + strconv.Itoa(i)})
			}

			mapped, err := mapper.FromRows(ctx, columns, rows)

			Expect(err).ToNot(HaveOccurred())
			Expect(len(mapped)).To(Equal(100))
			for index, mappedItem := range mapped {
				Expect(mappedItem).To(BeAssignableToTypeOf(&validModel{}))
				casted := mappedItem.(*validModel)
				Expect(casted.ID).To(Equal(index))
				Expect(casted.Name).To(Equal("name " + strconv.Itoa(index)))
			}
		})

		It("should leave missing attributes at the zero value", func() {
			mapped, err := mapper.FromRows(ctx, columns, []Row{{int64(7), nil}, {int64(8)}})
			Expect(err).ToNot(HaveOccurred())
			Expect(mapped).To(Equal([]interface{}{&validModel{ID: 7}, &validModel{ID: 8}}))
		})

		It("should reject columns unknown to the model", func() {
			_, err := mapper.FromRows(ctx, []Column{{DisplayName: "Other"}}, []Row{{"x"}})
			Expect(err).To(HaveOccurred())
		})

		It("should coerce native values into field types", func() {
			var dest []richModel
			rich, err := NewMapperFor(&dest)
			Expect(err).ToNot(HaveOccurred())

			created := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
			richColumns := []Column{
				{DisplayName: "IssueId"}, {DisplayName: "Score"}, {DisplayName: "Tags"},
				{DisplayName: "Created"}, {DisplayName: "Done"},
			}
			rows := []Row{
				{decimal.RequireFromString("12345678901234567"), 1.5, Set{"a", "b"}, created.Format(time.RFC3339Nano), true},
				{int64(2), decimal.RequireFromString("0.25"), []interface{}{"c"}, created, false},
			}

			Expect(rich.AppendRows(ctx, richColumns, rows)).To(Succeed())
			Expect(dest).To(HaveLen(2))
			Expect(dest[0].ID).To(Equal(int64(12345678901234567)))
			Expect(dest[0].Score).To(Equal(1.5))
			Expect(dest[0].Tags).To(Equal([]string{"a", "b"}))
			Expect(dest[0].Created.Equal(created)).To(BeTrue())
			Expect(dest[0].Done).To(BeTrue())
			Expect(dest[1].Score).To(Equal(0.25))
			Expect(dest[1].Tags).To(Equal([]string{"c"}))
			Expect(dest[1].Created.Equal(created)).To(BeTrue())
		})
	})

	Context("AppendRows", func() {
		It("should send converted rows to a channel", func() {
			ch := make(chan *validModel, 2)
			mapper, err := NewMapperFor(ch)
			Expect(err).ToNot(HaveOccurred())

			Expect(mapper.AppendRows(ctx, columns, []Row{{int64(1), "a"}, {int64(2), "b"}})).To(Succeed())
			Expect(<-ch).To(Equal(&validModel{ID: 1, Name: "a"}))
			Expect(<-ch).To(Equal(&validModel{ID: 2, Name: "b"}))
		})
	})

	Context("ConvertRows", func() {
		It("should convert rows into dest in one call", func() {
			var dest []*validModel
			Expect(ConvertRows(ctx, &dest, columns, []Row{{int64(3), "c"}})).To(Succeed())
			Expect(dest).To(Equal([]*validModel{{ID: 3, Name: "c"}}))
		})

		It("should return error for an invalid dest", func() {
			var dest []invalidModel
			Expect(ConvertRows(ctx, &dest, columns, []Row{{int64(3), "c"}})).ToNot(Succeed())
			Expect(dest).To(BeEmpty())
		})
	})

	Context("FetchAllInto", func() {
		It("should fetch every row of the cursor into dest", func() {
			client := &fakeClient{
				executeStatement: func(*dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error) {
					return &dynamodb.ExecuteStatementOutput{Items: []map[string]ddbtypes.AttributeValue{
						item("IssueId", int64(1), "Title", "first"),
						item("IssueId", int64(2), "Title", "second", "Extra", "ignored"),
					}}, nil
				},
			}
			cur := NewConnection(client).Cursor()
			Expect(cur.Execute(ctx, `SELECT * FROM Issues`)).To(Succeed())

			var dest []validModel
			Expect(FetchAllInto(ctx, cur, &dest)).To(Succeed())
			Expect(dest).To(Equal([]validModel{{ID: 1, Name: "first"}, {ID: 2, Name: "second"}}))
		})
	})
})
