package dynamosql

import (
	"encoding/json"
	"time"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kent-id/dynamosql/types"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Conversion", func() {
	Context("Serialize", func() {
		It("should map scalars by runtime type", func() {
			av, err := Serialize("data")
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberS{Value: "data"}))

			av, err = Serialize(42)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: "42"}))

			av, err = Serialize(true)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberBOOL{Value: true}))

			av, err = Serialize([]byte("raw"))
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberB{Value: []byte("raw")}))

			av, err = Serialize(nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberNULL{Value: true}))
		})

		It("should keep the fraction of integral floats", func() {
			av, err := Serialize(2.0)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: "2.0"}))

			av, err = Serialize(2.5)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: "2.5"}))
		})

		It("should reject NaN", func() {
			var zero float64
			_, err := Serialize(zero / zero)
			Expect(err).To(HaveOccurred())
		})

		It("should pass decimal and json numbers through as text", func() {
			av, err := Serialize(decimal.RequireFromString("12345678901234567890.123"))
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: "12345678901234567890.123"}))

			av, err = Serialize(json.Number("7"))
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: "7"}))
		})

		It("should write times as ISO-8601 strings", func() {
			t := time.Date(2021, 12, 31, 8, 11, 22, 0, time.UTC)
			av, err := Serialize(t)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberS{Value: "2021-12-31T08:11:22Z"}))
		})

		It("should pick the set type from the first element", func() {
			av, err := Serialize(Set{"a", "b"})
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberSS{Value: []string{"a", "b"}}))

			av, err = Serialize(Set{1, 2.5})
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberNS{Value: []string{"1", "2.5"}}))

			av, err = Serialize(Set{[]byte("x")})
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberBS{Value: [][]byte{[]byte("x")}}))
		})

		It("should reject mixed and empty sets", func() {
			_, err := Serialize(Set{"a", 1})
			Expect(err).To(HaveOccurred())
			_, err = Serialize(Set{})
			Expect(err).To(HaveOccurred())
		})

		It("should serialize collections recursively", func() {
			av, err := Serialize(map[string]interface{}{
				"tags":  []string{"x", "y"},
				"owner": map[string]int{"id": 7},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{
				"tags": &ddbtypes.AttributeValueMemberL{Value: []ddbtypes.AttributeValue{
					&ddbtypes.AttributeValueMemberS{Value: "x"},
					&ddbtypes.AttributeValueMemberS{Value: "y"},
				}},
				"owner": &ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{
					"id": &ddbtypes.AttributeValueMemberN{Value: "7"},
				}},
			}}))
		})

		It("should dereference pointers and fall back to the string form", func() {
			s := "ptr"
			av, err := Serialize(&s)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberS{Value: "ptr"}))

			type point struct{ X, Y int }
			av, err = Serialize(point{1, 2})
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberS{Value: "{1 2}"}))
		})
	})

	Context("Deserialize", func() {
		It("should return int64 for integral numbers and float64 otherwise", func() {
			v, err := Deserialize(&ddbtypes.AttributeValueMemberN{Value: "9223372036854775807"})
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(int64(9223372036854775807)))

			v, err = Deserialize(&ddbtypes.AttributeValueMemberN{Value: "5.4"})
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(5.4))
		})

		It("should return a decimal beyond float precision", func() {
			v, err := Deserialize(&ddbtypes.AttributeValueMemberN{Value: "9223372036854775807123213122"})
			Expect(err).ToNot(HaveOccurred())
			d, ok := v.(decimal.Decimal)
			Expect(ok).To(BeTrue())
			Expect(d.String()).To(Equal("9223372036854775807123213122"))
		})

		It("should return error on an invalid number", func() {
			_, err := Deserialize(&ddbtypes.AttributeValueMemberN{Value: "9223372_NOT_VALID"})
			Expect(err).To(HaveOccurred())
		})

		It("should return nil for NULL", func() {
			v, err := Deserialize(&ddbtypes.AttributeValueMemberNULL{Value: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeNil())
		})
	})

	table.DescribeTable("round trip",
		func(v interface{}) {
			av, err := Serialize(v)
			Expect(err).ToNot(HaveOccurred())
			back, err := Deserialize(av)
			Expect(err).ToNot(HaveOccurred())
			if v == nil {
				Expect(back).To(BeNil())
				return
			}
			Expect(back).To(Equal(v))
		},
		table.Entry("string", "hello"),
		table.Entry("empty string", ""),
		table.Entry("integer", int64(-2147483648)),
		table.Entry("integral float", 2.0),
		table.Entry("float", 0.125),
		table.Entry("bool", false),
		table.Entry("binary", []byte{0, 1, 2}),
		table.Entry("null", nil),
		table.Entry("string set", Set{"a", "b"}),
		table.Entry("number set", Set{int64(1), 2.5}),
		table.Entry("list", []interface{}{"a", int64(1), true, nil}),
		table.Entry("map", map[string]interface{}{"a": []interface{}{int64(1)}, "b": map[string]interface{}{"c": "d"}}),
	)

	It("should keep the printed form of numbers where it can", func() {
		for _, n := range []string{"2", "2.0", "-0.5", "1e+21"} {
			v, err := Deserialize(&ddbtypes.AttributeValueMemberN{Value: n})
			Expect(err).ToNot(HaveOccurred())
			av, err := Serialize(v)
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(&ddbtypes.AttributeValueMemberN{Value: n}))
		}
	})

	Context("applyFunction", func() {
		fn := func(name string, params ...interface{}) *types.Function {
			return &types.Function{Name: name, Params: params}
		}

		It("should parse dates with and without a format", func() {
			v, err := applyFunction("2021-12-31T08:11:22Z", fn("DATETIME"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(time.Date(2021, 12, 31, 8, 11, 22, 0, time.UTC)))

			v, err = applyFunction("31/12/2021 08:11", fn("DATE", "%d/%m/%Y %H:%M"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)))
		})

		It("should return error on an unparseable date", func() {
			_, err := applyFunction("yesterday", fn("DATE"))
			Expect(err).To(HaveOccurred())
			_, err = applyFunction("2021", fn("DATE", "%Q"))
			Expect(err).To(HaveOccurred())
		})

		It("should slice substrings with a 0-based start, clamped", func() {
			v, err := applyFunction("abcdef", fn("SUBSTR", int64(1), int64(3)))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal("bcd"))

			v, err = applyFunction("abcdef", fn("SUBSTRING", int64(4), int64(10)))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal("ef"))

			v, err = applyFunction("abc", fn("SUBSTR", int64(9)))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(""))
		})

		It("should apply string functions", func() {
			v, _ := applyFunction("  pad  ", fn("TRIM"))
			Expect(v).To(Equal("pad"))
			v, _ = applyFunction("xxpadxx", fn("LTRIM", "x"))
			Expect(v).To(Equal("padxx"))
			v, _ = applyFunction("  pad  ", fn("RTRIM"))
			Expect(v).To(Equal("  pad"))
			v, _ = applyFunction("Mixed", fn("UPPER"))
			Expect(v).To(Equal("MIXED"))
			v, _ = applyFunction("Mixed", fn("LOWER"))
			Expect(v).To(Equal("mixed"))
			v, _ = applyFunction("a-b-c", fn("REPLACE", "-"))
			Expect(v).To(Equal("abc"))
			v, _ = applyFunction("a-b-c", fn("REPLACE", "-", "+"))
			Expect(v).To(Equal("a+b+c"))
		})

		It("should convert strings to numbers and bools", func() {
			v, err := applyFunction(" 12 ", fn("NUMBER"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(int64(12)))

			v, err = applyFunction("true", fn("BOOL"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(true))
		})

		It("should leave non-string values alone", func() {
			v, err := applyFunction(int64(5), fn("UPPER"))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(int64(5)))
		})
	})
})
