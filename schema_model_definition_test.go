package dynamosql

import (
	"reflect"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema: model definition", func() {
	Context("Valid struct definition", func() {
		It("should return expected column definition", func() {
			type test struct {
				ID           int    `dynamosql:"IssueId"`
				Name         string `dynamosql:"Title,omitempty"`
				Ignored      string `dynamosql:"-"`
				privateField string
			}
			def, err := newModelDefinitionMap(reflect.TypeOf(test{}))
			Expect(err).ToNot(HaveOccurred())
			Expect(len(def)).To(Equal(2))
			Expect(def["IssueId"].fieldName).To(Equal("ID"))
			Expect(def["Title"].fieldName).To(Equal("Name"))
			Expect(def["Title"].fieldType).To(Equal(reflect.TypeOf("")))
		})
	})

	Context("Missing struct tags", func() {
		It("should return error", func() {
			type test struct {
				ID   int `dynamosql:"IssueId"`
				Name string
			}
			_, err := newModelDefinitionMap(reflect.TypeOf(test{}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Duplicate struct tags", func() {
		It("should return error", func() {
			type test struct {
				ID   int    `dynamosql:"IssueId"`
				Name string `dynamosql:"IssueId"`
			}
			_, err := newModelDefinitionMap(reflect.TypeOf(test{}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Empty struct", func() {
		It("should return error", func() {
			type test struct{}
			_, err := newModelDefinitionMap(reflect.TypeOf(test{}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Only skipped fields", func() {
		It("should return error", func() {
			type test struct {
				Ignored string `dynamosql:"-"`
				hidden  int
			}
			_, err := newModelDefinitionMap(reflect.TypeOf(test{}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("validateColumns", func() {
		schema := modelDefinitionMap{
			"IssueId": {fieldName: "ID", fieldType: reflect.TypeOf(0)},
			"Title":   {fieldName: "Name", fieldType: reflect.TypeOf("")},
		}

		It("should accept a partial match", func() {
			Expect(validateColumns([]Column{{DisplayName: "IssueId"}, {DisplayName: "Other"}}, schema)).To(Succeed())
		})

		It("should accept an empty column list", func() {
			Expect(validateColumns(nil, schema)).To(Succeed())
		})

		It("should reject a result sharing no column with the model", func() {
			Expect(validateColumns([]Column{{DisplayName: "Other"}}, schema)).ToNot(Succeed())
		})
	})
})
