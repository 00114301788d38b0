package dto_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campus-mts/mts/internal/api/dto"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

var _ = Describe("ParseTicketPatch", func() {
	It("keeps absent keys unset and null keys null", func() {
		patch, err := dto.ParseTicketPatch([]byte(`{"technician_id": null, "status_id": 2}`))
		Expect(err).NotTo(HaveOccurred())

		Expect(patch.TechnicianID.IsSet()).To(BeTrue())
		Expect(patch.TechnicianID.IsNull()).To(BeTrue())
		Expect(patch.SubcategoryID.IsSet()).To(BeFalse())
		status, ok := patch.StatusID.Get()
		Expect(ok).To(BeTrue())
		Expect(status).To(Equal(int64(2)))
	})

	It("treats an empty body as an empty patch", func() {
		patch, err := dto.ParseTicketPatch(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(patch.IsEmpty()).To(BeTrue())
	})

	DescribeTable("reads id values",
		func(body string, want int64, null bool) {
			patch, err := dto.ParseTicketPatch([]byte(body))
			Expect(err).NotTo(HaveOccurred())
			if null {
				Expect(patch.AssetID.IsNull()).To(BeTrue())
				return
			}
			got, ok := patch.AssetID.Get()
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(want))
		},
		Entry("integer", `{"asset_id": 12}`, int64(12), false),
		Entry("numeric string", `{"asset_id": "12"}`, int64(12), false),
		Entry("empty string", `{"asset_id": ""}`, int64(0), true),
		Entry("null", `{"asset_id": null}`, int64(0), true),
	)

	DescribeTable("rejects non-numeric ids",
		func(body string) {
			_, err := dto.ParseTicketPatch([]byte(body))
			Expect(err).To(HaveOccurred())
			de := apperrors.ToDomainError(err)
			Expect(de.Code).To(Equal("INVALID_FIELD"))
			Expect(de.Details).To(HaveKeyWithValue("field", "pc_part_id"))
		},
		Entry("word", `{"pc_part_id": "abc"}`),
		Entry("fraction", `{"pc_part_id": 1.5}`),
		Entry("boolean", `{"pc_part_id": true}`),
		Entry("object", `{"pc_part_id": {}}`),
	)

	It("rejects a body that is not an object", func() {
		_, err := dto.ParseTicketPatch([]byte(`[1,2]`))
		Expect(apperrors.ToDomainError(err).Code).To(Equal("VALIDATION_FAILED"))
	})

	It("distinguishes a cleared description from an absent one", func() {
		patch, err := dto.ParseTicketPatch([]byte(`{"description": null, "resolution": "fixed"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(patch.Description.IsNull()).To(BeTrue())
		res, ok := patch.Resolution.Get()
		Expect(ok).To(BeTrue())
		Expect(res).To(Equal("fixed"))
	})
})

var _ = Describe("ParseTicketDraft", func() {
	It("reads every accepted key", func() {
		draft, err := dto.ParseTicketDraft([]byte(`{
			"department_id": 1, "category_id": "2", "status_id": 1,
			"technician_id": 9, "description": "leak", "subcategory_id": ""
		}`))
		Expect(err).NotTo(HaveOccurred())

		category, _ := draft.CategoryID.Get()
		Expect(category).To(Equal(int64(2)))
		Expect(draft.TechnicianID.Ptr()).To(HaveValue(Equal(int64(9))))
		Expect(draft.SubcategoryID.IsNull()).To(BeTrue())
		Expect(draft.UserID.IsSet()).To(BeFalse())
		Expect(draft.Description.Ptr()).To(HaveValue(Equal("leak")))
	})
})
