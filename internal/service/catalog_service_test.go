package service_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campus-mts/mts/internal/classification"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository/repotest"
	"github.com/campus-mts/mts/internal/service"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// memoryCatalogCache records loads, stores and invalidations.
type memoryCatalogCache struct {
	catalog     *classification.Catalog
	stores      int
	invalidated int
}

func (c *memoryCatalogCache) Load(context.Context) (classification.Catalog, bool) {
	if c.catalog == nil {
		return classification.Catalog{}, false
	}
	return *c.catalog, true
}

func (c *memoryCatalogCache) Store(_ context.Context, catalog classification.Catalog) {
	c.catalog = &catalog
	c.stores++
}

func (c *memoryCatalogCache) Invalidate(context.Context) {
	c.catalog = nil
	c.invalidated++
}

var _ = Describe("CatalogService", func() {
	var (
		ctx     context.Context
		store   *repotest.Store
		cache   *memoryCatalogCache
		catalog *service.CatalogService

		it, library  domain.Department
		hardware     domain.Category
		furniture    domain.Category
		pcUnit, desk domain.SubCategory
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = repotest.NewStore()
		cache = &memoryCatalogCache{}
		catalog = service.NewCatalogService(service.CatalogDependencies{
			DepartmentRepo:  store.Departments(),
			CategoryRepo:    store.Categories(),
			SubCategoryRepo: store.SubCategories(),
			AssetRepo:       store.Assets(),
			PcPartRepo:      store.PcParts(),
			StatusRepo:      store.Statuses(),
			UserRepo:        store.Users(),
			Cache:           cache,
		})

		it = store.AddDepartment(domain.Department{Name: "IT", Status: domain.DepartmentActive})
		library = store.AddDepartment(domain.Department{Name: "Library", Status: domain.DepartmentActive})
		hardware = store.AddCategory(domain.Category{Name: "Hardware"})
		furniture = store.AddCategory(domain.Category{Name: "Furniture"})
		pcUnit = store.AddSubCategory(domain.SubCategory{Name: domain.PCUnitSubCategory, CategoryID: hardware.ID})
		desk = store.AddSubCategory(domain.SubCategory{Name: "Desk", CategoryID: furniture.ID})
		store.AddAsset(domain.Asset{ItemCode: "PC-001", SerialNo: "S1", SubCategoryID: pcUnit.ID, DepartmentID: it.ID})
		store.AddAsset(domain.Asset{ItemCode: "DSK-001", SerialNo: "S2", SubCategoryID: desk.ID, DepartmentID: library.ID})
		store.AddUser(domain.User{Name: "bob", Role: domain.RoleMaintenance})
		store.AddUser(domain.User{Name: "carol", Role: domain.RoleFacultyStaff})
	})

	It("narrows categories and assets to the selected department", func() {
		res, err := catalog.Classification(ctx, classification.Selection{DepartmentID: &it.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Categories).To(ConsistOf(hardware))
		Expect(res.SubCategories).To(ConsistOf(pcUnit))
		Expect(res.Assets).To(HaveLen(1))
		Expect(res.Assets[0].ItemCode).To(Equal("PC-001"))
		Expect(res.MaintenanceUsers).To(HaveLen(1))
		Expect(res.FacultyStaffUsers).To(HaveLen(1))
	})

	It("serves the second read from the cache and reloads after a write", func() {
		_, err := catalog.Classification(ctx, classification.Selection{})
		Expect(err).NotTo(HaveOccurred())
		_, err = catalog.Classification(ctx, classification.Selection{})
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.stores).To(Equal(1))

		Expect(catalog.SaveCategory(ctx, &domain.Category{Name: "Plumbing"})).To(Succeed())
		Expect(cache.invalidated).To(Equal(1))

		res, err := catalog.Classification(ctx, classification.Selection{})
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.stores).To(Equal(2))
		Expect(res.Categories).To(HaveLen(3))
	})

	It("defaults a new department to Active", func() {
		dept := &domain.Department{Name: "  Registrar "}
		Expect(catalog.SaveDepartment(ctx, dept)).To(Succeed())
		Expect(dept.ID).NotTo(BeZero())
		Expect(dept.Name).To(Equal("Registrar"))
		Expect(dept.Status).To(Equal(domain.DepartmentActive))
	})

	It("rejects an unknown department status", func() {
		expectCode(catalog.SaveDepartment(ctx, &domain.Department{Name: "X", Status: "Closed"}), "INVALID_FIELD")
	})

	It("reports updating a missing row as not found", func() {
		expectStatus(catalog.SaveCategory(ctx, &domain.Category{ID: 4040, Name: "Ghost"}), http.StatusNotFound)
		expectStatus(catalog.DeleteAsset(ctx, 4040), http.StatusNotFound)
	})

	DescribeTable("requires mandatory asset fields",
		func(asset domain.Asset, field string) {
			err := catalog.SaveAsset(ctx, &asset)
			expectCode(err, "MISSING_REQUIRED_FIELD")
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("item code", domain.Asset{SerialNo: "S", SubCategoryID: 1, DepartmentID: 1}, "item_code"),
		Entry("serial", domain.Asset{ItemCode: "A", SubCategoryID: 1, DepartmentID: 1}, "serial_no"),
		Entry("sub-category", domain.Asset{ItemCode: "A", SerialNo: "S", DepartmentID: 1}, "sub_category_id"),
		Entry("department", domain.Asset{ItemCode: "A", SerialNo: "S", SubCategoryID: 1}, "department_id"),
	)

	Describe("deleting referenced rows", func() {
		var ticket domain.Ticket

		BeforeEach(func() {
			subID := desk.ID
			ticket = domain.Ticket{DepartmentID: library.ID, CategoryID: furniture.ID, SubcategoryID: &subID, StatusID: 1}
			Expect(store.Tickets().Create(ctx, &ticket)).To(Succeed())
		})

		It("reports a category whose cascaded sub-category is still used by an asset as a conflict", func() {
			err := catalog.DeleteCategory(ctx, hardware.ID)
			expectStatus(err, http.StatusConflict)
			expectCode(err, "CONFLICT")
			Expect(err.Error()).To(ContainSubstring("category is still referenced"))

			_, err = store.SubCategories().GetByID(ctx, pcUnit.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports a department still used by assets and tickets as a conflict", func() {
			expectCode(catalog.DeleteDepartment(ctx, library.ID), "CONFLICT")
		})

		It("reports a sub-category still on a ticket as a conflict, not a bad field", func() {
			err := catalog.DeleteSubCategory(ctx, desk.ID)
			expectStatus(err, http.StatusConflict)
			Expect(apperrors.ToDomainError(err).Details).NotTo(HaveKey("field"))
		})

		It("cascades an unused category to its sub-categories", func() {
			spare := store.AddCategory(domain.Category{Name: "Spare"})
			leftover := store.AddSubCategory(domain.SubCategory{Name: "Cable", CategoryID: spare.ID})

			Expect(catalog.DeleteCategory(ctx, spare.ID)).To(Succeed())
			_, err := store.SubCategories().GetByID(ctx, leftover.ID)
			Expect(err).To(HaveOccurred())
			expectStatus(catalog.DeleteCategory(ctx, spare.ID), http.StatusNotFound)
		})
	})

	It("lists the seeded statuses in order", func() {
		statuses, err := catalog.ListStatuses(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(statuses).To(HaveLen(4))
		Expect(statuses[0].Name).To(Equal(domain.StatusOpen))
		Expect(statuses[3].Name).To(Equal(domain.StatusForApproval))
	})
})
