package service_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-mts/mts/internal/config"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository/repotest"
	"github.com/campus-mts/mts/internal/service"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

var _ = Describe("UserService and AuthService", func() {
	var (
		ctx     context.Context
		store   *repotest.Store
		cache   *countingInvalidator
		users   *service.UserService
		authSvc *service.AuthService
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = repotest.NewStore()
		cache = &countingInvalidator{}
		users = service.NewUserService(service.UserDependencies{
			UserRepo:   store.Users(),
			Catalog:    cache,
			BcryptCost: bcrypt.MinCost,
		})
		authSvc = service.NewAuthService(config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
		}, service.AuthDependencies{UserRepo: store.Users()})
	})

	It("creates a user with a hashed password and logs them in", func() {
		user, err := users.Create(ctx, service.UserInput{
			Name: "erin", Password: "correct-horse", Department: "IT", Role: domain.RoleMaintenance,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.PasswordHash).NotTo(Equal("correct-horse"))
		Expect(cache.calls).To(Equal(1))

		result, err := authSvc.Login(ctx, "erin", "correct-horse")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Token).NotTo(BeEmpty())
		Expect(result.User.ID).To(Equal(user.ID))

		claims, err := authSvc.TokenManager().ParseToken(result.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims).NotTo(BeNil())
	})

	It("rejects a wrong password and an unknown user alike", func() {
		_, err := users.Create(ctx, service.UserInput{Name: "erin", Password: "correct-horse", Role: domain.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())

		_, err = authSvc.Login(ctx, "erin", "wrong-password")
		expectStatus(err, http.StatusUnauthorized)
		_, err = authSvc.Login(ctx, "nobody", "wrong-password")
		expectStatus(err, http.StatusUnauthorized)
	})

	DescribeTable("validates input",
		func(input service.UserInput, code string) {
			_, err := users.Create(ctx, input)
			expectCode(err, code)
		},
		Entry("missing name", service.UserInput{Password: "longenough", Role: domain.RoleAdmin}, "MISSING_REQUIRED_FIELD"),
		Entry("missing password", service.UserInput{Name: "x", Role: domain.RoleAdmin}, "MISSING_REQUIRED_FIELD"),
		Entry("unknown role", service.UserInput{Name: "x", Password: "longenough", Role: "janitor"}, "INVALID_FIELD"),
		Entry("short password", service.UserInput{Name: "x", Password: "short", Role: domain.RoleAdmin}, "INVALID_FIELD"),
	)

	It("reports a duplicate name as a conflict", func() {
		input := service.UserInput{Name: "erin", Password: "correct-horse", Role: domain.RoleAdmin}
		_, err := users.Create(ctx, input)
		Expect(err).NotTo(HaveOccurred())
		_, err = users.Create(ctx, input)
		expectStatus(err, http.StatusConflict)
	})

	It("refuses to delete the requester's own account", func() {
		user, err := users.Create(ctx, service.UserInput{Name: "erin", Password: "correct-horse", Role: domain.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())
		expectStatus(users.Delete(ctx, user, user.ID), http.StatusForbidden)
	})

	It("reports deleting an unknown user as not found", func() {
		admin := store.AddUser(domain.User{Name: "root", Role: domain.RoleAdmin})
		expectStatus(users.Delete(ctx, &admin, 31337), http.StatusNotFound)
	})

	It("creates the bootstrap admin once", func() {
		created, err := users.EnsureAdmin(ctx, "admin", "bootstrap-pass")
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())

		created, err = users.EnsureAdmin(ctx, "admin", "bootstrap-pass")
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
	})
})
