package repository_test

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/config"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/persistence"
	"github.com/campus-mts/mts/internal/repository"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// These specs need a disposable database: TEST_POSTGRES_DSN=postgres://... go test ./internal/repository/...
var _ = Describe("Postgres repositories", Ordered, func() {
	var (
		ctx           context.Context
		pg            *persistence.Postgres
		users         repository.UserRepository
		departments   repository.DepartmentRepository
		categories    repository.CategoryRepository
		statuses      repository.StatusRepository
		tickets       repository.TicketRepository
		notifications repository.NotificationRepository

		creator, technician domain.User
		dept                domain.Department
		category            domain.Category
		open                *domain.Status
	)

	BeforeAll(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			Skip("TEST_POSTGRES_DSN not set")
		}
		ctx = context.Background()
		logger := zap.NewNop()
		Expect(persistence.RunMigrations(ctx, dsn, false, logger)).To(Succeed())

		var err error
		pg, err = persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 4, MinConns: 1}, logger)
		Expect(err).NotTo(HaveOccurred())

		pool := pg.PoolHandle()
		users = repository.NewUserRepository(pool)
		departments = repository.NewDepartmentRepository(pool)
		categories = repository.NewCategoryRepository(pool)
		statuses = repository.NewStatusRepository(pool)
		tickets = repository.NewTicketRepository(pool)
		notifications = repository.NewNotificationRepository(pool)

		suffix := uuid.NewString()[:8]
		creator = domain.User{Name: "creator-" + suffix, PasswordHash: "x", Role: domain.RoleFacultyStaff}
		technician = domain.User{Name: "tech-" + suffix, PasswordHash: "x", Role: domain.RoleMaintenance}
		Expect(users.Create(ctx, &creator)).To(Succeed())
		Expect(users.Create(ctx, &technician)).To(Succeed())
		dept = domain.Department{Name: "dept-" + suffix, Status: domain.DepartmentActive}
		Expect(departments.Create(ctx, &dept)).To(Succeed())
		category = domain.Category{Name: "cat-" + suffix}
		Expect(categories.Create(ctx, &category)).To(Succeed())

		open, err = statuses.GetByName(ctx, domain.StatusOpen)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pg != nil {
			pg.Close()
		}
	})

	It("seeds the four statuses", func() {
		rows, err := statuses.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		names := []string{}
		for _, s := range rows {
			names = append(names, s.Name)
		}
		Expect(names).To(ContainElements(domain.StatusOpen, domain.StatusInProgress, domain.StatusClosed, domain.StatusForApproval))
	})

	It("round-trips a ticket and applies a partial update", func() {
		created := time.Now().UTC().Truncate(time.Microsecond)
		ticket := &domain.Ticket{
			DepartmentID: dept.ID,
			CategoryID:   category.ID,
			StatusID:     open.ID,
			UserID:       &creator.ID,
			TechnicianID: &technician.ID,
			CreatedAt:    created,
		}
		Expect(tickets.Create(ctx, ticket)).To(Succeed())
		Expect(ticket.UpdatedAt).To(BeTemporally("==", ticket.CreatedAt))

		view, err := tickets.GetView(ctx, ticket.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(view.StatusName).To(Equal(domain.StatusOpen))
		Expect(*view.TechnicianName).To(Equal(technician.Name))

		// A clock behind the stored value must not move updated_at backwards.
		Expect(tickets.Update(ctx, ticket.ID, domain.TicketPatch{
			TechnicianID: domain.SetNull[int64](),
		}, created.Add(-time.Hour))).To(Succeed())

		stored, err := tickets.GetByID(ctx, ticket.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.TechnicianID).To(BeNil())
		Expect(stored.UserID).To(HaveValue(Equal(creator.ID)))
		Expect(stored.UpdatedAt).To(BeTemporally(">=", created))
	})

	It("reports an update of a missing ticket as no rows", func() {
		err := tickets.Update(ctx, 1<<40, domain.TicketPatch{}, time.Now())
		Expect(errors.Is(err, pgx.ErrNoRows)).To(BeTrue())
	})

	It("maps a dangling foreign key to an invalid field", func() {
		missing := int64(1 << 40)
		err := tickets.Create(ctx, &domain.Ticket{
			DepartmentID: missing, CategoryID: category.ID, StatusID: open.ID, CreatedAt: time.Now(),
		})
		de := apperrors.ToDomainError(err)
		Expect(de.Code).To(Equal("INVALID_FIELD"))
		Expect(de.Details).To(HaveKeyWithValue("field", "department_id"))
	})

	It("reports deleting a department still on a ticket as a conflict", func() {
		// The round-trip spec above left a ticket pointing at dept.
		err := departments.Delete(ctx, dept.ID)
		de := apperrors.ToDomainError(apperrors.MapDeleteError(err, "department", dept.ID))
		Expect(de.Code).To(Equal("CONFLICT"))
		Expect(de.Details).To(HaveKeyWithValue("referenced_by", "tickets"))
	})

	It("tracks unread notifications", func() {
		n := &domain.Notification{UserID: creator.ID, Message: "hello"}
		Expect(notifications.Create(ctx, n)).To(Succeed())

		count, err := notifications.CountUnread(ctx, creator.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeNumerically(">=", 1))

		Expect(notifications.MarkRead(ctx, n.ID)).To(Succeed())
		_, err = notifications.MarkAllRead(ctx, creator.ID)
		Expect(err).NotTo(HaveOccurred())

		count, err = notifications.CountUnread(ctx, creator.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeZero())
	})
})
