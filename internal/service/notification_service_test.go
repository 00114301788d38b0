package service_test

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository/repotest"
)

var _ = Describe("NotificationService", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		f = newFixture()
		ctx = context.Background()
	})

	AfterEach(func() {
		f.close()
	})

	Describe("Notify", func() {
		It("inserts one unread row", func() {
			ticketID := int64(5)
			row, err := f.notifications.Notify(ctx, f.staff.ID, &ticketID, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.ID).NotTo(BeZero())
			Expect(row.IsRead).To(BeFalse())
			Expect(f.store.NotificationsFor(f.staff.ID)).To(HaveLen(1))
		})

		It("returns the insert error to direct callers", func() {
			f.store.FailNotifications(true)
			_, err := f.notifications.Notify(ctx, f.staff.ID, nil, "hello")
			Expect(err).To(MatchError(repotest.ErrInjected))
		})
	})

	Describe("Broadcast", func() {
		It("notifies the ticket creator with actor and status", func() {
			draft := f.draft()
			id, err := f.tickets.CreateTicket(ctx, &f.admin, draft)
			Expect(err).NotTo(HaveOccurred())
			f.settle()

			row, err := f.notifications.Broadcast(ctx, &f.tech, id, "parts ordered")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.UserID).To(Equal(f.staff.ID))
			Expect(row.Message).To(Equal(domain.BroadcastMessage(id, domain.StatusOpen, "bob", "parts ordered")))
			Expect(row.Message).To(ContainSubstring("bob"))
			Expect(row.Message).To(ContainSubstring("Open"))
		})

		It("does nothing for a ticket without a creator", func() {
			draft := f.draft()
			draft.UserID = domain.Unset[int64]()
			id, err := f.tickets.CreateTicket(ctx, &f.admin, draft)
			Expect(err).NotTo(HaveOccurred())
			f.settle()
			count := len(f.store.Notifications())

			row, err := f.notifications.Broadcast(ctx, &f.tech, id, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(row).To(BeNil())
			Expect(f.store.Notifications()).To(HaveLen(count))
		})

		It("reports an unknown ticket as not found", func() {
			_, err := f.notifications.Broadcast(ctx, &f.tech, 424242, "")
			expectStatus(err, http.StatusNotFound)
		})

		It("rejects a missing ticket id", func() {
			_, err := f.notifications.Broadcast(ctx, &f.tech, 0, "")
			expectCode(err, "INVALID_FIELD")
		})
	})

	Describe("inbox", func() {
		var first, second *domain.Notification

		BeforeEach(func() {
			var err error
			first, err = f.notifications.Notify(ctx, f.staff.ID, nil, "first")
			Expect(err).NotTo(HaveOccurred())
			second, err = f.notifications.Notify(ctx, f.staff.ID, nil, "second")
			Expect(err).NotTo(HaveOccurred())
			_, err = f.notifications.Notify(ctx, f.tech.ID, nil, "other")
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists a user's rows newest first", func() {
			rows, err := f.notifications.ListForUser(ctx, f.staff.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages(rows)).To(Equal([]string{"second", "first"}))
		})

		It("marks a row read for its recipient", func() {
			Expect(f.notifications.MarkRead(ctx, &f.staff, first.ID)).To(Succeed())

			count, err := f.notifications.UnreadCount(ctx, f.staff.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("forbids marking another user's row", func() {
			expectStatus(f.notifications.MarkRead(ctx, &f.tech, second.ID), http.StatusForbidden)
		})

		It("reports an unknown row as not found", func() {
			expectStatus(f.notifications.MarkRead(ctx, &f.staff, 987654), http.StatusNotFound)
		})

		It("marks every unread row of a user", func() {
			updated, err := f.notifications.MarkAllRead(ctx, f.staff.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(Equal(int64(2)))

			count, err := f.notifications.UnreadCount(ctx, f.staff.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			others, err := f.notifications.UnreadCount(ctx, f.tech.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(others).To(Equal(int64(1)))
		})
	})
})
