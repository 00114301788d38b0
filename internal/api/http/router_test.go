package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	httptransport "github.com/campus-mts/mts/internal/api/http"
	"github.com/campus-mts/mts/internal/api/http/handlers"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/config"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/events"
	"github.com/campus-mts/mts/internal/observability"
	"github.com/campus-mts/mts/internal/repository/repotest"
	"github.com/campus-mts/mts/internal/service"
	"github.com/campus-mts/mts/internal/worker"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

var _ = Describe("HTTP API", func() {
	var (
		app        *fiber.App
		store      *repotest.Store
		pool       *worker.Pool
		dispatcher events.Dispatcher
		tokens     *auth.TokenManager
		postgres   *stubPinger

		admin, tech, staff, stranger domain.User
		dept                         domain.Department
		category                     domain.Category
	)

	BeforeEach(func() {
		store = repotest.NewStore()
		pool = worker.NewPool(1, 32, nil)
		dispatcher = events.NewAsyncDispatcher(pool, nil)
		metrics := observability.NewMetrics()
		postgres = &stubPinger{}

		authService := service.NewAuthService(config.AuthConfig{JWTSecret: "test-secret"}, service.AuthDependencies{UserRepo: store.Users()})
		tokens = authService.TokenManager()
		userService := service.NewUserService(service.UserDependencies{UserRepo: store.Users(), BcryptCost: 4})
		ticketService := service.NewTicketService(service.TicketDependencies{
			TicketRepo: store.Tickets(),
			StatusRepo: store.Statuses(),
			Dispatcher: dispatcher,
		})
		notificationService := service.NewNotificationService(service.NotificationDependencies{
			NotificationRepo: store.NotificationRepo(),
			UserRepo:         store.Users(),
			TicketRepo:       store.Tickets(),
			StatusRepo:       store.Statuses(),
			Dispatcher:       dispatcher,
			Metrics:          metrics,
		})
		catalogService := service.NewCatalogService(service.CatalogDependencies{
			DepartmentRepo:  store.Departments(),
			CategoryRepo:    store.Categories(),
			SubCategoryRepo: store.SubCategories(),
			AssetRepo:       store.Assets(),
			PcPartRepo:      store.PcParts(),
			StatusRepo:      store.Statuses(),
			UserRepo:        store.Users(),
		})
		worker.StartNotificationWorker(pool, notificationService)

		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler("mts", "test", postgres, nil, metrics),
			Users:          handlers.NewUsersHandler(authService, userService),
			Tickets:        handlers.NewTicketsHandler(ticketService),
			Notifications:  handlers.NewNotificationsHandler(notificationService),
			Catalog:        handlers.NewCatalogHandler(catalogService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		})

		admin = store.AddUser(domain.User{Name: "alice", Role: domain.RoleAdmin})
		tech = store.AddUser(domain.User{Name: "bob", Role: domain.RoleMaintenance})
		staff = store.AddUser(domain.User{Name: "carol", Role: domain.RoleFacultyStaff})
		stranger = store.AddUser(domain.User{Name: "dave", Role: domain.RoleFacultyStaff})
		dept = store.AddDepartment(domain.Department{Name: "IT", Status: domain.DepartmentActive})
		category = store.AddCategory(domain.Category{Name: "Hardware"})
	})

	AfterEach(func() {
		pool.Stop()
	})

	do := func(method, path string, as *domain.User, body any) *http.Response {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if as != nil {
			token, _, err := tokens.GenerateToken(as.ID, as.Role)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, dst any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(dst)).To(Succeed())
	}

	createTicket := func() int64 {
		resp := do(http.MethodPost, "/tickets", &admin, map[string]any{
			"department_id": dept.ID,
			"category_id":   category.ID,
			"status_id":     1,
			"user_id":       staff.ID,
			"description":   "no network",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var body struct {
			TicketID int64 `json:"ticketId"`
		}
		decode(resp, &body)
		Expect(body.TicketID).NotTo(BeZero())
		dispatcher.Wait()
		return body.TicketID
	}

	It("serves liveness and readiness without a token", func() {
		Expect(do(http.MethodGet, "/health/live", nil, nil).StatusCode).To(Equal(http.StatusOK))

		resp := do(http.MethodGet, "/health/ready", nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var body map[string]any
		decode(resp, &body)
		Expect(body["dependencies"]).To(HaveKeyWithValue("redis", "disabled"))

		postgres.err = errors.New("down")
		Expect(do(http.MethodGet, "/health/ready", nil, nil).StatusCode).To(Equal(http.StatusServiceUnavailable))
	})

	It("requires a bearer token on protected routes", func() {
		resp := do(http.MethodGet, "/tickets", nil, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		var body apiError
		decode(resp, &body)
		Expect(body.Error.Code).To(Equal("UNAUTHORIZED"))
	})

	It("creates a ticket and lists it with joined names", func() {
		id := createTicket()

		resp := do(http.MethodGet, "/tickets", &staff, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var rows []map[string]any
		decode(resp, &rows)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]["id"]).To(BeNumerically("==", id))
		Expect(rows[0]["status_name"]).To(Equal("Open"))
		Expect(rows[0]["department_name"]).To(Equal("IT"))
		Expect(rows[0]).To(HaveKeyWithValue("technician_name", BeNil()))
	})

	It("only lets admins create tickets", func() {
		resp := do(http.MethodPost, "/tickets", &staff, map[string]any{
			"department_id": dept.ID, "category_id": category.ID, "status_id": 1,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("rejects a ticket without a department", func() {
		resp := do(http.MethodPost, "/tickets", &admin, map[string]any{"category_id": category.ID, "status_id": 1})
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		var body apiError
		decode(resp, &body)
		Expect(body.Error.Code).To(Equal("MISSING_REQUIRED_FIELD"))
		Expect(body.Error.Details).To(HaveKeyWithValue("field", "department_id"))
	})

	It("lets the owner update and notifies them of the status change", func() {
		id := createTicket()
		before := len(store.NotificationsFor(staff.ID))

		resp := do(http.MethodPut, fmt.Sprintf("/tickets/%d", id), &staff, map[string]any{"status_id": 2})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var body map[string]string
		decode(resp, &body)
		Expect(body["message"]).NotTo(BeEmpty())
		dispatcher.Wait()

		rows := store.NotificationsFor(staff.ID)
		Expect(rows).To(HaveLen(before + 1))
		Expect(rows[len(rows)-1].Message).To(Equal(domain.StatusChangedMessage(id, domain.StatusInProgress)))
	})

	It("forbids a stranger from updating", func() {
		id := createTicket()
		resp := do(http.MethodPut, fmt.Sprintf("/tickets/%d", id), &stranger, map[string]any{"status_id": 3})
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		stored, _ := store.Ticket(id)
		Expect(stored.StatusID).To(Equal(int64(1)))
	})

	It("returns 404 for an unknown ticket", func() {
		resp := do(http.MethodPut, "/tickets/999999", &admin, map[string]any{"status_id": 3})
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("rejects a non-numeric id in the body", func() {
		id := createTicket()
		resp := do(http.MethodPut, fmt.Sprintf("/tickets/%d", id), &admin, map[string]any{"technician_id": "bob"})
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		var body apiError
		decode(resp, &body)
		Expect(body.Error.Code).To(Equal("INVALID_FIELD"))
	})

	Describe("notifications", func() {
		It("limits an inbox to its owner", func() {
			createTicket()

			resp := do(http.MethodGet, fmt.Sprintf("/notifications/user/%d", staff.ID), &staff, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var rows []map[string]any
			decode(resp, &rows)
			Expect(rows).To(HaveLen(1))

			other := do(http.MethodGet, fmt.Sprintf("/notifications/user/%d", staff.ID), &tech, nil)
			Expect(other.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("marks one row read and counts the rest", func() {
			createTicket()
			row := store.NotificationsFor(staff.ID)[0]

			Expect(do(http.MethodPut, fmt.Sprintf("/notifications/%d/read", row.ID), &tech, nil).StatusCode).
				To(Equal(http.StatusForbidden))
			Expect(do(http.MethodPut, "/notifications/777777/read", &staff, nil).StatusCode).
				To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPut, fmt.Sprintf("/notifications/%d/read", row.ID), &staff, nil).StatusCode).
				To(Equal(http.StatusOK))

			resp := do(http.MethodGet, fmt.Sprintf("/notifications/user/%d/unread-count", staff.ID), &staff, nil)
			var count map[string]int64
			decode(resp, &count)
			Expect(count["unread"]).To(BeZero())
		})

		It("broadcasts to the ticket creator", func() {
			id := createTicket()
			resp := do(http.MethodPost, "/notifications/broadcast", &tech, map[string]any{
				"ticket_id": id,
				"message":   "on my way",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			rows := store.NotificationsFor(staff.ID)
			Expect(rows[len(rows)-1].Message).To(Equal(domain.BroadcastMessage(id, domain.StatusOpen, "bob", "on my way")))
		})
	})

	It("returns the narrowed classification for a department", func() {
		resp := do(http.MethodGet, fmt.Sprintf("/classification?department_id=%d", dept.ID), &staff, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var body map[string]any
		decode(resp, &body)
		Expect(body).To(HaveKey("categories"))
		Expect(body).To(HaveKey("maintenanceUsers"))
	})

	It("renders unknown routes as JSON errors", func() {
		resp := do(http.MethodGet, "/nope", &staff, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		var body apiError
		decode(resp, &body)
		Expect(body.Error.Code).To(Equal("NOT_FOUND"))
	})
})
