package feed_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/feed"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

const testToken = "token-42"

// inboxServer mimics the notification endpoints for user 42.
type inboxServer struct {
	mu    sync.Mutex
	rows  []dto.NotificationResponse
	polls int

	// When gate is set the next inbox read captures the rows, closes stalled
	// and waits for gate before answering.
	gate    chan struct{}
	stalled chan struct{}
}

func (s *inboxServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/auth/login" && r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"invalid token"}}`))
		return
	}
	if r.Method == http.MethodGet && r.URL.Path == "/notifications/user/42" {
		s.serveInbox(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/me":
		_ = json.NewEncoder(w).Encode(dto.UserResponse{ID: 42, Name: "carol", Role: domain.RoleFacultyStaff})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		var req dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(dto.AuthResponse{
			Token: testToken,
			User:  dto.UserResponse{ID: 42, Name: req.Name, Role: domain.RoleFacultyStaff},
		})
	case r.Method == http.MethodPut && r.URL.Path == "/notifications/user/42/read-all":
		for i := range s.rows {
			s.rows[i].IsRead = true
		}
		_ = json.NewEncoder(w).Encode(dto.MarkAllReadResponse{Updated: int64(len(s.rows))})
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/read"):
		var id int64
		_, _ = fmt.Sscanf(r.URL.Path, "/notifications/%d/read", &id)
		for i := range s.rows {
			if s.rows[i].ID == id {
				s.rows[i].IsRead = true
				_ = json.NewEncoder(w).Encode(dto.MessageResponse{Message: "ok"})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"notification not found"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *inboxServer) serveInbox(w http.ResponseWriter) {
	s.mu.Lock()
	s.polls++
	rows := append([]dto.NotificationResponse(nil), s.rows...)
	gate, stalled := s.gate, s.stalled
	s.gate, s.stalled = nil, nil
	s.mu.Unlock()

	if gate != nil {
		close(stalled)
		<-gate
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// holdNextPoll makes the next inbox read answer with the rows as they are now, once gate is closed.
func (s *inboxServer) holdNextPoll() (gate, stalled chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate, s.stalled = make(chan struct{}), make(chan struct{})
	return s.gate, s.stalled
}

func (s *inboxServer) unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.rows {
		if !row.IsRead {
			count++
		}
	}
	return count
}

func (s *inboxServer) add(id int64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]dto.NotificationResponse{{ID: id, UserID: 42, Message: msg, CreatedAt: time.Now()}}, s.rows...)
}

func (s *inboxServer) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// staticSession is a Session without a network round trip.
type staticSession struct{ user *domain.User }

func (s staticSession) CurrentUser() *domain.User { return s.user }
func (s staticSession) Token() string             { return testToken }

var _ = Describe("Client", func() {
	var (
		inbox  *inboxServer
		server *httptest.Server
		client *feed.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		inbox = &inboxServer{}
		inbox.add(1, "Your ticket #1 has been created.")
		inbox.add(2, "Your ticket #1 is now In Progress.")
		server = httptest.NewServer(inbox)
		client = feed.NewClient(staticSession{user: &domain.User{ID: 42}}, feed.Options{
			BaseURL:      server.URL,
			PollInterval: 20 * time.Millisecond,
		})
	})

	AfterEach(func() {
		server.Close()
	})

	It("loads a snapshot and counts unread rows", func() {
		Expect(client.Refresh(ctx)).To(Succeed())
		Expect(client.Notifications()).To(HaveLen(2))
		Expect(client.Notifications()[0].ID).To(Equal(int64(2)))
		Expect(client.UnreadCount()).To(Equal(2))
	})

	It("marks one row read and refreshes", func() {
		Expect(client.Refresh(ctx)).To(Succeed())
		Expect(client.MarkRead(ctx, 1)).To(Succeed())
		Expect(client.UnreadCount()).To(Equal(1))
	})

	It("surfaces server errors with their code", func() {
		err := client.MarkRead(ctx, 99)
		Expect(err).To(HaveOccurred())
		Expect(apperrors.ToDomainError(err).Code).To(Equal("NOT_FOUND"))
		Expect(apperrors.IsNotFound(err)).To(BeTrue())
	})

	It("marks everything read", func() {
		Expect(client.MarkAllRead(ctx)).To(Succeed())
		Expect(client.UnreadCount()).To(BeZero())
	})

	It("never lets a slow poll overwrite the snapshot from a later mark-all-read", func() {
		gate, stalled := inbox.holdNextPoll()
		pollDone := make(chan error, 1)
		go func() { pollDone <- client.Refresh(ctx) }()
		Eventually(stalled).Should(BeClosed())

		markDone := make(chan error, 1)
		go func() { markDone <- client.MarkAllRead(ctx) }()
		Eventually(inbox.unread).Should(BeZero())

		close(gate)
		Eventually(pollDone).Should(Receive(BeNil()))
		Eventually(markDone).Should(Receive(BeNil()))
		Expect(client.UnreadCount()).To(BeZero())
	})

	It("clears the snapshot when nobody is signed in", func() {
		anonymous := feed.NewClient(staticSession{}, feed.Options{BaseURL: server.URL})
		Expect(anonymous.Refresh(ctx)).To(Succeed())
		Expect(anonymous.Notifications()).To(BeEmpty())
		Expect(anonymous.MarkAllRead(ctx)).NotTo(Succeed())
	})

	It("polls on the interval and pushes snapshots to subscribers", func() {
		updates, cancelSub := client.Subscribe()
		defer cancelSub()
		Eventually(updates).Should(Receive(BeEmpty()))

		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- client.Run(runCtx) }()

		Eventually(updates).Should(Receive(HaveLen(2)))
		inbox.add(3, "You have been assigned to ticket #3.")
		Eventually(func() int { return len(client.Notifications()) }).Should(Equal(3))
		Expect(inbox.pollCount()).To(BeNumerically(">=", 2))

		stop()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("closes the subscription channel on cancel", func() {
		updates, cancelSub := client.Subscribe()
		<-updates
		cancelSub()
		cancelSub()
		Eventually(updates).Should(BeClosed())
	})
})

var _ = Describe("sessions", func() {
	var server *httptest.Server

	BeforeEach(func() {
		server = httptest.NewServer(&inboxServer{})
	})

	AfterEach(func() {
		server.Close()
	})

	It("resolves the token owner through /auth/me", func() {
		session := feed.NewTokenSession(testToken)
		Expect(session.CurrentUser()).To(BeNil())
		Expect(session.Load(context.Background(), server.URL, nil)).To(Succeed())
		Expect(session.CurrentUser().ID).To(Equal(int64(42)))
	})

	It("rejects a bad token", func() {
		session := feed.NewTokenSession("wrong")
		err := session.Load(context.Background(), server.URL, nil)
		Expect(apperrors.ToDomainError(err).HTTPStatus).To(Equal(http.StatusUnauthorized))
	})

	It("logs in with credentials", func() {
		session, err := feed.Login(context.Background(), server.URL, nil, "carol", "secret-pass")
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Token()).To(Equal(testToken))
		Expect(session.CurrentUser().Name).To(Equal("carol"))
	})
})
