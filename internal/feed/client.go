package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/domain"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// DefaultPollInterval matches the inbox refresh cadence of the web client.
const DefaultPollInterval = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client keeps a polled snapshot of the signed-in user's notifications.
type Client struct {
	api      *apiClient
	session  Session
	interval time.Duration
	logger   *zap.Logger

	// refreshMu orders fetch-and-publish so an older response never replaces a newer snapshot.
	refreshMu sync.Mutex

	mu            sync.RWMutex
	notifications []domain.Notification
	subscribers   map[int]chan []domain.Notification
	nextSub       int
}

// NewClient builds a feed client for session.
func NewClient(session Session, opts Options) *Client {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:         &apiClient{baseURL: opts.BaseURL, http: opts.HTTPClient, session: session},
		session:     session,
		interval:    interval,
		logger:      logger,
		subscribers: make(map[int]chan []domain.Notification),
	}
}

// Run refreshes immediately and then on every tick until ctx is done.
// Poll failures are logged and the previous snapshot is kept.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("notification poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Refresh fetches the inbox once. Without a signed-in user the snapshot is cleared.
// Concurrent refreshes from Run and the mark-read calls are serialized.
func (c *Client) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	user := c.session.CurrentUser()
	if user == nil {
		c.publish(nil)
		return nil
	}
	var rows []dto.NotificationResponse
	if err := c.api.do(ctx, http.MethodGet, fmt.Sprintf("/notifications/user/%d", user.ID), nil, &rows); err != nil {
		return err
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	c.publish(out)
	return nil
}

// Notifications returns a copy of the current snapshot, newest first.
func (c *Client) Notifications() []domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Notification(nil), c.notifications...)
}

// UnreadCount counts unread rows in the current snapshot.
func (c *Client) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, n := range c.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Subscribe returns a channel that receives every new snapshot and a cancel func that closes it.
// The current snapshot is delivered first. Slow subscribers only ever see the latest snapshot.
func (c *Client) Subscribe() (<-chan []domain.Notification, func()) {
	ch := make(chan []domain.Notification, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	ch <- append([]domain.Notification(nil), c.notifications...)
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			close(ch)
			c.mu.Unlock()
		})
	}
}

// MarkRead marks one notification read on the server and refreshes the snapshot.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	if err := c.api.do(ctx, http.MethodPut, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// MarkAllRead marks every notification of the signed-in user read and refreshes the snapshot.
func (c *Client) MarkAllRead(ctx context.Context) error {
	user := c.session.CurrentUser()
	if user == nil {
		return apperrors.NewUnauthorized("no signed-in user")
	}
	if err := c.api.do(ctx, http.MethodPut, fmt.Sprintf("/notifications/user/%d/read-all", user.ID), nil, nil); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

func (c *Client) publish(rows []domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = rows
	for _, ch := range c.subscribers {
		snapshot := append([]domain.Notification(nil), rows...)
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
