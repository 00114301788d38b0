// Package repotest provides an in-memory implementation of the repository interfaces for tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository"
)

// ErrInjected is returned by notification inserts while FailNotifications is set.
var ErrInjected = errors.New("injected failure")

// Store keeps every table in memory. Missing rows surface as pgx.ErrNoRows like the pgx repositories.
type Store struct {
	mu sync.Mutex

	nextID        int64
	users         map[int64]domain.User
	statuses      map[int64]domain.Status
	departments   map[int64]domain.Department
	categories    map[int64]domain.Category
	subCategories map[int64]domain.SubCategory
	assets        map[int64]domain.Asset
	pcParts       map[int64]domain.PcPart
	tickets       map[int64]domain.Ticket
	notifications map[int64]domain.Notification

	failNotifications bool
}

// NewStore returns an empty store with the four seeded statuses.
func NewStore() *Store {
	s := &Store{
		users:         map[int64]domain.User{},
		statuses:      map[int64]domain.Status{},
		departments:   map[int64]domain.Department{},
		categories:    map[int64]domain.Category{},
		subCategories: map[int64]domain.SubCategory{},
		assets:        map[int64]domain.Asset{},
		pcParts:       map[int64]domain.PcPart{},
		tickets:       map[int64]domain.Ticket{},
		notifications: map[int64]domain.Notification{},
	}
	for i, name := range []string{domain.StatusOpen, domain.StatusInProgress, domain.StatusClosed, domain.StatusForApproval} {
		id := int64(i + 1)
		s.statuses[id] = domain.Status{ID: id, Name: name}
	}
	s.nextID = 100
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// FailNotifications makes every notification insert fail while on is true.
func (s *Store) FailNotifications(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNotifications = on
}

// AddUser inserts u and returns it with its id.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.users[u.ID] = u
	return u
}

// AddDepartment inserts d and returns it with its id.
func (s *Store) AddDepartment(d domain.Department) domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.departments[d.ID] = d
	return d
}

// AddCategory inserts c and returns it with its id.
func (s *Store) AddCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.categories[c.ID] = c
	return c
}

// AddSubCategory inserts sc and returns it with its id.
func (s *Store) AddSubCategory(sc domain.SubCategory) domain.SubCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.id()
	s.subCategories[sc.ID] = sc
	return sc
}

// AddAsset inserts a and returns it with its id.
func (s *Store) AddAsset(a domain.Asset) domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.assets[a.ID] = a
	return a
}

// Ticket returns the stored ticket row.
func (s *Store) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

// Notifications returns every notification row ordered by id.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NotificationsFor returns the rows addressed to userID ordered by id.
func (s *Store) NotificationsFor(userID int64) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.Notifications() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) Users() repository.UserRepository                    { return userRepo{s} }
func (s *Store) Statuses() repository.StatusRepository               { return statusRepo{s} }
func (s *Store) Departments() repository.DepartmentRepository        { return departmentRepo{s} }
func (s *Store) Categories() repository.CategoryRepository           { return categoryRepo{s} }
func (s *Store) SubCategories() repository.SubCategoryRepository     { return subCategoryRepo{s} }
func (s *Store) Assets() repository.AssetRepository                  { return assetRepo{s} }
func (s *Store) PcParts() repository.PcPartRepository                { return pcPartRepo{s} }
func (s *Store) Tickets() repository.TicketRepository                { return ticketRepo{s} }
func (s *Store) NotificationRepo() repository.NotificationRepository { return notificationRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Name, u.Name) {
			return uniqueViolation("users_name_key")
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.CreatedAt = current.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for tid, t := range r.s.tickets {
		if t.UserID != nil && *t.UserID == id {
			t.UserID = nil
		}
		if t.TechnicianID != nil && *t.TechnicianID == id {
			t.TechnicianID = nil
		}
		r.s.tickets[tid] = t
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r userRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r userRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type statusRepo struct{ s *Store }

func (r statusRepo) List(_ context.Context) ([]domain.Status, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Status, 0, len(r.s.statuses))
	for _, st := range r.s.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r statusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.statuses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &st, nil
}

func (r statusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.statuses {
		if st.Name == name {
			return &st, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type departmentRepo struct{ s *Store }

func (r departmentRepo) Create(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	r.s.departments[d.ID] = *d
	return nil
}

func (r departmentRepo) Update(_ context.Context, d *domain.Department) error {
	return put(r.s, r.s.departments, d.ID, *d)
}

func (r departmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.s.departmentInUse(id); err != nil {
		return err
	}
	delete(r.s.departments, id)
	return nil
}

func (r departmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	return get(r.s, r.s.departments, id)
}

func (r departmentRepo) List(_ context.Context) ([]domain.Department, error) {
	out := list(r.s, r.s.departments)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	r.s.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) Update(_ context.Context, c *domain.Category) error {
	return put(r.s, r.s.categories, c.ID, *c)
}

func (r categoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, t := range r.s.tickets {
		if t.CategoryID == id {
			return foreignKeyViolation("tickets", "category_id")
		}
	}
	// Sub-categories cascade, so the delete fails if any of them is still in use.
	var cascade []int64
	for _, sc := range r.s.subCategories {
		if sc.CategoryID != id {
			continue
		}
		if err := r.s.subCategoryInUse(sc.ID); err != nil {
			return err
		}
		cascade = append(cascade, sc.ID)
	}
	for _, scID := range cascade {
		delete(r.s.subCategories, scID)
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepo) List(_ context.Context) ([]domain.Category, error) {
	out := list(r.s, r.s.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type subCategoryRepo struct{ s *Store }

func (r subCategoryRepo) Create(_ context.Context, sc *domain.SubCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc.ID = r.s.id()
	r.s.subCategories[sc.ID] = *sc
	return nil
}

func (r subCategoryRepo) Update(_ context.Context, sc *domain.SubCategory) error {
	return put(r.s, r.s.subCategories, sc.ID, *sc)
}

func (r subCategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subCategories[id]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.s.subCategoryInUse(id); err != nil {
		return err
	}
	delete(r.s.subCategories, id)
	return nil
}

func (r subCategoryRepo) GetByID(_ context.Context, id int64) (*domain.SubCategory, error) {
	return get(r.s, r.s.subCategories, id)
}

func (r subCategoryRepo) List(_ context.Context) ([]domain.SubCategory, error) {
	out := list(r.s, r.s.subCategories)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type assetRepo struct{ s *Store }

func (r assetRepo) Create(_ context.Context, a *domain.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	r.s.assets[a.ID] = *a
	return nil
}

func (r assetRepo) Update(_ context.Context, a *domain.Asset) error {
	return put(r.s, r.s.assets, a.ID, *a)
}

func (r assetRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[id]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.s.assetInUse(id); err != nil {
		return err
	}
	delete(r.s.assets, id)
	return nil
}

func (r assetRepo) GetByID(_ context.Context, id int64) (*domain.Asset, error) {
	return get(r.s, r.s.assets, id)
}

func (r assetRepo) List(_ context.Context) ([]domain.Asset, error) {
	out := list(r.s, r.s.assets)
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, nil
}

type pcPartRepo struct{ s *Store }

func (r pcPartRepo) Create(_ context.Context, p *domain.PcPart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.pcParts[p.ID] = *p
	return nil
}

func (r pcPartRepo) Update(_ context.Context, p *domain.PcPart) error {
	return put(r.s, r.s.pcParts, p.ID, *p)
}

func (r pcPartRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pcParts[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, t := range r.s.tickets {
		if t.PcPartID != nil && *t.PcPartID == id {
			return foreignKeyViolation("tickets", "pc_part_id")
		}
	}
	delete(r.s.pcParts, id)
	return nil
}

func (r pcPartRepo) List(_ context.Context) ([]domain.PcPart, error) {
	out := list(r.s, r.s.pcParts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	t.UpdatedAt = t.CreatedAt
	r.s.tickets[t.ID] = *t
	return nil
}

func (r ticketRepo) Update(_ context.Context, id int64, patch domain.TicketPatch, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := patch.ApplyTo(current)
	if now.After(current.UpdatedAt) {
		updated.UpdatedAt = now
	}
	r.s.tickets[id] = updated
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	return get(r.s, r.s.tickets, id)
}

func (r ticketRepo) GetView(_ context.Context, id int64) (*domain.TicketView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	view := r.s.view(t)
	return &view, nil
}

func (r ticketRepo) ListViews(_ context.Context, filter repository.TicketFilter) ([]domain.TicketView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.TicketView{}
	for _, t := range r.s.tickets {
		if !matches(filter.UserID, t.UserID) || !matches(filter.TechnicianID, t.TechnicianID) {
			continue
		}
		if filter.DepartmentID != nil && *filter.DepartmentID != t.DepartmentID {
			continue
		}
		if filter.StatusID != nil && *filter.StatusID != t.StatusID {
			continue
		}
		out = append(out, r.s.view(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// view joins display names; caller holds the lock.
func (s *Store) view(t domain.Ticket) domain.TicketView {
	v := domain.TicketView{
		Ticket:         t,
		DepartmentName: s.departments[t.DepartmentID].Name,
		CategoryName:   s.categories[t.CategoryID].Name,
		StatusName:     s.statuses[t.StatusID].Name,
	}
	if t.SubcategoryID != nil {
		if sc, ok := s.subCategories[*t.SubcategoryID]; ok {
			v.SubcategoryName = &sc.Name
		}
	}
	if t.UserID != nil {
		if u, ok := s.users[*t.UserID]; ok {
			v.UserName = &u.Name
		}
	}
	if t.TechnicianID != nil {
		if u, ok := s.users[*t.TechnicianID]; ok {
			v.TechnicianName = &u.Name
		}
	}
	if t.AssetID != nil {
		if a, ok := s.assets[*t.AssetID]; ok {
			v.AssetItemCode = &a.ItemCode
		}
	}
	if t.PcPartID != nil {
		if p, ok := s.pcParts[*t.PcPartID]; ok {
			v.PcPartName = &p.PartName
		}
	}
	return v
}

func matches(want, got *int64) bool {
	return want == nil || (got != nil && *got == *want)
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotifications {
		return ErrInjected
	}
	n.ID = r.s.id()
	n.CreatedAt = time.Now()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) GetByID(_ context.Context, id int64) (*domain.Notification, error) {
	return get(r.s, r.s.notifications, id)
}

func (r notificationRepo) ListByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func get[T any](s *Store, table map[int64]T, id int64) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := table[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func put[T any](s *Store, table map[int64]T, id int64, row T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := table[id]; !ok {
		return pgx.ErrNoRows
	}
	table[id] = row
	return nil
}

// The *InUse checks expect s.mu to be held.

func (s *Store) departmentInUse(id int64) error {
	for _, a := range s.assets {
		if a.DepartmentID == id {
			return foreignKeyViolation("assets", "department_id")
		}
	}
	for _, p := range s.pcParts {
		if p.DepartmentID == id {
			return foreignKeyViolation("pc_parts", "department_id")
		}
	}
	for _, t := range s.tickets {
		if t.DepartmentID == id {
			return foreignKeyViolation("tickets", "department_id")
		}
	}
	return nil
}

func (s *Store) subCategoryInUse(id int64) error {
	for _, a := range s.assets {
		if a.SubCategoryID == id {
			return foreignKeyViolation("assets", "sub_category_id")
		}
	}
	for _, t := range s.tickets {
		if t.SubcategoryID != nil && *t.SubcategoryID == id {
			return foreignKeyViolation("tickets", "subcategory_id")
		}
	}
	return nil
}

func (s *Store) assetInUse(id int64) error {
	code := s.assets[id].ItemCode
	for _, p := range s.pcParts {
		if p.AssetItemCode == code {
			return foreignKeyViolation("pc_parts", "asset_item_code")
		}
	}
	for _, t := range s.tickets {
		if t.AssetID != nil && *t.AssetID == id {
			return foreignKeyViolation("tickets", "asset_id")
		}
	}
	return nil
}

func list[T any](s *Store, table map[int64]T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(table))
	for _, row := range table {
		out = append(out, row)
	}
	return out
}
