package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-mts/mts/internal/domain"
)

// TicketFilter narrows ticket listings. Nil fields do not filter.
type TicketFilter struct {
	UserID       *int64
	TechnicianID *int64
	DepartmentID *int64
	StatusID     *int64
}

// TicketRepository encapsulates ticket persistence. Tickets are never deleted.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id int64, patch domain.TicketPatch, now time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetView(ctx context.Context, id int64) (*domain.TicketView, error)
	ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.department_id, t.category_id, t.subcategory_id, t.user_id, t.asset_id, t.pc_part_id,
               t.description, t.resolution, t.status_id, t.technician_id, t.created_at, t.updated_at`

const ticketViewSelect = `SELECT ` + ticketColumns + `,
               d.name, c.name, sc.name, u.name, tech.name, a.item_code, p.part_name, s.name
        FROM tickets t
        LEFT JOIN departments d ON d.id = t.department_id
        LEFT JOIN categories c ON c.id = t.category_id
        LEFT JOIN sub_categories sc ON sc.id = t.subcategory_id
        LEFT JOIN users u ON u.id = t.user_id
        LEFT JOIN users tech ON tech.id = t.technician_id
        LEFT JOIN assets a ON a.id = t.asset_id
        LEFT JOIN pc_parts p ON p.id = t.pc_part_id
        LEFT JOIN statuses s ON s.id = t.status_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (department_id, category_id, subcategory_id, user_id, asset_id, pc_part_id,
            description, status_id, technician_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.DepartmentID,
		ticket.CategoryID,
		ticket.SubcategoryID,
		ticket.UserID,
		ticket.AssetID,
		ticket.PcPartID,
		ticket.Description,
		ticket.StatusID,
		ticket.TechnicianID,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update writes only the fields set in patch and always bumps updated_at.
// updated_at never moves backwards even if the caller's clock does.
func (r *ticketRepository) Update(ctx context.Context, id int64, patch domain.TicketPatch, now time.Time) error {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.DepartmentID.IsSet() {
		add("department_id", patch.DepartmentID.Ptr())
	}
	if patch.CategoryID.IsSet() {
		add("category_id", patch.CategoryID.Ptr())
	}
	if patch.StatusID.IsSet() {
		add("status_id", patch.StatusID.Ptr())
	}
	if patch.SubcategoryID.IsSet() {
		add("subcategory_id", patch.SubcategoryID.Ptr())
	}
	if patch.UserID.IsSet() {
		add("user_id", patch.UserID.Ptr())
	}
	if patch.AssetID.IsSet() {
		add("asset_id", patch.AssetID.Ptr())
	}
	if patch.PcPartID.IsSet() {
		add("pc_part_id", patch.PcPartID.Ptr())
	}
	if patch.TechnicianID.IsSet() {
		add("technician_id", patch.TechnicianID.Ptr())
	}
	if patch.Description.IsSet() {
		add("description", patch.Description.Ptr())
	}
	if patch.Resolution.IsSet() {
		add("resolution", patch.Resolution.Ptr())
	}

	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at=GREATEST(updated_at, $%d)", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	return execOne(ctx, r.pool, query, args...)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var t domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketDest(&t)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id int64) (*domain.TicketView, error) {
	rows, err := r.pool.Query(ctx, ticketViewSelect+` WHERE t.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views, err := scanTicketViews(rows)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &views[0], nil
}

func (r *ticketRepository) ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("t.user_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("t.technician_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("t.department_id=$%d", len(args)))
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("t.status_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC, t.id DESC`,
		ticketViewSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketViews(rows)
}

func ticketDest(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.DepartmentID,
		&t.CategoryID,
		&t.SubcategoryID,
		&t.UserID,
		&t.AssetID,
		&t.PcPartID,
		&t.Description,
		&t.Resolution,
		&t.StatusID,
		&t.TechnicianID,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}

func scanTicketViews(rows pgx.Rows) ([]domain.TicketView, error) {
	result := []domain.TicketView{}
	for rows.Next() {
		var v domain.TicketView
		var deptName, catName, statusName *string
		dest := append(ticketDest(&v.Ticket),
			&deptName,
			&catName,
			&v.SubcategoryName,
			&v.UserName,
			&v.TechnicianName,
			&v.AssetItemCode,
			&v.PcPartName,
			&statusName,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		v.DepartmentName = deref(deptName)
		v.CategoryName = deref(catName)
		v.StatusName = deref(statusName)
		result = append(result, v)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
