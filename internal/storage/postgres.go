package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentledger/internal/core"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	if err := RunPostgresMigrations(connString); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, currency, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Currency, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, currency, created_at FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, currency, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Currency, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// Properties

func (s *PostgresStore) CreateProperty(ctx context.Context, p *core.Property) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO properties (id, owner_id, name, address, units, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OwnerID, p.Name, p.Address, p.Units, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProperty(ctx context.Context, ownerID, id string) (*core.Property, error) {
	var p core.Property
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, address, units, notes, created_at FROM properties WHERE id = $1 AND owner_id = $2`,
		id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.Units, &p.Notes, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select property: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListProperties(ctx context.Context, ownerID string) ([]core.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, address, units, notes, created_at FROM properties WHERE owner_id = $1 ORDER BY created_at`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []core.Property
	for rows.Next() {
		var p core.Property
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.Units, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateProperty(ctx context.Context, p *core.Property) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE properties SET name = $1, address = $2, units = $3, notes = $4 WHERE id = $5 AND owner_id = $6`,
		p.Name, p.Address, p.Units, p.Notes, p.ID, p.OwnerID)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) DeleteProperty(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

// Tenants

func (s *PostgresStore) CreateTenant(ctx context.Context, t *core.Tenant) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tenants (id, owner_id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.OwnerID, t.Name, t.Email, t.Phone, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTenant(ctx context.Context, ownerID, id string) (*core.Tenant, error) {
	var t core.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, email, phone, created_at FROM tenants WHERE id = $1 AND owner_id = $2`,
		id, ownerID).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Email, &t.Phone, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select tenant: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) ListTenants(ctx context.Context, ownerID string) ([]core.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, email, phone, created_at FROM tenants WHERE owner_id = $1 ORDER BY created_at`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []core.Tenant
	for rows.Next() {
		var t core.Tenant
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Email, &t.Phone, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateTenant(ctx context.Context, t *core.Tenant) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET name = $1, email = $2, phone = $3 WHERE id = $4 AND owner_id = $5`,
		t.Name, t.Email, t.Phone, t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) DeleteTenant(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

// Tenancies

func (s *PostgresStore) CreateTenancy(ctx context.Context, t *core.Tenancy) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tenancies (`+tenancyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.OwnerID, t.PropertyID, t.TenantID, t.RentAmount.Cents, string(t.Frequency),
		pgDate(t.StartDate), pgDate(t.EndDate), pgDate(t.LastBilled), t.Active, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tenancy: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTenancy(ctx context.Context, ownerID, id string) (*core.Tenancy, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE id = $1 AND owner_id = $2`, id, ownerID)
	t, err := scanPgTenancy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select tenancy: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTenancies(ctx context.Context, ownerID string) ([]core.Tenancy, error) {
	return s.queryTenancies(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE owner_id = $1 ORDER BY created_at`, ownerID)
}

func (s *PostgresStore) ListActiveTenancies(ctx context.Context) ([]core.Tenancy, error) {
	return s.queryTenancies(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE active ORDER BY created_at`)
}

func (s *PostgresStore) queryTenancies(ctx context.Context, query string, args ...any) ([]core.Tenancy, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenancies: %w", err)
	}
	defer rows.Close()

	var out []core.Tenancy
	for rows.Next() {
		t, err := scanPgTenancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenancy: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateTenancy(ctx context.Context, t *core.Tenancy) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenancies SET rent_amount_cents = $1, frequency = $2, start_date = $3, end_date = $4, active = $5
		 WHERE id = $6 AND owner_id = $7`,
		t.RentAmount.Cents, string(t.Frequency), pgDate(t.StartDate), pgDate(t.EndDate), t.Active,
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update tenancy: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) SetTenancyLastBilled(ctx context.Context, id string, billed core.Date) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenancies SET last_billed = $1 WHERE id = $2`, pgDate(billed), id)
	if err != nil {
		return fmt.Errorf("update tenancy last_billed: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) DeleteTenancy(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tenancies WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete tenancy: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

// Obligations

func (s *PostgresStore) CreateObligation(ctx context.Context, o *core.Obligation) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO obligations (`+obligationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.OwnerID, nullIfEmpty(o.TenancyID), string(o.Kind), o.Description, o.Amount.Cents, o.PaidAmount.Cents,
		pgDate(o.DueDate), pgDate(o.PaidDate), string(o.Status), o.Method, o.Reference, o.Notes,
		o.Recurrence.IsRecurring, string(o.Recurrence.Frequency), ExportPending, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert obligation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetObligation(ctx context.Context, ownerID, id string) (*core.Obligation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	o, _, err := scanPgObligation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select obligation: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) ListObligations(ctx context.Context, ownerID string, f ObligationFilter) ([]core.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE owner_id = $1`
	args := []any{ownerID}

	next := 2
	appendCond := func(cond string, arg any) {
		query += fmt.Sprintf(" AND %s $%d", cond, next)
		args = append(args, arg)
		next++
	}
	if f.Kind != "" {
		appendCond("kind =", string(f.Kind))
	}
	if f.Status != "" {
		appendCond("status =", string(f.Status))
	}
	if f.TenancyID != "" {
		appendCond("tenancy_id =", f.TenancyID)
	}
	if f.DueFrom.IsSet() {
		appendCond("due_date >=", f.DueFrom.Time)
	}
	if f.DueTo.IsSet() {
		appendCond("due_date <=", f.DueTo.Time)
	}
	query += ` ORDER BY due_date, created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, _, err := scanPgObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateObligation(ctx context.Context, o *core.Obligation) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE obligations SET description = $1, amount_cents = $2, due_date = $3, status = $4,
		 method = $5, reference = $6, notes = $7, is_recurring = $8, frequency = $9
		 WHERE id = $10 AND owner_id = $11`,
		o.Description, o.Amount.Cents, pgDate(o.DueDate), string(o.Status),
		o.Method, o.Reference, o.Notes, o.Recurrence.IsRecurring, string(o.Recurrence.Frequency),
		o.ID, o.OwnerID)
	if err != nil {
		return fmt.Errorf("update obligation: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) DeleteObligation(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM obligations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete obligation: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) ApplyPayment(ctx context.Context, ownerID, id string, incrementCents int64, meta core.PaymentMeta, asOf core.Date) (*core.Obligation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE obligations SET paid_amount_cents = paid_amount_cents + $1 WHERE id = $2 AND owner_id = $3`,
		incrementCents, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("increment paid amount: %w", err)
	}
	if err := requireAffected(tag.RowsAffected()); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	o, _, err := scanPgObligation(row)
	if err != nil {
		return nil, fmt.Errorf("reload obligation: %w", err)
	}

	o.Status = core.DeriveStatus(*o, asOf)
	if o.Status == core.StatusPaid && !o.PaidDate.IsSet() {
		if meta.PaidDate.IsSet() {
			o.PaidDate = meta.PaidDate
		} else {
			o.PaidDate = asOf
		}
	}
	if meta.Method != "" {
		o.Method = meta.Method
	}
	if meta.Reference != "" {
		o.Reference = meta.Reference
	}
	if meta.Notes != "" {
		o.Notes = meta.Notes
	}

	_, err = tx.Exec(ctx,
		`UPDATE obligations SET status = $1, paid_date = $2, method = $3, reference = $4, notes = $5
		 WHERE id = $6 AND owner_id = $7`,
		string(o.Status), pgDate(o.PaidDate), o.Method, o.Reference, o.Notes, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("persist payment state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) MarkOverdue(ctx context.Context, ownerID string, asOf core.Date) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE obligations SET status = $1
		 WHERE owner_id = $2 AND status = $3 AND paid_amount_cents < amount_cents AND due_date < $4`,
		string(core.StatusOverdue), ownerID, string(core.StatusPending), asOf.Time)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Maintenance requests

func (s *PostgresStore) CreateMaintenanceRequest(ctx context.Context, m *core.MaintenanceRequest) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO maintenance_requests (id, owner_id, property_id, title, description, priority, resolved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.OwnerID, m.PropertyID, m.Title, m.Description, m.Priority, m.Resolved, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert maintenance request: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMaintenanceRequests(ctx context.Context, ownerID string) ([]core.MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, property_id, title, description, priority, resolved, created_at
		 FROM maintenance_requests WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance requests: %w", err)
	}
	defer rows.Close()

	var out []core.MaintenanceRequest
	for rows.Next() {
		var m core.MaintenanceRequest
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.PropertyID, &m.Title, &m.Description, &m.Priority, &m.Resolved, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan maintenance request: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ResolveMaintenanceRequest(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE maintenance_requests SET resolved = TRUE WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("resolve maintenance request: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) DeleteMaintenanceRequest(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM maintenance_requests WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

// Statement export queue

func (s *PostgresStore) PendingExportObligations(ctx context.Context, limit int) ([]core.Obligation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM obligations
		 WHERE export_state = $1 AND status = $2 ORDER BY paid_date LIMIT $3`,
		ExportPending, string(core.StatusPaid), limit)
	if err != nil {
		return nil, fmt.Errorf("pending export obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, _, err := scanPgObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkExported(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE obligations SET export_state = $1 WHERE id = $2`, ExportSynced, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

func (s *PostgresStore) MarkExportError(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE obligations SET export_state = $1 WHERE id = $2`, ExportError, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return requireAffected(tag.RowsAffected())
}

// scanning helpers

func scanPgObligation(row pgx.Row) (*core.Obligation, string, error) {
	var (
		o           core.Obligation
		tenancyID   *string
		dueDate     time.Time
		paidDate    *time.Time
		status      string
		kind        string
		frequency   string
		exportState string
	)
	err := row.Scan(&o.ID, &o.OwnerID, &tenancyID, &kind, &o.Description,
		&o.Amount.Cents, &o.PaidAmount.Cents, &dueDate, &paidDate, &status,
		&o.Method, &o.Reference, &o.Notes, &o.Recurrence.IsRecurring, &frequency,
		&exportState, &o.CreatedAt)
	if err != nil {
		return nil, "", err
	}
	if tenancyID != nil {
		o.TenancyID = *tenancyID
	}
	o.Kind = core.Kind(kind)
	o.Status = core.Status(status)
	o.Recurrence.Frequency = core.Frequency(frequency)
	o.DueDate = core.DateOf(dueDate)
	if paidDate != nil {
		o.PaidDate = core.DateOf(*paidDate)
	}
	return &o, exportState, nil
}

func scanPgTenancy(row pgx.Row) (*core.Tenancy, error) {
	var (
		t          core.Tenancy
		frequency  string
		startDate  time.Time
		endDate    *time.Time
		lastBilled *time.Time
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.PropertyID, &t.TenantID, &t.RentAmount.Cents,
		&frequency, &startDate, &endDate, &lastBilled, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Frequency = core.Frequency(frequency)
	t.StartDate = core.DateOf(startDate)
	if endDate != nil {
		t.EndDate = core.DateOf(*endDate)
	}
	if lastBilled != nil {
		t.LastBilled = core.DateOf(*lastBilled)
	}
	return &t, nil
}

// pgDate maps the zero Date to NULL for DATE columns.
func pgDate(d core.Date) *time.Time {
	if !d.IsSet() {
		return nil
	}
	t := d.Time
	return &t
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func requireAffected(n int64) error {
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
