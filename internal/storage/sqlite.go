package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"rentledger/internal/core"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Users

func (s *SQLiteStore) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, currency, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Currency, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, currency, created_at FROM users WHERE email = ?`, email)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, currency, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Currency, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// Properties

func (s *SQLiteStore) CreateProperty(ctx context.Context, p *core.Property) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (id, owner_id, name, address, units, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Address, p.Units, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProperty(ctx context.Context, ownerID, id string) (*core.Property, error) {
	var p core.Property
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, address, units, notes, created_at FROM properties WHERE id = ? AND owner_id = ?`,
		id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.Units, &p.Notes, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select property: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProperties(ctx context.Context, ownerID string) ([]core.Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, address, units, notes, created_at FROM properties WHERE owner_id = ? ORDER BY created_at`,
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

func (s *SQLiteStore) UpdateProperty(ctx context.Context, p *core.Property) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE properties SET name = ?, address = ?, units = ?, notes = ? WHERE id = ? AND owner_id = ?`,
		p.Name, p.Address, p.Units, p.Notes, p.ID, p.OwnerID)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteProperty(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return requireRow(res)
}

// Tenants

func (s *SQLiteStore) CreateTenant(ctx context.Context, t *core.Tenant) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, owner_id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, t.Email, t.Phone, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTenant(ctx context.Context, ownerID, id string) (*core.Tenant, error) {
	var t core.Tenant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, email, phone, created_at FROM tenants WHERE id = ? AND owner_id = ?`,
		id, ownerID).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Email, &t.Phone, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select tenant: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) ListTenants(ctx context.Context, ownerID string) ([]core.Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, email, phone, created_at FROM tenants WHERE owner_id = ? ORDER BY created_at`,
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

func (s *SQLiteStore) UpdateTenant(ctx context.Context, t *core.Tenant) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, email = ?, phone = ? WHERE id = ? AND owner_id = ?`,
		t.Name, t.Email, t.Phone, t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteTenant(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	return requireRow(res)
}

// Tenancies

const tenancyColumns = `id, owner_id, property_id, tenant_id, rent_amount_cents, frequency, start_date, end_date, last_billed, active, created_at`

func (s *SQLiteStore) CreateTenancy(ctx context.Context, t *core.Tenancy) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenancies (`+tenancyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.PropertyID, t.TenantID, t.RentAmount.Cents, string(t.Frequency),
		dateArg(t.StartDate), dateArg(t.EndDate), dateArg(t.LastBilled), t.Active, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tenancy: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTenancy(ctx context.Context, ownerID, id string) (*core.Tenancy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTenancy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select tenancy: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTenancies(ctx context.Context, ownerID string) ([]core.Tenancy, error) {
	return s.queryTenancies(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE owner_id = ? ORDER BY created_at`, ownerID)
}

func (s *SQLiteStore) ListActiveTenancies(ctx context.Context) ([]core.Tenancy, error) {
	return s.queryTenancies(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE active = 1 ORDER BY created_at`)
}

func (s *SQLiteStore) queryTenancies(ctx context.Context, query string, args ...any) ([]core.Tenancy, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenancies: %w", err)
	}
	defer rows.Close()

	var out []core.Tenancy
	for rows.Next() {
		t, err := scanTenancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenancy: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateTenancy(ctx context.Context, t *core.Tenancy) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenancies SET rent_amount_cents = ?, frequency = ?, start_date = ?, end_date = ?, active = ?
		 WHERE id = ? AND owner_id = ?`,
		t.RentAmount.Cents, string(t.Frequency), dateArg(t.StartDate), dateArg(t.EndDate), t.Active,
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update tenancy: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) SetTenancyLastBilled(ctx context.Context, id string, billed core.Date) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenancies SET last_billed = ? WHERE id = ?`, dateArg(billed), id)
	if err != nil {
		return fmt.Errorf("update tenancy last_billed: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteTenancy(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenancies WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete tenancy: %w", err)
	}
	return requireRow(res)
}

// Obligations

const obligationColumns = `id, owner_id, tenancy_id, kind, description, amount_cents, paid_amount_cents,
	due_date, paid_date, status, method, reference, notes, is_recurring, frequency, export_state, created_at`

func (s *SQLiteStore) CreateObligation(ctx context.Context, o *core.Obligation) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO obligations (`+obligationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OwnerID, o.TenancyID, string(o.Kind), o.Description, o.Amount.Cents, o.PaidAmount.Cents,
		dateArg(o.DueDate), dateArg(o.PaidDate), string(o.Status), o.Method, o.Reference, o.Notes,
		o.Recurrence.IsRecurring, string(o.Recurrence.Frequency), ExportPending, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert obligation: %w", err)
	}

	slog.InfoContext(ctx, "Obligation saved",
		"id", o.ID,
		"owner_id", o.OwnerID,
		"kind", o.Kind,
		"amount_cents", o.Amount.Cents,
		"due_date", o.DueDate.String())
	return nil
}

func (s *SQLiteStore) GetObligation(ctx context.Context, ownerID, id string) (*core.Obligation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ? AND owner_id = ?`, id, ownerID)
	o, _, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select obligation: %w", err)
	}
	return o, nil
}

func (s *SQLiteStore) ListObligations(ctx context.Context, ownerID string, f ObligationFilter) ([]core.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE owner_id = ?`
	args := []any{ownerID}

	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.TenancyID != "" {
		query += ` AND tenancy_id = ?`
		args = append(args, f.TenancyID)
	}
	if f.DueFrom.IsSet() {
		query += ` AND due_date >= ?`
		args = append(args, f.DueFrom.String())
	}
	if f.DueTo.IsSet() {
		query += ` AND due_date <= ?`
		args = append(args, f.DueTo.String())
	}
	query += ` ORDER BY due_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, _, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateObligation(ctx context.Context, o *core.Obligation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligations SET description = ?, amount_cents = ?, due_date = ?, status = ?,
		 method = ?, reference = ?, notes = ?, is_recurring = ?, frequency = ?
		 WHERE id = ? AND owner_id = ?`,
		o.Description, o.Amount.Cents, dateArg(o.DueDate), string(o.Status),
		o.Method, o.Reference, o.Notes, o.Recurrence.IsRecurring, string(o.Recurrence.Frequency),
		o.ID, o.OwnerID)
	if err != nil {
		return fmt.Errorf("update obligation: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteObligation(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM obligations WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete obligation: %w", err)
	}
	return requireRow(res)
}

// ApplyPayment runs the increment server-side inside a transaction. The
// UPDATE carries the arithmetic so two concurrent payments both land;
// status and paid_date are then re-derived from the incremented row.
func (s *SQLiteStore) ApplyPayment(ctx context.Context, ownerID, id string, incrementCents int64, meta core.PaymentMeta, asOf core.Date) (*core.Obligation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE obligations SET paid_amount_cents = paid_amount_cents + ? WHERE id = ? AND owner_id = ?`,
		incrementCents, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("increment paid amount: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ? AND owner_id = ?`, id, ownerID)
	o, _, err := scanObligation(row)
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

	_, err = tx.ExecContext(ctx,
		`UPDATE obligations SET status = ?, paid_date = ?, method = ?, reference = ?, notes = ?
		 WHERE id = ? AND owner_id = ?`,
		string(o.Status), dateArg(o.PaidDate), o.Method, o.Reference, o.Notes, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("persist payment state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}

	slog.InfoContext(ctx, "Payment applied",
		"obligation_id", id,
		"owner_id", ownerID,
		"increment_cents", incrementCents,
		"paid_amount_cents", o.PaidAmount.Cents,
		"status", o.Status)
	return o, nil
}

func (s *SQLiteStore) MarkOverdue(ctx context.Context, ownerID string, asOf core.Date) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligations SET status = ?
		 WHERE owner_id = ? AND status = ? AND paid_amount_cents < amount_cents AND due_date < ?`,
		string(core.StatusOverdue), ownerID, string(core.StatusPending), asOf.String())
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Maintenance requests

func (s *SQLiteStore) CreateMaintenanceRequest(ctx context.Context, m *core.MaintenanceRequest) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_requests (id, owner_id, property_id, title, description, priority, resolved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.PropertyID, m.Title, m.Description, m.Priority, m.Resolved, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert maintenance request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMaintenanceRequests(ctx context.Context, ownerID string) ([]core.MaintenanceRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, property_id, title, description, priority, resolved, created_at
		 FROM maintenance_requests WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
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

func (s *SQLiteStore) ResolveMaintenanceRequest(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE maintenance_requests SET resolved = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("resolve maintenance request: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteMaintenanceRequest(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	return requireRow(res)
}

// Statement export queue

func (s *SQLiteStore) PendingExportObligations(ctx context.Context, limit int) ([]core.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations
		 WHERE export_state = ? AND status = ? ORDER BY paid_date LIMIT ?`,
		ExportPending, string(core.StatusPaid), limit)
	if err != nil {
		return nil, fmt.Errorf("pending export obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, _, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkExported(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligations SET export_state = ? WHERE id = ?`, ExportSynced, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) MarkExportError(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligations SET export_state = ? WHERE id = ?`, ExportError, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return requireRow(res)
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*core.Obligation, string, error) {
	var (
		o           core.Obligation
		tenancyID   sql.NullString
		dueDate     string
		paidDate    sql.NullString
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
	o.TenancyID = tenancyID.String
	o.Kind = core.Kind(kind)
	o.Status = core.Status(status)
	o.Recurrence.Frequency = core.Frequency(frequency)
	if o.DueDate, err = core.ParseDate(dueDate); err != nil {
		return nil, "", fmt.Errorf("bad due_date %q: %w", dueDate, err)
	}
	if paidDate.Valid && paidDate.String != "" {
		if o.PaidDate, err = core.ParseDate(paidDate.String); err != nil {
			return nil, "", fmt.Errorf("bad paid_date %q: %w", paidDate.String, err)
		}
	}
	return &o, exportState, nil
}

func scanTenancy(row rowScanner) (*core.Tenancy, error) {
	var (
		t          core.Tenancy
		frequency  string
		startDate  string
		endDate    sql.NullString
		lastBilled sql.NullString
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.PropertyID, &t.TenantID, &t.RentAmount.Cents,
		&frequency, &startDate, &endDate, &lastBilled, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Frequency = core.Frequency(frequency)
	if t.StartDate, err = core.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	if endDate.Valid && endDate.String != "" {
		if t.EndDate, err = core.ParseDate(endDate.String); err != nil {
			return nil, fmt.Errorf("bad end_date %q: %w", endDate.String, err)
		}
	}
	if lastBilled.Valid && lastBilled.String != "" {
		if t.LastBilled, err = core.ParseDate(lastBilled.String); err != nil {
			return nil, fmt.Errorf("bad last_billed %q: %w", lastBilled.String, err)
		}
	}
	return &t, nil
}

// dateArg renders a Date for storage, mapping the zero value to NULL.
func dateArg(d core.Date) any {
	if !d.IsSet() {
		return nil
	}
	return d.String()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
