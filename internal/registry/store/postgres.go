package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Sayrarh/Fast/internal/registry/models"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/platform/sentinel"
)

//go:embed schema.sql
var schemaSQL string

// Postgres persists registrar state. Every Apply runs in one transaction so
// the linked views cannot drift even if the process dies mid-operation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the registrar tables if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) Record(ctx context.Context, owner id.Address) (models.Record, error) {
	rec := models.EmptyRecord(owner)
	var (
		domain    sql.NullString
		logIndex  sql.NullInt64
		receiptID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT domain, log_index, receipt_id, registered, minted
		   FROM registrations WHERE owner = $1`, owner.String(),
	).Scan(&domain, &logIndex, &receiptID, &rec.Registered, &rec.Minted)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("load record for %s: %w", owner, err)
	}
	if domain.Valid {
		rec.Domain = domain.String
	}
	if logIndex.Valid {
		rec.LogIndex = logIndex.Int64
	}
	if receiptID.Valid {
		rec.ReceiptID = uint64(receiptID.Int64)
		rec.HasReceipt = true
	}
	return rec, nil
}

func (s *Postgres) IsActive(ctx context.Context, domain string) (bool, error) {
	var active bool
	err := s.db.QueryRowContext(ctx,
		`SELECT active FROM domains WHERE name = $1`, domain,
	).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load domain %q: %w", domain, err)
	}
	return active, nil
}

func (s *Postgres) OwnerOf(ctx context.Context, domain string) (id.Address, error) {
	var owner sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT owner FROM domains WHERE name = $1 AND active`, domain,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !owner.Valid) {
		return id.ZeroAddress, nil
	}
	if err != nil {
		return "", fmt.Errorf("load owner of %q: %w", domain, err)
	}
	return id.Address(owner.String), nil
}

func (s *Postgres) AllDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain FROM registry_log ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load registry log: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan registry log: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Postgres) Apply(ctx context.Context, m models.Mutation) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	switch m.Kind {
	case models.MutationRegister:
		err = s.applyRegister(ctx, tx, m)
	case models.MutationReassign:
		err = s.applyReassign(ctx, tx, m)
	case models.MutationTransfer:
		err = s.applyTransfer(ctx, tx, m)
	case models.MutationTransferCorrected:
		err = s.applyTransferCorrected(ctx, tx, m)
	case models.MutationMarkMinted:
		err = s.setMinted(ctx, tx, m.Owner, true)
	case models.MutationUnmarkMinted:
		err = s.setMinted(ctx, tx, m.Owner, false)
	default:
		err = fmt.Errorf("unknown mutation kind %q: %w", m.Kind, sentinel.ErrConflict)
	}
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit apply: %w", err)
	}
	return nil
}

func (s *Postgres) applyRegister(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	var active bool
	err := tx.QueryRowContext(ctx,
		`SELECT active FROM domains WHERE name = $1 FOR UPDATE`, m.Domain,
	).Scan(&active)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock domain %q: %w", m.Domain, err)
	}
	if active {
		return fmt.Errorf("domain %q already active: %w", m.Domain, sentinel.ErrConflict)
	}

	var registered bool
	err = tx.QueryRowContext(ctx,
		`SELECT registered FROM registrations WHERE owner = $1 FOR UPDATE`, m.Owner.String(),
	).Scan(&registered)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock owner %s: %w", m.Owner, err)
	}
	if registered {
		return fmt.Errorf("owner %s already registered: %w", m.Owner, sentinel.ErrConflict)
	}

	var position int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM registry_log`,
	).Scan(&position); err != nil {
		return fmt.Errorf("next log position: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (owner, domain, log_index, receipt_id, registered, minted)
		 VALUES ($1, $2, $3, $4, TRUE, FALSE)
		 ON CONFLICT (owner) DO UPDATE
		 SET domain = EXCLUDED.domain, log_index = EXCLUDED.log_index,
		     receipt_id = EXCLUDED.receipt_id, registered = TRUE`,
		m.Owner.String(), m.Domain, position, int64(m.ReceiptID),
	); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO domains (name, owner, active) VALUES ($1, $2, TRUE)
		 ON CONFLICT (name) DO UPDATE SET owner = EXCLUDED.owner, active = TRUE`,
		m.Domain, m.Owner.String(),
	); err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registry_log (position, domain) VALUES ($1, $2)`,
		position, m.Domain,
	); err != nil {
		return fmt.Errorf("append registry log: %w", err)
	}
	return nil
}

func (s *Postgres) applyReassign(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	var (
		domain   sql.NullString
		logIndex sql.NullInt64
	)
	var registered bool
	err := tx.QueryRowContext(ctx,
		`SELECT domain, log_index, registered FROM registrations WHERE owner = $1 FOR UPDATE`,
		m.Owner.String(),
	).Scan(&domain, &logIndex, &registered)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !registered) {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("lock owner %s: %w", m.Owner, err)
	}
	if !domain.Valid || domain.String != m.OldDomain {
		return fmt.Errorf("owner %s does not hold %q: %w", m.Owner, m.OldDomain, sentinel.ErrConflict)
	}
	if !logIndex.Valid {
		return fmt.Errorf("owner %s has no log slot: %w", m.Owner, sentinel.ErrConflict)
	}

	var active bool
	err = tx.QueryRowContext(ctx,
		`SELECT active FROM domains WHERE name = $1 FOR UPDATE`, m.Domain,
	).Scan(&active)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock domain %q: %w", m.Domain, err)
	}
	if active {
		return fmt.Errorf("domain %q already active: %w", m.Domain, sentinel.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE domains SET active = FALSE, owner = NULL WHERE name = $1`, m.OldDomain,
	); err != nil {
		return fmt.Errorf("deactivate %q: %w", m.OldDomain, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO domains (name, owner, active) VALUES ($1, $2, TRUE)
		 ON CONFLICT (name) DO UPDATE SET owner = EXCLUDED.owner, active = TRUE`,
		m.Domain, m.Owner.String(),
	); err != nil {
		return fmt.Errorf("activate %q: %w", m.Domain, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET domain = $1 WHERE owner = $2`,
		m.Domain, m.Owner.String(),
	); err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE registry_log SET domain = $1 WHERE position = $2`,
		m.Domain, logIndex.Int64,
	); err != nil {
		return fmt.Errorf("overwrite log slot: %w", err)
	}
	return nil
}

func (s *Postgres) applyTransfer(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	registered, err := s.lockRegistered(ctx, tx, m.Owner)
	if err != nil {
		return err
	}
	if !registered {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET registered = FALSE WHERE owner = $1`, m.Owner.String(),
	); err != nil {
		return fmt.Errorf("clear old owner flag: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (owner, registered) VALUES ($1, TRUE)
		 ON CONFLICT (owner) DO UPDATE SET registered = TRUE`,
		m.NewOwner.String(),
	); err != nil {
		return fmt.Errorf("set new owner flag: %w", err)
	}
	return nil
}

func (s *Postgres) applyTransferCorrected(ctx context.Context, tx *sql.Tx, m models.Mutation) error {
	var (
		domain     sql.NullString
		logIndex   sql.NullInt64
		registered bool
	)
	err := tx.QueryRowContext(ctx,
		`SELECT domain, log_index, registered FROM registrations WHERE owner = $1 FOR UPDATE`,
		m.Owner.String(),
	).Scan(&domain, &logIndex, &registered)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !registered) {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("lock owner %s: %w", m.Owner, err)
	}

	newRegistered, err := s.lockRegistered(ctx, tx, m.NewOwner)
	if err != nil {
		return err
	}
	if newRegistered {
		return fmt.Errorf("new owner %s already registered: %w", m.NewOwner, sentinel.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET registered = FALSE, domain = NULL, log_index = NULL
		 WHERE owner = $1`, m.Owner.String(),
	); err != nil {
		return fmt.Errorf("clear old owner: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (owner, domain, log_index, registered)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (owner) DO UPDATE
		 SET domain = EXCLUDED.domain, log_index = EXCLUDED.log_index, registered = TRUE`,
		m.NewOwner.String(), domain, logIndex,
	); err != nil {
		return fmt.Errorf("set new owner: %w", err)
	}
	if domain.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE domains SET owner = $1 WHERE name = $2`,
			m.NewOwner.String(), domain.String,
		); err != nil {
			return fmt.Errorf("repoint domain: %w", err)
		}
	}
	return nil
}

func (s *Postgres) setMinted(ctx context.Context, tx *sql.Tx, addr id.Address, minted bool) error {
	if minted {
		var already bool
		err := tx.QueryRowContext(ctx,
			`SELECT minted FROM registrations WHERE owner = $1 FOR UPDATE`, addr.String(),
		).Scan(&already)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock address %s: %w", addr, err)
		}
		if already {
			return fmt.Errorf("address %s already minted: %w", addr, sentinel.ErrConflict)
		}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (owner, minted) VALUES ($1, $2)
		 ON CONFLICT (owner) DO UPDATE SET minted = EXCLUDED.minted`,
		addr.String(), minted,
	)
	if err != nil {
		return fmt.Errorf("set minted flag: %w", err)
	}
	return nil
}

func (s *Postgres) lockRegistered(ctx context.Context, tx *sql.Tx, owner id.Address) (bool, error) {
	var registered bool
	err := tx.QueryRowContext(ctx,
		`SELECT registered FROM registrations WHERE owner = $1 FOR UPDATE`, owner.String(),
	).Scan(&registered)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock owner %s: %w", owner, err)
	}
	return registered, nil
}
