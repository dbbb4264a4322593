// Package storage provides the SQLite-backed repository, for installations
// that prefer an embedded database over the plain JSON files.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

const recordColumns = `id, date, amount, category, giver, recipient, memo,
	has_returned, return_date, return_memo, created_at, updated_at`

// SQLiteRepository implements store.RecordRepository and
// store.CategoryRepository against a local SQLite database.
type SQLiteRepository struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List returns all records in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.GiftRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []core.GiftRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, draft core.RecordDraft) (core.GiftRecord, error) {
	if err := draft.Validate(); err != nil {
		return core.GiftRecord{}, err
	}
	rec := core.NewRecord(draft, r.newID(), r.now())
	if err := r.insert(ctx, r.db, rec); err != nil {
		return core.GiftRecord{}, err
	}
	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"date", rec.Date,
		"amount", rec.Amount,
		"recipient", rec.Recipient)
	return rec, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch core.RecordPatch) (*core.GiftRecord, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	existing, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	updated := core.ApplyPatch(existing, patch, r.now())
	_, err = r.db.ExecContext(ctx,
		`UPDATE records SET date = ?, amount = ?, category = ?, giver = ?,
			recipient = ?, memo = ?, has_returned = ?, return_date = ?,
			return_memo = ?, updated_at = ?
		WHERE id = ?`,
		updated.Date, updated.Amount, updated.Category, updated.Giver,
		updated.Recipient, updated.Memo, updated.HasReturned,
		nullable(updated.ReturnDate), updated.ReturnMemo, updated.UpdatedAt,
		id)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Replace swaps the entire collection inside one transaction so a failed
// import cannot leave a partially written store behind.
func (r *SQLiteRepository) Replace(ctx context.Context, records []core.GiftRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, rec := range records {
		if err := r.insert(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// ListCategories falls back to the built-in default set while the table is
// empty, matching the blob stores.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	if cats == nil {
		return core.DefaultCategories(), nil
	}
	return cats, nil
}

// AddCategory appends a category. The first mutation materializes the
// default set so the picklist the user has been seeing stays intact.
func (r *SQLiteRepository) AddCategory(ctx context.Context, name, color string) (core.Category, error) {
	if name == "" {
		return core.Category{}, core.ErrEmptyCategoryName
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("begin add category: %w", err)
	}
	defer tx.Rollback()

	if err := r.materializeDefaults(ctx, tx); err != nil {
		return core.Category{}, err
	}
	cat := core.Category{ID: r.newID(), Name: name, Color: color}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (id, name, color) VALUES (?, ?, ?)`,
		cat.ID, cat.Name, cat.Color); err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Category{}, fmt.Errorf("commit add category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes a category by id. Records keep the now-orphaned
// category name as plain text.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if err := r.materializeDefaults(ctx, tx); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete category: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) materializeDefaults(ctx context.Context, tx *sql.Tx) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range core.DefaultCategories() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Color); err != nil {
			return fmt.Errorf("seed default category: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insert(ctx context.Context, db execer, rec core.GiftRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.Amount, rec.Category, rec.Giver, rec.Recipient,
		rec.Memo, rec.HasReturned, nullable(rec.ReturnDate), rec.ReturnMemo,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (core.GiftRecord, error) {
	var rec core.GiftRecord
	var returnDate sql.NullString
	err := row.Scan(&rec.ID, &rec.Date, &rec.Amount, &rec.Category,
		&rec.Giver, &rec.Recipient, &rec.Memo, &rec.HasReturned,
		&returnDate, &rec.ReturnMemo, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return core.GiftRecord{}, err
	}
	if returnDate.Valid {
		rec.ReturnDate = &returnDate.String
	}
	return rec, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
