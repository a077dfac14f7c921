package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/go-market-server/internal/query"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx. Repositories bound to a
// transaction stage their writes until the unit of work commits.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// Loader resolves one include path for a batch of already-fetched entities.
type Loader[T any] func(ctx context.Context, q Queryer, entities []*T) error

// Repository is the generic CRUD-plus-specification core shared by the typed
// repositories. It owns no business rules: each instance is configured with a
// table, its column list (id first) and scan/value functions.
type Repository[T any] struct {
	q        Queryer
	table    string
	columns  []string
	scanRow  func(scanner) (*T, error)
	values   func(*T) []any
	entityID func(*T) int64
	setID    func(*T, int64)
	notFound error
	loaders  map[string]Loader[T]
	onWrite  func(int64)
}

func (r *Repository[T]) selectBase() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.columns, ", "), r.table)
}

func (r *Repository[T]) reportWrite(n int64) {
	if r.onWrite != nil {
		r.onWrite(n)
	}
}

func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	row := r.q.QueryRowContext(ctx, r.selectBase()+" WHERE id = $1", id)

	entity, err := r.scanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("get %s by id: %w", r.table, err)
	}

	return entity, nil
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.queryMany(ctx, r.selectBase(), nil)
}

func (r *Repository[T]) GetAllWithSpec(ctx context.Context, spec *query.Spec) ([]*T, error) {
	q, args := spec.Compile(r.selectBase(), 0)

	entities, err := r.queryMany(ctx, q, args)
	if err != nil {
		return nil, err
	}

	if err := r.runLoaders(ctx, spec.Includes(), entities); err != nil {
		return nil, err
	}

	return entities, nil
}

// GetWithSpec returns the first match or the repository's not-found error.
func (r *Repository[T]) GetWithSpec(ctx context.Context, spec *query.Spec) (*T, error) {
	entities, err := r.GetAllWithSpec(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, r.notFound
	}
	return entities[0], nil
}

func (r *Repository[T]) Count(ctx context.Context, spec *query.Spec) (int64, error) {
	q, args := spec.CompileCount(r.selectBase())

	var total int64
	if err := r.q.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	return total, nil
}

// Add inserts the entity, assigns its generated id and returns rows affected.
func (r *Repository[T]) Add(ctx context.Context, entity *T) (int64, error) {
	cols := r.columns[1:]
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := r.q.QueryRowContext(ctx, q, r.values(entity)...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.table, err)
	}

	r.setID(entity, id)
	r.reportWrite(1)

	return 1, nil
}

// Update has full-replace semantics: every column is written, not a partial
// patch. Updating a missing row surfaces the not-found error, never a silent
// zero.
func (r *Repository[T]) Update(ctx context.Context, entity *T) (int64, error) {
	cols := r.columns[1:]
	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.table, strings.Join(assignments, ", "), len(cols)+1)

	args := append(r.values(entity), r.entityID(entity))
	result, err := r.q.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", r.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s rows affected: %w", r.table, err)
	}
	if affected == 0 {
		return 0, r.notFound
	}

	r.reportWrite(affected)

	return affected, nil
}

func (r *Repository[T]) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table), id)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s rows affected: %w", r.table, err)
	}
	if affected == 0 {
		return 0, r.notFound
	}

	r.reportWrite(affected)

	return affected, nil
}

func (r *Repository[T]) queryMany(ctx context.Context, q string, args []any) ([]*T, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	var entities []*T
	for rows.Next() {
		entity, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entities, nil
}

func (r *Repository[T]) runLoaders(ctx context.Context, includes []string, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}

	for _, name := range includes {
		loader, ok := r.loaders[name]
		if !ok {
			return fmt.Errorf("unknown include %q for %s", name, r.table)
		}
		if err := loader(ctx, r.q, entities); err != nil {
			return fmt.Errorf("load %s for %s: %w", name, r.table, err)
		}
	}

	return nil
}
