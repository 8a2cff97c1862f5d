package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemsTable = "items"

var itemColumns = []string{"id", "name", "description", "photo_path"}

type PostgresStorage struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresStorage) Insert(ctx context.Context, name, description string, photoPath *string) (*models.Item, error) {
	query, args, err := r.psql.
		Insert(itemsTable).
		Columns("name", "description", "photo_path").
		Values(name, description, photoPath).
		Suffix(returningItem()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert item: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (r *PostgresStorage) List(ctx context.Context) ([]models.Item, error) {
	query, args, err := r.psql.
		Select(itemColumns...).
		From(itemsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan items rows: %w", err)
	}
	return items, nil
}

func (r *PostgresStorage) Get(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := r.psql.
		Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "get item")
	}
	return item, nil
}

func (r *PostgresStorage) Update(ctx context.Context, id int64, name, description *string) (*models.Item, error) {
	set := sq.Eq{}
	if name != nil && *name != "" {
		set["name"] = *name
	}
	if description != nil && *description != "" {
		set["description"] = *description
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	query, args, err := r.psql.
		Update(itemsTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returningItem()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update item: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "update item")
	}
	return item, nil
}

func (r *PostgresStorage) SetPhoto(ctx context.Context, id int64, photoPath *string) (*models.Item, error) {
	query, args, err := r.psql.
		Update(itemsTable).
		Set("photo_path", photoPath).
		Where(sq.Eq{"id": id}).
		Suffix(returningItem()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set item photo: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "set item photo")
	}
	return item, nil
}

func (r *PostgresStorage) Delete(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := r.psql.
		Delete(itemsTable).
		Where(sq.Eq{"id": id}).
		Suffix(returningItem()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete item: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "delete item")
	}
	return item, nil
}

func returningItem() string {
	return "RETURNING id, name, description, photo_path"
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var it models.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.PhotoPath); err != nil {
		return nil, err
	}
	return &it, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
