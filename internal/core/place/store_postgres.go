// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/database/schema"
	"github.com/taibuivan/yatra/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over the geo.* tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Reads

func (repository *PostgresRepository) Get(ctx context.Context, kind Kind, id int64) (*Entity, error) {
	t := kind.Table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectList(t), t.Table, t.ID)

	entity, err := scanEntity(repository.db.QueryRow(ctx, query, id), kind)
	if err != nil {
		return nil, dberr.Wrap(err, "get_place")
	}
	return entity, nil
}

func (repository *PostgresRepository) GetBySlug(ctx context.Context, kind Kind, parentID *int64, slug string) (*Entity, error) {
	t := kind.Table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectList(t), t.Table, t.Slug)
	args := []any{slug}

	if parentID != nil {
		query += fmt.Sprintf(` AND %s = $2`, t.ParentID)
		args = append(args, *parentID)
	}
	query += fmt.Sprintf(` ORDER BY %s LIMIT 1`, t.ID)

	entity, err := scanEntity(repository.db.QueryRow(ctx, query, args...), kind)
	if err != nil {
		return nil, dberr.Wrap(err, "get_place_by_slug")
	}
	return entity, nil
}

func (repository *PostgresRepository) List(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]*Entity, int, error) {
	t := kind.Table()

	where := []string{"TRUE"}
	args := []any{}

	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		where = append(where, fmt.Sprintf("%s = $%d", t.ParentID, len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", t.Title, len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, t.Table, condition)
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_places")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d`,
		selectList(t), t.Table, condition, t.Title, t.ID, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	entities, err := repository.queryEntities(ctx, kind, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_places")
	}
	return entities, total, nil
}

func (repository *PostgresRepository) ChildrenOf(ctx context.Context, kind Kind, parentIDs []int64) ([]*Entity, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	t := kind.Table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s`, selectList(t), t.Table, t.ParentID, t.ID)

	entities, err := repository.queryEntities(ctx, kind, query, parentIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "list_place_children")
	}
	return entities, nil
}

func (repository *PostgresRepository) SlugExists(ctx context.Context, scope SlugScope, slug string) (bool, error) {
	t := scope.Kind.Table()
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2`, t.Table, t.Slug, t.ID)
	args := []any{slug, scope.ExcludeID}

	if scope.Kind.SlugScope() == ScopeParent {
		query += fmt.Sprintf(` AND %s IS NOT DISTINCT FROM $3`, t.ParentID)
		args = append(args, scope.ParentID)
	}
	query += `)`

	var exists bool
	if err := repository.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_place_slug")
	}
	return exists, nil
}

// # Writes

func (repository *PostgresRepository) Create(ctx context.Context, entity *Entity) error {
	t := entity.Kind.Table()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		t.Table, t.ParentID, t.Title, t.Slug, t.ImagePath, t.Gallery, t.Content, t.CreatedAt, t.UpdatedAt,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	gallery := entity.Gallery
	if gallery == nil {
		gallery = []string{}
	}

	err := repository.db.QueryRow(ctx, query,
		entity.ParentID, entity.Title, entity.Slug, entity.Image, gallery, nullableJSON(entity.Content),
	).Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)

	return writeError(err, entity.Kind, "create_place")
}

func (repository *PostgresRepository) Update(ctx context.Context, entity *Entity) error {
	t := entity.Kind.Table()
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Title, t.Slug, t.ImagePath, t.Content, t.UpdatedAt, t.ID, t.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		entity.ID, entity.Title, entity.Slug, entity.Image, nullableJSON(entity.Content),
	).Scan(&entity.UpdatedAt)

	return writeError(err, entity.Kind, "update_place")
}

func (repository *PostgresRepository) Delete(ctx context.Context, kind Kind, id int64) error {
	t := kind.Table()
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.WrapWrite(err, "delete_place")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) AppendGallery(ctx context.Context, kind Kind, id int64, reference string) error {
	t := kind.Table()
	query := fmt.Sprintf(`UPDATE %s SET %s = array_append(%s, $2), %s = NOW() WHERE %s = $1`,
		t.Table, t.Gallery, t.Gallery, t.UpdatedAt, t.ID,
	)
	return repository.execOne(ctx, "append_place_gallery", query, id, reference)
}

func (repository *PostgresRepository) RemoveGallery(ctx context.Context, kind Kind, id int64, reference string) error {
	t := kind.Table()
	query := fmt.Sprintf(`UPDATE %s SET %s = array_remove(%s, $2), %s = NOW() WHERE %s = $1`,
		t.Table, t.Gallery, t.Gallery, t.UpdatedAt, t.ID,
	)
	return repository.execOne(ctx, "remove_place_gallery", query, id, reference)
}

// AssetReferences unions the media columns of all eight tables.
func (repository *PostgresRepository) AssetReferences(ctx context.Context) ([]string, error) {
	parts := make([]string, 0, len(schema.GeoPlaces)*2)
	for _, kind := range AllKinds() {
		t := kind.Table()
		parts = append(parts,
			fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NOT NULL`, t.ImagePath, t.Table, t.ImagePath),
			fmt.Sprintf(`SELECT unnest(%s) FROM %s`, t.Gallery, t.Table),
		)
	}

	rows, err := repository.db.Query(ctx, strings.Join(parts, " UNION ALL "))
	if err != nil {
		return nil, dberr.Wrap(err, "list_asset_references")
	}

	references, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "scan_asset_references")
	}
	return references, nil
}

// # Helpers

func (repository *PostgresRepository) queryEntities(ctx context.Context, kind Kind, query string, args ...any) ([]*Entity, error) {
	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []*Entity{}
	for rows.Next() {
		entity, err := scanEntity(rows, kind)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (repository *PostgresRepository) execOne(ctx context.Context, action, query string, args ...any) error {
	cmd, err := repository.db.Exec(ctx, query, args...)
	if err != nil {
		return dberr.WrapWrite(err, action)
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func selectList(t schema.GeoPlaceTable) string {
	return strings.Join(t.Columns(), ", ")
}

func scanEntity(row pgx.Row, kind Kind) (*Entity, error) {
	entity := &Entity{Kind: kind}
	var content []byte

	err := row.Scan(
		&entity.ID, &entity.ParentID, &entity.Title, &entity.Slug, &entity.Image,
		&entity.Gallery, &content, &entity.CreatedAt, &entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if entity.Gallery == nil {
		entity.Gallery = []string{}
	}
	if len(content) > 0 {
		entity.Content = content
	}
	return entity, nil
}

// writeError maps constraint violations of inserts and updates. Anything
// else, except a vanished row, is a failed write.
func writeError(err error, kind Kind, action string) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrSlugConflict, err)
	case dberr.IsForeignKeyViolation(err):
		parent, _ := kind.Parent()
		return apperr.NotFound(parent.Label())
	default:
		return dberr.WrapWrite(err, action+":"+kind.String())
	}
}

func nullableJSON(content []byte) any {
	if len(content) == 0 {
		return nil
	}
	return content
}
