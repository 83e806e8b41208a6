package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/campuslend/campuslend/internal/model"
)

// itemColumns is the column list shared by all item queries.
const itemColumns = `id, owner_id, requester_id, title, description, category,
	condition, school, program, image_mime, status, return_date, created_at, updated_at`

// InsertItem inserts a new item and returns it with the generated ID.
// Status and requester are forced to their creation values regardless of
// what the caller filled in.
func InsertItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	id := NewID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, title, description, category, condition,
		                    school, program, status, return_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.OwnerID, item.Title, item.Description, item.Category, item.Condition,
		item.School, item.Program, model.ItemStatusAvailable, item.ReturnDate,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter expresses the predicates item listings are built from.
// Zero-valued fields are ignored.
type ItemFilter struct {
	Status      string
	Statuses    []string
	OwnerID     string
	NotOwnerID  string
	RequesterID string
	School      string

	// TitleLike is a raw LIKE pattern. Callers are responsible for escaping
	// user input with EscapeLike before building a pattern from it.
	TitleLike string
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, filter ItemFilter) ([]model.Item, error) {
	q := sq.Select(itemColumns).From("items")

	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(sq.Eq{"status": filter.Statuses})
	}
	if filter.OwnerID != "" {
		q = q.Where(sq.Eq{"owner_id": filter.OwnerID})
	}
	if filter.NotOwnerID != "" {
		q = q.Where(sq.NotEq{"owner_id": filter.NotOwnerID})
	}
	if filter.RequesterID != "" {
		q = q.Where(sq.Eq{"requester_id": filter.RequesterID})
	}
	if filter.School != "" {
		q = q.Where(sq.Eq{"school": filter.School})
	}
	if filter.TitleLike != "" {
		q = q.Where(sq.Expr(`title LIKE ? ESCAPE '\'`, filter.TitleLike))
	}

	query, args, err := q.OrderBy("id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemStatusIf transitions an item's status only if its current status
// matches expected, in a single conditional write. requesterID, when non-nil,
// is recorded as part of the same statement. Returns false without error when
// the item was not in the expected status (or does not exist).
func UpdateItemStatusIf(ctx context.Context, db *sql.DB, id, expected, next string, requesterID *string) (bool, error) {
	q := sq.Update("items").
		Set("status", next).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id, "status": expected})
	if requesterID != nil {
		q = q.Set("requester_id", *requesterID)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("building status update: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking status update: %w", err)
	}
	return affected > 0, nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// EscapeLike escapes LIKE metacharacters in user input so it matches as a
// literal substring. The result is safe to embed in a pattern used with
// ESCAPE '\'.
func EscapeLike(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// scanner lets scanItem work with both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	var requesterID, description, school, program, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.OwnerID, &requesterID, &item.Title, &description,
		&item.Category, &item.Condition, &school, &program, &imageMime,
		&item.Status, &item.ReturnDate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.RequesterID = requesterID.String
	item.Description = description.String
	item.School = school.String
	item.Program = program.String
	item.ImageMime = imageMime.String
	return item, nil
}
