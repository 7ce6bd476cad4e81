package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/greenspire/plant-rental/internal/models"
)

const plantColumns = `id, name, scientific_name, description, category, size,
		price_daily, price_weekly, price_monthly, care_light, care_water, care_humidity,
		in_stock, quantity, is_active, created_at`

func scanPlant(row interface{ Scan(dest ...any) error }) (*models.Plant, error) {
	var p models.Plant
	if err := row.Scan(&p.ID, &p.Name, &p.ScientificName, &p.Description, &p.Category,
		&p.Size, &p.PriceDaily, &p.PriceWeekly, &p.PriceMonthly, &p.CareLight,
		&p.CareWater, &p.CareHumidity, &p.InStock, &p.Quantity, &p.IsActive,
		&p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// sortColumns maps the public sort keys onto columns. Anything else falls
// back to creation time.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price_daily",
	"name":       "name",
}

// ListPlants returns the active catalog entries matching the filter, the page
// slice and the total match count.
func (s *Storage) ListPlants(ctx context.Context, filter models.PlantFilter) ([]*models.Plant, int, error) {
	const op = "storage.ListPlants"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	conditions := []string{"is_active = true"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.Size != "" {
		conditions = append(conditions, "size = "+arg(filter.Size))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, "(name ILIKE "+p+" OR description ILIKE "+p+" OR category ILIKE "+p+")")
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price_daily >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price_daily <= "+arg(*filter.MaxPrice))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM plants WHERE ` + where
	var total int
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	query := `SELECT ` + plantColumns + `
			  FROM plants
			  WHERE ` + where + `
			  ORDER BY ` + sortBy + ` ` + order + `
			  LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg((filter.Page-1)*filter.Limit)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// GetPlant returns an active plant by id.
func (s *Storage) GetPlant(ctx context.Context, id int) (*models.Plant, error) {
	const op = "storage.GetPlant"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + plantColumns + `
			  FROM plants WHERE id = $1 AND is_active = true`
	p, err := scanPlant(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlant inserts a catalog entry and returns its id.
func (s *Storage) CreatePlant(ctx context.Context, p models.Plant) (int, error) {
	const op = "storage.CreatePlant"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plants (name, scientific_name, description, category, size,
			      price_daily, price_weekly, price_monthly, care_light, care_water,
			      care_humidity, in_stock, quantity)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.Name, p.ScientificName, p.Description, p.Category, p.Size,
		p.PriceDaily, p.PriceWeekly, p.PriceMonthly, p.CareLight, p.CareWater,
		p.CareHumidity, p.InStock, p.Quantity).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdatePlant replaces the mutable fields of a catalog entry and returns the
// number of affected rows.
func (s *Storage) UpdatePlant(ctx context.Context, p models.Plant, id int) (int, error) {
	const op = "storage.UpdatePlant"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plants
			  SET name = $1, scientific_name = $2, description = $3, category = $4,
			      size = $5, price_daily = $6, price_weekly = $7, price_monthly = $8,
			      care_light = $9, care_water = $10, care_humidity = $11,
			      in_stock = $12, quantity = $13
			  WHERE id = $14 AND is_active = true`
	result, err := s.DB.ExecContext(ctx, query,
		p.Name, p.ScientificName, p.Description, p.Category, p.Size,
		p.PriceDaily, p.PriceWeekly, p.PriceMonthly, p.CareLight, p.CareWater,
		p.CareHumidity, p.InStock, p.Quantity, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePlant soft-deletes a catalog entry by clearing is_active and returns
// the number of affected rows.
func (s *Storage) RemovePlant(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePlant"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plants
			  SET is_active = false
			  WHERE id = $1 AND is_active = true`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
