package datasets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
)

// Repository defines dataset definition persistence.
type Repository interface {
	// Datasets returns the effective definitions of a building: the
	// building's own rows plus the defaults whose sensor code it does not
	// override, ordered by sort order. Returns chartconfig.ErrNoDatasets if
	// there are none.
	Datasets(ctx context.Context, buildingID int) ([]chartconfig.DatasetDefinition, error)

	// Save creates or replaces the building's definition with def.SensorCode.
	Save(ctx context.Context, buildingID int, def chartconfig.DatasetDefinition) error

	// Delete removes the building's own definition, restoring the default.
	// Returns ErrDatasetNotFound if the building has no such row.
	Delete(ctx context.Context, buildingID int, sensorCode string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Datasets implements chartconfig.DatasetProvider.
func (r *SQLiteRepository) Datasets(ctx context.Context, buildingID int) ([]chartconfig.DatasetDefinition, error) {
	// Building rows sort before defaults within a sensor code so the first
	// row seen per code wins.
	query := `
		SELECT sensor_code, label, border_color, background_color, y_axis_id,
			hidden, fill, sort_order
		FROM chart_datasets
		WHERE building_id = ? OR building_id IS NULL
		ORDER BY sensor_code, building_id IS NULL`

	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var defs []chartconfig.DatasetDefinition
	for rows.Next() {
		var d chartconfig.DatasetDefinition
		if err := rows.Scan(&d.SensorCode, &d.Label, &d.BorderColor, &d.BackgroundColor,
			&d.YAxisID, &d.Hidden, &d.Fill, &d.Order); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		if seen[d.SensorCode] {
			continue
		}
		seen[d.SensorCode] = true
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}

	if len(defs) == 0 {
		return nil, chartconfig.ErrNoDatasets
	}
	sortByOrder(defs)
	return defs, nil
}

// Save creates or replaces a building-specific definition.
func (r *SQLiteRepository) Save(ctx context.Context, buildingID int, def chartconfig.DatasetDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
		UPDATE chart_datasets SET
			label = ?, border_color = ?, background_color = ?, y_axis_id = ?,
			hidden = ?, fill = ?, sort_order = ?
		WHERE building_id = ? AND sensor_code = ?`,
		def.Label, def.BorderColor, def.BackgroundColor, def.YAxisID,
		def.Hidden, def.Fill, def.Order,
		buildingID, def.SensorCode,
	)
	if err != nil {
		return fmt.Errorf("updating dataset %s: %w", def.SensorCode, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chart_datasets
				(building_id, sensor_code, label, border_color, background_color,
				 y_axis_id, hidden, fill, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			buildingID, def.SensorCode, def.Label, def.BorderColor, def.BackgroundColor,
			def.YAxisID, def.Hidden, def.Fill, def.Order,
		); err != nil {
			return fmt.Errorf("inserting dataset %s: %w", def.SensorCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset %s: %w", def.SensorCode, err)
	}
	return nil
}

// Delete removes a building-specific definition.
func (r *SQLiteRepository) Delete(ctx context.Context, buildingID int, sensorCode string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM chart_datasets WHERE building_id = ? AND sensor_code = ?",
		buildingID, sensorCode,
	)
	if err != nil {
		return fmt.Errorf("deleting dataset %s: %w", sensorCode, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

// Validate checks a definition before it is stored.
func Validate(def chartconfig.DatasetDefinition) error {
	var errs []error
	if strings.TrimSpace(def.SensorCode) == "" {
		errs = append(errs, errors.New("sensor code is required"))
	}
	if strings.ContainsAny(def.SensorCode, " \t\n") {
		errs = append(errs, errors.New("sensor code must not contain whitespace"))
	}
	if strings.TrimSpace(def.Label) == "" {
		errs = append(errs, errors.New("label is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, errors.Join(errs...))
	}
	return nil
}
