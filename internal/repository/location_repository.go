package repository

import (
	"context"
	"database/sql"

	"github.com/flynext/flynext-server/internal/model"
)

// LocationRepo serves the static city and airport reference data used
// by search auto-complete.  Matching is prefix-based and capped so the
// endpoint stays cheap to hit on every keystroke.
type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

const suggestionLimit = 10

// SearchCities returns cities whose name starts with q.
func (r *LocationRepo) SearchCities(ctx context.Context, q string) ([]model.City, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, country FROM cities WHERE name LIKE ? ORDER BY name LIMIT ?",
		q+"%", suggestionLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchAirports returns airports whose IATA code, name or city starts
// with q.
func (r *LocationRepo) SearchAirports(ctx context.Context, q string) ([]model.Airport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, name, city, country FROM airports
		 WHERE code LIKE ? OR name LIKE ? OR city LIKE ?
		 ORDER BY code LIMIT ?`,
		q+"%", q+"%", q+"%", suggestionLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Airport
	for rows.Next() {
		var a model.Airport
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReplaceCities overwrites the cities table with a fresh supplier
// snapshot.  Used by the sync job at startup.
func (r *LocationRepo) ReplaceCities(ctx context.Context, cities []model.City) error {
	if len(cities) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM cities"); err != nil {
		return err
	}
	for _, c := range cities {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cities (name, country) VALUES (?,?)", c.Name, c.Country); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReplaceAirports overwrites the airports table with a fresh supplier
// snapshot.
func (r *LocationRepo) ReplaceAirports(ctx context.Context, airports []model.Airport) error {
	if len(airports) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM airports"); err != nil {
		return err
	}
	for _, a := range airports {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO airports (code, name, city, country) VALUES (?,?,?,?)",
			a.Code, a.Name, a.City, a.Country); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
