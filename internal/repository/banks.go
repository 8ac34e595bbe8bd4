package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const (
	insertBankSQL  = `INSERT INTO banks (name, location) VALUES ($1, $2) RETURNING id`
	selectBanksSQL = `SELECT id, name, location FROM banks ORDER BY id ASC`
	selectBankSQL  = `SELECT id, name, location FROM banks WHERE id = $1`
	updateBankSQL  = `UPDATE banks SET name = $2, location = $3 WHERE id = $1`
	deleteBankSQL  = `DELETE FROM banks WHERE id = $1`
)

// banksRepo implements the BanksRepo interface.
type banksRepo struct {
	db DBTX
}

// NewBanksRepo creates a new banks repository.
func NewBanksRepo(db DBTX) BanksRepo {
	return &banksRepo{db: db}
}

// Insert inserts a bank and returns its generated id.
func (r *banksRepo) Insert(ctx context.Context, name, location string) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, insertBankSQL, name, location).Scan(&id); err != nil {
		return 0, classify("insert bank", err)
	}
	return id, nil
}

// SelectAll returns every bank ordered by id.
func (r *banksRepo) SelectAll(ctx context.Context) ([]BankRow, error) {
	rows, err := r.db.Query(ctx, selectBanksSQL)
	if err != nil {
		return nil, classify("select banks", err)
	}
	defer rows.Close()

	banks := []BankRow{}
	for rows.Next() {
		var row BankRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Location); err != nil {
			return nil, classify("scan bank", err)
		}
		banks = append(banks, row)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate banks", err)
	}

	return banks, nil
}

// SelectOne returns a single bank by primary key.
func (r *banksRepo) SelectOne(ctx context.Context, id int64) (BankRow, bool, error) {
	var row BankRow
	err := r.db.QueryRow(ctx, selectBankSQL, id).Scan(&row.ID, &row.Name, &row.Location)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankRow{}, false, nil
		}
		return BankRow{}, false, classify("select bank", err)
	}
	return row, true, nil
}

// Update replaces name and location. A missing id yields 0 rows affected.
func (r *banksRepo) Update(ctx context.Context, id int64, name, location string) (int64, error) {
	result, err := r.db.Exec(ctx, updateBankSQL, id, name, location)
	if err != nil {
		return 0, classify("update bank", err)
	}
	return result.RowsAffected(), nil
}

// Delete removes a bank. A missing id yields 0 rows affected.
func (r *banksRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.Exec(ctx, deleteBankSQL, id)
	if err != nil {
		return 0, classify("delete bank", err)
	}
	return result.RowsAffected(), nil
}

// Ping checks the database is reachable.
func (r *banksRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}
