package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dayLockRepositoryImpl struct {
	db *database.DB
}

func NewDayLockRepository(db *database.DB) daylock.DayLockRepository {
	return &dayLockRepositoryImpl{db: db}
}

// Get implements daylock.DayLockRepository.
func (r *dayLockRepositoryImpl) Get(ctx context.Context, date time.Time, environment string) (daylock.DayLock, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::TEXT, lock_date, environment, locked_at, locked_by
		FROM day_locks
		WHERE lock_date = $1 AND environment = $2
	`
	var l daylock.DayLock
	err := q.QueryRow(ctx, query, date, environment).Scan(&l.ID, &l.Date, &l.Environment, &l.LockedAt, &l.LockedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return daylock.DayLock{}, daylock.ErrLockNotFound
		}
		return daylock.DayLock{}, fmt.Errorf("failed to get day lock: %w", err)
	}
	return l, nil
}

// Create implements daylock.DayLockRepository.
// A concurrent winner's row is returned instead of an error.
func (r *dayLockRepositoryImpl) Create(ctx context.Context, l daylock.DayLock) (daylock.DayLock, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO day_locks (id, lock_date, environment, locked_at, locked_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lock_date, environment) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, l.ID, l.Date, l.Environment, l.LockedAt, l.LockedBy); err != nil {
		return daylock.DayLock{}, fmt.Errorf("failed to create day lock: %w", err)
	}
	return r.Get(ctx, l.Date, l.Environment)
}
