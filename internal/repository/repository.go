package repository

import (
	"context"
	"database/sql"
	"time"

	"thermolab/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type StateRepo interface {
	Save(ctx context.Context, s models.ThermostatState) error
	Load(ctx context.Context) (models.ThermostatState, error)
}

type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) error
	List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ThermostatEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ThermostatEvent, error)
}

type Repository struct {
	StateRepo   StateRepo
	ReadingRepo ReadingRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(db),
		ReadingRepo: NewReadingSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
