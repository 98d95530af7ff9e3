package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/DuelBot_Go/internal/database/postgres"
	"github.com/osse101/DuelBot_Go/internal/repository"
)

// Repositories holds all repository implementations used by the application.
type Repositories struct {
	Duel    repository.Duel
	Handles repository.Handles
	Points  repository.Points
}

// InitializeRepositories creates the PostgreSQL repositories sharing one pool
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Duel:    postgres.NewDuelRepository(dbPool),
		Handles: postgres.NewHandleRepository(dbPool),
		Points:  postgres.NewPointsRepository(dbPool),
	}
}
