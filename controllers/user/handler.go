// Package user serves the branch-facing player endpoints.
package user

import (
	"context"
	"time"

	"sportsledger/models"
	"sportsledger/providers"
)

const defaultSessionTTL = 2 * time.Hour

type PlayerStore interface {
	FindPlayer(ctx context.Context, userCode string) (*models.Player, error)
	CreatePlayer(ctx context.Context, p *models.Player) error
	CreateSession(ctx context.Context, sess *models.Session) error
}

type Handler struct {
	players    PlayerStore
	launchers  *providers.Registry
	sessionTTL time.Duration
	now        func() time.Time
}

func NewHandler(players PlayerStore, launchers *providers.Registry) *Handler {
	return &Handler{
		players:    players,
		launchers:  launchers,
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
}
