package handler

import (
	"time"

	"vaxledger/internal/center/models"
)

// CenterResponse mirrors the registry read accessor: registration flag, name
// and certifying address.
type CenterResponse struct {
	ID           string    `json:"id"`
	Registered   bool      `json:"registered"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`
}

func toCenterResponse(c *models.Center) *CenterResponse {
	return &CenterResponse{
		ID:           c.ID.String(),
		Registered:   c.Registered,
		Name:         c.Name,
		Address:      c.Address.String(),
		RegisteredAt: c.RegisteredAt,
	}
}
