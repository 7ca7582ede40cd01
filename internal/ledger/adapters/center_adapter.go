package adapters

import (
	"context"

	centermodels "vaxledger/internal/center/models"
	"vaxledger/internal/ledger/ports"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

type CenterService interface {
	GetCenter(ctx context.Context, centerID id.CenterID) (*centermodels.Center, error)
}

// CenterAdapter exposes the center registry to the ledger in-process.
type CenterAdapter struct {
	centers CenterService
}

func NewCenterAdapter(centers CenterService) *CenterAdapter {
	return &CenterAdapter{centers: centers}
}

func (a *CenterAdapter) LookupCenter(ctx context.Context, centerID id.CenterID) (ports.CenterInfo, error) {
	center, err := a.centers.GetCenter(ctx, centerID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return ports.CenterInfo{ID: centerID}, nil
	}
	if err != nil {
		return ports.CenterInfo{}, err
	}
	return ports.CenterInfo{
		ID:         center.ID,
		Address:    center.Address,
		Registered: center.Registered,
	}, nil
}

var _ ports.CenterLookup = (*CenterAdapter)(nil)
