package jwttoken

import (
	"vaxledger/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService through the auth middleware contract.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
		Label:   claims.Label,
	}, nil
}
