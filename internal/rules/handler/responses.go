package handler

import (
	"time"

	"vaxledger/internal/rules/models"
)

type RuleResponse struct {
	Area          string           `json:"area"`
	MaxAgeSeconds int64            `json:"max_age_seconds"`
	Vaccines      []models.Vaccine `json:"vaccines"`
	UpdatedBy     string           `json:"updated_by,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func toRuleResponse(r *models.Rule) *RuleResponse {
	return &RuleResponse{
		Area:          r.Area.String(),
		MaxAgeSeconds: int64(r.MaxAge / time.Second),
		Vaccines:      r.VaccineList(),
		UpdatedBy:     r.UpdatedBy.String(),
		UpdatedAt:     r.UpdatedAt,
	}
}
