package store

import (
	"encoding/json"
	"fmt"
	"time"

	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
)

// ruleJSON is the cache representation of a rule. Durations travel as whole
// seconds, matching the Postgres column.
type ruleJSON struct {
	Area          string           `json:"area"`
	MaxAgeSeconds int64            `json:"max_age_seconds"`
	Vaccines      []models.Vaccine `json:"vaccines"`
	UpdatedBy     string           `json:"updated_by"`
	UpdatedAt     int64            `json:"updated_at"` // Unix nano
}

func encodeRule(r *models.Rule) ([]byte, error) {
	data, err := json.Marshal(ruleJSON{
		Area:          r.Area.String(),
		MaxAgeSeconds: int64(r.MaxAge / time.Second),
		Vaccines:      r.VaccineList(),
		UpdatedBy:     r.UpdatedBy.String(),
		UpdatedAt:     r.UpdatedAt.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rule: %w", err)
	}
	return data, nil
}

func decodeRule(data []byte) (*models.Rule, error) {
	var j ruleJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal rule: %w", err)
	}
	maxAge, err := models.MaxAgeFromSeconds(j.MaxAgeSeconds)
	if err != nil {
		return nil, fmt.Errorf("decode rule %s: %w", j.Area, err)
	}
	return &models.Rule{
		Area:      id.Area(j.Area),
		MaxAge:    maxAge,
		Vaccines:  vaccineSet(j.Vaccines),
		UpdatedBy: id.Address(j.UpdatedBy),
		UpdatedAt: time.Unix(0, j.UpdatedAt).UTC(),
	}, nil
}

func vaccineSet(list []models.Vaccine) map[models.Vaccine]struct{} {
	set := make(map[models.Vaccine]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}
