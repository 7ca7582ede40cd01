package store

import (
	"encoding/json"
	"fmt"
	"time"

	"vaxledger/internal/ledger/models"
	id "vaxledger/pkg/domain"
)

// recordJSON is the LevelDB value format.
type recordJSON struct {
	ProofToken      string `json:"proof_token"`
	CenterID        uint64 `json:"center_id,string"`
	VaccinationTime int64  `json:"vaccination_time"`
	CodeType        string `json:"vaccine_code_type"`
	Code            string `json:"vaccine_code"`
	PersonID        string `json:"person_id"`
	CertifiedBy     string `json:"certified_by"`
	CertifiedAt     int64  `json:"certified_at"` // Unix nano
}

func encodeRecord(r *models.Record) ([]byte, error) {
	data, err := json.Marshal(recordJSON{
		ProofToken:      r.ProofToken.String(),
		CenterID:        uint64(r.CenterID),
		VaccinationTime: r.VaccinationTime.Unix(),
		CodeType:        r.Vaccine.CodeType,
		Code:            r.Vaccine.Code,
		PersonID:        r.PersonID.String(),
		CertifiedBy:     r.CertifiedBy.String(),
		CertifiedAt:     r.CertifiedAt.UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*models.Record, error) {
	var j recordJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &models.Record{
		ProofToken:      id.ProofToken(j.ProofToken),
		Registered:      true,
		CenterID:        id.CenterID(j.CenterID),
		VaccinationTime: time.Unix(j.VaccinationTime, 0).UTC(),
		Vaccine:         models.Vaccine{CodeType: j.CodeType, Code: j.Code},
		PersonID:        id.PersonID(j.PersonID),
		CertifiedBy:     id.Address(j.CertifiedBy),
		CertifiedAt:     time.Unix(0, j.CertifiedAt).UTC(),
	}, nil
}
