package models

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gowebpki/jcs"
	"golang.org/x/crypto/sha3"

	id "vaxledger/pkg/domain"
)

const nonceSize = 16

// tokenPreimage is the canonicalized part of a record hashed into its token.
type tokenPreimage struct {
	CenterID        string `json:"center_id"`
	VaccinationTime int64  `json:"vaccination_time"`
	CodeType        string `json:"vaccine_code_type"`
	Code            string `json:"vaccine_code"`
	PersonID        string `json:"person_id"`
	CertifiedBy     string `json:"certified_by"`
}

// TokenMinter issues proof tokens as
// "0x" + hex(keccak256(JCS(record) || seq || nonce)).
// seq is process-local and strictly increasing; the random nonce keeps tokens
// unpredictable before issuance.
type TokenMinter struct {
	seq    atomic.Uint64
	random io.Reader
}

type MinterOption func(*TokenMinter)

// WithRandom replaces crypto/rand, e.g. with a fixed reader in tests.
func WithRandom(r io.Reader) MinterOption {
	return func(m *TokenMinter) {
		m.random = r
	}
}

func NewTokenMinter(opts ...MinterOption) *TokenMinter {
	m := &TokenMinter{random: rand.Reader}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TokenMinter) Mint(r *Record) (id.ProofToken, error) {
	raw, err := json.Marshal(tokenPreimage{
		CenterID:        r.CenterID.String(),
		VaccinationTime: r.VaccinationTime.Unix(),
		CodeType:        r.Vaccine.CodeType,
		Code:            r.Vaccine.Code,
		PersonID:        r.PersonID.String(),
		CertifiedBy:     r.CertifiedBy.String(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal token preimage: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize token preimage: %w", err)
	}

	var suffix [8 + nonceSize]byte
	binary.BigEndian.PutUint64(suffix[:8], m.seq.Add(1))
	if _, err := io.ReadFull(m.random, suffix[8:]); err != nil {
		return "", fmt.Errorf("read token nonce: %w", err)
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(canonical)
	h.Write(suffix[:])
	return id.ProofToken("0x" + hex.EncodeToString(h.Sum(nil))), nil
}
