package models

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

var coronaVac = Vaccine{CodeType: "IVT", Code: "CoronaVac"}

func janeRecord() *Record {
	vaccinated := time.Date(2020, 12, 10, 11, 30, 0, 0, time.UTC)
	return NewRecord(1234567890, vaccinated, coronaVac, "0x01", "0xcenter", vaccinated)
}

func TestMintProducesDistinctHexTokens(t *testing.T) {
	m := NewTokenMinter()
	seen := make(map[id.ProofToken]struct{})
	for range 100 {
		token, err := m.Mint(janeRecord())
		require.NoError(t, err)
		assert.Len(t, token.String(), 66)
		assert.True(t, strings.HasPrefix(token.String(), "0x"))
		_, dup := seen[token]
		assert.False(t, dup, "identical records must still get distinct tokens")
		seen[token] = struct{}{}
	}
}

func TestMintDependsOnSequenceWithFixedNonce(t *testing.T) {
	zeros := bytes.NewReader(make([]byte, 2*nonceSize))
	m := NewTokenMinter(WithRandom(zeros))

	first, err := m.Mint(janeRecord())
	require.NoError(t, err)
	second, err := m.Mint(janeRecord())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestMintSurfacesRandomFailure(t *testing.T) {
	_, err := NewTokenMinter(WithRandom(failingReader{})).Mint(janeRecord())
	assert.Error(t, err)
}

func TestNewRecordTruncatesToSeconds(t *testing.T) {
	at := time.Date(2020, 12, 10, 11, 30, 0, 999, time.FixedZone("CET", 3600))
	r := NewRecord(1, at, coronaVac, "0x01", "0xcenter", at)
	assert.True(t, r.Registered)
	assert.Equal(t, at.Unix(), r.VaccinationTime.Unix())
	assert.Equal(t, 0, r.VaccinationTime.Nanosecond())
	assert.True(t, r.HeldBy("0x01"))
	assert.False(t, r.HeldBy("0x02"))
}

func TestCertifyCommandValidate(t *testing.T) {
	valid := CertifyCommand{
		CenterID:        1,
		VaccinationTime: time.Unix(1607599800, 0),
		Vaccine:         coronaVac,
		PersonID:        "0x01",
		Caller:          "0xcenter",
	}
	require.NoError(t, valid.Validate())

	noCaller := valid
	noCaller.Caller = ""
	assert.True(t, dErrors.HasCode(noCaller.Validate(), dErrors.CodeUnauthorized))

	noCode := valid
	noCode.Vaccine.Code = " "
	assert.True(t, dErrors.HasCode(noCode.Validate(), dErrors.CodeInvalidInput))
}

func TestValidateQueryValidate(t *testing.T) {
	q := ValidateQuery{Area: "Garivas", ReferenceTime: time.Unix(1, 0), ProofToken: "0x0", PersonID: "0x01"}
	require.NoError(t, q.Validate())

	q.Area = ""
	assert.True(t, dErrors.HasCode(q.Validate(), dErrors.CodeInvalidInput))
}
