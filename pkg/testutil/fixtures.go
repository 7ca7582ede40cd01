package testutil

import (
	"time"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/personid"
	id "vaxledger/pkg/domain"
)

// Person is a named fixture whose identifier is derived on demand.
type Person struct {
	Attributes personid.Attributes
}

func (p Person) ID() id.PersonID {
	return personid.MustCompute(p.Attributes)
}

// Center is a center registration fixture.
type Center struct {
	ID      id.CenterID
	Name    string
	Address id.Address
}

// Rule is an area acceptance rule fixture.
type Rule struct {
	Area     id.Area
	MaxAge   time.Duration
	Vaccines []models.Vaccine
}

// Deterministic data for the Nagonia / Garivas walkthrough.
var (
	Jane = Person{Attributes: personid.Attributes{
		FullName:       "Jane Smith",
		Birthdate:      time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		PassportNumber: "P1234567",
		Nationality:    "Nagonia",
	}}
	John = Person{Attributes: personid.Attributes{
		FullName:       "John Doe",
		Birthdate:      time.Date(1985, 11, 23, 0, 0, 0, 0, time.UTC),
		PassportNumber: "P7654321",
		Nationality:    "Nagonia",
	}}

	MunicipalCenter = Center{
		ID:      1234567890,
		Name:    "Municipal Vac #12, Nagonia",
		Address: "0x6b1c7a0e3f3b0dbb1d4b0c1f1e2a9d8c7b6a5f40",
	}
	FakeCenter = Center{
		ID:      666,
		Name:    "Fake Vaccines",
		Address: "0xfake",
	}

	CoronaVac  = models.Vaccine{CodeType: "IVT", Code: "CoronaVac"}
	SputnikVac = models.Vaccine{CodeType: "RF", Code: "SputnikVac"}

	GarivasRule = Rule{
		Area:     "Garivas",
		MaxAge:   30 * 24 * time.Hour,
		Vaccines: []models.Vaccine{CoronaVac},
	}

	// VaccinatedAt is when Jane receives her CoronaVac shot.
	VaccinatedAt = time.Date(2020, 12, 10, 11, 30, 0, 0, time.UTC)
)

// CertifyCommandBuilder provides a fluent interface for building certify
// commands. Defaults to Jane's CoronaVac shot at the municipal center.
type CertifyCommandBuilder struct {
	cmd models.CertifyCommand
}

func NewCertifyCommandBuilder() *CertifyCommandBuilder {
	return &CertifyCommandBuilder{
		cmd: models.CertifyCommand{
			CenterID:        MunicipalCenter.ID,
			VaccinationTime: VaccinatedAt,
			Vaccine:         CoronaVac,
			PersonID:        Jane.ID(),
			Caller:          MunicipalCenter.Address,
		},
	}
}

func (b *CertifyCommandBuilder) WithCenter(c Center) *CertifyCommandBuilder {
	b.cmd.CenterID = c.ID
	b.cmd.Caller = c.Address
	return b
}

func (b *CertifyCommandBuilder) WithCenterID(centerID id.CenterID) *CertifyCommandBuilder {
	b.cmd.CenterID = centerID
	return b
}

func (b *CertifyCommandBuilder) WithCaller(caller id.Address) *CertifyCommandBuilder {
	b.cmd.Caller = caller
	return b
}

func (b *CertifyCommandBuilder) WithVaccine(v models.Vaccine) *CertifyCommandBuilder {
	b.cmd.Vaccine = v
	return b
}

func (b *CertifyCommandBuilder) WithPerson(p Person) *CertifyCommandBuilder {
	b.cmd.PersonID = p.ID()
	return b
}

func (b *CertifyCommandBuilder) VaccinatedAt(t time.Time) *CertifyCommandBuilder {
	b.cmd.VaccinationTime = t
	return b
}

func (b *CertifyCommandBuilder) Build() models.CertifyCommand {
	return b.cmd
}
