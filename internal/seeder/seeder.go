// Package seeder loads centers and acceptance rules from a YAML seed file so
// a fresh deployment starts with its known registries.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	centermodels "vaxledger/internal/center/models"
	centerservice "vaxledger/internal/center/service"
	rulesmodels "vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/requestcontext"
)

// Actor recorded on seeded registrations.
const Actor = "seeder"

type CenterRegistrar interface {
	RegisterCenter(ctx context.Context, cmd centerservice.RegisterCommand) (*centermodels.Center, error)
}

type RuleRegistrar interface {
	RegisterRule(ctx context.Context, area id.Area, maxAge time.Duration, vaccines []rulesmodels.Vaccine) (*rulesmodels.Rule, error)
}

// File is the seed document.
//
//	centers:
//	  - id: 1234567890
//	    name: "Municipal Vac #12, Nagonia"
//	    address: "0x6b1c..."
//	rules:
//	  - area: Garivas
//	    max_age: 720h
//	    vaccines:
//	      - {code_type: IVT, code: CoronaVac}
type File struct {
	Centers []CenterSeed `yaml:"centers"`
	Rules   []RuleSeed   `yaml:"rules"`
}

type CenterSeed struct {
	ID      uint64 `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type RuleSeed struct {
	Area     string        `yaml:"area"`
	MaxAge   time.Duration `yaml:"max_age"`
	Vaccines []VaccineSeed `yaml:"vaccines"`
}

type VaccineSeed struct {
	CodeType string `yaml:"code_type"`
	Code     string `yaml:"code"`
}

// Load decodes a seed document. Unknown keys are rejected.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close() //nolint:errcheck // read-only
	return Load(fh)
}

type Seeder struct {
	centers CenterRegistrar
	rules   RuleRegistrar
	logger  *slog.Logger
}

func New(centers CenterRegistrar, rules RuleRegistrar, logger *slog.Logger) *Seeder {
	return &Seeder{centers: centers, rules: rules, logger: logger}
}

// Apply registers every center and rule in f. Centers that already exist
// are skipped, so applying the same file twice is harmless. Rules always
// replace the stored rule of their area.
func (s *Seeder) Apply(ctx context.Context, f *File) error {
	ctx = requestcontext.WithAdminActor(ctx, Actor)
	ctx = requestcontext.WithCaller(ctx, Actor)

	var seededCenters, skipped int
	for _, c := range f.Centers {
		_, err := s.centers.RegisterCenter(ctx, centerservice.RegisterCommand{
			ID:      id.CenterID(c.ID),
			Name:    c.Name,
			Address: id.Address(c.Address),
		})
		switch {
		case err == nil:
			seededCenters++
		case dErrors.HasCode(err, dErrors.CodeDuplicateCenter):
			skipped++
		default:
			return fmt.Errorf("seed center %d: %w", c.ID, err)
		}
	}

	for _, r := range f.Rules {
		vaccines := make([]rulesmodels.Vaccine, 0, len(r.Vaccines))
		for _, v := range r.Vaccines {
			vaccines = append(vaccines, rulesmodels.Vaccine{CodeType: v.CodeType, Code: v.Code})
		}
		if _, err := s.rules.RegisterRule(ctx, id.Area(r.Area), r.MaxAge, vaccines); err != nil {
			return fmt.Errorf("seed rule %q: %w", r.Area, err)
		}
	}

	s.logger.InfoContext(ctx, "seed data applied",
		"centers", seededCenters,
		"centers_skipped", skipped,
		"rules", len(f.Rules),
	)
	return nil
}
