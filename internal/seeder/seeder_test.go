package seeder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	centerservice "vaxledger/internal/center/service"
	centerstore "vaxledger/internal/center/store"
	rulesmodels "vaxledger/internal/rules/models"
	rulesservice "vaxledger/internal/rules/service"
	rulesstore "vaxledger/internal/rules/store"
)

const seedYAML = `
centers:
  - id: 1234567890
    name: "Municipal Vac #12, Nagonia"
    address: "0x6b1c7a0e3f3b0dbb1d4b0c1f1e2a9d8c7b6a5f40"
rules:
  - area: Garivas
    max_age: 720h
    vaccines:
      - {code_type: IVT, code: CoronaVac}
`

func TestLoad(t *testing.T) {
	f, err := Load(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, f.Centers, 1)
	assert.Equal(t, uint64(1234567890), f.Centers[0].ID)
	require.Len(t, f.Rules, 1)
	assert.Equal(t, 30*24*time.Hour, f.Rules[0].MaxAge)
	assert.Equal(t, []VaccineSeed{{CodeType: "IVT", Code: "CoronaVac"}}, f.Rules[0].Vaccines)

	t.Run("empty document", func(t *testing.T) {
		f, err := Load(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, f.Centers)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader("centres: []\n"))
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Centers, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyIsRepeatable(t *testing.T) {
	ctx := context.Background()
	centers := centerservice.New(centerstore.NewInMemory())
	rules := rulesservice.New(rulesstore.NewInMemory())
	s := New(centers, rules, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f, err := Load(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, f))
	require.NoError(t, s.Apply(ctx, f))

	center, err := centers.GetCenter(ctx, 1234567890)
	require.NoError(t, err)
	assert.Equal(t, "Municipal Vac #12, Nagonia", center.Name)

	ok, err := rules.Accepts(ctx, "Garivas", "IVT", "CoronaVac",
		time.Date(2020, 12, 10, 11, 30, 0, 0, time.UTC),
		time.Date(2020, 12, 20, 11, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)

	rule, err := rules.GetRule(ctx, "Garivas")
	require.NoError(t, err)
	assert.EqualValues(t, Actor, rule.UpdatedBy)
	assert.True(t, rule.Accepts(rulesmodels.Vaccine{CodeType: "IVT", Code: "CoronaVac"}))
}

func TestApplyStopsOnInvalidRule(t *testing.T) {
	centers := centerservice.New(centerstore.NewInMemory())
	rules := rulesservice.New(rulesstore.NewInMemory())
	s := New(centers, rules, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Apply(context.Background(), &File{Rules: []RuleSeed{{Area: "", MaxAge: time.Hour}}})
	require.Error(t, err)
}
