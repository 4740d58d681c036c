package machinery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	"framasa/internal/domain/inventory"
)

func TestMachineryValidate(t *testing.T) {
	ctx := context.Background()

	m := NewMachinery(inventory.DomainBlocks, KindMixer, "MEZ-001", "Mezcladora 350L")
	require.NoError(t, m.Validate(ctx))

	cases := []struct {
		name   string
		mutate func(*Machinery)
	}{
		{"unknown domain", func(m *Machinery) { m.Domain = "PANADERIA" }},
		{"unknown kind", func(m *Machinery) { m.Kind = "CAMION" }},
		{"unknown status", func(m *Machinery) { m.Status = "BROKEN" }},
		{"year before 1900", func(m *Machinery) { m.Year = 1850 }},
		{"negative hours", func(m *Machinery) { m.OperatingHours = -1 }},
		{"negative mileage", func(m *Machinery) { m.Mileage = -10 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachinery(inventory.DomainBlocks, KindMixer, "MEZ-001", "Mezcladora 350L")
			tc.mutate(m)
			err := m.Validate(ctx)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}

	// Year zero means unknown and passes.
	m.Year = 0
	assert.NoError(t, m.Validate(ctx))
}

func TestMachineryAddUsage(t *testing.T) {
	m := NewMachinery(inventory.DomainAggregates, KindExcavator, "EXC-001", "Excavadora CAT")

	require.NoError(t, m.AddUsage(8, 40))
	require.NoError(t, m.AddUsage(6, 0))
	assert.Equal(t, 14, m.OperatingHours)
	assert.Equal(t, 40, m.Mileage)

	err := m.AddUsage(-1, 0)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Equal(t, 14, m.OperatingHours, "counters unchanged on rejection")
}

func TestMachineryAvailability(t *testing.T) {
	now := time.Now().UTC()

	m := NewMachinery(inventory.DomainHardware, KindGenerator, "GEN-001", "Generador 5kW")
	assert.True(t, m.Available())
	assert.False(t, m.MaintenanceDue(now))

	m.Status = StatusMaintenance
	assert.False(t, m.Available())

	m.Status = StatusOperational
	past := now.Add(-24 * time.Hour)
	m.NextMaintenanceAt = &past
	assert.True(t, m.MaintenanceDue(now))

	m.DeletionMark = true
	assert.False(t, m.Available())
}
