package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	m := newTestMatrix(t)

	cols, err := m.Range("C2", "T1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C3", "T1"}, cols.Names)
	assert.Equal(t, []int{1, 2, 3}, cols.Index)
	assert.Equal(t, 3, cols.Len())

	single, err := m.Range("T2", "T2")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, single.Index)

	tests := []struct {
		name       string
		start, end string
	}{
		{"MissingStart", "", "C2"},
		{"MissingEnd", "C1", ""},
		{"UnknownStart", "X1", "C2"},
		{"UnknownEnd", "C1", "X9"},
		{"Reversed", "T1", "C1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Range(tt.start, tt.end)
			require.ErrorIs(t, err, ErrConfiguration)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Reason)
		})
	}
}

func TestLayout(t *testing.T) {
	m := newTestMatrix(t)

	layout, err := m.Layout(RangeConfig{ControlStart: "C1", ControlEnd: "C3", AllStart: "C1", AllEnd: "T2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2", "C3"}, layout.Control.Names)
	assert.Equal(t, []string{"C1", "C2", "C3", "T1", "T2"}, layout.All.Names)

	tests := []struct {
		name string
		cfg  RangeConfig
	}{
		{"ControlTooShort", RangeConfig{ControlStart: "C1", ControlEnd: "C1", AllStart: "C1", AllEnd: "T2"}},
		{"DifferentStart", RangeConfig{ControlStart: "C2", ControlEnd: "C3", AllStart: "C1", AllEnd: "T2"}},
		{"ControlPastAll", RangeConfig{ControlStart: "C1", ControlEnd: "T2", AllStart: "C1", AllEnd: "C3"}},
		{"UnknownControl", RangeConfig{ControlStart: "C1", ControlEnd: "C9", AllStart: "C1", AllEnd: "T2"}},
		{"ReversedAll", RangeConfig{ControlStart: "C1", ControlEnd: "C2", AllStart: "T2", AllEnd: "C1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Layout(tt.cfg)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestDefaultRangeConfig(t *testing.T) {
	cfg := DefaultRangeConfig()
	assert.Equal(t, "C1", cfg.ControlStart)
	assert.Equal(t, "C9", cfg.ControlEnd)
	assert.Equal(t, "C1", cfg.AllStart)
	assert.Equal(t, "T9", cfg.AllEnd)
}
