package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathgen/internal/model"
)

const taxiTables = `
stations:
  - {id: 1, name: Stormwind, map: 0, x: 0, y: 0, z: 50}
  - {id: 2, name: Ironforge, map: 0, x: 300, y: 0, z: 50}
legs:
  - id: 10
    from: 1
    to: 2
    cost: 120
    nodes:
      - {map: 0, x: 0, y: 0, z: 50, departure_event: 9}
      - {map: 0, x: 150, y: 0, z: 60}
      - {map: 0, x: 300, y: 0, z: 50, arrival_event: 11, flags: 2}
`

func TestParseTaxi(t *testing.T) {
	stations, legs, err := ParseTaxi([]byte(taxiTables))
	require.NoError(t, err)
	require.Len(t, stations, 2)
	require.Len(t, legs, 1)

	assert.Equal(t, "Ironforge", stations[1].Name)

	leg := legs[0]
	assert.Equal(t, int32(120), leg.Cost)
	require.Len(t, leg.Nodes, 3)
	assert.Equal(t, uint32(10), leg.Nodes[2].PathID)
	assert.Equal(t, uint32(2), leg.Nodes[2].Index)
	assert.Equal(t, uint32(11), leg.Nodes[2].ArrivalEventID)
	assert.Equal(t, uint32(9), leg.Nodes[0].DepartureEventID)
	assert.Equal(t, model.TaxiNodeStop, leg.Nodes[2].Flags)
}

func TestParseTaxi_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "duplicate station",
			raw:  "stations:\n  - {id: 1}\n  - {id: 1}\n",
			want: ErrDuplicateID,
		},
		{
			name: "unknown station",
			raw:  "stations:\n  - {id: 1}\nlegs:\n  - {id: 5, from: 1, to: 9, nodes: [{x: 1}]}\n",
			want: ErrInvalidData,
		},
		{
			name: "empty leg",
			raw:  "stations:\n  - {id: 1}\n  - {id: 2}\nlegs:\n  - {id: 5, from: 1, to: 2}\n",
			want: ErrInvalidData,
		},
		{
			name: "negative cost",
			raw:  "stations:\n  - {id: 1}\n  - {id: 2}\nlegs:\n  - {id: 5, from: 1, to: 2, cost: -1, nodes: [{x: 1}]}\n",
			want: ErrInvalidData,
		},
		{
			name: "duplicate pair",
			raw: "stations:\n  - {id: 1}\n  - {id: 2}\nlegs:\n" +
				"  - {id: 5, from: 1, to: 2, nodes: [{x: 1}]}\n" +
				"  - {id: 6, from: 1, to: 2, nodes: [{x: 1}]}\n",
			want: ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTaxi([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTaxiFile_LoadTaxi(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(taxiTables), 0o644))

	stations, legs, err := TaxiFile(path).LoadTaxi(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 2)
	assert.Len(t, legs, 1)

	_, _, err = TaxiFile(filepath.Join(t.TempDir(), "missing.yaml")).LoadTaxi(context.Background())
	assert.Error(t, err)
}
