package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "runs", (&Run{}).TableName())
	assert.Equal(t, "sequence_records", (&SequenceRecord{}).TableName())
}

func TestDatabaseModels_CoverBothCatalogTables(t *testing.T) {
	require.Len(t, DatabaseModels, 2)
	require.Len(t, DatabaseModelsSQLite, 2)

	assert.IsType(t, &Run{}, DatabaseModels[0])
	assert.IsType(t, &SequenceRecord{}, DatabaseModels[1])
}

func TestRun_JSONShape(t *testing.T) {
	r := Run{
		RunID:       uuid.New(),
		CSVPath:     "be_seq.csv",
		Preset:      "orbit_archviz",
		HostKind:    "script",
		ToolVersion: "1.2.0",
		StartTime:   time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC),
		Total:       12,
		Built:       11,
		Failed:      1,
	}

	out, err := json.Marshal(&r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "be_seq.csv", decoded["csvPath"])
	assert.Equal(t, "orbit_archviz", decoded["preset"])
	assert.Equal(t, float64(12), decoded["total"])
	// the sequence slice is never serialized with the run row
	assert.NotContains(t, decoded, "Sequences")
}

func TestSequenceRecord_JSONOmitsGeometryBlob(t *testing.T) {
	rec := SequenceRecord{
		Name:           "seq_000042",
		CSVIndex:       42,
		FrameCount:     180,
		BodyCount:      3,
		CameraMode:     "static",
		HDRI:           "kloppenheim_06",
		CameraPosition: geom.NewPoint(geom.Coordinates{XY: geom.XY{X: 120.5, Y: -38.25}, Z: 172.0}),
	}

	out, err := json.Marshal(&rec)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "seq_000042", decoded["name"])
	assert.Equal(t, float64(180), decoded["frameCount"])
	assert.Equal(t, "static", decoded["cameraMode"])
	assert.Contains(t, decoded, "cameraPosition")
	assert.NotContains(t, decoded, "BodyPositions")
	assert.NotContains(t, decoded, "bodyPositions")
}
