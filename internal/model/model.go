package model

import (
	"time"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which represent
// tables in the catalog schema.
var DatabaseModels = []interface{}{
	&Run{},
	&SequenceRecord{},
}

// DatabaseModelsSQLite mirrors DatabaseModels for the local fallback catalog.
// The lists diverge when a model needs a postgres-only type.
var DatabaseModelsSQLite = []interface{}{
	&Run{},
	&SequenceRecord{},
}

// Run is one generator invocation against a scene descriptor CSV.
type Run struct {
	gorm.Model
	RunID       uuid.UUID `json:"runId" gorm:"type:uuid;uniqueIndex:idx_run_uuid"`
	CSVPath     string    `json:"csvPath" gorm:"size:255"`
	Preset      string    `json:"preset" gorm:"size:64"`
	HostKind    string    `json:"hostKind" gorm:"size:32"`
	ToolVersion string    `json:"toolVersion" gorm:"size:64"`
	StartTime   time.Time `json:"startTime" gorm:"type:timestamptz;index:idx_run_start"`
	EndTime     time.Time `json:"endTime" gorm:"type:timestamptz"`

	Total   int  `json:"total"`
	Built   int  `json:"built"`
	Failed  int  `json:"failed"`
	Aborted bool `json:"aborted" gorm:"default:false"`

	Sequences []SequenceRecord `json:"-"`
}

func (*Run) TableName() string {
	return "runs"
}

// Get loads the run row matching r.RunID.
func (r *Run) Get(db *gorm.DB) error {
	return db.Where("run_id = ?", r.RunID).First(r).Error
}

// SequenceRecord is one synthesized level sequence within a run.
type SequenceRecord struct {
	gorm.Model
	RunID uint `json:"runId" gorm:"index:idx_sequence_run_id"`
	Run   Run  `json:"-" gorm:"foreignkey:RunID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Name       string `json:"name" gorm:"size:127;index:idx_sequence_name"`
	CSVIndex   int    `json:"csvIndex"`
	AssetPath  string `json:"assetPath" gorm:"size:255"` // host path of the saved timeline
	FrameCount int    `json:"frameCount"`
	BodyCount  int    `json:"bodyCount"`
	CameraMode string `json:"cameraMode" gorm:"size:64"`
	HDRI       string `json:"hdri" gorm:"size:127"`
	HasHair    bool   `json:"hasHair"`

	CameraPosition geom.Point    `json:"cameraPosition"` // camera pose in host units
	BodyPositions  geom.Geometry `json:"-"`              // body placements in spawn order
	EnvelopeWKT    string        `json:"envelopeWkt" gorm:"size:255"`

	GroupSnapshot datatypes.JSON `json:"groupSnapshot" gorm:"type:jsonb;default:'{}'"`
	BuildMs       float32        `json:"buildMs"`
}

func (*SequenceRecord) TableName() string {
	return "sequence_records"
}
