package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedlam-render/sequencer/pkg/core"
)

func TestParseGroupConfig(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		comment string
		check   func(t *testing.T, g *core.GroupConfig)
		wantErr string
	}{
		{
			name:    "required keys only",
			comment: "sequence_name=seq_000000;frames=300",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, "seq_000000", g.SequenceName)
				assert.Equal(t, 300, g.FrameCount)
				assert.Empty(t, g.HDRI)
				assert.Nil(t, g.CameraHFOV)
				assert.False(t, g.POVCamera)
				assert.Nil(t, g.ViewID)
				assert.Nil(t, g.CameraRootYaw)
				assert.Nil(t, g.CameraRootLocation)
			},
		},
		{
			name: "all options",
			comment: "sequence_name=seq_000001;frames=100;hdri=abandoned_factory_canteen_01;" +
				"camera_hfov=65.470451;pov_camera=true;view_id=3;cameraroot_yaw=45.0;" +
				"cameraroot_x=-1000;cameraroot_y=0;cameraroot_z=170",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, "abandoned_factory_canteen_01", g.HDRI)
				require.NotNil(t, g.CameraHFOV)
				assert.Equal(t, 65.470451, *g.CameraHFOV)
				assert.True(t, g.POVCamera)
				require.NotNil(t, g.ViewID)
				assert.Equal(t, 3, *g.ViewID)
				require.NotNil(t, g.CameraRootYaw)
				assert.Equal(t, 45.0, *g.CameraRootYaw)
				require.NotNil(t, g.CameraRootLocation)
				assert.Equal(t, core.Location{X: -1000, Y: 0, Z: 170}, *g.CameraRootLocation)
			},
		},
		{
			name:    "pov sentinel is exact",
			comment: "sequence_name=seq_0;frames=1;pov_camera=True",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.False(t, g.POVCamera)
			},
		},
		{
			name:    "duplicate key last wins",
			comment: "sequence_name=seq_a;frames=10;frames=20",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, 20, g.FrameCount)
			},
		},
		{
			name:    "trailing semicolon tolerated",
			comment: "sequence_name=seq_0;frames=42;",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, 42, g.FrameCount)
			},
		},
		{
			name:    "value containing equals",
			comment: "sequence_name=seq=0;frames=1",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, "seq=0", g.SequenceName)
			},
		},
		{
			name:    "unknown provenance keys ignored",
			comment: "sequence_name=seq_0;frames=60;angle=113.7;view=right_view",
			check: func(t *testing.T, g *core.GroupConfig) {
				assert.Equal(t, "seq_0", g.SequenceName)
				assert.Equal(t, 60, g.FrameCount)
			},
		},
		{
			name:    "missing sequence_name",
			comment: "frames=100",
			wantErr: `missing required key "sequence_name"`,
		},
		{
			name:    "missing frames",
			comment: "sequence_name=seq_0",
			wantErr: `missing required key "frames"`,
		},
		{
			name:    "empty comment",
			comment: "",
			wantErr: `missing required key "sequence_name"`,
		},
		{
			name:    "bad frames",
			comment: "sequence_name=seq_0;frames=many",
			wantErr: "error converting frames to int",
		},
		{
			name:    "bad hfov",
			comment: "sequence_name=seq_0;frames=1;camera_hfov=wide",
			wantErr: "error converting camera_hfov to float",
		},
		{
			name:    "bad view_id",
			comment: "sequence_name=seq_0;frames=1;view_id=left",
			wantErr: "error converting view_id to int",
		},
		{
			name:    "segment without equals",
			comment: "sequence_name=seq_0;frames=1;povcamera",
			wantErr: "malformed key=value segment",
		},
		{
			name:    "partial cameraroot triple",
			comment: "sequence_name=seq_0;frames=1;cameraroot_x=10;cameraroot_z=170",
			wantErr: "cameraroot location needs all of",
		},
		{
			name:    "bad cameraroot axis",
			comment: "sequence_name=seq_0;frames=1;cameraroot_x=a;cameraroot_y=0;cameraroot_z=0",
			wantErr: "error converting cameraroot_x to float",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := p.ParseGroupConfig(tt.comment)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g)
			tt.check(t, g)
		})
	}
}
