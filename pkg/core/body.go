// pkg/core/body.go
package core

import (
	"fmt"
	"strings"
)

// BodyConfig holds the key=value settings parsed from a Body row comment.
type BodyConfig struct {
	StartFrame             int
	TextureBody            string
	TextureClothing        string
	TextureClothingOverlay string
	Hair                   string // hair mesh type, empty for none
}

// SplitBodyName splits "<subject>_<animation_id>" at the final
// underscore. Subjects carry underscores of their own, animation ids
// never do.
func SplitBodyName(body string) (subject, animationID string, err error) {
	i := strings.LastIndexByte(body, '_')
	if i <= 0 || i == len(body)-1 {
		return "", "", fmt.Errorf("invalid body name pattern: %s", body)
	}
	return body[:i], body[i+1:], nil
}

// SequenceBody is one subject placed in a sequence, with every asset
// reference it needs already resolved. Optional refs are nil when the
// matching feature is off for this body.
type SequenceBody struct {
	Subject     string // e.g. "rp_aaron_posed_002"
	AnimationID string // e.g. "0017"
	BodyRef     AssetRef

	ClothingRef       *AssetRef
	HairMeshRef       *AssetRef
	HairAnimationRef  *AssetRef
	HairDriverMeshRef *AssetRef

	// POV host rig, resolved only for body 0 of a pov_camera sequence.
	SkeletalMeshRef      *AssetRef
	SkeletalAnimationRef *AssetRef

	Pose       CameraPose
	StartFrame int

	TextureBody            string
	TextureClothing        string
	TextureClothingOverlay string
}
