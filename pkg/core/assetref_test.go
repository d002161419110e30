package core

import "testing"

func TestAssetRefString_ObjectMatchesPackage(t *testing.T) {
	ref := NewAssetRef("GeometryCache", "/PS/Bedlam/SMPLX/rp_aaron_posed_002/", "rp_aaron_posed_002_0017")

	want := "GeometryCache'/PS/Bedlam/SMPLX/rp_aaron_posed_002/rp_aaron_posed_002_0017.rp_aaron_posed_002_0017'"
	if got := ref.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAssetRefString_DistinctObject(t *testing.T) {
	ref := NewAssetRef("AnimSequence", "/PS/Bedlam/SMPLX_Skeletal/subj", "subj_0005")
	ref.Object = "subj_0005_Animation"

	want := "AnimSequence'/PS/Bedlam/SMPLX_Skeletal/subj/subj_0005.subj_0005_Animation'"
	if got := ref.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseAssetRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AssetRef
		wantErr bool
	}{
		{
			name:  "object equals package",
			input: "GeometryCache'/PS/Bedlam/SMPLX/subj/subj_0017.subj_0017'",
			want:  AssetRef{Type: "GeometryCache", Dir: "/PS/Bedlam/SMPLX/subj", Package: "subj_0017"},
		},
		{
			name:  "distinct object",
			input: "AnimSequence'/PS/Skel/subj/b.b_Animation'",
			want:  AssetRef{Type: "AnimSequence", Dir: "/PS/Skel/subj", Package: "b", Object: "b_Animation"},
		},
		{"no quotes", "GeometryCache/PS/foo.foo", AssetRef{}, true},
		{"no type", "'/PS/foo.foo'", AssetRef{}, true},
		{"no directory", "Texture2D'foo.foo'", AssetRef{}, true},
		{"no object", "Texture2D'/PS/foo'", AssetRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssetRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAssetRef(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAssetRef(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAssetRef(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAssetRefRoundTrip(t *testing.T) {
	in := "SkeletalMesh'/PS/Bedlam/SMPLX_Skeletal/subj/b.b'"
	ref, err := ParseAssetRef(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := ref.String(); got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}
}

func TestAssetRefPackagePath(t *testing.T) {
	ref := NewAssetRef("StaticMesh", "/PS/Bedlam/Hair/CC/Meshes/Long01", "Long01")

	if got := ref.PackagePath(); got != "/PS/Bedlam/Hair/CC/Meshes/Long01/Long01" {
		t.Errorf("PackagePath() = %q", got)
	}
	if got := ref.ObjectName(); got != "Long01" {
		t.Errorf("ObjectName() = %q", got)
	}
}
