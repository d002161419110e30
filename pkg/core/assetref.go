package core

import (
	"fmt"
	"strings"
)

// AssetRef names one host asset by class and package path. The host
// addresses assets as Class'/Dir/Package.Object'; Object usually equals
// Package and is left empty in that case.
type AssetRef struct {
	Type    string // host asset class, e.g. "GeometryCache"
	Dir     string // package directory, no trailing slash
	Package string // package name, the final path segment
	Object  string // object inside the package, empty means Package
}

// NewAssetRef builds a ref whose object name equals the package name,
// the common case. dir may carry a trailing slash.
func NewAssetRef(assetType, dir, pkg string) AssetRef {
	return AssetRef{
		Type:    assetType,
		Dir:     strings.TrimSuffix(dir, "/"),
		Package: pkg,
	}
}

// ObjectName returns the object part of the ref.
func (r AssetRef) ObjectName() string {
	if r.Object != "" {
		return r.Object
	}
	return r.Package
}

// PackagePath returns the package path without the object part,
// e.g. "/PS/Bedlam/SMPLX/subject/body".
func (r AssetRef) PackagePath() string {
	return r.Dir + "/" + r.Package
}

// Path returns the full object path, e.g. "/PS/Bedlam/SMPLX/s/b.b".
func (r AssetRef) Path() string {
	return r.PackagePath() + "." + r.ObjectName()
}

// String renders the host's canonical asset notation Class'path'.
func (r AssetRef) String() string {
	return r.Type + "'" + r.Path() + "'"
}

// ParseAssetRef parses the canonical Class'/Dir/Package.Object' notation.
func ParseAssetRef(s string) (AssetRef, error) {
	open := strings.IndexByte(s, '\'')
	if open <= 0 || !strings.HasSuffix(s, "'") || len(s) < open+2 {
		return AssetRef{}, fmt.Errorf("malformed asset reference %q", s)
	}
	ref := AssetRef{Type: s[:open]}

	path := s[open+1 : len(s)-1]
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return AssetRef{}, fmt.Errorf("asset reference %q has no package directory", s)
	}
	ref.Dir = path[:slash]

	last := path[slash+1:]
	pkg, obj, found := strings.Cut(last, ".")
	if !found || pkg == "" || obj == "" {
		return AssetRef{}, fmt.Errorf("asset reference %q has no object name", s)
	}
	ref.Package = pkg
	if obj != pkg {
		ref.Object = obj
	}
	return ref, nil
}
