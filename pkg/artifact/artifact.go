// Package artifact holds generated files and merges the output of
// independent generation units into one bundle per generator.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/fluohq/compliancegen/pkg/errs"
)

// Artifact is one generated file.
type Artifact struct {
	// Path is slash separated and relative to the output directory.
	Path    string
	Content []byte
}

// Unit is the output of one (framework, generator) pair.
type Unit struct {
	Framework string
	Generator string
	Artifacts []Artifact
}

// Sort orders artifacts by path.
func Sort(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].Path < artifacts[j].Path
	})
}

// Aggregate merges the artifacts of all units by path.
//
// Artifacts with the same path and identical content, as emitted for
// the primitives shared by every framework, are kept once. The same path
// with different content is an *errs.ArtifactCollisionError naming both
// frameworks, and so are two paths that differ only in case, as they
// name one file on case-insensitive filesystems. The result is sorted
// by path, independent of unit order.
func Aggregate(units ...Unit) ([]Artifact, error) {
	type entry struct {
		artifact  Artifact
		framework string
	}

	merged := make(map[string]entry)
	folded := make(map[string]string)

	for _, u := range units {
		for _, a := range u.Artifacts {
			p := path.Clean(a.Path)

			existing, ok := merged[p]
			if !ok {
				if other, ok := folded[strings.ToLower(p)]; ok {
					return nil, &errs.ArtifactCollisionError{
						Path:      p,
						OtherPath: other,
						First:     merged[other].framework,
						Second:    u.Framework,
					}
				}

				merged[p] = entry{
					artifact:  Artifact{Path: p, Content: a.Content},
					framework: u.Framework,
				}
				folded[strings.ToLower(p)] = p
				continue
			}

			if !bytes.Equal(existing.artifact.Content, a.Content) {
				return nil, &errs.ArtifactCollisionError{
					Path:   p,
					First:  existing.framework,
					Second: u.Framework,
				}
			}
		}
	}

	out := make([]Artifact, 0, len(merged))
	for _, e := range merged {
		out = append(out, e.artifact)
	}
	Sort(out)

	return out, nil
}

// Digest is a content address of a bundle: the hex SHA-256 over every
// path and content, in path order. Equal bundles have equal digests.
func Digest(artifacts []Artifact) string {
	sorted := append([]Artifact(nil), artifacts...)
	Sort(sorted)

	h := sha256.New()
	for _, a := range sorted {
		h.Write([]byte(a.Path))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(len(a.Content))))
		h.Write([]byte{0})
		h.Write(a.Content)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Find returns the artifact at p.
func Find(artifacts []Artifact, p string) (Artifact, bool) {
	for _, a := range artifacts {
		if a.Path == p {
			return a, true
		}
	}
	return Artifact{}, false
}
