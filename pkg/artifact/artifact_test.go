package artifact

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/errs"
)

func file(p, content string) Artifact {
	return Artifact{Path: p, Content: []byte(content)}
}

func TestAggregateDeduplicatesSharedPrimitives(t *testing.T) {
	gdpr := Unit{Framework: "gdpr", Generator: "java", Artifacts: []Artifact{
		file("com/compliance/evidence/Redact.java", "shared"),
		file("com/compliance/annotations/GDPREvidence.java", "gdpr"),
	}}
	soc2 := Unit{Framework: "soc2", Generator: "java", Artifacts: []Artifact{
		file("com/compliance/annotations/SOC2Evidence.java", "soc2"),
		file("com/compliance/evidence/Redact.java", "shared"),
	}}

	merged, err := Aggregate(gdpr, soc2)
	require.NoError(t, err)
	require.Len(t, merged, 3)

	count := 0
	for _, a := range merged {
		if a.Path == "com/compliance/evidence/Redact.java" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	assert.Equal(t, []string{
		"com/compliance/annotations/GDPREvidence.java",
		"com/compliance/annotations/SOC2Evidence.java",
		"com/compliance/evidence/Redact.java",
	}, paths(merged))
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := Unit{Framework: "a", Artifacts: []Artifact{file("x/1", "1"), file("shared", "s")}}
	b := Unit{Framework: "b", Artifacts: []Artifact{file("x/2", "2"), file("shared", "s")}}

	ab, err := Aggregate(a, b)
	require.NoError(t, err)
	ba, err := Aggregate(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, Digest(ab), Digest(ba))
}

func TestAggregateCollision(t *testing.T) {
	a := Unit{Framework: "gdpr", Artifacts: []Artifact{file("models/controls.py", "a")}}
	b := Unit{Framework: "hipaa", Artifacts: []Artifact{file("models/./controls.py", "b")}}

	_, err := Aggregate(a, b)
	require.Error(t, err)

	var collision *errs.ArtifactCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "models/controls.py", collision.Path)
	assert.Equal(t, "gdpr", collision.First)
	assert.Equal(t, "hipaa", collision.Second)
	assert.True(t, errors.Is(err, errs.ErrArtifactCollision))
}

func TestAggregateCaseCollision(t *testing.T) {
	tests := []struct {
		name  string
		units []Unit
	}{
		{"one unit", []Unit{{Framework: "nist", Artifacts: []Artifact{
			file("models/ac_1.java", "a"), file("models/AC_1.java", "b"),
		}}}},
		{"two units", []Unit{
			{Framework: "gdpr", Artifacts: []Artifact{file("Models/gdpr.ts", "a")}},
			{Framework: "soc2", Artifacts: []Artifact{file("models/gdpr.ts", "a")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(tt.units...)

			var collision *errs.ArtifactCollisionError
			require.True(t, errors.As(err, &collision), "%v", err)
			assert.True(t, errors.Is(err, errs.ErrArtifactCollision))
			assert.NotEmpty(t, collision.OtherPath)
			assert.True(t, strings.EqualFold(collision.Path, collision.OtherPath))
		})
	}
}

func TestDigest(t *testing.T) {
	one := []Artifact{file("a", "bc")}
	two := []Artifact{file("ab", "c")}

	assert.NotEqual(t, Digest(one), Digest(two))
	assert.Equal(t, Digest(one), Digest([]Artifact{file("a", "bc")}))
	assert.Len(t, Digest(nil), 64)
}

func paths(artifacts []Artifact) []string {
	var out []string
	for _, a := range artifacts {
		out = append(out, a.Path)
	}
	return out
}
