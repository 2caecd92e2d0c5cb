package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTargetsFor tests the full Cartesian product in deterministic order,
// grouped by index kind.
func TestTargetsFor(t *testing.T) {
	targets := TargetsFor("db_insurance_2025")

	require.Len(t, targets, 4)
	assert.Equal(t, Target{Kind: IndexDense, Namespace: "doc:db_insurance_2025"}, targets[0])
	assert.Equal(t, Target{Kind: IndexDense, Namespace: "global"}, targets[1])
	assert.Equal(t, Target{Kind: IndexSparse, Namespace: "doc:db_insurance_2025"}, targets[2])
	assert.Equal(t, Target{Kind: IndexSparse, Namespace: "global"}, targets[3])
}

// TestTarget_String tests log rendering.
func TestTarget_String(t *testing.T) {
	target := Target{Kind: IndexSparse, Namespace: "global"}

	assert.Equal(t, "sparse/global", target.String())
}

// TestDocumentNamespace tests the doc: prefix convention.
func TestDocumentNamespace(t *testing.T) {
	assert.Equal(t, "doc:abc", DocumentNamespace("abc"))
}
