package domain

// IndexKind identifies one of the two complementary search indexes.
type IndexKind string

// Known index kinds.
const (
	// IndexDense retrieves by semantic/embedding similarity.
	IndexDense IndexKind = "dense"

	// IndexSparse retrieves by lexical/keyword signal.
	IndexSparse IndexKind = "sparse"
)

// GlobalNamespace is the corpus-wide namespace shared by every document.
const GlobalNamespace = "global"

// DocumentNamespace returns the document-scoped namespace for an ID.
func DocumentNamespace(documentID string) string {
	return "doc:" + documentID
}

// Target is one (index kind, namespace) upload destination.
type Target struct {
	Kind      IndexKind
	Namespace string
}

// String renders the target for logs and failure reports.
func (t Target) String() string {
	return string(t.Kind) + "/" + t.Namespace
}

// TargetsFor enumerates the full target set for one document: the Cartesian
// product {dense, sparse} x {doc namespace, global}. The order is
// deterministic and groups all of one index's traffic together, which keeps
// connection churn against the external service down. Every record of the
// document must eventually reach all four targets.
func TargetsFor(documentID string) []Target {
	docNS := DocumentNamespace(documentID)
	return []Target{
		{Kind: IndexDense, Namespace: docNS},
		{Kind: IndexDense, Namespace: GlobalNamespace},
		{Kind: IndexSparse, Namespace: docNS},
		{Kind: IndexSparse, Namespace: GlobalNamespace},
	}
}
