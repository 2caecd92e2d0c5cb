package domain

// Deck represents one ingested slide deck: the deck-level metadata plus
// its ordered slides. This is the input shape produced by the upstream
// extraction pipeline, before it is flattened into Records.
type Deck struct {
	// Metadata holds the deck-level fields.
	Metadata DeckMetadata

	// Slides holds the per-page data in ascending slide-number order.
	Slides []Slide
}

// DeckMetadata holds the deck-level fields of an ingested document.
type DeckMetadata struct {
	// Filename is the original display name, any charset (e.g. Korean).
	// The document ID is derived from it via SanitizeDocumentID.
	Filename string

	// Company is the company the deck was produced for.
	Company string

	// Industry is the deck's industry classification.
	Industry string

	// ExecutiveSummary is the AI-generated deck summary.
	ExecutiveSummary string

	// TotalPages is the page count of the source file.
	TotalPages int

	// CreatedDate is the creation date as reported upstream.
	CreatedDate string

	// SourceURL optionally points at the hosted source file.
	SourceURL string
}

// Slide holds the extracted data for one deck page.
type Slide struct {
	// Number is the 1-based page ordinal. Zero or negative means the
	// upstream extraction is broken and the whole deck is rejected.
	Number int

	// Content is the raw extracted text (OCR or embedded text).
	Content string

	// Summary is the AI-generated slide summary. Required: a slide with
	// no summary makes the whole deck malformed.
	Summary string

	// Keywords are the extracted keyword phrases.
	Keywords []string

	// Layout is the detected layout label.
	Layout string

	// ImageURL optionally points at the rendered slide image.
	ImageURL string
}
