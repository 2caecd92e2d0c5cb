package domain

import (
	"fmt"
	"strings"
)

// RecordType discriminates the two record variants stored in an index.
type RecordType string

// Known record types.
const (
	// RecordTypeDeckMetadata is the single deck-level record per document.
	RecordTypeDeckMetadata RecordType = "deck_metadata"

	// RecordTypeSlide is one record per slide.
	RecordTypeSlide RecordType = "slide"
)

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	return t == RecordTypeDeckMetadata || t == RecordTypeSlide
}

// Record is the atomic unit stored in and retrieved from an index.
// Records are immutable after construction: re-ingestion with the same ID
// overwrites in place at the index, nothing mutates a Record in memory.
type Record struct {
	// ID is unique within an index+namespace. Format:
	// {documentID}_meta for the deck record,
	// {documentID}_slide_NNN (1-based, zero-padded to 3) for slides.
	ID string

	// Content is the sole field fed to embedding/lexical indexing.
	// Must be non-empty after trimming.
	Content string

	// Type discriminates the variant.
	Type RecordType

	// Shared filterable attributes, inherited from the parent deck.
	DocumentID string
	Title      string
	Company    string
	Industry   string

	// Deck-record-only attributes.
	TotalPages  int
	CreatedDate string
	SourceURL   string

	// Slide-record-only attributes.
	SlideNumber int
	Keywords    string // flattened with ", "
	Layout      string
	ImageURL    string
}

// Attributes returns the record's filterable attributes as a flat map,
// the shape hits carry back from the index. Content is excluded: it is
// the indexed field, not a filter attribute.
func (r Record) Attributes() map[string]any {
	attrs := map[string]any{
		"type":        string(r.Type),
		"document_id": r.DocumentID,
		"title":       r.Title,
		"company":     r.Company,
		"industry":    r.Industry,
	}
	switch r.Type {
	case RecordTypeDeckMetadata:
		attrs["total_pages"] = r.TotalPages
		attrs["created_date"] = r.CreatedDate
		if r.SourceURL != "" {
			attrs["source_url"] = r.SourceURL
		}
	case RecordTypeSlide:
		attrs["slide_number"] = r.SlideNumber
		attrs["keywords"] = r.Keywords
		attrs["layout"] = r.Layout
		attrs["image_url"] = r.ImageURL
	}
	return attrs
}

// BuildRecords flattens a deck into its searchable record sequence:
// exactly one deck_metadata record followed by one slide record per slide,
// in input order. The caller is expected to have derived documentID via
// SanitizeDocumentID.
//
// A slide without a positive slide number or without a summary makes the
// whole deck malformed - no partial record set is returned.
func BuildRecords(documentID string, deck Deck) ([]Record, error) {
	records := make([]Record, 0, len(deck.Slides)+1)

	meta := deck.Metadata
	records = append(records, Record{
		ID:          documentID + "_meta",
		Content:     buildDeckContent(meta),
		Type:        RecordTypeDeckMetadata,
		DocumentID:  documentID,
		Title:       meta.Filename,
		Company:     meta.Company,
		Industry:    meta.Industry,
		TotalPages:  meta.TotalPages,
		CreatedDate: meta.CreatedDate,
		SourceURL:   meta.SourceURL,
	})

	for i, slide := range deck.Slides {
		if slide.Number <= 0 {
			return nil, fmt.Errorf("%w: slide at position %d has no slide number", ErrMalformedInput, i)
		}
		if strings.TrimSpace(slide.Summary) == "" {
			return nil, fmt.Errorf("%w: slide %d has no summary", ErrMalformedInput, slide.Number)
		}
		records = append(records, Record{
			ID:          fmt.Sprintf("%s_slide_%03d", documentID, slide.Number),
			Content:     buildSlideContent(slide),
			Type:        RecordTypeSlide,
			DocumentID:  documentID,
			Title:       meta.Filename,
			Company:     meta.Company,
			Industry:    meta.Industry,
			SlideNumber: slide.Number,
			Keywords:    strings.Join(slide.Keywords, ", "),
			Layout:      slide.Layout,
			ImageURL:    slide.ImageURL,
		})
	}

	return records, nil
}

// buildDeckContent joins the deck-level fields into the single searchable
// text blob. Empty source fields still contribute their labelled line so
// every deck record has the same content shape.
func buildDeckContent(meta DeckMetadata) string {
	parts := []string{
		"Filename: " + meta.Filename,
		"Industry: " + meta.Industry,
		"Company: " + meta.Company,
		"Executive Summary: " + meta.ExecutiveSummary,
	}
	return strings.Join(parts, "\n")
}

// buildSlideContent joins whichever slide fields are non-empty, each with
// its label, in fixed priority order. Unlike the deck record, empty fields
// are omitted here: raw content and layout are frequently absent and padding
// slide content with blank lines hurts embedding quality.
func buildSlideContent(slide Slide) string {
	var parts []string
	if slide.Content != "" {
		parts = append(parts, "Content: "+slide.Content)
	}
	if slide.Summary != "" {
		parts = append(parts, "Summary: "+slide.Summary)
	}
	if len(slide.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(slide.Keywords, ", "))
	}
	if slide.Layout != "" {
		parts = append(parts, "Layout: "+slide.Layout)
	}
	return strings.Join(parts, "\n")
}
