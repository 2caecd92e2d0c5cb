package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// deckFile is the on-disk JSON shape of one deck's extracted metadata, as
// produced by the upstream analysis stage.
type deckFile struct {
	Filename         string      `json:"filename"`
	Company          string      `json:"company"`
	Industry         string      `json:"industry"`
	ExecutiveSummary string      `json:"executive_summary"`
	TotalPages       int         `json:"total_pages"`
	CreatedDate      string      `json:"created_date"`
	SourceURL        string      `json:"source_url"`
	Slides           []slideFile `json:"slides"`
}

type slideFile struct {
	SlideNumber int      `json:"slide_number"`
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
	Layout      string   `json:"layout"`
	ImageURL    string   `json:"image_url"`
}

// loadDeck reads and parses one deck metadata file. Unreadable or
// syntactically invalid input is malformed, not a validation failure:
// nothing downstream can be salvaged from it.
func loadDeck(path string) (domain.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("%w: reading %s: %v", domain.ErrMalformedInput, path, err)
	}

	var parsed deckFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.Deck{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrMalformedInput, path, err)
	}

	deck := domain.Deck{
		Metadata: domain.DeckMetadata{
			Filename:         parsed.Filename,
			Company:          parsed.Company,
			Industry:         parsed.Industry,
			ExecutiveSummary: parsed.ExecutiveSummary,
			TotalPages:       parsed.TotalPages,
			CreatedDate:      parsed.CreatedDate,
			SourceURL:        parsed.SourceURL,
		},
	}
	for _, s := range parsed.Slides {
		deck.Slides = append(deck.Slides, domain.Slide{
			Number:   s.SlideNumber,
			Content:  s.Content,
			Summary:  s.Summary,
			Keywords: s.Keywords,
			Layout:   s.Layout,
			ImageURL: s.ImageURL,
		})
	}
	return deck, nil
}
