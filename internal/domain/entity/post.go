package entity

import "time"

// Card is the text content of one carousel card. Rendering is done elsewhere.
type Card struct {
	Index  int    `json:"card_index"`
	Total  int    `json:"card_total"`
	Header string `json:"header,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Footer string `json:"footer,omitempty"`
}

// PostMetadata is written next to every packaged post as metadata.json.
type PostMetadata struct {
	Title         string    `json:"title"`
	SourceDomain  string    `json:"source_domain"`
	SourceURL     string    `json:"source_url"`
	PublishedAt   string    `json:"published_at"`
	Tags          []string  `json:"tags"`
	NumCards      int       `json:"num_cards"`
	CardFiles     []string  `json:"card_files"`
	CaptionLength int       `json:"caption_length"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Post is a fully packaged story: cards, caption and the folder they were written to.
type Post struct {
	Story     Story
	Cards     []Card
	Caption   string
	OutputDir string
	Metadata  PostMetadata
}
