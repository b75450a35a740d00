package entity

// Story is the structured narrative built from one FeedItem.
//
// Every text field is derived from the item's own title, summary and full text.
// Values are treated as immutable: transformations such as the safety filter
// return a new Story instead of mutating the receiver.
type Story struct {
	HookTitle    string   `json:"hook_title"`
	WhatHappened string   `json:"what_happened"`
	WhereWhen    string   `json:"where_when"`
	Impact       string   `json:"impact"`
	KeyDetails   []string `json:"key_details"`
	WhatNext     string   `json:"what_next"`
	Tags         []string `json:"tags"`

	SourceDomain string `json:"source_domain,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
}

// Clone returns a deep copy so callers can derive a new Story without aliasing slices.
func (s Story) Clone() Story {
	out := s
	out.KeyDetails = cloneStrings(s.KeyDetails)
	out.Tags = cloneStrings(s.Tags)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
