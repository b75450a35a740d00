package publisher

import (
	"time"

	"card-news/internal/domain/entity"

	"github.com/google/uuid"
)

// EventTypeStoryPackaged is the type of the event sent for every packaged post.
const EventTypeStoryPackaged = "story.packaged"

// Event describes one packaged post for downstream consumers.
type Event struct {
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	SourceURL    string       `json:"source_url"`
	SourceDomain string       `json:"source_domain"`
	Tags         []string     `json:"tags"`
	OutputDir    string       `json:"output_dir"`
	Caption      string       `json:"caption"`
	Story        entity.Story `json:"story"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewEvent builds the story.packaged event for post.
func NewEvent(post *entity.Post, now time.Time) Event {
	story := post.Story.Clone()
	return Event{
		ID:           uuid.NewString(),
		Type:         EventTypeStoryPackaged,
		Title:        story.HookTitle,
		SourceURL:    story.SourceURL,
		SourceDomain: story.SourceDomain,
		Tags:         story.Tags,
		OutputDir:    post.OutputDir,
		Caption:      post.Caption,
		Story:        story,
		CreatedAt:    now.UTC().Truncate(time.Second),
	}
}

// attributes are attached to every queue message so subscribers can filter
// without decoding the body.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":   e.Type,
		"story_domain": e.SourceDomain,
	}
}
