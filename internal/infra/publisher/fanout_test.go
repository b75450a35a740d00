package publisher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/publisher"
	"card-news/internal/resilience/retry"
)

type recordingPublisher struct {
	id     string
	errs   []error // returned in order, nil once exhausted
	mu     sync.Mutex
	events []publisher.Event
	closed bool
}

func (p *recordingPublisher) ID() string { return p.id }

func (p *recordingPublisher) Publish(ctx context.Context, evt publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return err
	}
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

var fastRetry = retry.Config{
	MaxAttempts:  2,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   1,
}

func samplePost() *entity.Post {
	return &entity.Post{
		Story:     entity.Story{HookTitle: "Hook", SourceDomain: "example.com", SourceURL: "https://example.com/a"},
		Caption:   "caption",
		OutputDir: "output/x",
	}
}

func TestFanout_PublishPost(t *testing.T) {
	a := &recordingPublisher{id: "a"}
	b := &recordingPublisher{id: "b"}
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f := publisher.NewFanout([]publisher.Publisher{a, b}, publisher.WithClock(func() time.Time { return fixed }))

	require.NoError(t, f.PublishPost(context.Background(), samplePost()))

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, a.events[0].ID, b.events[0].ID, "all publishers receive the same event")
	assert.Equal(t, "Hook", a.events[0].Title)
	assert.Equal(t, fixed, a.events[0].CreatedAt)
	assert.Equal(t, 2, f.Len())
}

func TestFanout_JoinsErrorsAndContinues(t *testing.T) {
	denied := &net400{}
	a := &recordingPublisher{id: "a", errs: []error{denied}}
	b := &recordingPublisher{id: "b"}
	c := &recordingPublisher{id: "c", errs: []error{errors.New("topic gone")}}
	f := publisher.NewFanout([]publisher.Publisher{a, b, c}, publisher.WithRetryConfig(fastRetry))

	err := f.PublishPost(context.Background(), samplePost())

	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "publisher a")
	assert.Contains(t, err.Error(), "publisher c")
	assert.NotContains(t, err.Error(), "publisher b")
	assert.Len(t, b.events, 1)
}

func TestFanout_RetriesRetryableErrors(t *testing.T) {
	a := &recordingPublisher{id: "a", errs: []error{&retry.HTTPError{StatusCode: 503, Message: "unavailable"}}}
	f := publisher.NewFanout([]publisher.Publisher{a}, publisher.WithRetryConfig(fastRetry))

	require.NoError(t, f.PublishPost(context.Background(), samplePost()))
	assert.Len(t, a.events, 2)
}

func TestFanout_NoPublishers(t *testing.T) {
	f := publisher.NewFanout(nil)

	assert.NoError(t, f.PublishPost(context.Background(), samplePost()))
	assert.NoError(t, f.PublishPost(context.Background(), nil))
	assert.Zero(t, f.Len())
}

func TestFanout_Close(t *testing.T) {
	a := &recordingPublisher{id: "a"}
	f := publisher.NewFanout([]publisher.Publisher{a})

	require.NoError(t, f.Close())
	assert.True(t, a.closed)
}

func TestBuildAll_SkipsDisabled(t *testing.T) {
	disabled := false
	cfgs := []publisher.Config{
		{ID: "hook", Type: publisher.TypeHTTP, HTTP: &publisher.HTTPConfig{URL: "https://hooks.example.com", Method: "POST", TimeoutSeconds: 1}},
		{ID: "off", Type: publisher.TypeHTTP, Enabled: &disabled, HTTP: &publisher.HTTPConfig{URL: "https://off.example.com"}},
	}

	pubs, err := publisher.BuildAll(context.Background(), cfgs)

	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "hook", pubs[0].ID())
}

// net400 is a non-retryable error type.
type net400 struct{}

func (*net400) Error() string { return "400 bad request" }
