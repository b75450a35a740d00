package notify_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-news/internal/domain/entity"
	"card-news/internal/usecase/notify"
)

type fakeChannel struct {
	name    string
	enabled bool
	err     error
	block   chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	posts []string
}

func (c *fakeChannel) Name() string    { return c.name }
func (c *fakeChannel) IsEnabled() bool { return c.enabled }

func (c *fakeChannel) Send(ctx context.Context, post *entity.Post) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	c.posts = append(c.posts, post.Story.HookTitle)
	c.mu.Unlock()
	c.calls.Add(1)
	return c.err
}

func post(title string) *entity.Post {
	return &entity.Post{
		Story:     entity.Story{HookTitle: title, SourceURL: "https://example.com/" + title},
		OutputDir: "output/" + title,
	}
}

func healthOf(t *testing.T, svc notify.Service, name string) notify.ChannelHealthStatus {
	t.Helper()
	for _, h := range svc.GetChannelHealth() {
		if h.Name == name {
			return h
		}
	}
	t.Fatalf("channel %q not found", name)
	return notify.ChannelHealthStatus{}
}

func TestService_NotifyNewPost_EnabledChannelsOnly(t *testing.T) {
	slack := &fakeChannel{name: "slack", enabled: true}
	discord := &fakeChannel{name: "discord", enabled: false}
	svc := notify.NewService([]notify.Channel{slack, discord}, 4)

	require.NoError(t, svc.NotifyNewPost(context.Background(), post("first")))

	assert.Eventually(t, func() bool { return slack.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), discord.calls.Load())
	require.NoError(t, svc.Shutdown(context.Background()))
}

func TestService_NotifyNewPost_NonBlocking(t *testing.T) {
	block := make(chan struct{})
	slack := &fakeChannel{name: "slack", enabled: true, block: block}
	svc := notify.NewService([]notify.Channel{slack}, 1)

	done := make(chan struct{})
	go func() {
		_ = svc.NotifyNewPost(context.Background(), post("slow"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyNewPost blocked on a slow channel")
	}

	close(block)
	assert.Eventually(t, func() bool { return slack.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Shutdown(context.Background()))
}

func TestService_NotifyNewPost_NilPost(t *testing.T) {
	slack := &fakeChannel{name: "slack", enabled: true}
	svc := notify.NewService([]notify.Channel{slack}, 1)

	require.NoError(t, svc.NotifyNewPost(context.Background(), nil))
	require.NoError(t, svc.Shutdown(context.Background()))
	assert.Equal(t, int32(0), slack.calls.Load())
}

func TestService_CircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	failing := &fakeChannel{name: "slack", enabled: true, err: errors.New("500")}
	healthy := &fakeChannel{name: "discord", enabled: true}
	svc := notify.NewService([]notify.Channel{failing, healthy}, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.NotifyNewPost(ctx, post("p")))
	}

	assert.Eventually(t, func() bool {
		return healthOf(t, svc, "slack").CircuitBreakerOpen
	}, 2*time.Second, 5*time.Millisecond)

	status := healthOf(t, svc, "slack")
	require.NotNil(t, status.DisabledUntil)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), *status.DisabledUntil, 5*time.Second)
	assert.False(t, healthOf(t, svc, "discord").CircuitBreakerOpen)

	require.NoError(t, svc.NotifyNewPost(ctx, post("dropped")))
	assert.Eventually(t, func() bool { return healthy.calls.Load() == 6 }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Shutdown(ctx))

	assert.Equal(t, int32(5), failing.calls.Load(), "open circuit should drop the sixth send")
}

func TestService_Shutdown_CancelsInFlight(t *testing.T) {
	slack := &fakeChannel{name: "slack", enabled: true, block: make(chan struct{})}
	svc := notify.NewService([]notify.Channel{slack}, 1)

	require.NoError(t, svc.NotifyNewPost(context.Background(), post("stuck")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, svc.Shutdown(ctx))
}

func TestService_GetChannelHealth(t *testing.T) {
	svc := notify.NewService([]notify.Channel{
		&fakeChannel{name: "slack", enabled: true},
		&fakeChannel{name: "discord", enabled: false},
	}, 2)

	got := svc.GetChannelHealth()

	require.Len(t, got, 2)
	assert.Equal(t, notify.ChannelHealthStatus{Name: "slack", Enabled: true}, got[0])
	assert.Equal(t, notify.ChannelHealthStatus{Name: "discord", Enabled: false}, got[1])
}
