package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"card-news/internal/pkg/config"
)

func TestLoadString(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		want         string
		wantFallback bool
	}{
		{name: "unset uses default", env: "", want: "0 9,18 * * *"},
		{name: "valid value", env: "*/15 * * * *", want: "*/15 * * * *"},
		{name: "surrounding space trimmed", env: "  0 6 * * *  ", want: "0 6 * * *"},
		{name: "invalid falls back", env: "every day", want: "0 9,18 * * *", wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CRON", tt.env)

			r := config.LoadString("TEST_CRON", "0 9,18 * * *", config.ValidateCronSchedule)

			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.wantFallback, r.FallbackApplied)
			if tt.wantFallback {
				assert.Contains(t, r.Warning, `invalid TEST_CRON="every day"`)
			} else {
				assert.Empty(t, r.Warning)
			}
		})
	}
}

func TestLoadInt(t *testing.T) {
	tests := []struct {
		env          string
		want         int
		wantFallback bool
	}{
		{env: "", want: 10},
		{env: "25", want: 25},
		{env: "abc", want: 10, wantFallback: true},
		{env: "0", want: 10, wantFallback: true},
		{env: "101", want: 10, wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.env)

			r := config.LoadInt("TEST_INT", 10, config.IntRange(1, 100))

			if r.Value != tt.want || r.FallbackApplied != tt.wantFallback {
				t.Errorf("LoadInt(%q) = (%d, %v), want (%d, %v)", tt.env, r.Value, r.FallbackApplied, tt.want, tt.wantFallback)
			}
		})
	}
}

func TestLoadDuration(t *testing.T) {
	validate := config.DurationRange(time.Minute, 4*time.Hour)

	t.Setenv("TEST_TIMEOUT", "45m")
	assert.Equal(t, 45*time.Minute, config.LoadDuration("TEST_TIMEOUT", 30*time.Minute, validate).Value)

	t.Setenv("TEST_TIMEOUT", "10s")
	r := config.LoadDuration("TEST_TIMEOUT", 30*time.Minute, validate)
	assert.True(t, r.FallbackApplied)
	assert.Equal(t, 30*time.Minute, r.Value)

	t.Setenv("TEST_TIMEOUT", "soon")
	r = config.LoadDuration("TEST_TIMEOUT", 30*time.Minute, validate)
	assert.True(t, r.FallbackApplied)
	assert.Contains(t, r.Warning, "parse")
}

func TestLoadBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "On"} {
		t.Setenv("TEST_BOOL", v)
		assert.True(t, config.LoadBool("TEST_BOOL", false).Value, v)
	}
	for _, v := range []string{"false", "0", "No", "off"} {
		t.Setenv("TEST_BOOL", v)
		assert.False(t, config.LoadBool("TEST_BOOL", true).Value, v)
	}

	t.Setenv("TEST_BOOL", "maybe")
	r := config.LoadBool("TEST_BOOL", true)
	assert.True(t, r.Value)
	assert.True(t, r.FallbackApplied)
}
