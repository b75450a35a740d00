package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("NEWS_OUTPUT_DIR", "/tmp/out")
	assert.Equal(t, "/tmp/out", GetEnvString("NEWS_OUTPUT_DIR", "./output"))

	t.Setenv("NEWS_OUTPUT_DIR", "  ")
	assert.Equal(t, "./output", GetEnvString("NEWS_OUTPUT_DIR", "./output"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{value: "", want: 10},
		{value: "25", want: 25},
		{value: " 7 ", want: 7},
		{value: "-1", want: -1},
		{value: "ten", want: 10},
		{value: "3.5", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("NEWS_MAX_ITEMS", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("NEWS_MAX_ITEMS", 10))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{value: "", def: true, want: true},
		{value: "false", def: true, want: false},
		{value: "FALSE", def: true, want: false},
		{value: "0", def: true, want: false},
		{value: "No", def: true, want: false},
		{value: "off", def: true, want: false},
		{value: "yes", def: false, want: true},
		{value: "True", def: false, want: true},
		{value: " 1 ", def: false, want: true},
		{value: "maybe", def: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("NEWS_SAFETY_ENABLED", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("NEWS_SAFETY_ENABLED", tt.def))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("RUN_TIMEOUT", "45m")
	assert.Equal(t, 45*time.Minute, GetEnvDuration("RUN_TIMEOUT", 30*time.Minute))

	t.Setenv("RUN_TIMEOUT", "soon")
	assert.Equal(t, 30*time.Minute, GetEnvDuration("RUN_TIMEOUT", 30*time.Minute))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("NEWS_RSS_FEEDS", " https://a.example/rss , ,https://b.example/rss")
	assert.Equal(t,
		[]string{"https://a.example/rss", "https://b.example/rss"},
		GetEnvStringList("NEWS_RSS_FEEDS", nil))

	t.Setenv("NEWS_RSS_FEEDS", " , ")
	assert.Nil(t, GetEnvStringList("NEWS_RSS_FEEDS", nil))
}
