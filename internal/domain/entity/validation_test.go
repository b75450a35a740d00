package entity

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://example.com/feed", wantErr: false},
		{name: "valid http URL", url: "http://example.com/feed", wantErr: false},
		{name: "valid URL with port", url: "https://example.com:8080/feed", wantErr: false},
		{name: "valid URL with query", url: "https://example.com/feed?param=value", wantErr: false},
		{name: "empty URL", url: "", wantErr: true},
		{name: "whitespace URL", url: "   ", wantErr: true},
		{name: "invalid scheme - ftp", url: "ftp://example.com/feed", wantErr: true},
		{name: "invalid scheme - file", url: "file:///etc/passwd", wantErr: true},
		{name: "invalid scheme - javascript", url: "javascript:alert(1)", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("ValidateURL(%q) error should wrap ErrValidationFailed, got %v", tt.url, err)
			}
		})
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/news/1", "example.com"},
		{"https://en.yna.co.kr/view/AEN123", "en.yna.co.kr"},
		{"http://example.com:8080/a", "example.com"},
		{"", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := DomainOf(tt.in); got != tt.want {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "title", Message: "title is required"}
	want := "validation error on field 'title': title is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
