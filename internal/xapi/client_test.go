package xapi

import (
	"context"
	"testing"
	"time"
)

func TestExtractUsername(t *testing.T) {
	cases := map[string]string{
		"https://x.com/roninads/status/123456":   "roninads",
		"https://twitter.com/someone/status/987": "someone",
		"https://x.com/handle_only":              "handle_only",
		"https://example.com/not-a-post":         "",
	}
	for url, want := range cases {
		if got := ExtractUsername(url); got != want {
			t.Errorf("ExtractUsername(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestExtractTweetID(t *testing.T) {
	cases := map[string]string{
		"https://x.com/roninads/status/123456":   "123456",
		"https://twitter.com/someone/status/987": "987",
		"https://x.com/handle_only":              "",
	}
	for url, want := range cases {
		if got := ExtractTweetID(url); got != want {
			t.Errorf("ExtractTweetID(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestVerifyActionUnconfigured(t *testing.T) {
	client := NewClient("", "", time.Second)

	_, err := client.VerifyAction(context.Background(), "alice",
		"https://x.com/roninads/status/123", "like")
	if !IsCapabilityError(err) {
		t.Errorf("expected a capability error without a token, got %v", err)
	}
}
