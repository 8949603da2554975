// Package xapi is a read-only client for the X.com (Twitter) v2 API, used
// to verify follow/like/retweet task completion. It never mutates anything
// on X.com.
package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.twitter.com/2"

// ErrNotConfigured is returned when no bearer token is set. Callers decide
// whether that fails open or closed; this package only reports it.
var ErrNotConfigured = errors.New("x api bearer token not configured")

// CapabilityError marks transport or upstream failures, as opposed to a
// definite "user did not complete the action" verdict.
type CapabilityError struct {
	Err error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("x api capability error: %v", e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// IsCapabilityError reports whether err is a transport/config failure
// rather than a user verdict.
func IsCapabilityError(err error) bool {
	var ce *CapabilityError
	return errors.Is(err, ErrNotConfigured) || errors.As(err, &ce)
}

// Client calls the X API v2 with a bounded timeout.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
}

// NewClient builds a Client. An empty bearerToken yields ErrNotConfigured
// on every call.
func NewClient(bearerToken, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		bearerToken: bearerToken,
	}
}

var (
	usernameRe = regexp.MustCompile(`(?:twitter\.com|x\.com)/([^/]+)`)
	tweetIDRe  = regexp.MustCompile(`status/(\d+)`)
)

// ExtractUsername pulls the author username out of a post URL like
// https://x.com/username/status/123456.
func ExtractUsername(postURL string) string {
	m := usernameRe.FindStringSubmatch(postURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractTweetID pulls the tweet id out of a post URL.
func ExtractTweetID(postURL string) string {
	m := tweetIDRe.FindStringSubmatch(postURL)
	if m == nil {
		return ""
	}
	return m[1]
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	if c.bearerToken == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return &CapabilityError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CapabilityError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &CapabilityError{Err: fmt.Errorf("x api status %d: %s", resp.StatusCode, string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &CapabilityError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type userObject struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type tweetObject struct {
	ID string `json:"id"`
}

// UserIDFromUsername resolves an @handle to an X user id.
func (c *Client) UserIDFromUsername(ctx context.Context, username string) (string, error) {
	clean := strings.TrimPrefix(username, "@")

	var resp struct {
		Data userObject `json:"data"`
	}
	if err := c.get(ctx, "/users/by/username/"+clean, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &CapabilityError{Err: fmt.Errorf("user not found: %s", username)}
	}
	return resp.Data.ID, nil
}

// CheckFollowing reports whether userID follows targetUserID.
func (c *Client) CheckFollowing(ctx context.Context, userID, targetUserID string) (bool, error) {
	var resp struct {
		Data []userObject `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/users/%s/following?max_results=1000", userID), &resp); err != nil {
		return false, err
	}
	for _, u := range resp.Data {
		if u.ID == targetUserID {
			return true, nil
		}
	}
	return false, nil
}

// CheckLiked reports whether userID has liked tweetID.
func (c *Client) CheckLiked(ctx context.Context, userID, tweetID string) (bool, error) {
	var resp struct {
		Data []tweetObject `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/users/%s/liked_tweets?max_results=100", userID), &resp); err != nil {
		return false, err
	}
	for _, t := range resp.Data {
		if t.ID == tweetID {
			return true, nil
		}
	}
	return false, nil
}

// CheckRetweeted reports whether userID has retweeted tweetID.
func (c *Client) CheckRetweeted(ctx context.Context, userID, tweetID string) (bool, error) {
	var resp struct {
		Data []userObject `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/tweets/%s/retweeted_by?max_results=100", tweetID), &resp); err != nil {
		return false, err
	}
	for _, u := range resp.Data {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// VerifyAction checks one social action of handle against postURL.
// actionType must be follow, like or retweet. A false result with nil error
// is a definite "not completed" verdict.
func (c *Client) VerifyAction(ctx context.Context, handle, postURL, actionType string) (bool, error) {
	userID, err := c.UserIDFromUsername(ctx, handle)
	if err != nil {
		return false, err
	}

	switch actionType {
	case "follow":
		targetUsername := ExtractUsername(postURL)
		if targetUsername == "" {
			return false, &CapabilityError{Err: fmt.Errorf("no username in post url %q", postURL)}
		}
		targetID, err := c.UserIDFromUsername(ctx, targetUsername)
		if err != nil {
			return false, err
		}
		return c.CheckFollowing(ctx, userID, targetID)
	case "like":
		tweetID := ExtractTweetID(postURL)
		if tweetID == "" {
			return false, &CapabilityError{Err: fmt.Errorf("no tweet id in post url %q", postURL)}
		}
		return c.CheckLiked(ctx, userID, tweetID)
	case "retweet":
		tweetID := ExtractTweetID(postURL)
		if tweetID == "" {
			return false, &CapabilityError{Err: fmt.Errorf("no tweet id in post url %q", postURL)}
		}
		return c.CheckRetweeted(ctx, userID, tweetID)
	}
	return false, fmt.Errorf("unknown action type %q", actionType)
}
