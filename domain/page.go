package domain

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPort is the feed server port, used regardless of the page scheme.
const DefaultPort = 1234

var userIDRe = regexp.MustCompile(`userId=([0-9]+)`)

// ParseUserID returns the first userId=<digits> value found in a raw query string.
func ParseUserID(query string) (string, error) {
	m := userIDRe.FindStringSubmatch(query)
	if m == nil {
		return "", ErrMissingUserID
	}
	return m[1], nil
}

// Page is the URL the feed is opened from. Endpoints are derived from its
// scheme and hostname; the page's own port is ignored.
type Page struct {
	Secure   bool
	Hostname string
	UserID   string
}

// ParsePage parses an absolute http(s) page URL and extracts the user id.
// When only the user id is missing, the returned Page still carries the
// scheme and hostname alongside ErrMissingUserID.
func ParsePage(raw string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidPageURL, err)
	}

	var pg Page
	switch strings.ToLower(u.Scheme) {
	case "http":
	case "https":
		pg.Secure = true
	default:
		return Page{}, fmt.Errorf("%w: scheme must be http or https", ErrInvalidPageURL)
	}

	pg.Hostname = u.Hostname()
	if pg.Hostname == "" {
		return Page{}, fmt.Errorf("%w: missing host", ErrInvalidPageURL)
	}

	pg.UserID, err = ParseUserID(u.RawQuery)
	if err != nil {
		return pg, err
	}
	return pg, nil
}

// BaseURL is the HTTP origin of the feed server.
func (p Page) BaseURL(port int) string {
	scheme := "http"
	if p.Secure {
		scheme = "https"
	}
	return scheme + "://" + p.hostPort(port)
}

// StreamBaseURL is the WebSocket origin of the feed server.
func (p Page) StreamBaseURL(port int) string {
	scheme := "ws"
	if p.Secure {
		scheme = "wss"
	}
	return scheme + "://" + p.hostPort(port)
}

// FeedURL is the snapshot endpoint for the page's user.
func (p Page) FeedURL(port int) string {
	return p.BaseURL(port) + FeedPath(p.UserID)
}

// StreamURL is the live stream endpoint for the page's user.
func (p Page) StreamURL(port int) string {
	return p.StreamBaseURL(port) + StreamPath(p.UserID)
}

func (p Page) hostPort(port int) string {
	return net.JoinHostPort(p.Hostname, strconv.Itoa(port))
}

// FeedPath is the snapshot path for a user.
func FeedPath(userID string) string {
	return "/feed/" + userID
}

// StreamPath is the live stream path for a user.
func StreamPath(userID string) string {
	return "/" + userID + "/ws"
}
