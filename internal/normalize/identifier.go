package normalize

import "regexp"

var (
	// UUID form takes precedence: both formats can co-occur in an unusual URL.
	uuidPattern       = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	reportPathPattern = regexp.MustCompile(`/report/([A-Za-z0-9_-]+)`)
)

// ExtractInvitationCode pulls an invitation code out of a report link.
// Tries a UUID-shaped substring first, then a /report/<code> path segment.
// Returns "" when neither matches.
func ExtractInvitationCode(link string) string {
	if link == "" {
		return ""
	}
	if m := uuidPattern.FindString(link); m != "" {
		return m
	}
	if m := reportPathPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

// spotifyPatterns are tried in order; first match wins. Path forms first,
// then the URI form and the URL-encoded share-link form.
var spotifyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/artist/([A-Za-z0-9]+)`),
	regexp.MustCompile(`/track/([A-Za-z0-9]+)`),
	regexp.MustCompile(`/album/([A-Za-z0-9]+)`),
	regexp.MustCompile(`spotify:artist:([A-Za-z0-9]+)`),
	regexp.MustCompile(`open\.spotify\.com%2Fartist%2F([A-Za-z0-9]+)`),
}

// ExtractSpotifyID pulls a Spotify ID out of a free-form URL or URI.
// Returns "" when no pattern matches.
func ExtractSpotifyID(url string) string {
	if url == "" {
		return ""
	}
	for _, p := range spotifyPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
