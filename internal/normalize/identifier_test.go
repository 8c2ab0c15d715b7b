package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractInvitationCode_UUID(t *testing.T) {
	code := ExtractInvitationCode("https://app.example.com/invite?c=6ba7b810-9dad-41d1-80b4-00c04fd430c8")
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", code)
}

func TestExtractInvitationCode_ReportPath(t *testing.T) {
	code := ExtractInvitationCode("https://app.example.com/report/abc123XYZ")
	assert.Equal(t, "abc123XYZ", code)
}

func TestExtractInvitationCode_UUIDTakesPrecedence(t *testing.T) {
	// Both formats in one unusual URL: UUID wins.
	link := "https://app.example.com/report/abc123?uuid=6ba7b810-9dad-41d1-80b4-00c04fd430c8"
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", ExtractInvitationCode(link))
}

func TestExtractInvitationCode_NoMatch(t *testing.T) {
	assert.Empty(t, ExtractInvitationCode("https://app.example.com/dashboard"))
	assert.Empty(t, ExtractInvitationCode(""))
}

func TestExtractSpotifyID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"artist path", "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb", "4Z8W4fKeB5YxbusRsdQVPb"},
		{"track path", "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl", "11dFghVXANMlKmJXsNCbNl"},
		{"album path", "https://open.spotify.com/album/6akEvsycLGftJxYudPjmqK", "6akEvsycLGftJxYudPjmqK"},
		{"uri form", "spotify:artist:4Z8W4fKeB5YxbusRsdQVPb", "4Z8W4fKeB5YxbusRsdQVPb"},
		{"encoded share link", "https://l.instagram.com/?u=https%3A%2F%2Fopen.spotify.com%2Fartist%2F4Z8W4fKeB5YxbusRsdQVPb", "4Z8W4fKeB5YxbusRsdQVPb"},
		{"artist with query", "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb?si=xyz", "4Z8W4fKeB5YxbusRsdQVPb"},
		{"no match", "https://example.com/music", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSpotifyID(tt.url))
		})
	}
}

func TestExtractSpotifyID_ArtistBeforeTrack(t *testing.T) {
	// Path patterns are ordered: artist wins over track when both appear.
	url := "https://open.spotify.com/artist/aaaBBB111/track/cccDDD222"
	assert.Equal(t, "aaaBBB111", ExtractSpotifyID(url))
}
