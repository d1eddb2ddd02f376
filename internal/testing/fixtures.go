package testing

import (
	"fmt"

	"github.com/desertthunder/soundslate/internal/models"
)

// SampleProfile is the user served by [SpotifyServer] and [FakeReader].
var SampleProfile = models.Profile{
	ID:          "listener",
	DisplayName: "Test Listener",
	Email:       "listener@example.com",
	Images:      []models.Image{{URL: "https://i.scdn.co/image/avatar", Height: 300, Width: 300}},
}

// SampleTracks returns n tracks named "Track 1".."Track n".
func SampleTracks(n int) []models.Track {
	tracks := make([]models.Track, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, models.Track{
			ID:   fmt.Sprintf("track%d", i),
			Name: fmt.Sprintf("Track %d", i),
			Artists: []models.ArtistRef{
				{ID: fmt.Sprintf("artist%d", i), Name: fmt.Sprintf("Artist %d", i)},
				{ID: "guest", Name: "Guest"},
			},
			Album: models.Album{
				ID:     fmt.Sprintf("album%d", i),
				Name:   fmt.Sprintf("Album %d", i),
				Images: []models.Image{{URL: fmt.Sprintf("https://i.scdn.co/image/album%d", i), Height: 640, Width: 640}},
			},
			DurationMS: 180000 + i*1000,
			Popularity: 50 + i,
			URI:        fmt.Sprintf("spotify:track:track%d", i),
		})
	}
	return tracks
}

// SampleArtists returns n artists named "Artist 1".."Artist n" with three genres each.
func SampleArtists(n int) []models.Artist {
	artists := make([]models.Artist, 0, n)
	for i := 1; i <= n; i++ {
		artists = append(artists, models.Artist{
			ID:         fmt.Sprintf("artist%d", i),
			Name:       fmt.Sprintf("Artist %d", i),
			Images:     []models.Image{{URL: fmt.Sprintf("https://i.scdn.co/image/artist%d", i), Height: 640, Width: 640}},
			Popularity: 100 - i,
			Genres:     []string{"indie", "dream pop", "shoegaze"},
			URI:        fmt.Sprintf("spotify:artist:artist%d", i),
		})
	}
	return artists
}
