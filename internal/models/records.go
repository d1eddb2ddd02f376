package models

import (
	"fmt"
	"strings"
)

// Image is an artwork reference. Spotify orders images widest first.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Profile is the current user as returned by GET /me.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email,omitempty"`
	Images      []Image `json:"images,omitempty"`
}

// Name returns the display name, falling back to the email and then the id.
func (p Profile) Name() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return p.ID
	}
}

// ArtistRef is the short artist form embedded in a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album is the album a track belongs to.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images,omitempty"`
}

// Track is one entry of GET /me/top/tracks.
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      Album       `json:"album"`
	DurationMS int         `json:"duration_ms"`
	Popularity int         `json:"popularity"`
	URI        string      `json:"uri,omitempty"`
}

// ArtistNames joins the track's artists with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Artist is one entry of GET /me/top/artists.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Images     []Image  `json:"images,omitempty"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	URI        string   `json:"uri,omitempty"`
}

// Token is the body returned by the exchange endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Item is a single ranked row. Every layout renders lists of items, so tracks
// and artists are projected into it before display.
type Item struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Detail   string `json:"detail,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	// Round marks artist portraits, drawn as circles by the card layout.
	Round bool `json:"round,omitempty"`
}

// TrackItems projects tracks into ranked items: artists as the subtitle and
// the album name as the detail.
func TrackItems(tracks []Track) []Item {
	items := make([]Item, 0, len(tracks))
	for i, t := range tracks {
		items = append(items, Item{
			Rank:     i + 1,
			ID:       t.ID,
			Title:    t.Name,
			Subtitle: t.ArtistNames(),
			Detail:   t.Album.Name,
			ImageURL: firstImage(t.Album.Images),
		})
	}
	return items
}

// ArtistItems projects artists into ranked items: popularity as the subtitle
// and at most two genres as the detail.
func ArtistItems(artists []Artist) []Item {
	items := make([]Item, 0, len(artists))
	for i, a := range artists {
		genres := a.Genres
		if len(genres) > 2 {
			genres = genres[:2]
		}
		items = append(items, Item{
			Rank:     i + 1,
			ID:       a.ID,
			Title:    a.Name,
			Subtitle: fmt.Sprintf("Popularity: %d%%", a.Popularity),
			Detail:   strings.Join(genres, ", "),
			ImageURL: firstImage(a.Images),
			Round:    true,
		})
	}
	return items
}

func firstImage(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
