// Package models defines the domain types shared by the SoundSlate web server, CLI and terminal UI.
//
// The package contains three categories of types:
//
// 1. Filter values: closed enumerations selected by the user
//   - [Tab] : which list is shown (tracks or artists)
//   - [TimeRange] : the listening window (short_term, medium_term, long_term)
//   - [Layout] : how the list is drawn (card or simple)
//   - [Limits] : the allowed result counts
//
// 2. Records: read-only projections of Spotify Web API responses
//   - [Profile] : the current user
//   - [Track] : a top track with its artists and album
//   - [Artist] : a top artist with popularity and genres
//   - [Token] : the result of an authorization code exchange
//
// 3. Display schema
//   - [Item] : one ranked row, the only shape layouts know how to draw
//
// Records are never mutated after they are fetched; a filter change fetches new ones.
package models
