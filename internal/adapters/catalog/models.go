package catalog

import "strconv"

// wireArtist represents an artist in the catalog API payload.
type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// wireAlbum represents an album in the catalog API payload.
type wireAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"` // "2006-01-02", "2006-01" or "2006"
}

// wireTrack represents a track in the catalog API payload.
type wireTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Artists    []wireArtist `json:"artists"`
	Album      wireAlbum    `json:"album"`
	DurationMs int          `json:"duration_ms"`
	Popularity int          `json:"popularity"`
	Explicit   bool         `json:"explicit"`
	PreviewURL string       `json:"preview_url"`
}

// searchResponse is the envelope of the catalog search endpoint.
type searchResponse struct {
	Tracks struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
}

func (wt wireTrack) primaryArtist() string {
	if len(wt.Artists) == 0 {
		return ""
	}
	return wt.Artists[0].Name
}

// releaseYear parses the leading year of the album release date; 0 when
// absent or malformed.
func (wt wireTrack) releaseYear() int {
	date := wt.Album.ReleaseDate
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
