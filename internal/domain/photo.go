package domain

// NoAlbum is the album name photos fall back to when their album is deleted.
const NoAlbum = "Sin álbum"

// Photo is a gallery image hosted by an external image service.
type Photo struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date,omitempty"`
	URL           string `json:"url"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	Album         string `json:"album,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	FormattedDate string `json:"formattedDate,omitempty"`
}

// AlbumName returns the photo's album, or NoAlbum when it has none.
func (p *Photo) AlbumName() string {
	if p.Album == "" {
		return NoAlbum
	}
	return p.Album
}
