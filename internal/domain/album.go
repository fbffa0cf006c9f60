package domain

// Album groups photos by name. Name is the identity on the read path;
// Count is derived from the photos and never stored.
type Album struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"coverImage,omitempty"`
	Count       int    `json:"count"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`

	// OldName is set on save when the album is being renamed.
	OldName string `json:"oldName,omitempty"`
}

// IsRename reports whether saving the album renames an existing one.
func (a *Album) IsRename() bool {
	return a.OldName != "" && a.OldName != a.Name
}
