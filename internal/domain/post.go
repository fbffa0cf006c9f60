package domain

// Post is a blog entry. Slug is unique across all posts.
type Post struct {
	ID            string   `json:"id,omitempty"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Content       string   `json:"content"` // Markdown
	Excerpt       string   `json:"excerpt"`
	Author        string   `json:"author"`
	Date          string   `json:"date"` // ISO date, e.g. "2024-03-05"
	CoverImage    string   `json:"coverImage,omitempty"`
	Tags          []string `json:"tags"`
	Likes         int      `json:"likes"`
	CreatedAt     string   `json:"createdAt,omitempty"`     // ISO-8601, server-assigned
	UpdatedAt     string   `json:"updatedAt,omitempty"`     // ISO-8601, server-assigned
	FormattedDate string   `json:"formattedDate,omitempty"` // Display only, never persisted
}

// TagCount is one entry of the popular tags ranking.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
