package domain

// SocialLinks holds the profile URLs shown in the site footer.
type SocialLinks struct {
	Facebook          string `json:"facebook"`
	FacebookSecondary string `json:"facebookSecondary"`
	Instagram         string `json:"instagram"`
	Threads           string `json:"threads"`
	Bluesky           string `json:"bluesky"`
	Mastodon          string `json:"mastodon"`
}

// FriendLink is an entry of the blogroll.
type FriendLink struct {
	Name        string `json:"name" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description,omitempty"`
}
