package model

type ResultItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}
