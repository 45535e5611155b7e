package models

import "time"

// previewLength is how much of the text String shows.
const previewLength = 15

// Post is a user-authored text entry, optionally grouped and illustrated.
// Default ordering is newest publication date first.
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"column:pub_date;autoCreateTime;index"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	GroupID  *uint     `json:"group_id" gorm:"index"`
	Group    *Group    `json:"-" gorm:"constraint:OnDelete:SET NULL;"`
	Image    string    `json:"image,omitempty"` // storage reference, e.g. posts/cat.gif
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > previewLength {
		return string(r[:previewLength])
	}
	return p.Text
}

// PostView is the representation of a post in listings and detail pages.
type PostView struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	PubDate time.Time   `json:"pub_date"`
	Author  UserCompact `json:"author"`
	Group   *Group      `json:"group,omitempty"`
	Image   string      `json:"image,omitempty"`
}

// ToView converts a Post with preloaded author and group into its view form.
func (p *Post) ToView() PostView {
	return PostView{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
		Author:  p.Author.ToCompact(),
		Group:   p.Group,
		Image:   p.Image,
	}
}

// PostViews converts a slice of posts.
func PostViews(posts []Post) []PostView {
	views := make([]PostView, len(posts))
	for i := range posts {
		views[i] = posts[i].ToView()
	}
	return views
}
