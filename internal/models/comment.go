package models

import "time"

// Comment is a reply to a Post.
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	PostID   uint      `json:"post_id" gorm:"not null;index"`
	Post     Post      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Created  time.Time `json:"created" gorm:"autoCreateTime"`
}

// CommentView is a comment with its author block.
type CommentView struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	Created time.Time   `json:"created"`
	Author  UserCompact `json:"author"`
}

// CommentViews converts comments with preloaded authors.
func CommentViews(comments []Comment) []CommentView {
	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = CommentView{ID: c.ID, Text: c.Text, Created: c.Created, Author: c.Author.ToCompact()}
	}
	return views
}
