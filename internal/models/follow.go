package models

// Follow is a directed subscription of User to Author.
type Follow struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	User     User `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	Author   User `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}
