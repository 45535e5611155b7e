package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. The zero value lists every post.
type PostFilter struct {
	GroupID    *uint // posts in this group
	AuthorID   *uint // posts written by this user
	FollowerID *uint // posts by authors this user follows
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, filter PostFilter, page pagination.Request) (*pagination.Page[models.Post], error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
}

// PostgresPostRepository implements PostRepository on top of gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost stores a new post. Text and author are required; group and
// image are optional. The publication date is set by the store.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if strings.TrimSpace(post.Text) == "" || post.AuthorID == 0 {
		return models.ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// GetPostByID retrieves a post with its author and group
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// UpdatePost writes the editable fields of a post. Author and publication
// date are never touched.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return models.ErrInvalidInput
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"text":     post.Text,
		"group_id": post.GroupID,
		"image":    post.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeletePost removes a post and its comments
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// ListPosts returns one page of posts matching filter, newest first.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter, page pagination.Request) (*pagination.Page[models.Post], error) {
	total, err := r.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	number, offset := page.Resolve(total)

	var posts []models.Post
	err = r.db.WithContext(ctx).
		Scopes(filter.scope).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC, id DESC").
		Offset(offset).
		Limit(page.PerPage()).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return pagination.New(posts, number, page.PerPage(), total), nil
}

// CountPosts counts posts matching filter
func (r *PostgresPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter.scope).Count(&total).Error
	return total, err
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.GroupID != nil {
		db = db.Where("group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		db = db.Where("author_id = ?", *f.AuthorID)
	}
	if f.FollowerID != nil {
		db = db.Where("author_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&models.Follow{}).Select("author_id").Where("user_id = ?", *f.FollowerID),
		)
	}
	return db
}
