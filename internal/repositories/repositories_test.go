package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenGorm("file::memory:?_foreign_keys=1")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, NewPostgresUserRepository(db).CreateUser(context.Background(), user))
	return user
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, NewPostgresGroupRepository(db).CreateGroup(context.Background(), group))
	return group
}

// createPosts inserts n posts one second apart so the newest is last.
func createPosts(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, n int) []*models.Post {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	posts := make([]*models.Post, n)
	for i := range posts {
		p := &models.Post{
			Text:     fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID: author.ID,
			PubDate:  base.Add(time.Duration(i) * time.Second),
		}
		if group != nil {
			p.GroupID = &group.ID
		}
		require.NoError(t, NewPostgresPostRepository(db).CreatePost(context.Background(), p))
		posts[i] = p
	}
	return posts
}
