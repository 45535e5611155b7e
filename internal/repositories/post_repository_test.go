package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "leo")
	group := createGroup(t, db, "cats")

	before, err := repo.CountPosts(ctx, PostFilter{})
	require.NoError(t, err)

	post := &models.Post{Text: "A fresh post", AuthorID: author.ID, GroupID: &group.ID, Image: "posts/cat.gif"}
	require.NoError(t, repo.CreatePost(ctx, post))

	after, err := repo.CountPosts(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A fresh post", got.Text)
	assert.Equal(t, "leo", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "cats", got.Group.Slug)
	assert.Equal(t, "posts/cat.gif", got.Image)
	assert.False(t, got.PubDate.IsZero())
}

func TestCreatePost_Invalid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)
	author := createUser(t, db, "leo")

	assert.ErrorIs(t, repo.CreatePost(context.Background(), &models.Post{Text: "  ", AuthorID: author.ID}), models.ErrInvalidInput)
	assert.ErrorIs(t, repo.CreatePost(context.Background(), &models.Post{Text: "no author"}), models.ErrInvalidInput)
}

func TestGetPostByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewPostgresPostRepository(db).GetPostByID(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePost_KeepsAuthorAndDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "leo")
	group := createGroup(t, db, "cats")
	post := createPosts(t, db, author, group, 1)[0]
	original, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)

	edited := *original
	edited.Text = "edited"
	edited.GroupID = nil
	edited.AuthorID = 999
	require.NoError(t, repo.UpdatePost(ctx, &edited))

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.True(t, original.PubDate.Equal(got.PubDate))

	assert.ErrorIs(t, repo.UpdatePost(ctx, &models.Post{ID: 12345, Text: "x"}), models.ErrNotFound)
}

func TestDeletePost_RemovesComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresPostRepository(db)
	comments := NewPostgresCommentRepository(db)
	author := createUser(t, db, "leo")
	post := createPosts(t, db, author, nil, 1)[0]
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "hi"}))

	require.NoError(t, repo.DeletePost(ctx, post.ID))

	count, err := comments.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.ErrorIs(t, repo.DeletePost(ctx, post.ID), models.ErrNotFound)
}

func TestListPosts_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresPostRepository(db)
	author := createUser(t, db, "leo")
	posts := createPosts(t, db, author, nil, 13)

	tests := []struct {
		raw        string
		wantNumber int
		wantLen    int
	}{
		{"", 1, 10},
		{"1", 1, 10},
		{"2", 2, 3},
		{"abc", 1, 10},
		{"0", 1, 10},
		{"-4", 1, 10},
		{"99", 2, 3},
	}
	for _, tt := range tests {
		t.Run("page="+tt.raw, func(t *testing.T) {
			page, err := repo.ListPosts(context.Background(), PostFilter{}, pagination.NewRequest(tt.raw, 10))
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, int64(13), page.Total)
			assert.Equal(t, 2, page.NumPages)
		})
	}

	page, err := repo.ListPosts(context.Background(), PostFilter{}, pagination.NewRequest("1", 10))
	require.NoError(t, err)
	assert.Equal(t, posts[12].ID, page.Items[0].ID, "newest first")
	assert.Equal(t, "leo", page.Items[0].Author.Username)
}

func TestListPosts_Empty(t *testing.T) {
	db := setupTestDB(t)
	page, err := NewPostgresPostRepository(db).ListPosts(context.Background(), PostFilter{}, pagination.NewRequest("3", 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
}

func TestListPosts_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresPostRepository(db)
	follows := NewPostgresFollowRepository(db)
	leo := createUser(t, db, "leo")
	mia := createUser(t, db, "mia")
	reader := createUser(t, db, "reader")
	cats := createGroup(t, db, "cats")
	createPosts(t, db, leo, cats, 2)
	createPosts(t, db, mia, nil, 3)
	require.NoError(t, follows.CreateFollow(ctx, &models.Follow{UserID: reader.ID, AuthorID: mia.ID}))

	count := func(f PostFilter) int64 {
		page, err := repo.ListPosts(ctx, f, pagination.NewRequest("", 10))
		require.NoError(t, err)
		return page.Total
	}
	assert.Equal(t, int64(5), count(PostFilter{}))
	assert.Equal(t, int64(2), count(PostFilter{GroupID: &cats.ID}))
	assert.Equal(t, int64(3), count(PostFilter{AuthorID: &mia.ID}))
	assert.Equal(t, int64(3), count(PostFilter{FollowerID: &reader.ID}))
	assert.Equal(t, int64(0), count(PostFilter{FollowerID: &leo.ID}))
}
