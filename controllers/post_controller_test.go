package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/controllers"
	"github.com/pulsefeed/pulse/models"
)

func TestCreatePostWithHashtags(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, user), map[string]string{
		"content":  "shipping something new",
		"hashtags": "#Go #go #Release",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		PostID uint `json:"post_id"`
	}
	decodeData(t, env, &data)
	require.NotZero(t, data.PostID)

	var names []string
	require.NoError(t, db.Model(&models.PostHashtag{}).
		Where("post_id = ?", data.PostID).
		Order("hashtag_name ASC").
		Pluck("hashtag_name", &names).Error)
	assert.Equal(t, []string{"go", "release"}, names)
}

func TestCreatePostRejectsTooManyHashtags(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, user), map[string]string{
		"content":  "too enthusiastic",
		"hashtags": "#a #b #c #d #e #f",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePostSanitizesContent(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, user), map[string]string{
		"content": `hello <script>alert("x")</script>world`,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		PostID uint `json:"post_id"`
	}
	decodeData(t, env, &data)

	var post models.Post
	require.NoError(t, db.First(&post, data.PostID).Error)
	assert.NotContains(t, post.Content, "<script>")
	assert.Contains(t, post.Content, "hello")
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	db, r := newTestRouter(t)
	author := createUser(t, db, "USER")
	viewer := createUser(t, db, "USER")
	post := createPost(t, db, author.ID, "likeable", time.Now())

	path := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)
	token := tokenFor(t, viewer)

	w, _ := doRequest(t, r, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A second like hits the unique index.
	w, env := doRequest(t, r, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, env.Code)

	w, _ = doRequest(t, r, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Unliking something not liked is a conflict, not a silent no-op.
	w, env = doRequest(t, r, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40902, env.Code)
}

func TestLikeMissingPost(t *testing.T) {
	db, r := newTestRouter(t)
	viewer := createUser(t, db, "USER")

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/posts/4242/like", tokenFor(t, viewer), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportPostIsIdempotent(t *testing.T) {
	db, r := newTestRouter(t)
	author := createUser(t, db, "USER")
	reporter := createUser(t, db, "USER")
	post := createPost(t, db, author.ID, "reportable", time.Now())

	path := fmt.Sprintf("/api/v1/posts/%d/report", post.ID)
	body := map[string]string{"reason": "spam links", "category": "SPAM"}
	token := tokenFor(t, reporter)

	w, _ := doRequest(t, r, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doRequest(t, r, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Report{}).
		Where("user_id = ? AND post_id = ?", reporter.ID, post.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdatePostRederivesHashtags(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")
	post := createPost(t, db, user.ID, "original #old", time.Now())
	tagPost(t, db, post.ID, "old")

	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID),
		tokenFor(t, user), map[string]string{"content": "rewritten #new take"})
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, db.Model(&models.PostHashtag{}).
		Where("post_id = ?", post.ID).
		Pluck("hashtag_name", &names).Error)
	assert.Equal(t, []string{"new"}, names)

	// Hashtag rows themselves survive even when detached.
	var tag models.Hashtag
	assert.NoError(t, db.First(&tag, "name = ?", "old").Error)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	db, r := newTestRouter(t)
	owner := createUser(t, db, "USER")
	intruder := createUser(t, db, "USER")
	post := createPost(t, db, owner.ID, "mine", time.Now())

	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID),
		tokenFor(t, intruder), map[string]string{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/edit", post.ID),
		tokenFor(t, intruder), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePostCascades(t *testing.T) {
	db, r := newTestRouter(t)
	owner := createUser(t, db, "USER")
	other := createUser(t, db, "USER")
	post := createPost(t, db, owner.ID, "doomed #keepme", time.Now())
	tagPost(t, db, post.ID, "keepme")
	likePost(t, db, other.ID, post.ID)

	comment := models.Comment{PostID: post.ID, UserID: other.ID, Content: "nice"}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Create(&models.CommentLike{UserID: owner.ID, CommentID: comment.ID}).Error)
	require.NoError(t, db.Create(&models.Report{UserID: other.ID, PostID: post.ID, Reason: "r", Category: "OTHER"}).Error)

	w, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID),
		tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, m := range []struct {
		model any
		where string
	}{
		{&models.Comment{}, "post_id"},
		{&models.PostLike{}, "post_id"},
		{&models.PostHashtag{}, "post_id"},
		{&models.Report{}, "post_id"},
	} {
		var n int64
		require.NoError(t, db.Model(m.model).Where(m.where+" = ?", post.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
	var n int64
	require.NoError(t, db.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&n).Error)
	assert.Zero(t, n)

	// The hashtag dictionary row is never deleted.
	assert.NoError(t, db.First(&models.Hashtag{}, "name = ?", "keepme").Error)
}

func TestAdminCanDeleteAnyPost(t *testing.T) {
	db, r := newTestRouter(t)
	owner := createUser(t, db, "USER")
	admin := createUser(t, db, "ADMIN")
	post := createPost(t, db, owner.ID, "moderated away", time.Now())

	w, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID),
		tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPostWithComments(t *testing.T) {
	db, r := newTestRouter(t)
	author := createUser(t, db, "USER")
	commenter := createUser(t, db, "USER")
	post := createPost(t, db, author.ID, "discuss", time.Now())

	first := models.Comment{PostID: post.ID, UserID: commenter.ID, Content: "first", CreatedAt: time.Now().Add(-time.Minute)}
	second := models.Comment{PostID: post.ID, UserID: author.ID, Content: "second", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&models.CommentLike{UserID: author.ID, CommentID: first.ID}).Error)

	w, env := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID),
		tokenFor(t, author), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Post     controllers.PostDTO      `json:"post"`
		Comments []controllers.CommentDTO `json:"comments"`
	}
	decodeData(t, env, &data)

	assert.Equal(t, post.ID, data.Post.ID)
	assert.Equal(t, int64(2), data.Post.CommentsCount)
	require.Len(t, data.Comments, 2)
	// Oldest first.
	assert.Equal(t, "first", data.Comments[0].Content)
	// Raw count plus the viewer's own flag, not a viewer-filtered count.
	assert.Equal(t, int64(1), data.Comments[0].LikesCount)
	assert.True(t, data.Comments[0].Liked)
	assert.False(t, data.Comments[1].Liked)
}
