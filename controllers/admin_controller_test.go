package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/models"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/admin/users", tokenFor(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40301, env.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListUsersSortedByFollowers(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	createUser(t, db, "USER") // no followers
	star := createUser(t, db, "USER")

	for i := 0; i < 3; i++ {
		fan := createUser(t, db, "USER")
		require.NoError(t, db.Create(&models.Follow{FollowerID: fan.ID, FollowingID: star.ID}).Error)
	}

	w, env := doRequest(t, r, http.MethodGet,
		"/api/v1/admin/users?sort_field=followers&sort_dir=desc", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Pages int64 `json:"pages"`
		Users []struct {
			Username  string `json:"username"`
			Followers int64  `json:"followers"`
		} `json:"users"`
	}
	decodeData(t, env, &data)

	require.NotEmpty(t, data.Users)
	assert.Equal(t, star.Username, data.Users[0].Username)
	assert.Equal(t, int64(3), data.Users[0].Followers)
	assert.Equal(t, int64(1), data.Pages)

	// Unknown sort fields are rejected, not silently defaulted.
	w, _ = doRequest(t, r, http.MethodGet,
		"/api/v1/admin/users?sort_field=password_hash", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodGet,
		"/api/v1/admin/users?sort_dir=sideways", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminBanAndUnban(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	target := createUser(t, db, "USER")
	token := tokenFor(t, admin)

	until := time.Now().Add(48 * time.Hour).UTC()
	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/ban", target.ID),
		token, map[string]any{"until": until})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, target.ID).Error)
	require.NotNil(t, got.BannedUntil)
	assert.True(t, got.IsBanned())

	// null lifts the ban.
	w, _ = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/ban", target.ID),
		token, map[string]any{"until": nil})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&got, target.ID).Error)
	assert.Nil(t, got.BannedUntil)
}

func TestAdminUpdateRole(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	target := createUser(t, db, "USER")
	token := tokenFor(t, admin)

	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/role", target.ID),
		token, map[string]string{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, target.ID).Error)
	assert.Equal(t, models.RoleAdmin, got.Role)

	w, _ = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/role", target.ID),
		token, map[string]string{"role": "OVERLORD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminReportQueue(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	author := createUser(t, db, "USER")
	reporter := createUser(t, db, "USER")
	token := tokenFor(t, admin)

	post := createPost(t, db, author.ID, "borderline", time.Now())
	report := models.Report{UserID: reporter.ID, PostID: post.ID, Reason: "looks like spam", Category: "SPAM"}
	require.NoError(t, db.Create(&report).Error)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/admin/reports", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Pages   int64 `json:"pages"`
		Reports []struct {
			ID     uint `json:"id"`
			PostID uint `json:"post_id"`
		} `json:"reports"`
	}
	decodeData(t, env, &list)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, post.ID, list.Reports[0].PostID)

	w, env = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/admin/reports/%d", report.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Post struct {
			Content string `json:"content"`
		} `json:"post"`
	}
	decodeData(t, env, &detail)
	assert.Equal(t, "borderline", detail.Post.Content)

	// Reviewing with remove_post takes the post down with the report.
	w, _ = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/reports/%d/review", report.ID), token,
		map[string]bool{"remove_post": true})
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.Report{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAdminResetUserData(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	target := createUser(t, db, "USER")

	require.NoError(t, db.Model(&target).Updates(map[string]interface{}{
		"bio":        "about me",
		"avatar_url": "/static/uploads/x.png",
	}).Error)
	createPost(t, db, target.ID, "gone soon", time.Now())

	w, _ := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/users/%d/reset", target.ID), tokenFor(t, admin),
		map[string]bool{"username": true, "bio": true, "avatar": true, "posts": true})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, target.ID).Error)
	assert.Equal(t, fmt.Sprintf("user%d", target.ID), got.Username)
	assert.Empty(t, got.Bio)
	assert.Empty(t, got.AvatarURL)
	assert.NotEmpty(t, got.DisplayName)

	var n int64
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", target.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAdminRemoveUser(t *testing.T) {
	db, r := newTestRouter(t)
	admin := createUser(t, db, "ADMIN")
	target := createUser(t, db, "USER")

	w, _ := doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/v1/admin/users/%d", target.ID), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/v1/admin/users/%d", target.ID), tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
