package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/controllers"
)

type profileResponse struct {
	User struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Posts       int64  `json:"posts"`
		Followers   int64  `json:"followers"`
		Following   int64  `json:"following"`
		IsFollowing bool   `json:"is_following"`
		IsOwner     bool   `json:"is_owner"`
	} `json:"user"`
	Posts      []controllers.PostDTO `json:"posts"`
	NextCursor *uint                 `json:"next_cursor"`
}

func TestGetProfile(t *testing.T) {
	db, r := newTestRouter(t)
	owner := createUser(t, db, "USER")
	fan := createUser(t, db, "USER")

	createPost(t, db, owner.ID, "one", time.Now().Add(-time.Minute))
	createPost(t, db, owner.ID, "two", time.Now())

	w, _ := doRequest(t, r, http.MethodPost,
		"/api/v1/users/"+owner.Username+"/follow", tokenFor(t, fan), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/users/"+owner.Username,
		tokenFor(t, fan), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile profileResponse
	decodeData(t, env, &profile)

	assert.Equal(t, owner.Username, profile.User.Username)
	assert.Equal(t, int64(2), profile.User.Posts)
	assert.Equal(t, int64(1), profile.User.Followers)
	assert.True(t, profile.User.IsFollowing)
	assert.False(t, profile.User.IsOwner)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, "two", profile.Posts[0].Content)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/users/"+owner.Username,
		tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &profile)
	assert.True(t, profile.User.IsOwner)
	assert.False(t, profile.User.IsFollowing)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/users/doesnotexist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowConflicts(t *testing.T) {
	db, r := newTestRouter(t)
	viewer := createUser(t, db, "USER")
	target := createUser(t, db, "USER")
	token := tokenFor(t, viewer)

	// Following yourself is a bad request, not a conflict.
	w, _ := doRequest(t, r, http.MethodPost,
		"/api/v1/users/"+viewer.Username+"/follow", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodPost,
		"/api/v1/users/"+target.Username+"/follow", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, r, http.MethodPost,
		"/api/v1/users/"+target.Username+"/follow", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40910, env.Code)

	w, _ = doRequest(t, r, http.MethodDelete,
		"/api/v1/users/"+target.Username+"/follow", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, r, http.MethodDelete,
		"/api/v1/users/"+target.Username+"/follow", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40911, env.Code)
}

func TestUpdateSettingsValidation(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")
	taken := createUser(t, db, "USER")
	token := tokenFor(t, user)

	valid := map[string]string{
		"username":     "renamed.user",
		"display_name": "Renamed User",
		"bio":          "hello",
	}

	w, _ := doRequest(t, r, http.MethodPut, "/api/v1/settings", token, valid)
	require.Equal(t, http.StatusOK, w.Code)

	bad := []map[string]string{
		{"username": "x", "display_name": "Fine Name"},                   // too short
		{"username": "has space", "display_name": "Fine Name"},           // bad chars
		{"username": "okname", "display_name": " leading"},               // leading space
		{"username": "okname", "display_name": "ab"},                     // too short
		{"username": "okname", "display_name": "double  space inside"},   // double space
	}
	for _, body := range bad {
		w, _ := doRequest(t, r, http.MethodPut, "/api/v1/settings", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %v", body)
	}

	// Colliding with an existing username is a conflict.
	w, env := doRequest(t, r, http.MethodPut, "/api/v1/settings", token, map[string]string{
		"username":     taken.Username,
		"display_name": "Fine Name",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40912, env.Code)
}

func TestGetSettings(t *testing.T) {
	db, r := newTestRouter(t)
	user := createUser(t, db, "USER")

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/settings", tokenFor(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, user.Username, data.Username)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
