package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

var (
	usernameRe    = regexp.MustCompile(`^[a-zA-Z0-9._]{3,32}$`)
	displayNameRe = regexp.MustCompile(`^\S+(?: \S+)*$`)
)

// UserController serves profiles, the follow graph, and account settings.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new UserController instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// GetProfile returns a user's public profile with post/follower counts plus
// their cursor-paginated posts.
func (u *UserController) GetProfile(ctx *gin.Context) {
	username := ctx.Param("username")
	limit := parseLimit(ctx.Query("limit"))
	viewerID, viewerPresent := getUserID(ctx)

	var user models.User
	if err := u.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load user")
		return
	}

	q := u.db.Preload("User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if raw := ctx.Query("cursor"); raw != "" {
		cursorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40040, utils.MsgBadRequest)
			return
		}
		var pivot models.Post
		if err := u.db.First(&pivot, uint(cursorID)).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40041, utils.MsgBadRequest)
			return
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id <= ?)",
			pivot.CreatedAt, pivot.CreatedAt, pivot.ID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list user posts")
		return
	}
	posts, nextCursor := utils.TrimPage(posts, limit, func(p models.Post) uint { return p.ID })

	var postCount, followerCount, followingCount int64
	if err := u.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to count posts")
		return
	}
	if err := u.db.Model(&models.Follow{}).Where("following_id = ?", user.ID).Count(&followerCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to count followers")
		return
	}
	if err := u.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to count following")
		return
	}

	isFollowing := false
	if viewerPresent {
		var n int64
		if err := u.db.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewerID, user.ID).
			Count(&n).Error; err == nil {
			isFollowing = n > 0
		}
	}

	dtos, err := assemblePosts(u.db, posts, viewerID, viewerPresent)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to assemble posts")
		return
	}

	utils.Success(ctx, gin.H{
		"user": gin.H{
			"username":     user.Username,
			"display_name": user.DisplayName,
			"bio":          user.Bio,
			"image_url":    user.Avatar(),
			"joined_at":    user.CreatedAt.Format(joinedAtLayout),
			"posts":        postCount,
			"followers":    followerCount,
			"following":    followingCount,
			"is_following": isFollowing,
			"is_owner":     viewerPresent && viewerID == user.ID,
		},
		"posts":       dtos,
		"next_cursor": nextCursor,
	})
}

// Follow creates a follow edge toward the named user. Self-follows are
// rejected; the unique pair index turns duplicate follows into conflicts.
func (u *UserController) Follow(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, utils.MsgUnauthorized)
		return
	}

	var target models.User
	if err := u.db.Where("username = ?", ctx.Param("username")).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load user")
		return
	}

	if target.ID == viewerID {
		utils.Error(ctx, http.StatusBadRequest, 40042, utils.MsgBadRequest)
		return
	}

	follow := models.Follow{FollowerID: viewerID, FollowingID: target.ID}
	if err := u.db.Create(&follow).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			utils.Error(ctx, http.StatusConflict, 40910, utils.MsgConflict)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to follow user")
		return
	}

	utils.Success(ctx, gin.H{"message": "followed"})
}

// Unfollow removes the follow edge; unfollowing someone not followed is a
// conflict.
func (u *UserController) Unfollow(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40131, utils.MsgUnauthorized)
		return
	}

	var target models.User
	if err := u.db.Where("username = ?", ctx.Param("username")).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40422, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load user")
		return
	}

	res := u.db.Where("follower_id = ? AND following_id = ?", viewerID, target.ID).Delete(&models.Follow{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to unfollow user")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40911, utils.MsgConflict)
		return
	}

	utils.Success(ctx, gin.H{"message": "unfollowed"})
}

// GetSettings returns the viewer's editable profile fields.
func (u *UserController) GetSettings(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40132, utils.MsgUnauthorized)
		return
	}

	var user models.User
	if err := u.db.First(&user, viewerID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"username":     user.Username,
		"display_name": user.DisplayName,
		"bio":          user.Bio,
	})
}

// UpdateSettings validates and stores username, display name, and bio.
func (u *UserController) UpdateSettings(ctx *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"display_name" binding:"required"`
		Bio         string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, utils.MsgBadRequest)
		return
	}

	if !usernameRe.MatchString(req.Username) ||
		len(req.DisplayName) < 3 || len(req.DisplayName) > 32 ||
		!displayNameRe.MatchString(req.DisplayName) ||
		len(req.Bio) > 320 {
		utils.Error(ctx, http.StatusBadRequest, 40044, utils.MsgBadRequest)
		return
	}

	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40133, utils.MsgUnauthorized)
		return
	}

	updates := map[string]interface{}{
		"username":     req.Username,
		"display_name": req.DisplayName,
		"bio":          req.Bio,
	}
	if err := u.db.Model(&models.User{}).Where("id = ?", viewerID).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			utils.Error(ctx, http.StatusConflict, 40912, utils.MsgConflict)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to update settings")
		return
	}

	utils.Success(ctx, gin.H{"message": "settings updated"})
}

// UpdateAvatar persists the avatar reference URL returned by the image host.
func (u *UserController) UpdateAvatar(ctx *gin.Context) {
	var req struct {
		AvatarURL string `json:"avatar_url" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, utils.MsgBadRequest)
		return
	}

	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40134, utils.MsgUnauthorized)
		return
	}

	if err := u.db.Model(&models.User{}).Where("id = ?", viewerID).
		Update("avatar_url", req.AvatarURL).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to update avatar")
		return
	}

	utils.Success(ctx, gin.H{"message": "avatar updated"})
}
