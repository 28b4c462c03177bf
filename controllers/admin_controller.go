package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// userSortFields maps the admin user-table sort field to its ORDER BY column.
// Sorting is an explicit (field, direction) pair; unknown fields are rejected
// instead of being parsed out of an encoded string key.
var userSortFields = map[string]string{
	"username":     "username",
	"display_name": "display_name",
	"role":         "role",
	"joined_at":    "created_at",
	"banned_until": "banned_until",
	"followers":    "followers_count",
}

// AdminController serves the moderation panel: report queue and user
// management. Every route requires the ADMIN role.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

func sortDirection(raw string) (string, bool) {
	switch raw {
	case "", "asc":
		return "ASC", true
	case "desc":
		return "DESC", true
	}
	return "", false
}

// ListReports returns the report queue, one-based pages, ordered by filing
// time.
func (a *AdminController) ListReports(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"))
	page := parsePage(ctx.Query("page"))
	if page < 1 {
		page = 1
	}
	dir, ok := sortDirection(ctx.Query("sort_dir"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40060, utils.MsgBadRequest)
		return
	}

	var total int64
	if err := a.db.Model(&models.Report{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to count reports")
		return
	}

	var reports []models.Report
	if err := a.db.Order("created_at " + dir).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list reports")
		return
	}

	items := make([]gin.H, 0, len(reports))
	for _, r := range reports {
		items = append(items, gin.H{
			"id":         r.ID,
			"post_id":    r.PostID,
			"created_at": r.CreatedAt.Format(timestampLayout),
			"reason":     r.Reason,
			"category":   r.Category,
		})
	}

	utils.Success(ctx, gin.H{
		"pages":   (total + int64(limit) - 1) / int64(limit),
		"reports": items,
	})
}

// GetReport returns a report together with the reported post content.
func (a *AdminController) GetReport(ctx *gin.Context) {
	var report models.Report
	if err := a.db.Preload("Post").First(&report, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load report")
		return
	}

	utils.Success(ctx, gin.H{
		"report": gin.H{"id": report.ID, "reason": report.Reason, "category": report.Category},
		"post":   gin.H{"id": report.Post.ID, "content": report.Post.Content},
	})
}

// ReviewReport closes a report. The report row is always removed; when
// remove_post is set the reported post goes with it.
func (a *AdminController) ReviewReport(ctx *gin.Context) {
	var req struct {
		RemovePost bool `json:"remove_post"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, utils.MsgBadRequest)
		return
	}

	var report models.Report
	if err := a.db.First(&report, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load report")
		return
	}

	if err := a.db.Delete(&report).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to close report")
		return
	}
	if req.RemovePost {
		pc := PostController{db: a.db}
		if err := pc.deletePostCascade(report.PostID); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to remove post")
			return
		}
	}

	utils.Success(ctx, gin.H{"message": "report reviewed"})
}

// ListUsers returns the admin user table, one-based pages, sorted by an
// explicit (field, direction) pair. "followers" sorts on the aggregated
// follower count.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"))
	page := parsePage(ctx.Query("page"))
	if page < 1 {
		page = 1
	}

	field := ctx.DefaultQuery("sort_field", "username")
	column, ok := userSortFields[field]
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40062, utils.MsgBadRequest)
		return
	}
	dir, ok := sortDirection(ctx.Query("sort_dir"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40063, utils.MsgBadRequest)
		return
	}

	var total int64
	if err := a.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to count users")
		return
	}

	type adminUserRow struct {
		models.User
		FollowersCount int64
	}

	var rows []adminUserRow
	if err := a.db.Model(&models.User{}).
		Select("users.*, COUNT(follows.id) AS followers_count").
		Joins("LEFT JOIN follows ON follows.following_id = users.id").
		Group("users.id").
		Order(column + " " + dir).
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		bannedUntil := ""
		if r.BannedUntil != nil {
			bannedUntil = r.BannedUntil.Format(timestampLayout)
		}
		items = append(items, gin.H{
			"id":           r.ID,
			"username":     r.Username,
			"display_name": r.DisplayName,
			"role":         r.Role,
			"followers":    r.FollowersCount,
			"joined_at":    r.CreatedAt.Format(timestampLayout),
			"banned_until": bannedUntil,
			"email":        r.Email,
		})
	}

	utils.Success(ctx, gin.H{
		"pages": (total + int64(limit) - 1) / int64(limit),
		"users": items,
	})
}

// GetUserData returns the moderation-relevant state of one user.
func (a *AdminController) GetUserData(ctx *gin.Context) {
	var user models.User
	if err := a.db.First(&user, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40432, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to load user")
		return
	}

	var banTime *time.Time
	if user.IsBanned() {
		banTime = user.BannedUntil
	}
	utils.Success(ctx, gin.H{"role": user.Role, "banned_until": banTime})
}

// RemoveUser deletes an account.
func (a *AdminController) RemoveUser(ctx *gin.Context) {
	res := a.db.Delete(&models.User{}, ctx.Param("id"))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50078, "failed to remove user")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40433, utils.MsgNotFound)
		return
	}
	utils.Success(ctx, gin.H{"message": "user removed"})
}

// UpdateBanTime sets or clears the lockout deadline for a user.
func (a *AdminController) UpdateBanTime(ctx *gin.Context) {
	var req struct {
		Until *time.Time `json:"until"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, utils.MsgBadRequest)
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", ctx.Param("id")).
		Update("banned_until", req.Until).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50079, "failed to update ban time")
		return
	}
	utils.Success(ctx, gin.H{"message": "ban time updated"})
}

// UpdateRole changes a user's role.
func (a *AdminController) UpdateRole(ctx *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, utils.MsgBadRequest)
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		utils.Error(ctx, http.StatusBadRequest, 40066, utils.MsgBadRequest)
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", ctx.Param("id")).
		Update("role", req.Role).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to update role")
		return
	}
	utils.Success(ctx, gin.H{"message": "role updated"})
}

// ResetUserData clears selected profile fields and optionally removes every
// post of the user.
func (a *AdminController) ResetUserData(ctx *gin.Context) {
	var req struct {
		Username    bool `json:"username"`
		DisplayName bool `json:"display_name"`
		Bio         bool `json:"bio"`
		Avatar      bool `json:"avatar"`
		Posts       bool `json:"posts"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40067, utils.MsgBadRequest)
		return
	}

	var user models.User
	if err := a.db.First(&user, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40434, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to load user")
		return
	}

	updates := map[string]interface{}{}
	if req.Username {
		// Usernames must stay unique, so reset to a placeholder derived from
		// the immutable id.
		updates["username"] = fmt.Sprintf("user%d", user.ID)
	}
	if req.DisplayName {
		updates["display_name"] = ""
	}
	if req.Bio {
		updates["bio"] = ""
	}
	if req.Avatar {
		updates["avatar_url"] = ""
	}
	if len(updates) > 0 {
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to reset user data")
			return
		}
	}

	if req.Posts {
		var postIDs []uint
		if err := a.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list user posts")
			return
		}
		pc := PostController{db: a.db}
		for _, id := range postIDs {
			if err := pc.deletePostCascade(id); err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to remove posts")
				return
			}
		}
	}

	utils.Success(ctx, gin.H{"message": "user data reset"})
}
