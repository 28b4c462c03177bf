package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/middleware"
	"github.com/pulsefeed/pulse/models"
)

// Timestamp layouts shared by every DTO.
const (
	timestampLayout = "02/01/2006, 15:04:05"
	joinedAtLayout  = "January 2, 2006"
)

const defaultPageLimit = 25

// PostDTO is the row shape every post feed returns. Counts are raw persisted
// counts; the viewer-relative state travels separately in Liked, never folded
// into the numbers.
type PostDTO struct {
	ID               uint   `json:"id"`
	CreatedAt        string `json:"created_at"`
	UserID           uint   `json:"user_id"`
	Username         string `json:"username"`
	DisplayName      string `json:"display_name"`
	UserImage        string `json:"user_image"`
	Content          string `json:"content"`
	CommentsCount    int64  `json:"comments_count"`
	LikesCount       int64  `json:"likes_count"`
	Liked            bool   `json:"liked"`
	LikeButtonActive bool   `json:"like_button_active"`
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func isAdmin(ctx *gin.Context) bool {
	value, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return false
	}
	role, _ := value.(string)
	return role == models.RoleAdmin
}

// parseLimit clamps the page size to 1..100, defaulting to 25.
func parseLimit(raw string) int {
	limit := defaultPageLimit
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 100 {
		limit = n
	}
	return limit
}

// parsePage parses a zero-based page number for offset-paginated feeds.
func parsePage(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return n
	}
	return 0
}

type postCountRow struct {
	PostID uint
	N      int64
}

// assemblePosts shapes posts into feed DTOs, batch-loading comment counts,
// like counts, and the viewer's own likes in one query each.
func assemblePosts(db *gorm.DB, posts []models.Post, viewerID uint, viewerPresent bool) ([]PostDTO, error) {
	dtos := make([]PostDTO, 0, len(posts))
	if len(posts) == 0 {
		return dtos, nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	commentCounts := map[uint]int64{}
	var rows []postCountRow
	if err := db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		commentCounts[r.PostID] = r.N
	}

	likeCounts := map[uint]int64{}
	rows = rows[:0]
	if err := db.Model(&models.PostLike{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		likeCounts[r.PostID] = r.N
	}

	likedByViewer := map[uint]bool{}
	if viewerPresent {
		var likedIDs []uint
		if err := db.Model(&models.PostLike{}).
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Pluck("post_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedByViewer[id] = true
		}
	}

	for _, p := range posts {
		dtos = append(dtos, PostDTO{
			ID:               p.ID,
			CreatedAt:        p.CreatedAt.Format(timestampLayout),
			UserID:           p.UserID,
			Username:         p.User.Username,
			DisplayName:      p.User.DisplayName,
			UserImage:        p.User.Avatar(),
			Content:          p.Content,
			CommentsCount:    commentCounts[p.ID],
			LikesCount:       likeCounts[p.ID],
			Liked:            viewerPresent && likedByViewer[p.ID],
			LikeButtonActive: viewerPresent,
		})
	}
	return dtos, nil
}
