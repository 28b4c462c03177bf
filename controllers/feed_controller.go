package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// trendingWindow scopes the "popular now" ranking to the most recent 7 days.
// The window start is re-evaluated on every request, never cached.
const trendingWindow = 7 * 24 * time.Hour

// FeedController serves the list endpoints: recent, trending, by hashtag, and
// posts from followed users.
type FeedController struct {
	db *gorm.DB
}

// NewFeedController creates a new FeedController instance.
func NewFeedController(db *gorm.DB) *FeedController {
	return &FeedController{db: db}
}

// HashtagCount is one row of the trending hashtag frequency table.
type HashtagCount struct {
	Name  string `json:"hashtag_name"`
	Posts int64  `json:"posts"`
}

// ListRecent returns cursor-paginated posts, newest first. Ordering is
// (created_at DESC, id DESC) so ties on the timestamp cannot skip or repeat a
// row; the cursor row itself opens the next page.
func (f *FeedController) ListRecent(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"))
	viewerID, viewerPresent := getUserID(ctx)

	q := f.db.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if raw := ctx.Query("cursor"); raw != "" {
		cursorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, utils.MsgBadRequest)
			return
		}
		var pivot models.Post
		if err := f.db.First(&pivot, uint(cursorID)).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40011, utils.MsgBadRequest)
			return
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id <= ?)",
			pivot.CreatedAt, pivot.CreatedAt, pivot.ID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list posts")
		return
	}

	posts, nextCursor := utils.TrimPage(posts, limit, func(p models.Post) uint { return p.ID })

	dtos, err := assemblePosts(f.db, posts, viewerID, viewerPresent)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to assemble posts")
		return
	}

	utils.Success(ctx, gin.H{
		"posts":       dtos,
		"next_cursor": nextCursor,
	})
}

// ListTrending ranks posts inside the rolling 7-day window by like count,
// newest first on ties, and attaches the in-window hashtag frequency table.
// Offset pages because the ranking may reshuffle between requests.
func (f *FeedController) ListTrending(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"))
	page := parsePage(ctx.Query("page"))
	viewerID, viewerPresent := getUserID(ctx)

	windowStart := time.Now().Add(-trendingWindow)

	var posts []models.Post
	if err := f.rankedPosts(windowStart, false, "").
		Offset(page * limit).
		Limit(limit).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to list trending posts")
		return
	}

	hashtags, err := f.trendingHashtags(windowStart)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to rank hashtags")
		return
	}

	dtos, err := assemblePosts(f.db, posts, viewerID, viewerPresent)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to assemble posts")
		return
	}

	utils.Success(ctx, gin.H{
		"posts":             dtos,
		"trending_hashtags": hashtags,
		"next_page":         utils.NextOffsetPage(len(posts), limit, page),
	})
}

// ListByHashtag applies the trending ranking to posts carrying one hashtag.
// ?all=true lifts the 7-day window for an all-time ranking.
func (f *FeedController) ListByHashtag(ctx *gin.Context) {
	name := ctx.Param("name")
	limit := parseLimit(ctx.Query("limit"))
	page := parsePage(ctx.Query("page"))
	allPosts := ctx.Query("all") == "true"
	viewerID, viewerPresent := getUserID(ctx)

	windowStart := time.Now().Add(-trendingWindow)

	var posts []models.Post
	if err := f.rankedPosts(windowStart, allPosts, name).
		Offset(page * limit).
		Limit(limit).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to list hashtag posts")
		return
	}

	dtos, err := assemblePosts(f.db, posts, viewerID, viewerPresent)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to assemble posts")
		return
	}

	utils.Success(ctx, gin.H{
		"posts":     dtos,
		"next_page": utils.NextOffsetPage(len(posts), limit, page),
	})
}

// ListFollowed returns recent posts from users the viewer follows, offset
// paginated, newest first.
func (f *FeedController) ListFollowed(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, utils.MsgUnauthorized)
		return
	}
	limit := parseLimit(ctx.Query("limit"))
	page := parsePage(ctx.Query("page"))

	var followingIDs []uint
	if err := f.db.Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("following_id", &followingIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load follows")
		return
	}

	var posts []models.Post
	if len(followingIDs) > 0 {
		if err := f.db.Preload("User").
			Where("user_id IN ?", followingIDs).
			Order("created_at DESC, id DESC").
			Offset(page * limit).
			Limit(limit).
			Find(&posts).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to list followed posts")
			return
		}
	}

	dtos, err := assemblePosts(f.db, posts, viewerID, true)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to assemble posts")
		return
	}

	utils.Success(ctx, gin.H{
		"posts":     dtos,
		"next_page": utils.NextOffsetPage(len(posts), limit, page),
	})
}

// rankedPosts builds the trending scorer query: like count descending with
// created_at descending as the deterministic tiebreak. hashtag narrows the
// scope to tagged posts; allTime lifts the window filter.
func (f *FeedController) rankedPosts(windowStart time.Time, allTime bool, hashtag string) *gorm.DB {
	q := f.db.Model(&models.Post{}).
		Preload("User").
		Select("posts.*").
		Joins("LEFT JOIN post_likes ON post_likes.post_id = posts.id").
		Group("posts.id").
		Order("COUNT(post_likes.id) DESC").
		Order("posts.created_at DESC")

	if hashtag != "" {
		q = q.Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
			Where("post_hashtags.hashtag_name = ?", hashtag)
	}
	if !allTime {
		q = q.Where("posts.created_at > ?", windowStart)
	}
	return q
}

// trendingHashtags computes how often each hashtag was used on posts created
// inside the window. Only hashtags attached to at least one in-window post
// appear. Tiebreak: count descending, then name ascending.
func (f *FeedController) trendingHashtags(windowStart time.Time) ([]HashtagCount, error) {
	rows := []HashtagCount{}
	err := f.db.Raw(`
		SELECT h.name AS name, COUNT(ph.id) AS posts
		FROM hashtags h
		JOIN post_hashtags ph ON ph.hashtag_name = h.name
		JOIN posts p ON p.id = ph.post_id
		WHERE p.created_at > ?
		GROUP BY h.name
		ORDER BY posts DESC, h.name ASC`, windowStart).
		Scan(&rows).Error
	return rows, err
}
