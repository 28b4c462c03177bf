package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// PostController manages post CRUD, likes, and reports.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// CommentDTO is the comment shape attached to the post detail response.
type CommentDTO struct {
	ID          uint   `json:"id"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	UserImage   string `json:"user_image"`
	Liked       bool   `json:"liked"`
	LikesCount  int64  `json:"likes_count"`
}

// CreatePost creates a post from content plus an explicit hashtag field. Tags
// are extracted from the hashtag field, capped at 5, and hashtag rows are
// created lazily on first use.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required"`
		Hashtags string `json:"hashtags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, utils.MsgBadRequest)
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, utils.MsgUnauthorized)
		return
	}

	tags := utils.ExtractHashtags(req.Hashtags)
	if len(tags) > utils.MaxHashtagsPerPost {
		utils.Error(ctx, http.StatusBadRequest, 40021, utils.MsgBadRequest)
		return
	}

	post := models.Post{
		UserID:  userID,
		Content: utils.Sanitize(req.Content),
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	if err := p.attachHashtags(post.ID, tags); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to attach hashtags")
		return
	}

	utils.Success(ctx, gin.H{"post_id": post.ID})
}

// GetPost returns a single post with its comments, per-comment raw like
// counts, and the viewer's liked flags.
func (p *PostController) GetPost(ctx *gin.Context) {
	viewerID, viewerPresent := getUserID(ctx)

	var post models.Post
	if err := p.db.Preload("User").First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	dtos, err := assemblePosts(p.db, []models.Post{post}, viewerID, viewerPresent)
	if err != nil || len(dtos) != 1 {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to assemble post")
		return
	}

	var comments []models.Comment
	if err := p.db.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}

	commentDTOs, err := p.assembleComments(comments, viewerID, viewerPresent)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to assemble comments")
		return
	}

	utils.Success(ctx, gin.H{
		"post":     dtos[0],
		"comments": commentDTOs,
	})
}

// GetPostForEdit returns the raw content for the owner's edit form.
func (p *PostController) GetPostForEdit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40305, utils.MsgForbidden)
		return
	}

	utils.Success(ctx, gin.H{"post": gin.H{"id": post.ID, "content": post.Content}})
}

// UpdatePost replaces the content and re-derives the hashtag set from it.
// After the update the association set equals exactly the freshly extracted
// set.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, utils.MsgBadRequest)
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40303, utils.MsgForbidden)
		return
	}

	post.Content = utils.Sanitize(req.Content)
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	// Full replace: drop every association, reinsert from the new content.
	if err := p.db.Where("post_id = ?", post.ID).Delete(&models.PostHashtag{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to clear hashtags")
		return
	}
	if err := p.attachHashtags(post.ID, utils.ExtractHashtags(post.Content)); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to attach hashtags")
		return
	}

	utils.Success(ctx, gin.H{"post_id": post.ID})
}

// DeletePost allows the author or an admin to delete a post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}
	if post.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40304, utils.MsgForbidden)
		return
	}

	if err := p.deletePostCascade(post.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// LikePost records the viewer's like. The unique index is the source of
// truth: a duplicate insert surfaces as a conflict rather than relying on a
// racy existence pre-check.
func (p *PostController) LikePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	like := models.PostLike{UserID: userID, PostID: post.ID}
	if err := p.db.Create(&like).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			utils.Error(ctx, http.StatusConflict, 40901, utils.MsgConflict)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to like post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post liked"})
}

// UnlikePost removes the viewer's like; removing an absent like is a conflict.
func (p *PostController) UnlikePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, utils.MsgUnauthorized)
		return
	}

	res := p.db.Where("user_id = ? AND post_id = ?", userID, ctx.Param("id")).Delete(&models.PostLike{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to unlike post")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40902, utils.MsgConflict)
		return
	}

	utils.Success(ctx, gin.H{"message": "post unliked"})
}

// ReportPost files a report against a post. A user keeps at most one open
// report per post; repeats are silent no-ops.
func (p *PostController) ReportPost(ctx *gin.Context) {
	var req struct {
		Reason   string `json:"reason" binding:"required"`
		Category string `json:"category" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, utils.MsgBadRequest)
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	report := models.Report{
		UserID:   userID,
		PostID:   post.ID,
		Reason:   req.Reason,
		Category: req.Category,
	}
	if err := p.db.Create(&report).Error; err != nil && !utils.IsDuplicateKeyErr(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to report post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post reported"})
}

// attachHashtags lazily creates hashtag rows and links them to the post.
func (p *PostController) attachHashtags(postID uint, tags []string) error {
	for _, name := range tags {
		tag := models.Hashtag{Name: name}
		if err := p.db.FirstOrCreate(&tag, models.Hashtag{Name: name}).Error; err != nil {
			return err
		}
		link := models.PostHashtag{PostID: postID, HashtagName: name}
		if err := p.db.Create(&link).Error; err != nil && !utils.IsDuplicateKeyErr(err) {
			return err
		}
	}
	return nil
}

// deletePostCascade removes a post and its dependent rows. Hashtag rows stay;
// they are never deleted.
func (p *PostController) deletePostCascade(postID uint) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}

type commentCountRow struct {
	CommentID uint
	N         int64
}

// assembleComments shapes comments with raw like counts and viewer flags.
func (p *PostController) assembleComments(comments []models.Comment, viewerID uint, viewerPresent bool) ([]CommentDTO, error) {
	dtos := make([]CommentDTO, 0, len(comments))
	if len(comments) == 0 {
		return dtos, nil
	}

	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	likeCounts := map[uint]int64{}
	var rows []commentCountRow
	if err := p.db.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		likeCounts[r.CommentID] = r.N
	}

	likedByViewer := map[uint]bool{}
	if viewerPresent {
		var likedIDs []uint
		if err := p.db.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, ids).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedByViewer[id] = true
		}
	}

	for _, c := range comments {
		dtos = append(dtos, CommentDTO{
			ID:          c.ID,
			Content:     c.Content,
			CreatedAt:   c.CreatedAt.Format(timestampLayout),
			UserID:      c.UserID,
			Username:    c.User.Username,
			DisplayName: c.User.DisplayName,
			UserImage:   c.User.Avatar(),
			Liked:       viewerPresent && likedByViewer[c.ID],
			LikesCount:  likeCounts[c.ID],
		})
	}
	return dtos, nil
}
