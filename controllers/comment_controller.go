package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// CommentController manages comments and comment likes.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// CreateComment adds a comment to an existing post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, utils.MsgBadRequest)
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, utils.MsgBadRequest)
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, utils.MsgUnauthorized)
		return
	}

	var post models.Post
	if err := c.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load post")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}

	utils.Success(ctx, gin.H{"comment_id": comment.ID})
}

// DeleteComment allows the comment owner to delete their comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, utils.MsgUnauthorized)
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comment")
		return
	}
	if comment.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, utils.MsgForbidden)
		return
	}

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// LikeComment records the viewer's like on a comment. Unlike post likes this
// is idempotent: repeating the action is a no-op success.
func (c *CommentController) LikeComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, utils.MsgUnauthorized)
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, utils.MsgNotFound)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comment")
		return
	}

	like := models.CommentLike{UserID: userID, CommentID: comment.ID}
	if err := c.db.Create(&like).Error; err != nil && !utils.IsDuplicateKeyErr(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to like comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment liked"})
}

// UnlikeComment removes the viewer's like if present; idempotent like
// LikeComment.
func (c *CommentController) UnlikeComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40123, utils.MsgUnauthorized)
		return
	}

	if err := c.db.Where("user_id = ? AND comment_id = ?", userID, ctx.Param("id")).
		Delete(&models.CommentLike{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to unlike comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment unliked"})
}
