package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulsefeed/pulse/utils"
)

const (
	maxAvatarBytes = 1 << 20     // 1 MB
	maxImageBytes  = 3 << 20     // 3 MB
	uploadDir      = "static/uploads"
)

// UploadController stores user-submitted images on local disk and returns a
// URL the client can reference.
type UploadController struct{}

// NewUploadController creates a new UploadController instance.
func NewUploadController() *UploadController {
	return &UploadController{}
}

// Upload accepts a multipart image. kind=avatar caps at 1 MB, kind=image at
// 3 MB; only JPEG and PNG payloads pass the content sniff.
func (u *UploadController) Upload(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40150, utils.MsgUnauthorized)
		return
	}

	kind := ctx.DefaultQuery("kind", "image")
	var maxBytes int64
	switch kind {
	case "avatar":
		maxBytes = maxAvatarBytes
	case "image":
		maxBytes = maxImageBytes
	default:
		utils.Error(ctx, http.StatusBadRequest, 40070, utils.MsgBadRequest)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, utils.MsgBadRequest)
		return
	}
	if fileHeader.Size > maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40072, "The file is too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to read upload")
		return
	}
	defer f.Close()

	// Sniff the real content type; the client-sent header is not trusted.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to read upload")
		return
	}

	var ext string
	switch http.DetectContentType(head[:n]) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		utils.Error(ctx, http.StatusBadRequest, 40073, "Only JPEG and PNG images are allowed")
		return
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to store upload")
		return
	}

	name := fmt.Sprintf("%s_%d%s", uuid.NewString(), time.Now().Unix(), ext)
	dst := filepath.Join(uploadDir, name)
	if err := ctx.SaveUploadedFile(fileHeader, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to store upload")
		return
	}

	utils.Success(ctx, gin.H{"url": "/" + filepath.ToSlash(dst)})
}
