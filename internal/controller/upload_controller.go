package controller

import (
	"fmt"
	"net/http"
	"path/filepath"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadController struct {
	Storage *service.StorageService
}

func NewUploadController(storage *service.StorageService) *UploadController {
	return &UploadController{Storage: storage}
}

// @Summary 上传题目配图
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} map[string]interface{}
// @Router /api/upload/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	allowed := false
	for _, t := range util.AllowedImageTypes {
		if contentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only images are allowed."})
		return
	}

	if fileHeader.Size > util.MaxImageSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File too large. Maximum size is 5MB."})
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	fileName := fmt.Sprintf("questions/%d-%s.%s", time.Now().UnixMilli(), util.GenerateUniqueID(), ext)

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.Storage.Upload(ctx.Request.Context(), fileName, file, fileHeader.Size, contentType)
	if err != nil {
		logger.Log.Error("image upload failed", zap.String("fileName", fileName), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Upload failed",
			"message": "Failed to upload image",
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"url":      url,
		"fileName": fileName,
		"size":     fileHeader.Size,
		"type":     contentType,
	})
}
