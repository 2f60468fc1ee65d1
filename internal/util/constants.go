package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 图片上传相关常量
const (
	MimeImage    = "image/"
	MaxImageSize = 5 * 1024 * 1024 // 5MB
)

var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
