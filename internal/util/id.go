package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateUniqueID 生成 16 位十六进制的不透明唯一标识（8 字节随机数）
func GenerateUniqueID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand 在正常环境下不会失败
		panic(err)
	}
	return hex.EncodeToString(buf)
}
