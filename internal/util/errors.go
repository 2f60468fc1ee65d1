package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrModuleNotFound     = errors.New("module not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrQuestionExists     = errors.New("question already exists")
	ErrInvalidKind        = errors.New("unsupported question type")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptCompleted   = errors.New("attempt already submitted")
)
