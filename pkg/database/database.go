package database

import (
	"fmt"
	"log"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认的公开示例模块（空库时写入，便于前端首次联调）
	var count int64
	db.Model(&model.QuizModule{}).Count(&count)
	if count == 0 {
		db.Create(&model.QuizModule{
			Title:       "Sample Module",
			Description: "自动创建的示例模块，可直接向其批量导入题目",
			IsPublic:    true,
		})
	}

	return db, nil
}

// Migrate 执行全部表结构迁移。测试里用 sqlite 复用同一份迁移。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.QuizModule{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.QuizAttemptAnswer{},
	)
}
