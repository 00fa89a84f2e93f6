package storage

import (
	"fmt"

	"OnShift/storage/database"
	"OnShift/storage/mq"
	"OnShift/storage/redis"
)

// Init 初始化所有存储连接：Database -> Redis -> MQ
func Init() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := redis.Init(); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	if err := mq.Init(); err != nil {
		return fmt.Errorf("failed to initialize message queue: %w", err)
	}

	return nil
}
