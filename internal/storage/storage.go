package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"
	"cortexprobe/internal/util"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// FileStorage keeps run history in a JSON file
type FileStorage struct {
	filePath string
	limit    int
	mu       sync.Mutex
}

func NewFileStorage(filePath string, limit int) *FileStorage {
	if limit <= 0 {
		limit = core.RunHistoryLimit
	}
	return &FileStorage{filePath: filePath, limit: limit}
}

func (fs *FileStorage) AppendRun(record *core.RunRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	history, err := fs.load()
	if err != nil {
		return err
	}

	history.Runs = append(history.Runs, *record)
	if over := len(history.Runs) - fs.limit; over > 0 {
		history.Runs = history.Runs[over:]
	}

	data, err := sonic.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.filePath, data, core.FilePermissionReadWrite)
}

func (fs *FileStorage) LoadRuns() (*core.RunHistory, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

func (fs *FileStorage) load() (*core.RunHistory, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &core.RunHistory{Runs: []core.RunRecord{}}, nil
		}
		return nil, err
	}

	var history core.RunHistory
	if err := sonic.Unmarshal(data, &history); err != nil {
		return nil, err
	}

	if history.Runs == nil {
		history.Runs = []core.RunRecord{}
	}

	return &history, nil
}

func (fs *FileStorage) Close() error {
	return nil
}

// RedisStorage keeps run history in a capped Redis list
type RedisStorage struct {
	client *redis.Client
	key    string
	limit  int
}

// RedisStorageConfig Redis storage config
type RedisStorageConfig struct {
	URL   string
	Key   string
	Limit int
}

func NewRedisStorage(cfg RedisStorageConfig) (*RedisStorage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	key := cfg.Key
	if key == "" {
		key = core.RunHistoryRedisKey
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = core.RunHistoryLimit
	}

	return &RedisStorage{client: client, key: key, limit: limit}, nil
}

func (rs *RedisStorage) AppendRun(record *core.RunRecord) error {
	data, err := util.MarshalJSON(record)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	pipe := rs.client.TxPipeline()
	pipe.RPush(ctx, rs.key, data)
	pipe.LTrim(ctx, rs.key, int64(-rs.limit), -1)
	_, err = pipe.Exec(ctx)
	return err
}

func (rs *RedisStorage) LoadRuns() (*core.RunHistory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	values, err := rs.client.LRange(ctx, rs.key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &core.RunHistory{Runs: []core.RunRecord{}}, nil
		}
		return nil, err
	}

	history := &core.RunHistory{Runs: make([]core.RunRecord, 0, len(values))}
	for _, value := range values {
		var record core.RunRecord
		if err := sonic.UnmarshalString(value, &record); err != nil {
			return nil, err
		}
		history.Runs = append(history.Runs, record)
	}
	return history, nil
}

func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}

// InitStorage picks the run history backend: Redis when configured, then a
// JSON file, otherwise history is disabled.
func InitStorage(cfg config.HistoryConfig, logger core.Logger) core.RunStore {
	if cfg.RedisURL != "" {
		redisStorage, err := NewRedisStorage(RedisStorageConfig{URL: cfg.RedisURL})
		if err == nil {
			logger.Debug("Using Redis run history")
			return redisStorage
		}
		if cfg.FilePath == "" {
			logger.Warn("Failed to initialize Redis run history: %v, history disabled", err)
			return &core.NopRunStore{}
		}
		logger.Warn("Failed to initialize Redis run history: %v, falling back to %s", err, cfg.FilePath)
	}

	if cfg.FilePath != "" {
		logger.Debug("Using file run history %s", cfg.FilePath)
		return NewFileStorage(cfg.FilePath, core.RunHistoryLimit)
	}

	return &core.NopRunStore{}
}
