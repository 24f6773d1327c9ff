package redis

import (
	"strconv"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const (
	redisDefaultAddr = "127.0.0.1:6379"
	updateStatistic  = "update_statistic"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func StartRedis(opts Options) *redis.Client {
	if opts.Addr == "" {
		opts.Addr = redisDefaultAddr
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return rdb
}

// UploadUpdateStatistic restores the update counter. A missing or broken key
// starts the counter from zero.
func UploadUpdateStatistic(rdb *redis.Client) *model.UpdateInfo {
	strStatistic, err := rdb.Get(updateStatistic).Result()
	if err != nil {
		return model.NewUpdateInfo(0)
	}

	counter, _ := strconv.Atoi(strStatistic)
	return model.NewUpdateInfo(counter)
}

func SaveUpdateStatistic(rdb *redis.Client, counter int) error {
	_, err := rdb.Set(updateStatistic, strconv.Itoa(counter), 0).Result()
	if err != nil {
		return errors.Wrap(err, "save update statistic")
	}
	return nil
}
