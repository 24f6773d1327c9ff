package main

import (
	"context"
	log2 "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/app/repository"
	"github.com/BlackRRR/persona-bot/internal/app/services"
	"github.com/BlackRRR/persona-bot/internal/app/utils"
	"github.com/BlackRRR/persona-bot/internal/config"
	"github.com/BlackRRR/persona-bot/internal/db"
	"github.com/BlackRRR/persona-bot/internal/db/redis"
	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	//init logger
	logger := log.NewDefaultLogger().Prefix("Persona Bot")
	log.PrintLogo("Persona Bot", []string{"8000FF"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	//Init Config
	cfg, dbConn, err := config.InitConfig(os.Getenv("PERSONA_CONFIG"))
	if err != nil {
		log2.Fatal(err)
	}

	//Init Database
	pool, err := db.InitDB(ctx, cfg.PGConn, dbConn)
	if err != nil {
		log2.Fatal(err)
	}
	defer pool.Close()

	//init bot config
	globalBot := model.FillBotsConfig(cfg.TGConfig.Token, cfg.TGConfig.BotLink, cfg.TGConfig.BotLang, cfg.Admins)
	if err := globalBot.ParseCommandsList(cfg.Assets); err != nil {
		logger.Warn("commands list not loaded: %s", err.Error())
	}
	if err := globalBot.ParseLangMap(cfg.Assets); err != nil {
		logger.Warn("language map not loaded: %s", err.Error())
	}

	globalBot.Rdb = redis.StartRedis(redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer globalBot.Rdb.Close()

	if err := services.StartBot(globalBot); err != nil {
		log2.Fatal(err)
	}

	//Init Repository
	repo := repository.NewRepository(pool)
	cacheTTL := time.Duration(cfg.Redis.CacheTime) * time.Second
	collab := services.Collaborators{
		Characters: redis.NewCachedLister(globalBot.Rdb, repo.Characters(), "characters", cacheTTL, logger),
		Presets:    redis.NewCachedLister(globalBot.Rdb, repo.Presets(), "presets", cacheTTL, logger),
		Users:      repo,
	}

	//Init Services
	srv, err := services.InitServices(globalBot, globalBot.Bot, collab, cfg.Dispatch, logger)
	if err != nil {
		log2.Fatal(err)
	}
	srv.BotSrv.Stats = redis.UploadUpdateStatistic(globalBot.Rdb)
	srv.InitAdmin(cfg.ReloadPolicy)

	cfg.WatchPolicy(func(policy model.Policy) {
		if err := srv.Reload(policy); err != nil {
			logger.Warn("config reload: %s", err.Error())
			return
		}
		logger.Ok("config reloaded")
	}, func(err error) {
		logger.Warn("config reload rejected: %s", err.Error())
	})

	startMetrics(cfg.Server.MetricsAddr, logger)
	model.HandleRestart.WithLabelValues("restart").Inc()

	spreader := utils.NewSpreader(time.Minute, cfg.TGConfig.Workers)
	go spreader.Report(ctx, logger)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		srv.BotSrv.ActionsWithUpdates(ctx, spreader)
	}()

	logger.Ok("service are running")

	sig := <-subscribeToSystemSignals()
	log2.Printf("shutdown all process on '%s' system signal\n", sig.String())

	globalBot.Bot.StopReceivingUpdates()
	cancel()
	<-loopDone
	spreader.Wait()
}

func startMetrics(addr string, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped: %s", err.Error())
		}
	}()
}

func subscribeToSystemSignals() chan os.Signal {
	ch := make(chan os.Signal, 10)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	return ch
}
