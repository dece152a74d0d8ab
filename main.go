package main

import (
	"context"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/greencycle/ewaste-BE/api"
	"github.com/greencycle/ewaste-BE/internal/auction"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/geo"
	"github.com/greencycle/ewaste-BE/internal/mailer"
	"github.com/greencycle/ewaste-BE/internal/notifier"
	"github.com/greencycle/ewaste-BE/internal/realtime"
	"github.com/greencycle/ewaste-BE/internal/storage"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/greencycle/ewaste-BE/internal/worker"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file")
	}
	log.Info().Msg("configurations loaded")

	ctx := context.Background()

	if err = db.RunMigrations(ctx, config.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	connPool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to validate db connection string")
	}
	if err = connPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	log.Info().Msg("connected to db")

	store := db.NewStore(connPool)

	redisDb := redis.NewClient(&redis.Options{
		Addr: config.RedisServerAddress,
	})
	if err = redisDb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	log.Info().Msg("connected to redis")

	hub := realtime.NewHub()

	dispatcher := notifier.NewDispatcher(store, hub)
	if config.DiscordBotToken != "" && config.DiscordChannelID != "" {
		discordSession, err := discordgo.New("Bot " + config.DiscordBotToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create discord session")
		}
		dispatcher = dispatcher.WithDiscord(discordSession, config.DiscordChannelID)
		log.Info().Msg("discord ops mirror enabled")
	}

	redisOpt := asynq.RedisClientOpt{Addr: config.RedisServerAddress}
	taskDistributor := worker.NewTaskDistributor(redisOpt)
	taskInspector := worker.NewTaskInspector(redisOpt)

	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, store, dispatcher, hub)
	if err = taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor")
	}
	defer taskProcessor.Shutdown()
	log.Info().Msg("task processor started")

	var mailSender mailer.Sender
	if config.GmailSMTPUsername != "" && config.GmailSMTPPassword != "" {
		gmailSender, err := mailer.NewGmailSender(config.GmailSMTPUsername, config.GmailSMTPPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create mailer service")
		}
		mailSender = gmailSender
		log.Info().Msg("mailer service created")
	}

	fileStore, err := storage.NewCloudinaryStore(config.CloudinaryURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create cloudinary store")
	}
	log.Info().Msg("cloudinary store created")

	locator := geo.NewLocator(redisDb, store)
	scheduler, err := locator.StartReindexer(ctx, config.ShopIndexInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start shop reindexer")
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Err(err).Msg("failed to shut down scheduler")
		}
	}()

	geocoder := geo.NewGeocoder(config.GeocoderBaseURL)
	defer geocoder.Close()

	engine := auction.NewEngine(store, taskDistributor, taskInspector, hub, mailSender)

	server, err := api.NewServer(store, engine, hub, locator, geocoder, fileStore, &config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server")
	}

	if err = server.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server")
	}
}
