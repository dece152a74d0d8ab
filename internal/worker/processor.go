package worker

import (
	"context"

	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/notifier"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

/*
This file contains the code that picks tasks up from the Redis queue and
processes them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Broadcaster fans a payload out to the live connections watching a topic.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

type RedisTaskProcessor struct {
	server      *asynq.Server
	store       db.Store
	dispatcher  *notifier.Dispatcher
	broadcaster Broadcaster
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, store db.Store, dispatcher *notifier.Dispatcher, broadcaster Broadcaster) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return &RedisTaskProcessor{
		server:      server,
		store:       store,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the
// asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskSendNotification, processor.ProcessTaskSendNotification)
	mux.HandleFunc(TaskFinalizeAuction, processor.ProcessTaskFinalizeAuction)

	return processor.server.Start(mux)
}

// Shutdown stops the asynq server, waiting for in-flight tasks.
func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
