package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/filemsg/backend/internal/callbacks"
	"github.com/itchan-dev/filemsg/backend/internal/events"
	"github.com/itchan-dev/filemsg/backend/internal/handler"
	"github.com/itchan-dev/filemsg/backend/internal/imaging"
	"github.com/itchan-dev/filemsg/backend/internal/service"
	"github.com/itchan-dev/filemsg/backend/internal/storage/files"
	"github.com/itchan-dev/filemsg/backend/internal/storage/fs"
	"github.com/itchan-dev/filemsg/backend/internal/storage/pg"
	"github.com/itchan-dev/filemsg/backend/internal/taskqueue"
	"github.com/itchan-dev/filemsg/backend/internal/toolbox"
	"github.com/itchan-dev/filemsg/shared/config"
	"github.com/itchan-dev/filemsg/shared/jwt"
	"github.com/itchan-dev/filemsg/shared/logger"
	mw "github.com/itchan-dev/filemsg/shared/middleware"
	rl "github.com/itchan-dev/filemsg/shared/middleware/ratelimiter"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Jwt            jwt.JwtService

	Queue     *taskqueue.Queue
	Callbacks *callbacks.Registry
	Toolbox   *toolbox.Registry
	GC        *service.MediaGarbageCollector
	Publisher events.Publisher // nil when amqp is not configured

	// Limiters is filled by the router, their buckets are swept in the background.
	Limiters []*rl.UserRateLimiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg.Private.Pg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	media, err := fs.New(cfg.Public.MediaRoot)
	if err != nil {
		storage.Cleanup()
		return nil, fmt.Errorf("open media root: %w", err)
	}
	fileStore := files.New(storage, media, cfg.Public.PublicPathPrefix)

	var thumbnails service.ThumbnailDeriver
	if cfg.Public.Thumbnails.Enabled {
		thumbnails = service.NewThumbnailPipeline(fileStore, imaging.New(cfg.Public.Thumbnails), cfg.Public.Thumbnails.MaxDecodedBytes)
	}
	builder := service.NewAttachmentBuilder(thumbnails)
	composer := service.NewMessageComposer(storage)

	pp := cfg.Public.PostProcessing
	queue := taskqueue.New(pp.Workers, pp.QueueSize, pp.TaskTimeout)
	registry := callbacks.New()

	var publisher events.Publisher
	if cfg.Private.Amqp.URL != "" {
		amqpPublisher, err := events.New(cfg.Private.Amqp.URL, cfg.Private.Amqp.Exchange)
		if err != nil {
			storage.Cleanup()
			return nil, fmt.Errorf("connect to amqp: %w", err)
		}
		publisher = amqpPublisher
		events.Subscribe(registry, publisher)
	} else {
		logger.Log.Info("amqp not configured, file upload events are not published", "component", "setup")
	}

	rooms := service.NewRoomPolicy(storage)
	sendFile := service.NewSendFile(rooms, fileStore, builder, composer, service.NewNotifier(queue, registry))
	canned := service.NewCannedResponse(storage, cfg.Public.CannedResponsesPageLimit)

	actions := toolbox.New()
	toolbox.RegisterDefaults(actions)

	gc := service.NewMediaGarbageCollector(storage, media, cfg.Public.MediaGC.SafetyThreshold)

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	h := handler.New(sendFile, canned, rooms, actions, storage)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: mw.NewAuth(jwtService),
		Jwt:            jwtService,
		Queue:          queue,
		Callbacks:      registry,
		Toolbox:        actions,
		GC:             gc,
		Publisher:      publisher,
	}, nil
}

// Close releases the external connections. The queue must be drained first.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			logger.Log.Warn("failed to close amqp publisher", "component", "setup", "error", err)
		}
	}
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Warn("failed to close postgres", "component", "setup", "error", err)
	}
}
