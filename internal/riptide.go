package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/hbomb79/Riptide/internal/api"
	"github.com/hbomb79/Riptide/internal/fetch"
	"github.com/hbomb79/Riptide/internal/ffmpeg"
	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/internal/instaloader"
	"github.com/hbomb79/Riptide/internal/job"
	"github.com/hbomb79/Riptide/internal/ytdlp"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}
)

// Riptide represents the top-level object for the server, and is
// responsible for initialising the library, job store, download service
// and REST gateway, and for running them until stopped.
type riptideImpl struct {
	config RiptideConfig

	store        *job.Store
	library      *files.Library
	fetchService *fetch.Service
	restGateway  RunnableService
}

func New(config RiptideConfig) *riptideImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Riptide services using config: %#v\n", config)

	library, err := files.NewLibrary(config.Download.DownloadDirPath)
	if err != nil {
		panic(fmt.Sprintf("failed to construct media library due to error: %s", err.Error()))
	}

	store := job.NewStore()
	adapters := []fetch.Adapter{
		fetch.NewInstagramAdapter(library, instaloader.New(config.Download.InstaloaderBinaryPath)),
		fetch.NewTwitterAdapter(library, ytdlp.New(config.Download.YtDlpBinaryPath, config.Processor.FfmpegBinaryPath)),
	}

	fetchService, err := fetch.New(config.Download, store, adapters...)
	if err != nil {
		panic(fmt.Sprintf("failed to construct download service due to error: %s", err.Error()))
	}

	processor := ffmpeg.NewCropProcessor(config.Processor, library, ffmpeg.NewExecCommander())
	restGateway := api.NewRestGateway(&config.RestConfig, fetchService, store, library, processor)

	return &riptideImpl{
		config:       config,
		store:        store,
		library:      library,
		fetchService: fetchService,
		restGateway:  restGateway,
	}
}

// Run brings up the REST gateway and blocks until the provided context is
// cancelled, or a service crashes with an error Riptide cannot recover from.
func (riptide *riptideImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel()
	}

	wg := &sync.WaitGroup{}
	riptide.spawnAsyncService(ctx, wg, riptide.restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Riptide services spawned!\n")

	wg.Wait()
	return nil
}

// spawnAsyncService will run the provided function/service as its own
// go-routine, ensuring that the Riptide service waitgroup is updated
// correctly.
func (riptide *riptideImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		defer wg.Done()
		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
