package fetch

import (
	"context"

	"github.com/hbomb79/Riptide/internal/job"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("FetchServ")

// Service routes submitted URLs to the adapter owning their domain and
// drives the download through its state machine. It is the sole component
// which transitions download records; each record has exactly one writer
// after creation (the goroutine running its adapter).
type Service struct {
	store    *job.Store
	adapters []Adapter
	mode     Mode
}

// New constructs the download service. An error is returned if the
// configured execution mode is not recognised.
func New(config Config, store *job.Store, adapters ...Adapter) (*Service, error) {
	mode, err := config.ExecutionMode()
	if err != nil {
		return nil, err
	}

	return &Service{store: store, adapters: adapters, mode: mode}, nil
}

// Submit routes the URL to a matching adapter. If no adapter owns the
// URL's domain, ErrUnsupportedDomain is returned and no download record is
// created. In threaded mode the returned download is pending and the
// extraction continues in the background; in blocking mode the returned
// download is terminal.
func (service *Service) Submit(ctx context.Context, url string) (job.Download, error) {
	adapter := service.adapterFor(url)
	if adapter == nil {
		return job.Download{}, ErrUnsupportedDomain
	}

	download := service.store.Create(url)
	log.Emit(logger.NEW, "Created download %s via %s adapter\n", download.ID, adapter.Name())

	// Extraction always runs under a detached context, regardless of mode;
	// an in-flight extraction is not cancellable once started, and a caller
	// disconnect must not fail the download.
	if service.mode == BlockingMode {
		service.run(context.Background(), download, adapter)
		return service.store.Get(download.ID)
	}

	go service.run(context.Background(), download, adapter)
	return download, nil
}

func (service *Service) run(ctx context.Context, download job.Download, adapter Adapter) {
	onDownloading := func() {
		if err := service.store.MarkDownloading(download.ID); err != nil {
			log.Emit(logger.WARNING, "Failed to mark download %s as downloading: %v\n", download.ID, err)
		}
	}

	result, err := adapter.Fetch(ctx, download.URL, onDownloading)
	if err != nil {
		log.Emit(logger.ERROR, "Download %s failed: %v\n", download.ID, err)
		if failErr := service.store.Fail(download.ID, err.Error()); failErr != nil {
			log.Emit(logger.WARNING, "Could not record failure for download %s: %v\n", download.ID, failErr)
		}

		return
	}

	if err := service.store.Complete(download.ID, result.Files, result.Username); err != nil {
		log.Emit(logger.WARNING, "Could not record completion for download %s: %v\n", download.ID, err)
		return
	}

	log.Emit(logger.SUCCESS, "Download %s completed with %d file(s)\n", download.ID, len(result.Files))
}

func (service *Service) adapterFor(url string) Adapter {
	for _, adapter := range service.adapters {
		if adapter.Matches(url) {
			return adapter
		}
	}

	return nil
}
