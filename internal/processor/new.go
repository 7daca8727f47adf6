package processor

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/jobs"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcript-flow/internal/sysload"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcriber"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

type implProcessor struct {
	cfg        *config.Config
	logger     logger.Logger
	segmenter  *segmenter.Segmenter
	controller *sysload.Controller
	orch       *transcriber.Orchestrator
	sttEngine  transcriber.Engine
	sumEngine  summarizer.Engine
	reducer    *summarizer.Reducer
	manager    *jobs.Manager
	bus        *progress.Bus

	mu   sync.Mutex
	gate *jobs.Gate
}

// New wires the pipeline components around the injected engines.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, sttEngine transcriber.Engine, sumEngine summarizer.Engine, controller *sysload.Controller) Processor {
	seg := segmenter.New(
		exec,
		log,
		cfg.Paths.Scratch,
		time.Duration(cfg.FFmpeg.ExtractTimeoutSec)*time.Second,
		time.Duration(cfg.FFmpeg.SegmentTimeoutSec)*time.Second,
	)

	return &implProcessor{
		cfg:        cfg,
		logger:     log,
		segmenter:  seg,
		controller: controller,
		orch:       transcriber.NewOrchestrator(sttEngine, log),
		sttEngine:  sttEngine,
		sumEngine:  sumEngine,
		reducer:    summarizer.NewReducer(sumEngine, log),
		manager:    jobs.NewManager(),
		bus:        progress.NewBus(500),
	}
}
