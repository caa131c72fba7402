package processor

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"housingprice/server/internal/etl"
	"housingprice/server/internal/queue"
)

// BatchProcessor writes each crawled city batch to its own CSV file.
type BatchProcessor struct {
	outputDir string
	logger    *logrus.Logger
	queue     *queue.PriceQueue

	mu      sync.Mutex
	written []string
	rows    int
}

// NewBatchProcessor creates a processor writing into outputDir
func NewBatchProcessor(q *queue.PriceQueue, outputDir string, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	return &BatchProcessor{
		outputDir: outputDir,
		logger:    logger,
		queue:     q,
	}
}

// Start subscribes the processor and starts the queue consumer
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start()
}

// Stop waits for every queued batch to be written
func (p *BatchProcessor) Stop() {
	p.queue.Close()
}

// processBatch writes one city's rows. Cities with no rows get no file.
func (p *BatchProcessor) processBatch(batch queue.CityBatch) error {
	if len(batch.Prices) == 0 {
		p.logger.WithField("city", batch.City).Warn("No rows crawled, skipping file")
		return nil
	}

	path, err := etl.WriteCityFile(p.outputDir, batch.City, batch.Prices)
	if err != nil {
		return fmt.Errorf("failed to write %s batch: %w", batch.City, err)
	}

	p.mu.Lock()
	p.written = append(p.written, path)
	p.rows += len(batch.Prices)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"city": batch.City,
		"rows": len(batch.Prices),
		"path": path,
	}).Info("Saved city data")
	return nil
}

// Written returns the files written so far and their total row count.
func (p *BatchProcessor) Written() ([]string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...), p.rows
}
