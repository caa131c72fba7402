package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"housingprice/server/internal/models"
)

var ErrQueueClosed = errors.New("queue is closed")

// CityBatch is everything crawled for one city.
type CityBatch struct {
	City   string
	Prices []models.MonthlyPrice
}

// PriceQueue is an in-memory hand-off between the crawler and its sinks.
// Batches are delivered to the subscribed handlers in push order by a single
// consumer goroutine.
type PriceQueue struct {
	items    chan CityBatch
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	// hmu guards handlers apart from mu, which a blocked Push holds.
	hmu      sync.RWMutex
	handlers []func(CityBatch) error
}

// NewPriceQueue creates a new price queue with the specified buffer size
func NewPriceQueue(bufferSize int, logger *logrus.Logger) *PriceQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &PriceQueue{
		items:    make(chan CityBatch, bufferSize),
		logger:   logger,
		handlers: make([]func(CityBatch) error, 0),
	}
}

// Push adds a batch to the queue, waiting for room when the buffer is full.
func (q *PriceQueue) Push(batch CityBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	q.items <- batch
	q.logger.WithFields(logrus.Fields{
		"city": batch.City,
		"rows": len(batch.Prices),
	}).Debug("Pushed batch to queue")
	return nil
}

// Subscribe adds a handler function that will be called for each batch
func (q *PriceQueue) Subscribe(handler func(CityBatch) error) {
	q.hmu.Lock()
	defer q.hmu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *PriceQueue) Start() {
	q.wg.Add(1)
	go q.process()
}

func (q *PriceQueue) process() {
	defer q.wg.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *PriceQueue) processBatch(batch CityBatch) {
	q.hmu.RLock()
	handlers := q.handlers
	q.hmu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("city", batch.City).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits until every queued batch has been
// handled.
func (q *PriceQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *PriceQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *PriceQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
