package docverify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/canermastan/hotel-operations/internal/checkin"
)

type Worker struct {
	ID         int
	WorkerPool chan chan checkin.PassportJob
	JobChannel chan checkin.PassportJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan checkin.PassportJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan checkin.PassportJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(checkin.PassportJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing passport", "worker_id", w.ID, "checkin_id", job.CheckinID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client extracts machine-readable-zone data from passport scans. Jobs are
// processed by a bounded worker pool; results are delivered through the
// job's completion callback.
type Client struct {
	mrzAPIURL         string
	apiKey            string
	processingTimeout time.Duration
	logger            *slog.Logger

	jobQueue   chan checkin.PassportJob
	workerPool chan chan checkin.PassportJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	MRZAPIURL         string
	APIKey            string
	ProcessingTimeout time.Duration
	MaxWorkers        int
	JobQueueSize      int
	WorkerPoolSize    int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	processingTimeout := config.ProcessingTimeout
	if processingTimeout <= 0 {
		processingTimeout = 30 * time.Second
	}

	client := &Client{
		mrzAPIURL:         config.MRZAPIURL,
		apiKey:            config.APIKey,
		processingTimeout: processingTimeout,
		logger:            logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan checkin.PassportJob, jobQueueSize),
		workerPool: make(chan chan checkin.PassportJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processPassportJob)
		}

		go c.dispatch()

		c.logger.Info("document verification worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()
	c.wg.Add(1)

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down document verification client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("document verification client shutdown complete")
}

// Submit queues a passport for verification. When the queue is full the job
// is failed immediately through its callback rather than blocking the caller.
func (c *Client) Submit(job checkin.PassportJob) {
	select {
	case c.jobQueue <- job:
		c.logger.Info("passport job queued for verification",
			"checkin_id", job.CheckinID,
			"queue_length", len(c.jobQueue))
	default:
		c.logger.Warn("verification queue full, rejecting passport job",
			"checkin_id", job.CheckinID,
			"queue_capacity", cap(c.jobQueue))
		job.Done(job.CheckinID, nil, fmt.Errorf("verification queue full"))
	}
}

func (c *Client) processPassportJob(job checkin.PassportJob) {
	c.logger.Info("processing passport job", "checkin_id", job.CheckinID, "image_path", job.ImagePath)

	var fields map[string]interface{}
	var err error

	if c.mrzAPIURL != "" && c.apiKey != "" {
		fields, err = c.extractWithMRZAPI(job.ImagePath)
	} else {
		fields, err = c.simulateExtraction()
	}

	select {
	case <-c.ctx.Done():
		c.logger.Info("passport job cancelled", "checkin_id", job.CheckinID)
		return
	default:
	}

	if err != nil {
		c.logger.Error("passport verification failed",
			"checkin_id", job.CheckinID,
			"error", err)
	} else {
		c.logger.Info("passport verification succeeded",
			"checkin_id", job.CheckinID,
			"passport_number", fields["passportNumber"])
	}

	job.Done(job.CheckinID, fields, err)
}

func (c *Client) extractWithMRZAPI(imagePath string) (map[string]interface{}, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read passport image: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.processingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.mrzAPIURL, bytes.NewBuffer(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create MRZ API request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	client := &http.Client{Timeout: c.processingTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("MRZ API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("MRZ API returned status %d", resp.StatusCode)
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode MRZ API response: %w", err)
	}

	return fields, nil
}

// simulateExtraction stands in for the MRZ provider when no API is
// configured, returning a fixed machine readable zone.
func (c *Client) simulateExtraction() (map[string]interface{}, error) {
	delay := 2 * time.Second

	select {
	case <-time.After(delay):
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}

	return map[string]interface{}{
		"documentType":   "P",
		"countryCode":    "TUR",
		"surname":        "KAPADOKYA",
		"givenNames":     "GUEST",
		"passportNumber": "T12345678",
		"nationality":    "TUR",
		"dateOfBirth":    "1990-01-01",
		"sex":            "M",
		"expirationDate": "2030-12-31",
		"personalNumber": "",
	}, nil
}
