package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
)

type Client struct {
	client     *asynq.Client
	jobTimeout time.Duration
}

func NewClient(redisCfg config.RedisConfig, mediaCfg config.MediaConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		}),
		jobTimeout: mediaCfg.JobTimeout,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueVideoGenerate submits one video job. MaxRetry is zero: a failed
// generation is reported on the job record, never silently re-run.
func (c *Client) EnqueueVideoGenerate(payload VideoGeneratePayload) error {
	return c.enqueue(TypeVideoGenerate, payload, asynq.MaxRetry(0), asynq.Timeout(c.jobTimeout+time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
