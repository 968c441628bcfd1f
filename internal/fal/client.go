package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/domain"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/infra"
)

// Queue status values shared with fal.ai.
const (
	statusInQueue    = "IN_QUEUE"
	statusInProgress = "IN_PROGRESS"
	statusCompleted  = "COMPLETED"
	statusError      = "ERROR"
)

// Options controls how the queue client is configured.
type Options struct {
	BaseURL      string
	APIKey       string
	Model        string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Logger       *infra.Logger
}

// Client talks to a fal.ai-style job queue: submit a prompt, poll the status
// endpoint until the job reaches a terminal state, then fetch and decode the
// result payload.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	model        string
	pollInterval time.Duration
	logger       *infra.Logger
}

// NewClient creates a queue client with sane defaults applied.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://queue.fal.run"
	}
	model := strings.Trim(opts.Model, "/")
	if model == "" {
		model = "fal-ai/flux/schnell"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Client{
		httpClient:   client,
		baseURL:      base,
		token:        strings.TrimSpace(opts.APIKey),
		model:        model,
		pollInterval: interval,
		logger:       opts.Logger,
	}
}

type submitRequest struct {
	Prompt string `json:"prompt"`
}

// queueEnvelope is the canonical response for queue submissions.
type queueEnvelope struct {
	RequestID   string `json:"request_id"`
	ResponseURL string `json:"response_url"`
	StatusURL   string `json:"status_url"`
	CancelURL   string `json:"cancel_url"`
}

type statusResponse struct {
	Status        string   `json:"status"`
	QueuePosition *int     `json:"queue_position,omitempty"`
	Logs          []string `json:"logs,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Subscription is one live job's status stream. Events yields a JobUpdate per
// observed lifecycle transition and is closed when the job reaches a terminal
// state or is cancelled; Err reports the terminal failure, if any, once
// Events is closed.
type Subscription struct {
	RequestID string

	events    chan domain.JobUpdate
	cancelCtx context.CancelFunc
	once      sync.Once

	mu  sync.Mutex
	err error

	client    *Client
	cancelURL string
}

// Events returns the update stream.
func (s *Subscription) Events() <-chan domain.JobUpdate { return s.events }

// Err returns the terminal error of the stream. It is meaningful only after
// Events has been closed; a nil error means the job completed normally.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription immediately: no further events are emitted
// and the remote job is asked to stop. Safe to call any number of times,
// including after the stream already closed.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancelCtx()
		go s.client.cancelRemote(s.cancelURL, s.RequestID)
	})
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Subscribe submits a prompt to the queue and returns the job's status
// stream. The returned subscription polls in a background goroutine; the
// caller is responsible for ensuring only one subscription is active at a
// time.
func (c *Client) Subscribe(ctx context.Context, prompt string) (*Subscription, error) {
	if c.token == "" {
		return nil, errors.New("fal: API key is missing")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("fal: prompt required")
	}

	env, err := c.submit(ctx, prompt)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		RequestID: env.RequestID,
		events:    make(chan domain.JobUpdate, 8),
		cancelCtx: cancel,
		client:    c,
		cancelURL: env.CancelURL,
	}
	go c.poll(subCtx, env, sub)
	return sub, nil
}

func (c *Client) submit(ctx context.Context, prompt string) (*queueEnvelope, error) {
	body, err := json.Marshal(submitRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	endpoint := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fal: submit http %d: %w", resp.StatusCode, domain.ErrProtocol)
	}

	var env queueEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("fal: submit response: %v: %w", err, domain.ErrProtocol)
	}
	if env.StatusURL == "" || env.ResponseURL == "" {
		return nil, fmt.Errorf("fal: submit response missing queue urls: %w", domain.ErrProtocol)
	}
	if c.logger != nil {
		c.logger.Debug().Str("request_id", env.RequestID).Msg("fal: job submitted")
	}
	return &env, nil
}

// poll drives the subscription to a terminal state. It owns the events
// channel and closes it exactly once on return.
func (c *Client) poll(ctx context.Context, env *queueEnvelope, sub *Subscription) {
	defer close(sub.events)

	var last domain.JobStatus
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			sub.fail(ctx.Err())
			return
		case <-timer.C:
		}

		st, err := c.status(ctx, env.StatusURL)
		if err != nil {
			sub.fail(err)
			return
		}

		switch st.Status {
		case statusInQueue:
			if last != domain.JobStatusQueued {
				last = domain.JobStatusQueued
				if !sub.emit(ctx, domain.JobUpdate{Status: domain.JobStatusQueued, Logs: st.Logs}) {
					return
				}
			}
		case statusInProgress:
			if last != domain.JobStatusInProgress {
				last = domain.JobStatusInProgress
				if !sub.emit(ctx, domain.JobUpdate{Status: domain.JobStatusInProgress, Logs: st.Logs}) {
					return
				}
			}
		case statusCompleted:
			result, err := c.fetchResult(ctx, env.ResponseURL)
			if err != nil {
				sub.fail(err)
				return
			}
			sub.emit(ctx, domain.JobUpdate{Status: domain.JobStatusCompleted, Logs: st.Logs, Result: result})
			return
		case statusError:
			detail := st.Error
			if detail == "" {
				detail = "job failed"
			}
			sub.fail(fmt.Errorf("fal: %s: %w", detail, domain.ErrProtocol))
			return
		default:
			sub.fail(fmt.Errorf("fal: unknown status %q: %w", st.Status, domain.ErrProtocol))
			return
		}

		timer.Reset(c.pollInterval)
	}
}

func (sub *Subscription) emit(ctx context.Context, update domain.JobUpdate) bool {
	select {
	case sub.events <- update:
		return true
	case <-ctx.Done():
		sub.fail(ctx.Err())
		return false
	}
}

func (c *Client) status(ctx context.Context, statusURL string) (*statusResponse, error) {
	url := statusURL
	if !strings.Contains(url, "logs=") {
		if strings.Contains(url, "?") {
			url += "&logs=1"
		} else {
			url += "?logs=1"
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fal: status http %d: %w", resp.StatusCode, domain.ErrProtocol)
	}
	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("fal: status response: %v: %w", err, domain.ErrProtocol)
	}
	return &st, nil
}

func (c *Client) fetchResult(ctx context.Context, responseURL string) (*domain.GeneratedImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, responseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fal: response http %d: %w", resp.StatusCode, domain.ErrProtocol)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fal: result payload: %v: %w", err, domain.ErrProtocol)
	}
	return DecodeResult(payload)
}

// cancelRemote asks the queue to stop a job. Best effort: by the time this
// runs the subscription has already stopped emitting, so failures are only
// logged.
func (c *Client) cancelRemote(cancelURL, requestID string) {
	if cancelURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cancelURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Key "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn().Err(err).Str("request_id", requestID).Msg("fal: cancel request failed")
		}
		return
	}
	defer resp.Body.Close()
	if c.logger != nil {
		c.logger.Debug().Str("request_id", requestID).Int("status", resp.StatusCode).Msg("fal: job cancelled")
	}
}

func connectionErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("fal: %v: %w", err, domain.ErrConnection)
}
