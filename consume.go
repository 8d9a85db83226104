package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/joblens/internal/extract"
)

const (
	analysesQueue   = "analyses"
	updatesExchange = "analysis_updates"
)

var errMalformedMessage = errors.New("malformed analysis request")

func decodeAnalysisRequest(body []byte) (AnalysisRequest, error) {
	var req AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", errMalformedMessage, err)
	}
	switch {
	case req.ID == uuid.Nil:
		return req, fmt.Errorf("%w: missing id", errMalformedMessage)
	case req.Resume.ObjectKey == "":
		return req, fmt.Errorf("%w: missing resume object key", errMalformedMessage)
	case req.JobDescription.ObjectKey == "":
		return req, fmt.Errorf("%w: missing job description object key", errMalformedMessage)
	}
	return req, nil
}

// processMessage runs one queued analysis and publishes its progress.
// Every outcome is reported on the updates exchange; the returned error is
// for logging and acknowledgement only.
func (cfg *ServiceConfig) processMessage(ctx context.Context, body []byte) error {
	req, err := decodeAnalysisRequest(body)
	if err != nil {
		// req.ID may still be set when only an object key is missing.
		if req.ID != uuid.Nil {
			cfg.publishUpdate(ctx, req.ID, statusFailed, "analysis failed", nil)
		}
		return err
	}

	ctx = zerolog.Ctx(ctx).With().Str("analysis_id", req.ID.String()).Logger().WithContext(ctx)
	cfg.publishUpdate(ctx, req.ID, statusProcessing, "analysis started", nil)

	result, err := cfg.analyzeObjects(ctx, req)
	if err != nil {
		cfg.publishUpdate(ctx, req.ID, statusFailed, "analysis failed", nil)
		return err
	}

	cfg.publishUpdate(ctx, req.ID, statusCompleted, "analysis completed", &result)
	return nil
}

func (cfg *ServiceConfig) analyzeObjects(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	resume, err := cfg.fetchDocument(ctx, req.Resume)
	if err != nil {
		return AnalysisResult{}, err
	}
	jd, err := cfg.fetchDocument(ctx, req.JobDescription)
	if err != nil {
		return AnalysisResult{}, err
	}

	return cfg.runAnalysis(ctx, analysisInput{
		ID:             req.ID,
		Resume:         resume,
		JobDescription: jd,
		Source:         sourceQueue,
	})
}

func (cfg *ServiceConfig) fetchDocument(ctx context.Context, ref ObjectRef) (extract.Document, error) {
	// Network failures are transient; extraction failures are not.
	data, err := retry(ctx, 3, func() ([]byte, error) {
		return cfg.Fetcher.Fetch(ctx, ref.ObjectKey)
	})
	if err != nil {
		return extract.Document{}, fmt.Errorf("file download error for %s: %w", ref.ObjectKey, err)
	}

	filename := ref.Filename
	if filename == "" {
		filename = ref.ObjectKey
	}
	doc, err := extract.Extract(filename, ref.Mime, data)
	if err != nil {
		return extract.Document{}, fmt.Errorf("text extraction error: %w", err)
	}
	return doc, nil
}

// Reconnect delays double after each failed session up to the cap.
var (
	reconnectBackoff    = time.Second
	maxReconnectBackoff = 30 * time.Second
)

var errDeliveriesClosed = errors.New("delivery channel closed by broker")

func (cfg *ServiceConfig) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()
	wlog := log.With().Int("worker", id+1).Logger()

	runWithReconnect(ctx, wlog, func(ctx context.Context) error {
		return cfg.consume(ctx, wlog)
	})
	wlog.Info().Msg("worker stopped")
}

// runWithReconnect runs session until ctx is done, waiting between failed
// sessions. A session that got as far as receiving deliveries resets the
// delay.
func runWithReconnect(ctx context.Context, wlog zerolog.Logger, session func(context.Context) error) {
	delay := reconnectBackoff
	for {
		err := session(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errDeliveriesClosed) {
			delay = reconnectBackoff
		}
		wlog.Error().Err(err).Dur("retry_in", delay).Msg("rabbitmq session ended, reconnecting")

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		delay = min(delay*2, maxReconnectBackoff)
	}
}

// consume holds one broker connection and processes deliveries until the
// broker closes them or ctx is done.
func (cfg *ServiceConfig) consume(ctx context.Context, wlog zerolog.Logger) error {
	conn, err := amqp.Dial(cfg.Config.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		analysesQueue, // queue name
		true,          // durable (survives broker restarts)
		false,         // auto-delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		analysesQueue, // queue name
		"",            // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %w", err)
	}

	// Closing the channel ends the delivery range below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ch.Close()
		case <-done:
		}
	}()

	for msg := range msgs {
		msgCtx := wlog.WithContext(ctx)
		err := cfg.processMessage(msgCtx, msg.Body)
		switch {
		case errors.Is(err, errMalformedMessage):
			wlog.Warn().Err(err).Msg("rejecting message")
			msg.Nack(false, false)
			continue
		case err != nil:
			wlog.Error().Err(err).Msg("error processing analysis")
		}
		if err := msg.Ack(false); err != nil {
			wlog.Warn().Err(err).Msg("failed to ack message")
		}
	}
	return errDeliveriesClosed
}

// StartConsumerWorkerPool blocks until ctx is done and every worker has
// exited. Workers reconnect on their own after broker failures.
func (cfg *ServiceConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		log.Info().Int("worker", i+1).Msg("worker started")
		go cfg.worker(ctx, i, &wg)
	}
	wg.Wait()
}
