package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/streadway/amqp"
)

func CleanJson(input string) string {
	clean := strings.TrimSpace(input)

	// Remove opening ```json or ``` with optional newline
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

var retryBackoff = 500 * time.Millisecond

// retry calls fn up to attempts times, waiting a little longer after each
// failure, and returns the last error wrapped with the attempt count. It
// gives up early once ctx is done.
func retry[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(retryBackoff * time.Duration(i+1))
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, fmt.Errorf("after %d attempts: %w (%w)", i+1, lastErr, ctx.Err())
		case <-t.C:
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// --- File Download ---

type r2Fetcher struct {
	client *s3.Client
	bucket string
}

func newR2Fetcher(ctx context.Context, r2 R2Config) (*r2Fetcher, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &r2Fetcher{client: client, bucket: r2.Bucket}, nil
}

func (f *r2Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	return DownloadFromR2(ctx, f.client, f.bucket, key)
}

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// --- Status updates ---

type rabbitPublisher struct {
	conn *amqp.Connection
}

func newRabbitPublisher(conn *amqp.Connection) (*rabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		updatesExchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-delete
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", updatesExchange, err)
	}
	return &rabbitPublisher{conn: conn}, nil
}

func (p *rabbitPublisher) PublishUpdate(update AnalysisUpdate) error {
	return publishAnalysisUpdate(p.conn, update)
}

func publishAnalysisUpdate(rabbitConn *amqp.Connection, update AnalysisUpdate) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return ch.Publish(
		updatesExchange,
		updateRoutingKey(update.AnalysisID.String()),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   update.Timestamp,
			Body:        body,
		},
	)
}

func updateRoutingKey(analysisID string) string {
	return fmt.Sprintf("analysis.%s", analysisID)
}
