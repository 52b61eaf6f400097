// Package tracking mirrors accepted submissions to an analytics sink.
// Publishing is fire-and-forget: it never blocks or fails the caller.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/pkg/awsutil"
	"github.com/onegateway/site-notify/internal/pkg/logger"
)

type EventType string

const EventContactFormSubmit EventType = "contact_form_submit"

const (
	formTypeContactInquiry = "contact_inquiry"
	publishTimeout         = 5 * time.Second
)

type Event struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	RecordID   string    `json:"record_id"`
	FormType   string    `json:"form_type"`
	HasCompany bool      `json:"has_company"`
	Value      int       `json:"value"`
	Currency   string    `json:"currency"`
	DeviceType string    `json:"device_type"`
	Country    string    `json:"country"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewContactEvent builds the analytics event for an accepted record. No
// contact details are copied into it.
func NewContactEvent(rec domain.EnrichedRecord, currency string) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventType:  EventContactFormSubmit,
		RecordID:   rec.ID,
		FormType:   formTypeContactInquiry,
		HasCompany: rec.Company != "",
		Value:      1,
		Currency:   currency,
		DeviceType: string(rec.DeviceType),
		Country:    rec.Country,
		Timestamp:  rec.CreatedAt.UTC(),
	}
}

// Publisher emits events. Publish returns immediately.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// SendMessageAPI is the slice of the SQS client SQSPublisher needs.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSPublisher struct {
	client   SendMessageAPI
	queueURL string
	wg       sync.WaitGroup
}

func NewSQSPublisher(client SendMessageAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(_ context.Context, evt Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Error("marshal tracking event", "error", err.Error())
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(p.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			logger.Warn("publishing tracking event to SQS", "event_id", evt.EventID, "error", err.Error())
		}
	}()
}

// Wait blocks until in-flight publishes finish. Used on shutdown.
func (p *SQSPublisher) Wait() { p.wg.Wait() }

// LogPublisher writes events to the service log.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) {
	p.log.Info("tracking event",
		"event", string(evt.EventType),
		"event_id", evt.EventID,
		"record_id", evt.RecordID,
		"form_type", evt.FormType,
		"has_company", evt.HasCompany,
		"value", evt.Value,
		"currency", evt.Currency,
		"device_type", evt.DeviceType,
		"country", evt.Country,
	)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// New returns the publisher selected by cfg.Sink.
func New(ctx context.Context, cfg config.TrackingConfig) (Publisher, error) {
	switch cfg.Sink {
	case "", "none":
		return NopPublisher{}, nil
	case "log":
		return NewLogPublisher(nil), nil
	case "sqs":
		if cfg.SQSQueueURL == "" {
			return nil, fmt.Errorf("sqs tracking sink requires sqs_queue_url")
		}
		awsCfg, err := awsutil.Load(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
	default:
		return nil, fmt.Errorf("unknown tracking sink %q", cfg.Sink)
	}
}
