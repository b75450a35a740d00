package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient is the subset of the SQS client used by sqsSender.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsSender struct {
	queueURL string
	client   sqsClient
}

func newSQSSender(ctx context.Context, cfg *SQSConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("aws sqs configuration is missing")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.AWSCredentials)
	if err != nil {
		return nil, err
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &sqsSender{queueURL: cfg.QueueURL, client: client}, nil
}

// Send enqueues the event on the configured SQS queue.
func (s *sqsSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range evt.attributes() {
		if v == "" {
			continue
		}
		dataType, value := stringAttribute(v)
		attrs[k] = types.MessageAttributeValue{DataType: dataType, StringValue: value}
	}

	resp, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message to sqs: %w", err)
	}

	slog.Debug("sqs publisher delivered event",
		slog.String("event_id", evt.ID),
		slog.String("message_id", aws.ToString(resp.MessageId)))
	return nil
}
