package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient is the subset of the SNS client used by snsSender.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsSender struct {
	topicARN string
	client   snsClient
}

func newSNSSender(ctx context.Context, cfg *SNSConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("aws sns configuration is missing")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.AWSCredentials)
	if err != nil {
		return nil, err
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &snsSender{topicARN: cfg.TopicARN, client: client}, nil
}

// Send publishes the event to the configured SNS topic.
func (s *snsSender) Send(ctx context.Context, evt Event) error {
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

	resp, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message to sns: %w", err)
	}

	slog.Debug("sns publisher delivered event",
		slog.String("event_id", evt.ID),
		slog.String("message_id", aws.ToString(resp.MessageId)))
	return nil
}
