// Package notify publishes run summaries to an SNS topic when configured.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	appconfig "template-migrator/internal/common/config"
	"template-migrator/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// RunSummary is the notification payload published after each run.
type RunSummary struct {
	RunID          string `json:"runId"`
	UserID         string `json:"userId"`
	TemplatesCount int    `json:"templatesCount"`
	TotalAttempted int    `json:"totalAttempted"`
	ErrorCount     int    `json:"errorCount"`
	Message        string `json:"message"`
}

type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSNotifier struct {
	client   snsPublisher
	topicARN string
	logger   logger.Logger
}

func NewSNSNotifier(ctx context.Context, cfg appconfig.NotificationConfig, log logger.Logger) (*SNSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SNSNotifier{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: cfg.SNS.TopicARN,
		logger:   log,
	}, nil
}

// NotifyRunCompleted publishes the summary. Callers treat failure as
// non-fatal.
func (n *SNSNotifier) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(fmt.Sprintf("Template migration run %s", summary.RunID)),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}

	n.logger.Info("Published run summary notification", map[string]interface{}{
		"runId": summary.RunID,
		"topic": n.topicARN,
	})

	return nil
}
