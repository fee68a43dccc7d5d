// internal/alerts/notifier.go
package alerts

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"contractgen-workers/internal/common/config"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

// Publisher is the SNS capability the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// EmailSender is the SES capability the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Notifier raises operator alerts when a generation comes back fully
// degraded, meaning every provider in the chain failed for every persona
// task. Partial degradation is routine and only shows up in metrics.
type Notifier struct {
	cfg config.AlertConfig
	sns Publisher
	ses EmailSender
	log logger.Logger
}

func NewNotifier(cfg config.AlertConfig, snsClient Publisher, sesClient EmailSender, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, sns: snsClient, ses: sesClient, log: log}
}

// Record implements the orchestrator sink contract.
func (n *Notifier) Record(ctx context.Context, req *request.GenerationRequest, result *models.GenerationResult) {
	if !n.cfg.Enabled || !result.FullyDegraded() {
		return
	}

	subject := "Contract generation fully degraded"
	message := fmt.Sprintf(
		"Every provider failed for %s/%s/%s; the template fallback was served. "+
			"Check provider credentials and availability.",
		req.OrganizationType, req.TransactionPattern, req.ArtifactCategory,
	)

	if n.sns != nil && n.cfg.SNSTopic != "" {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: awssdk.String(n.cfg.SNSTopic),
			Subject:  awssdk.String(subject),
			Message:  awssdk.String(message),
		})
		if err != nil {
			n.log.WithError(err).Error("sns alert failed", map[string]interface{}{
				"topic": n.cfg.SNSTopic,
			})
		}
	}

	if n.ses != nil && n.cfg.Email.Enabled {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source: awssdk.String(n.cfg.Email.FromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{n.cfg.Email.ToEmail},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: awssdk.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: awssdk.String(message)},
				},
			},
		})
		if err != nil {
			n.log.WithError(err).Error("email alert failed", map[string]interface{}{
				"to": n.cfg.Email.ToEmail,
			})
		}
	}
}
