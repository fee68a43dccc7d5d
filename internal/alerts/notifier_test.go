// internal/alerts/notifier_test.go
package alerts

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractgen-workers/internal/common/config"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/generation/request"
	"contractgen-workers/internal/models"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
}

func (f *fakePublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, nil
}

type fakeEmailSender struct {
	inputs []*ses.SendEmailInput
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

func alertConfig() config.AlertConfig {
	cfg := config.AlertConfig{
		Enabled:   true,
		AWSRegion: "ap-south-1",
		SNSTopic:  "arn:aws:sns:ap-south-1:000000000000:contractgen-alerts",
	}
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "alerts@example.com"
	cfg.Email.ToEmail = "oncall@example.com"
	return cfg
}

func degradedResult() *models.GenerationResult {
	return &models.GenerationResult{
		Degraded: map[string]bool{"analysis": true, "synthesis": true, "risk-review": true},
	}
}

func sampleRequest() *request.GenerationRequest {
	return &request.GenerationRequest{
		OrganizationType:   "llp",
		TransactionPattern: "b2b",
		ArtifactCategory:   "profit-sharing",
	}
}

func TestRecord_FullyDegradedAlertsBothChannels(t *testing.T) {
	pub := &fakePublisher{}
	mail := &fakeEmailSender{}
	n := NewNotifier(alertConfig(), pub, mail, logger.NewTestLogger(t))

	n.Record(context.Background(), sampleRequest(), degradedResult())

	require.Len(t, pub.inputs, 1)
	assert.Contains(t, *pub.inputs[0].Message, "llp/b2b/profit-sharing")
	assert.Equal(t, alertConfig().SNSTopic, *pub.inputs[0].TopicArn)

	require.Len(t, mail.inputs, 1)
	assert.Equal(t, "alerts@example.com", *mail.inputs[0].Source)
	assert.Equal(t, []string{"oncall@example.com"}, mail.inputs[0].Destination.ToAddresses)
}

func TestRecord_PartialDegradationIsSilent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(alertConfig(), pub, nil, logger.NewTestLogger(t))

	n.Record(context.Background(), sampleRequest(), &models.GenerationResult{
		Degraded: map[string]bool{"analysis": true, "synthesis": false, "risk-review": true},
	})

	assert.Empty(t, pub.inputs)
}

func TestRecord_DisabledConfigIsSilent(t *testing.T) {
	pub := &fakePublisher{}
	cfg := alertConfig()
	cfg.Enabled = false
	n := NewNotifier(cfg, pub, nil, logger.NewTestLogger(t))

	n.Record(context.Background(), sampleRequest(), degradedResult())
	assert.Empty(t, pub.inputs)
}

func TestRecord_MissingClientsAreTolerated(t *testing.T) {
	n := NewNotifier(alertConfig(), nil, nil, logger.NewTestLogger(t))
	// No SNS or SES wired at all; must be a no-op, not a panic.
	n.Record(context.Background(), sampleRequest(), degradedResult())
}
