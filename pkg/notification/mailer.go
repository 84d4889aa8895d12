// Package notification delivers account lifecycle emails through AWS SES.
package notification

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/cantine/cantine/internal/config"
	log "github.com/sirupsen/logrus"
)

type SESMailer struct {
	client       *ses.Client
	sender       string
	adminAddress string
}

func NewSESMailer(ctx context.Context, cfg config.Mail) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{
		client:       ses.NewFromConfig(awsCfg),
		sender:       cfg.Sender,
		adminAddress: cfg.AdminAddress,
	}, nil
}

func (m *SESMailer) SignupReceived(ctx context.Context, userName string, userEmail string) error {
	subject := "Nouvelle inscription à la cantine"
	body := fmt.Sprintf("%s (%s) demande l'accès à la cantine.\n\nConnectez-vous pour approuver ou refuser la demande.", userName, userEmail)
	return m.send(ctx, m.adminAddress, subject, body)
}

func (m *SESMailer) AccountApproved(ctx context.Context, userName string, userEmail string) error {
	subject := "Votre compte cantine est activé"
	body := fmt.Sprintf("Bonjour %s,\n\nVotre compte a été approuvé. Vous pouvez maintenant sélectionner vos repas.", userName)
	return m.send(ctx, userEmail, subject, body)
}

func (m *SESMailer) AccountRejected(ctx context.Context, userName string, userEmail string) error {
	subject := "Votre demande d'accès à la cantine"
	body := fmt.Sprintf("Bonjour %s,\n\nVotre demande d'accès n'a pas été retenue. Contactez l'administration pour plus de détails.", userName)
	return m.send(ctx, userEmail, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to string, subject string, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(m.sender),
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		log.Errorf("SES send error: %v", err)
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// LogMailer replaces SES when mail is disabled; it only logs what would
// have been sent.
type LogMailer struct {
}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SignupReceived(ctx context.Context, userName string, userEmail string) error {
	log.Infof("mail disabled: signup notification for %s <%s> skipped", userName, userEmail)
	return nil
}

func (m *LogMailer) AccountApproved(ctx context.Context, userName string, userEmail string) error {
	log.Infof("mail disabled: approval notification for %s <%s> skipped", userName, userEmail)
	return nil
}

func (m *LogMailer) AccountRejected(ctx context.Context, userName string, userEmail string) error {
	log.Infof("mail disabled: rejection notification for %s <%s> skipped", userName, userEmail)
	return nil
}
