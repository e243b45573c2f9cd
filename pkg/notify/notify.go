// Package notify delivers client error reports to the operators by e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/roamjs/gateway/pkg/notify")

// ErrEmptyReport is returned when a report has neither a subject nor a message
var ErrEmptyReport = errors.New("error report is empty")

// Report is an error raised by an extension running in a client
type Report struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// Validate rejects reports that carry nothing to send
func (r Report) Validate() error {
	if strings.TrimSpace(r.Subject) == "" && strings.TrimSpace(r.Message) == "" {
		return ErrEmptyReport
	}
	return nil
}

// EmailSubject is the subject line used for the report
func (r Report) EmailSubject() string {
	if r.Subject == "" {
		return "RoamJS Error"
	}
	return "RoamJS Error: " + r.Subject
}

// EmailBody renders the message followed by the stack trace
func (r Report) EmailBody() string {
	var b strings.Builder
	b.WriteString("Message: ")
	b.WriteString(r.Message)
	if r.Stack != "" {
		b.WriteString("\n\nStack:\n")
		b.WriteString(r.Stack)
	}
	return b.String()
}

// Notifier sends error reports
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// sesAPI is the subset of the SES v2 client used by SESNotifier
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier implements Notifier with Amazon SES
type SESNotifier struct {
	client sesAPI
	from   string
	to     []string
}

// NewSESNotifier creates a notifier sending from one address to the given recipients
func NewSESNotifier(cfg aws.Config, from string, to ...string) *SESNotifier {
	return &SESNotifier{
		client: sesv2.NewFromConfig(cfg),
		from:   from,
		to:     to,
	}
}

// Notify e-mails the report
func (n *SESNotifier) Notify(ctx context.Context, report Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "SES.SendEmail",
		trace.WithAttributes(attribute.String("report.subject", report.Subject)),
	)
	defer span.End()

	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: n.to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(report.EmailSubject()), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(report.EmailBody()), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send email failed")
		return fmt.Errorf("failed to send error report: %w", err)
	}
	span.SetAttributes(attribute.String("ses.message_id", aws.ToString(out.MessageId)))
	return nil
}
