package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
)

// Template identifiers used by the notification flows.
const (
	TemplateWelcome          = "welcome"
	TemplatePasswordReset    = "password_reset"
	TemplateBookingConfirmed = "booking_confirmed"
	TemplateBookingRejected  = "booking_rejected"
)

// IMailTemplateService resolves and renders notification templates. Templates
// live in the database so operators can reword them without a deploy; the
// built-in defaults below are the fallback when a template has not been seeded.
type IMailTemplateService interface {
	Get(ctx context.Context, templateID, locale string) (*models.MailTemplate, error)
	Upsert(ctx context.Context, tpl *models.MailTemplate) error
	Render(ctx context.Context, templateID, locale string, data any) (subject, body string, err error)
}

const mailTemplatesCollection = "mail_templates"

var defaultTemplates = map[string]models.MailTemplate{
	TemplateWelcome: {
		TemplateID: TemplateWelcome,
		Locale:     "en",
		Subject:    "Welcome to {{.AppName}}",
		Body:       "Hi {{.FirstName}},\n\nYour {{.AppName}} account is ready. Log in to browse ad inventory and manage your bookings.\n",
	},
	TemplatePasswordReset: {
		TemplateID: TemplatePasswordReset,
		Locale:     "en",
		Subject:    "Reset your {{.AppName}} password",
		Body:       "Hi {{.FirstName}},\n\nUse the link below to choose a new password. The link expires soon.\n\n{{.ResetURL}}\n",
	},
	TemplateBookingConfirmed: {
		TemplateID: TemplateBookingConfirmed,
		Locale:     "en",
		Subject:    "Your booking has been confirmed",
		Body:       "Hi {{.FirstName}},\n\nThe advertiser has confirmed your booking of \"{{.AdTitle}}\" from {{.StartTime}} to {{.EndTime}}.\n",
	},
	TemplateBookingRejected: {
		TemplateID: TemplateBookingRejected,
		Locale:     "en",
		Subject:    "Your booking was not accepted",
		Body:       "Hi {{.FirstName}},\n\nUnfortunately the advertiser rejected your booking of \"{{.AdTitle}}\". The reserved window has been released.\n",
	},
}

type mailTemplateService struct {
	db *mongo.Database
}

// NewMailTemplateService creates a new MailTemplateService.
func NewMailTemplateService(database *mongo.Database) IMailTemplateService {
	return &mailTemplateService{db: database}
}

// Get fetches a template by id and locale, falling back first to the "en"
// locale and then to the built-in default.
func (s *mailTemplateService) Get(ctx context.Context, templateID, locale string) (*models.MailTemplate, error) {
	if locale == "" {
		locale = "en"
	}
	var tpl models.MailTemplate
	err := s.db.Collection(mailTemplatesCollection).
		FindOne(ctx, bson.M{"template_id": templateID, "locale": locale}).
		Decode(&tpl)
	if err == nil {
		return &tpl, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error finding mail template %s/%s: %w", templateID, locale, err)
	}
	if locale != "en" {
		return s.Get(ctx, templateID, "en")
	}
	if def, ok := defaultTemplates[templateID]; ok {
		return &def, nil
	}
	return nil, mongo.ErrNoDocuments
}

// Upsert stores or replaces a template keyed by (template_id, locale).
func (s *mailTemplateService) Upsert(ctx context.Context, tpl *models.MailTemplate) error {
	if tpl.TemplateID == "" {
		return fmt.Errorf("template id is required")
	}
	if tpl.Locale == "" {
		tpl.Locale = "en"
	}
	_, err := s.db.Collection(mailTemplatesCollection).UpdateOne(ctx,
		bson.M{"template_id": tpl.TemplateID, "locale": tpl.Locale},
		bson.M{"$set": bson.M{"subject": tpl.Subject, "body": tpl.Body}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert mail template %s/%s: %w", tpl.TemplateID, tpl.Locale, err)
	}
	return nil
}

// Render resolves a template and executes subject and body against data.
func (s *mailTemplateService) Render(ctx context.Context, templateID, locale string, data any) (string, string, error) {
	tpl, err := s.Get(ctx, templateID, locale)
	if err != nil {
		return "", "", err
	}
	subject, err := execute(templateID+":subject", tpl.Subject, data)
	if err != nil {
		return "", "", err
	}
	body, err := execute(templateID+":body", tpl.Body, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func execute(name, text string, data any) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse mail template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mail template %s: %w", name, err)
	}
	return buf.String(), nil
}
