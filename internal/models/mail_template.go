package models

// MailTemplate is a transactional email template stored in the mail_templates
// collection, keyed by template ID and locale. In-code defaults cover the
// templates the app depends on when the collection has not been seeded.
type MailTemplate struct {
	Base       `bson:",inline"`
	TemplateID string `bson:"template_id" json:"template_id"`
	Locale     string `bson:"locale" json:"locale"`
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"`
}
