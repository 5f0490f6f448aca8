// internal/notification/templates.go

package notifications

import (
	"bytes"
	"fmt"
	"text/template"
)

type messageTemplate struct {
	title *template.Template
	body  *template.Template
}

var defaultTemplates = map[NotificationType]messageTemplate{
	TypeGameInvitation: mustTemplate(
		"{{.Inviter}} wants to play",
		"{{.Inviter}} invited you to {{.Game}}. The invite expires in {{.ExpiresIn}}.",
	),
	TypeGameCompleted: mustTemplate(
		"Results are in",
		"You finished {{.Game}} with {{.Partner}}. See how you matched up.",
	),
	TypeDatePlanReady: mustTemplate(
		"Your date plan is ready",
		"We picked {{.Venue}} for you and {{.Partner}}.",
	),
}

func mustTemplate(title, body string) messageTemplate {
	return messageTemplate{
		title: template.Must(template.New("title").Parse(title)),
		body:  template.Must(template.New("body").Parse(body)),
	}
}

// Render fills the default template for a notification type
func Render(notificationType NotificationType, data map[string]string) (title, body string, err error) {
	tmpl, ok := defaultTemplates[notificationType]
	if !ok {
		return "", "", fmt.Errorf("no template for %s", notificationType)
	}

	var buf bytes.Buffer
	if err := tmpl.title.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render title: %w", err)
	}
	title = buf.String()

	buf.Reset()
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}
	return title, buf.String(), nil
}

// gameLabel turns a game type into display text
func gameLabel(gameType string) string {
	switch gameType {
	case "two_truths_lie":
		return "Two Truths and a Lie"
	case "would_you_rather":
		return "Would You Rather"
	case "intimacy_spectrum":
		return "Intimacy Spectrum"
	case "never_have_i_ever":
		return "Never Have I Ever"
	case "what_would_you_do":
		return "What Would You Do"
	case "dream_board":
		return "Dream Board"
	}
	return gameType
}
