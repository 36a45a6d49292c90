package emailsending

import (
	"bytes"
	"fmt"
	"html/template"

	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
)

// Built-in message templates. Payload values are merged with the configured
// GlobalEmailTemplateConstants before execution.
var emailTemplates = map[string]struct {
	subject string
	body    string
}{
	messagingTypes.EMAIL_TYPE_WELCOME: {
		subject: "Welcome to {{.shopName}}",
		body: `<p>Hi {{.name}},</p>
<p>your account at {{.shopName}} is ready.</p>`,
	},
	messagingTypes.EMAIL_TYPE_PASSWORD_RESET: {
		subject: "Reset your password",
		body: `<p>Hi {{.name}},</p>
<p>use the link below to choose a new password. The link is valid for {{.validUntil}} hour(s).</p>
<p><a href="{{.baseURL}}/password-reset/{{.token}}">Reset password</a></p>
<p>If you did not request this, you can ignore this message.</p>`,
	},
	messagingTypes.EMAIL_TYPE_PASSWORD_CHANGED: {
		subject: "Your password was changed",
		body: `<p>Hi {{.name}},</p>
<p>the password for your {{.shopName}} account was just changed. All other devices were signed out.</p>
<p>If this was not you, reset your password immediately.</p>`,
	},
}

func renderEmail(messageType string, payload map[string]string) (subject string, content string, err error) {
	templateDef, ok := emailTemplates[messageType]
	if !ok {
		return "", "", fmt.Errorf("unknown email message type: %s", messageType)
	}

	if payload == nil {
		payload = map[string]string{}
	}
	for k, v := range GlobalTemplateInfos {
		if _, set := payload[k]; !set {
			payload[k] = v
		}
	}

	subjectTmpl, err := template.New(messageType + "-subject").Parse(templateDef.subject)
	if err != nil {
		return "", "", err
	}
	var subjectBuf bytes.Buffer
	if err := subjectTmpl.Execute(&subjectBuf, payload); err != nil {
		return "", "", err
	}

	bodyTmpl, err := template.New(messageType).Parse(templateDef.body)
	if err != nil {
		return "", "", err
	}
	var bodyBuf bytes.Buffer
	if err := bodyTmpl.Execute(&bodyBuf, payload); err != nil {
		return "", "", err
	}

	return subjectBuf.String(), bodyBuf.String(), nil
}
