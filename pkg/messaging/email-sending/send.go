package emailsending

import (
	"errors"
	"log/slog"

	messageDB "github.com/nidrip/nidrip-backend/pkg/db/messaging"
	httpclient "github.com/nidrip/nidrip-backend/pkg/http-client"
	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
)

var (
	HttpClient       *httpclient.ClientConfig
	messageDBService *messageDB.MessagingDBService

	GlobalTemplateInfos = map[string]string{}
)

func InitMessageSendingVariables(
	newClientConfig *httpclient.ClientConfig,
	globalTemplateInfos map[string]string,
	mdb *messageDB.MessagingDBService,
) {
	HttpClient = newClientConfig
	GlobalTemplateInfos = globalTemplateInfos
	messageDBService = mdb
}

type SendEmailReq struct {
	To       []string                        `json:"to"`
	Subject  string                          `json:"subject"`
	Content  string                          `json:"content"`
	HighPrio bool                            `json:"highPrio"`
	Headers  *messagingTypes.HeaderOverrides `json:"headerOverrides"`
}

func SendOutgoingEmail(outgoing *messagingTypes.OutgoingEmail) error {
	if HttpClient == nil || HttpClient.RootURL == "" {
		return errors.New("connection to smtp bridge not initialized")
	}

	sendEmailReq := SendEmailReq{
		To:       outgoing.To,
		Subject:  outgoing.Subject,
		Content:  outgoing.Content,
		HighPrio: outgoing.HighPrio,
		Headers:  outgoing.HeaderOverrides,
	}
	resp, err := HttpClient.RunHTTPcall("/send-email", sendEmailReq)
	if err == nil && resp != nil {
		errMsg, hasError := resp["error"]
		if hasError {
			err = errors.New(errMsg.(string))
		}
	}
	return err
}

// SendInstantEmailByTemplate renders a built-in template and hands the
// message to the smtp bridge. If delivery fails the message is persisted to
// the outgoing queue instead of being dropped.
func SendInstantEmailByTemplate(
	to []string,
	messageType string,
	payload map[string]string,
	useLowPrio bool,
) error {
	subject, content, err := renderEmail(messageType, payload)
	if err != nil {
		return err
	}

	outgoingEmail := messagingTypes.OutgoingEmail{
		MessageType: messageType,
		To:          to,
		Subject:     subject,
		Content:     content,
		HighPrio:    !useLowPrio,
	}

	err = SendOutgoingEmail(&outgoingEmail)
	if err != nil {
		slog.Debug("error while sending email", slog.String("error", err.Error()))
		if messageDBService != nil {
			_, errS := messageDBService.AddToOutgoingEmails(outgoingEmail)
			if errS != nil {
				slog.Error("failed to save outgoing email", slog.String("error", errS.Error()))
				return errS
			}
			slog.Debug("failed to send email but saved to outgoing", slog.String("error", err.Error()))
		}
		return err
	}

	if messageDBService != nil {
		_, err = messageDBService.AddToSentEmails(outgoingEmail)
		if err != nil {
			slog.Error("failed to save sent email", slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}
