package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendLinkEmailTaskName  = "sendLinkEmailTask"
	SendLinkEmailQueueName = "sendLinkEmailQueue"
)

// SendLinkEmail carries one outbound form-link email. EmailType is either
// "initial" or "reminder".
type SendLinkEmail struct {
	OwnerID   string `json:"owner_id"`
	Recipient string `json:"recipient"`
	LinkToken string `json:"link_token"`
	EmailType string `json:"email_type"`
}

func NewSendLinkEmailTask(ownerID, recipient, linkToken, emailType string) (*asynq.Task, error) {
	data := SendLinkEmail{
		OwnerID:   ownerID,
		Recipient: recipient,
		LinkToken: linkToken,
		EmailType: emailType,
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	// No retries: a failed delivery is recorded in the email log and the
	// next resend sweep decides whether to try again.
	return asynq.NewTask(
		SendLinkEmailTaskName,
		payload,
		asynq.MaxRetry(0),
		asynq.Queue(SendLinkEmailQueueName),
	), nil
}
