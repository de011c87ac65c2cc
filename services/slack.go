package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"subtrack/models"
)

// SendSlackPing posts a renewal heads-up to a Slack incoming webhook.
// Best effort: errors are logged by the caller's process output only and
// never affect the email batch.
func SendSlackPing(webhookURL string, sub models.Subscription, renewalDate models.Date) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Slack panic recovered: %v\n", r)
		}
	}()

	payload := map[string]string{
		"text": fmt.Sprintf("Renewal reminder sent\n\nService: %s\nCost: $%.2f\nRenews: %s\nOwner: %s",
			sub.ServiceName,
			sub.Cost,
			renewalDate,
			sub.OwnerEmail,
		),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error marshaling Slack payload: %v\n", err)
		return
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		fmt.Printf("Error sending Slack request: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Printf("Slack API error: Status %d\n", resp.StatusCode)
	}
}
