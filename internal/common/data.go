package common

import (
	"encoding/json"
	"fmt"

	"github.com/tuannvm/jira-assistant/internal/models"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// ExtractChatMessage pulls a ChatMessage out of an A2A message. Clients
// send either a DataPart carrying the JSON object or a TextPart with the
// object serialized as text; both shapes are accepted.
func ExtractChatMessage(message protocol.Message, msg *models.ChatMessage) error {
	if len(message.Parts) == 0 {
		return fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		// Try DataPart first (value or pointer)
		var dp *protocol.DataPart
		switch v := part.(type) {
		case protocol.DataPart:
			dp = &v
		case *protocol.DataPart:
			dp = v
		}
		if dp != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				continue
			}
			if err := json.Unmarshal(raw, msg); err == nil && msg.UserID != "" && msg.Text != "" {
				return nil
			}
			var dataMap map[string]interface{}
			if err := json.Unmarshal(raw, &dataMap); err == nil {
				if extractChatFromMap(dataMap, msg) == nil {
					return nil
				}
			}
		}

		// Then TextPart
		if textPart, ok := part.(*protocol.TextPart); ok && textPart != nil && textPart.Text != "" {
			if err := json.Unmarshal([]byte(textPart.Text), msg); err == nil && msg.UserID != "" && msg.Text != "" {
				return nil
			}
			var dataMap map[string]interface{}
			if err := json.Unmarshal([]byte(textPart.Text), &dataMap); err == nil {
				if extractChatFromMap(dataMap, msg) == nil {
					return nil
				}
			}
		}
	}

	return fmt.Errorf("could not extract chat message from message parts")
}

func extractChatFromMap(data map[string]interface{}, msg *models.ChatMessage) error {
	userID, ok := GetStringValue(data, "userId", "user_id", "from", "sender")
	if !ok {
		return fmt.Errorf("no user ID found in data")
	}
	text, ok := GetStringValue(data, "text", "message", "body")
	if !ok {
		return fmt.Errorf("no text found in data")
	}
	msg.UserID = userID
	msg.Text = text
	return nil
}

// ExtractIssueDraft pulls a fully-formed issue draft out of an A2A message,
// for the direct (non-conversational) validation path. A draft payload is
// recognized by a non-empty summary.
func ExtractIssueDraft(message protocol.Message, draft *models.IssueDraft) error {
	if len(message.Parts) == 0 {
		return fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		var raw []byte
		switch v := part.(type) {
		case protocol.DataPart:
			raw, _ = json.Marshal(v.Data)
		case *protocol.DataPart:
			raw, _ = json.Marshal(v.Data)
		case *protocol.TextPart:
			if v != nil {
				raw = []byte(v.Text)
			}
		}
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, draft); err == nil && draft.Summary != "" {
			return nil
		}
	}

	return fmt.Errorf("could not extract issue draft from message parts")
}
