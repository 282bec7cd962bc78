package ai

import (
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
)

// SystemInstruction is prepended to every prompt and never stored in a transcript.
const SystemInstruction = "You are an expert AI coding assistant. Provide concise, correct solutions " +
	"with strategic print statements for debugging. Always respond in English."

// Assemble converts a transcript snapshot into the message sequence sent to the
// model. The system instruction always comes first. Turn content is copied
// verbatim and never run through a template engine, so braces typed by the
// user reach the model untouched. Stored system turns are skipped.
func Assemble(turns []chat.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns)+1)
	messages = append(messages, schema.SystemMessage(SystemInstruction))

	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return messages
}
