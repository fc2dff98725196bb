package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageArabic     Language = "ar"
	LanguageMalay      Language = "ms"
	LanguageFrench     Language = "fr"
	LanguageIndonesian Language = "id"
	LanguageHindi      Language = "hi"
)

// Message is one transcript line. Never mutated after creation.
type Message struct {
	ID         string          `json:"id"`
	Role       schema.RoleType `json:"role"`
	Content    string          `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	Intent     IntentName      `json:"intent,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Language   Language        `json:"language,omitempty"`
}

// Schema converts the message for eino-based context strategies.
func (m Message) Schema() *schema.Message {
	if m.Role == schema.Assistant {
		return schema.AssistantMessage(m.Content, nil)
	}
	return schema.UserMessage(m.Content)
}
