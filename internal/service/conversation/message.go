package conversation

import "ChatGateway/internal/ai"

// BuildUserMessage собирает сообщение пользователя: с картинкой — [image, text], без неё — [text].
func BuildUserMessage(prompt, imageURL string) ai.Message {
	if imageURL != "" {
		return ai.Message{
			Role:    ai.RoleUser,
			Content: []ai.Part{ai.ImagePart(imageURL), ai.TextPart(prompt)},
		}
	}
	return ai.Message{Role: ai.RoleUser, Content: []ai.Part{ai.TextPart(prompt)}}
}

// AssistantMessage оборачивает нормализованный ответ модели в сообщение ассистента.
func AssistantMessage(text string) ai.Message {
	return ai.Message{Role: ai.RoleAssistant, Content: []ai.Part{ai.TextPart(text)}}
}
