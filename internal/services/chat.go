package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/neuroplay/neuroplay-backend/internal/llm"
	"github.com/neuroplay/neuroplay-backend/internal/logger"
	apperrors "github.com/neuroplay/neuroplay-backend/internal/pkg/errors"
)

const chatSystemPrompt = `You are a helpful educational assistant for NeuroPlay, a learning behavior observation platform.

Your role:
- Help parents and teachers understand learning patterns and reports
- Provide guidance on supporting learners
- Answer questions about the platform
- Use calm, supportive, non-diagnostic language

CRITICAL RULES:
- DO NOT diagnose or label conditions
- DO NOT mention disorders, disabilities, or medical terms
- DO NOT compare learners to others
- Use observational, growth-oriented language
- Keep responses concise and helpful

Tone: Calm, supportive, neutral, non-judgmental.`

// safeChatFallback replaces assistant replies that trip the safety
// filter.
const safeChatFallback = "I can only discuss learning patterns in observational, supportive language. " +
	"Could you rephrase your question? For any concerns about a child, please consult a qualified professional."

type ChatService interface {
	Reply(ctx context.Context, message string, history []llm.Message) (string, error)
}

type chatService struct {
	log    *logger.Logger
	client llm.Client
}

func NewChatService(log *logger.Logger, client llm.Client) ChatService {
	serviceLog := log.With("service", "ChatService")
	return &chatService{log: serviceLog, client: client}
}

// Reply answers an observer's question. Every reply passes through the
// safety filter before leaving the service.
func (cs *chatService) Reply(ctx context.Context, message string, history []llm.Message) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", apperrors.ErrInvalidArgument)
	}
	if cs.client == nil {
		return "", fmt.Errorf("%w: chat model is not configured", apperrors.ErrConfigMissing)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	reply, err := cs.client.GenerateChat(ctx, chatSystemPrompt, messages)
	if err != nil {
		return "", err
	}

	if safe, violations := CheckSafety(reply); !safe {
		cs.log.Warn("Chat reply tripped safety filter, substituting fallback", "violations", violations)
		return safeChatFallback, nil
	}
	return reply, nil
}
