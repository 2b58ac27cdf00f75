package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/repositories"
)

var (
	errChatRepositoryRequired = errors.New("chat service: repository is required")
	errChatClockRequired      = errors.New("chat service: clock is required")
)

// ErrChatInvalidInput indicates the caller supplied an empty or invalid message.
var ErrChatInvalidInput = errors.New("chat service: invalid input")

// ErrChatUnavailable indicates the transcript store cannot fulfil the request.
var ErrChatUnavailable = errors.New("chat service: unavailable")

const maxChatMessageLength = 500

// chatTopic pairs keyword triggers with one canned assistant answer.
type chatTopic struct {
	keywords []string
	answer   string
}

// Replies the heritage assistant knows. Matching is first-hit in order, so
// the more specific topics come first.
var chatTopics = []chatTopic{
	{
		keywords: []string{"历史", "起源", "唐代"},
		answer:   "绒花起源于唐代，是一种传统的装饰花卉，多用于女性头饰。明清时期南京绒花工艺达到鼎盛，谐音\"荣华\"，寓意吉祥。",
	},
	{
		keywords: []string{"制作", "工艺", "技法", "材料"},
		answer:   "制作绒花需要选择优质的蚕丝材料，经过煮绒、染色、勾条、打尖、传花等工序，全程手工完成。",
	},
	{
		keywords: []string{"学习", "教程", "入门", "新手"},
		answer:   "学习绒花制作建议从基础教程开始，先练习勾条和打尖，循序渐进地掌握各种技法。商城的材料包适合入门练习。",
	},
	{
		keywords: []string{"购买", "价格", "商城", "多少钱"},
		answer:   "商城提供成品绒花、材料包和制作工具，成品均为手工制作。可以在商城页面按分类浏览并加入购物车。",
	},
}

const chatFallbackAnswer = "您好！我是绒花非遗智能助手。您可以询问绒花的历史、制作工艺、学习方法等问题，我会为您详细解答。"

// ChatServiceDeps wires the transcript store and reply generation knobs.
type ChatServiceDeps struct {
	Repository repositories.ChatHistoryRepository
	Clock      func() time.Time
	// ReplyDelay simulates assistant thinking time. Zero answers immediately.
	ReplyDelay time.Duration
	Logger     func(context.Context, string, map[string]any)
}

type chatService struct {
	repo      repositories.ChatHistoryRepository
	now       func() time.Time
	delay     time.Duration
	sanitizer *bluemonday.Policy
	logger    func(context.Context, string, map[string]any)
}

// NewChatService constructs a ChatService enforcing dependency validation.
func NewChatService(deps ChatServiceDeps) (ChatService, error) {
	if deps.Repository == nil {
		return nil, errChatRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errChatClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &chatService{
		repo:      deps.Repository,
		now:       func() time.Time { return deps.Clock().UTC() },
		delay:     deps.ReplyDelay,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}, nil
}

// Send records the user's message, waits out the simulated reply delay, then
// appends the assistant reply. Cancelling the context during the delay aborts
// the exchange before anything is persisted.
func (s *chatService) Send(ctx context.Context, cmd SendChatMessageCommand) (ChatExchange, error) {
	if s == nil || s.repo == nil {
		return ChatExchange{}, ErrChatUnavailable
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return ChatExchange{}, ErrChatInvalidInput
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Content))
	if content == "" || len([]rune(content)) > maxChatMessageLength {
		return ChatExchange{}, ErrChatInvalidInput
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ChatExchange{}, ctx.Err()
		case <-timer.C:
		}
	}

	history, err := s.repo.History(ctx, uid)
	if err != nil {
		return ChatExchange{}, s.translateRepoError(err)
	}

	userMessage := domain.ChatMessage{
		Type:      domain.MessageTypeUser,
		Content:   content,
		Timestamp: s.now(),
	}
	reply := domain.ChatMessage{
		Type:      domain.MessageTypeBot,
		Content:   answerFor(content),
		Timestamp: s.now(),
	}

	history = append(history, userMessage, reply)
	if err := s.repo.SaveHistory(ctx, uid, history); err != nil {
		return ChatExchange{}, s.translateRepoError(err)
	}
	s.logger(ctx, "chat.message_sent", map[string]any{
		"user_id":        uid,
		"history_length": len(history),
	})
	return ChatExchange{UserMessage: userMessage, Reply: reply}, nil
}

// History returns the transcript in append order.
func (s *chatService) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	if s == nil || s.repo == nil {
		return nil, ErrChatUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrChatInvalidInput
	}
	history, err := s.repo.History(ctx, uid)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return history, nil
}

// ClearHistory discards the transcript.
func (s *chatService) ClearHistory(ctx context.Context, userID string) error {
	if s == nil || s.repo == nil {
		return ErrChatUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ErrChatInvalidInput
	}
	if err := s.repo.ClearHistory(ctx, uid); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

// Export renders the transcript as plain text, one line per message.
func (s *chatService) Export(ctx context.Context, userID string) (string, error) {
	if s == nil || s.repo == nil {
		return "", ErrChatUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", ErrChatInvalidInput
	}
	history, err := s.repo.History(ctx, uid)
	if err != nil {
		return "", s.translateRepoError(err)
	}

	var b strings.Builder
	for _, message := range history {
		label := "用户"
		if message.Type == domain.MessageTypeBot {
			label = "助手"
		}
		b.WriteString(message.Timestamp.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(message.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func answerFor(content string) string {
	for _, topic := range chatTopics {
		for _, keyword := range topic.keywords {
			if strings.Contains(content, keyword) {
				return topic.answer
			}
		}
	}
	return chatFallbackAnswer
}

func (s *chatService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrChatUnavailable
}
