package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
)

func memoryChatRepository() *stubChatRepository {
	var saved []domain.ChatMessage
	repo := &stubChatRepository{}
	repo.historyFunc = func(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
		return saved, nil
	}
	repo.saveFunc = func(ctx context.Context, userID string, messages []domain.ChatMessage) error {
		saved = messages
		return nil
	}
	repo.clearFunc = func(ctx context.Context, userID string) error {
		saved = nil
		return nil
	}
	return repo
}

func newTestChatService(t *testing.T, repo *stubChatRepository, delay time.Duration) ChatService {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewChatService(ChatServiceDeps{
		Repository: repo,
		Clock:      func() time.Time { return now },
		ReplyDelay: delay,
	})
	if err != nil {
		t.Fatalf("unexpected error constructing chat service: %v", err)
	}
	return service
}

func TestChatServiceSendAppendsUserAndBotMessages(t *testing.T) {
	repo := memoryChatRepository()
	service := newTestChatService(t, repo, 0)
	ctx := context.Background()

	exchange, err := service.Send(ctx, SendChatMessageCommand{UserID: "u1", Content: "绒花的历史是什么"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if exchange.UserMessage.Type != domain.MessageTypeUser {
		t.Fatalf("expected user message type, got %q", exchange.UserMessage.Type)
	}
	if exchange.Reply.Type != domain.MessageTypeBot {
		t.Fatalf("expected bot reply type, got %q", exchange.Reply.Type)
	}
	if !strings.Contains(exchange.Reply.Content, "唐代") {
		t.Fatalf("expected history answer, got %q", exchange.Reply.Content)
	}

	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages in transcript, got %d", len(history))
	}
	if history[0].Type != domain.MessageTypeUser || history[1].Type != domain.MessageTypeBot {
		t.Fatalf("unexpected transcript order: %+v", history)
	}
}

func TestChatServiceKeywordRouting(t *testing.T) {
	service := newTestChatService(t, memoryChatRepository(), 0)
	ctx := context.Background()

	cases := []struct {
		content string
		want    string
	}{
		{"怎么制作绒花", "蚕丝"},
		{"新手如何入门", "基础教程"},
		{"商城里多少钱", "商城"},
		{"今天天气怎么样", "智能助手"},
	}
	for _, tc := range cases {
		exchange, err := service.Send(ctx, SendChatMessageCommand{UserID: "u1", Content: tc.content})
		if err != nil {
			t.Fatalf("send %q: %v", tc.content, err)
		}
		if !strings.Contains(exchange.Reply.Content, tc.want) {
			t.Fatalf("question %q: expected answer containing %q, got %q", tc.content, tc.want, exchange.Reply.Content)
		}
	}
}

func TestChatServiceSendStripsMarkup(t *testing.T) {
	repo := memoryChatRepository()
	service := newTestChatService(t, repo, 0)

	exchange, err := service.Send(context.Background(), SendChatMessageCommand{
		UserID:  "u1",
		Content: `<script>alert(1)</script>绒花历史`,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(exchange.UserMessage.Content, "<script>") {
		t.Fatalf("expected markup stripped, got %q", exchange.UserMessage.Content)
	}
	if !strings.Contains(exchange.UserMessage.Content, "绒花历史") {
		t.Fatalf("expected text preserved, got %q", exchange.UserMessage.Content)
	}
}

func TestChatServiceSendRejectsEmptyContent(t *testing.T) {
	service := newTestChatService(t, memoryChatRepository(), 0)

	for _, content := range []string{"", "   ", "<b></b>"} {
		if _, err := service.Send(context.Background(), SendChatMessageCommand{UserID: "u1", Content: content}); !errors.Is(err, ErrChatInvalidInput) {
			t.Fatalf("expected ErrChatInvalidInput for %q, got %v", content, err)
		}
	}
}

func TestChatServiceSendHonoursCancellationDuringDelay(t *testing.T) {
	repo := memoryChatRepository()
	var saves int
	inner := repo.saveFunc
	repo.saveFunc = func(ctx context.Context, userID string, messages []domain.ChatMessage) error {
		saves++
		return inner(ctx, userID, messages)
	}
	service := newTestChatService(t, repo, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := service.Send(ctx, SendChatMessageCommand{UserID: "u1", Content: "绒花历史"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if saves != 0 {
		t.Fatalf("expected nothing persisted after cancellation, got %d saves", saves)
	}
}

func TestChatServiceExportRendersTranscript(t *testing.T) {
	service := newTestChatService(t, memoryChatRepository(), 0)
	ctx := context.Background()

	if _, err := service.Send(ctx, SendChatMessageCommand{UserID: "u1", Content: "绒花的历史"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	transcript, err := service.Export(ctx, "u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(transcript, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 transcript lines, got %d: %q", len(lines), transcript)
	}
	if !strings.Contains(lines[0], "用户: 绒花的历史") {
		t.Fatalf("unexpected user line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "助手: ") || !strings.Contains(lines[1], "唐代") {
		t.Fatalf("unexpected assistant line: %q", lines[1])
	}
	if !strings.HasPrefix(lines[0], "2026-03-01 12:00:00") {
		t.Fatalf("expected timestamp prefix, got %q", lines[0])
	}
}

func TestChatServiceClearHistory(t *testing.T) {
	service := newTestChatService(t, memoryChatRepository(), 0)
	ctx := context.Background()

	if _, err := service.Send(ctx, SendChatMessageCommand{UserID: "u1", Content: "你好"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := service.ClearHistory(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	history, err := service.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty transcript after clear, got %d", len(history))
	}
}
