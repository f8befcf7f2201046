package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/llm"
	"costwise-go/pkg/log"

	"github.com/gorilla/websocket"
)

// chatTopK 比单次查询取更多分块，对话场景下问题往往更发散。
const chatTopK = 10

// ChatService 定义了流式对话的接口。
type ChatService interface {
	StreamResponse(ctx context.Context, query string, user *model.User, projectID *uint, ws *websocket.Conn, shouldStop func() bool) error
}

type chatService struct {
	embeddingClient  embedding.Client
	index            esIndex
	contextBuilder   ContextBuilder
	llmClient        llm.Client
	conversationRepo repository.ConversationRepository
}

// esIndex 是 es.Index 中对话服务需要的最小子集。
type esIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]model.EsHit, error)
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	embeddingClient embedding.Client,
	index esIndex,
	contextBuilder ContextBuilder,
	llmClient llm.Client,
	conversationRepo repository.ConversationRepository,
) ChatService {
	return &chatService{
		embeddingClient:  embeddingClient,
		index:            index,
		contextBuilder:   contextBuilder,
		llmClient:        llmClient,
		conversationRepo: conversationRepo,
	}
}

// StreamResponse 协调 RAG 流程并流式传输生成响应。
func (s *chatService) StreamResponse(ctx context.Context, query string, user *model.User, projectID *uint, ws *websocket.Conn, shouldStop func() bool) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}

	// 1. 检索参考分块
	queryVector, err := s.embeddingClient.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := s.index.Search(ctx, queryVector, chatTopK)
	if err != nil {
		return fmt.Errorf("failed to retrieve context: %w", err)
	}

	// 2. 组装 system 消息与对话历史
	systemMsg := s.buildSystemMessage(hits, projectID)
	history, err := s.loadHistory(ctx, user.ID)
	if err != nil {
		log.Errorf("[ChatService] 加载对话历史失败: %v", err)
		history = []model.ChatMessage{}
	}
	messages := composeMessages(systemMsg, history, query)

	// 拦截 websocket writer 以捕获完整答案，并包装为 JSON 分块
	answerBuilder := &strings.Builder{}
	interceptor := &wsWriterInterceptor{conn: ws, writer: answerBuilder, shouldStop: shouldStop}

	// 3. 流式生成
	gen := &llm.GenerationParams{
		Temperature: &queryTemperature,
		MaxTokens:   &queryMaxTokens,
	}
	if err := s.llmClient.StreamChatMessages(ctx, messages, gen, interceptor); err != nil {
		return err
	}

	// 4. 发送完成通知，并将对话保存到 Redis
	sendCompletion(ws)
	fullAnswer := answerBuilder.String()
	if len(fullAnswer) > 0 {
		// 使用后台上下文：即使原始请求被取消，也要保存已生成的答案
		if err := s.saveTurn(context.Background(), user.ID, query, fullAnswer); err != nil {
			log.Errorf("[ChatService] 保存对话历史失败: %v", err)
		}
	}

	return nil
}

// buildSystemMessage 复用查询管线的人设，附加编号引用与成本统计。
func (s *chatService) buildSystemMessage(hits []model.EsHit, projectID *uint) string {
	var sys strings.Builder
	sys.WriteString(systemPrompt)
	sys.WriteString("\n\n参考资料：\n")
	sys.WriteString(buildGroundingBlock(hits))
	sys.WriteString("\n成本统计：\n")
	sys.WriteString(s.contextBuilder.BuildContext(projectID))
	return sys.String()
}

func (s *chatService) loadHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error) {
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.conversationRepo.GetConversationHistory(ctx, convID)
}

func composeMessages(systemMsg string, history []model.ChatMessage, userInput string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemMsg})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: userInput})
	return msgs
}

// saveTurn 将一轮问答追加到用户当前对话的历史记录中。
func (s *chatService) saveTurn(ctx context.Context, userID uint, question, answer string) error {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get or create conversation ID: %w", err)
	}

	history, err := s.conversationRepo.GetConversationHistory(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to get conversation history: %w", err)
	}

	history = append(history,
		model.ChatMessage{Role: "user", Content: question, Timestamp: time.Now()},
		model.ChatMessage{Role: "assistant", Content: answer, Timestamp: time.Now()},
	)
	return s.conversationRepo.UpdateConversationHistory(ctx, conversationID, history)
}

// wsWriterInterceptor 是对 websocket.Conn 的封装，用于捕获写入的消息。
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	writer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// 停止标志生效：跳过下发
		return nil
	}
	w.writer.Write(data)
	// 将原始分块包装成 {"chunk":"..."}
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}

// sendCompletion 发送完成通知 JSON。
func sendCompletion(ws *websocket.Conn) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"message":   "响应已完成",
		"timestamp": time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
