// Package services wires the parsing, classification, storage and
// reporting pieces together, one inbound chat event at a time.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/cache"
	"kakeibo/internal/chart"
	"kakeibo/internal/classifier"
	"kakeibo/internal/core"
	"kakeibo/internal/line"
	"kakeibo/internal/parser"
	"kakeibo/internal/report"
)

const usageText = "📝 使い方:\n\n" +
	"【登録】\n" +
	"ランチ 1200\n" +
	"スーパー 4500 食費\n" +
	"家賃 70000 固定\n\n" +
	"【コマンド】\n" +
	"今月 → 月次集計\n" +
	"固定一覧 → 固定費一覧\n" +
	"残高 → 通算残高"

const (
	fetchFailedText  = "⚠️ データ取得に失敗しました。"
	insertFailedText = "⚠️ 登録に失敗しました。もう一度お試しください。"
)

// Repository is the storage collaborator. All queries are scoped to
// one user; the fixed listing comes back already deduplicated.
type Repository interface {
	Insert(ctx context.Context, tx core.Transaction) (int64, error)
	ListByMonth(ctx context.Context, userID, month string) ([]core.Transaction, error)
	ListFixed(ctx context.Context, userID string) ([]core.Transaction, error)
	ListAll(ctx context.Context, userID string) ([]core.Transaction, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Transaction, error)
}

// Replier sends the reply message for one event.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// SyncPublisher enqueues a freshly stored transaction for the backup
// worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
}

// MessageService handles webhook events end to end: command → report
// reply; transaction entry → classify, persist, confirm; anything
// else → usage help.
type MessageService struct {
	repo         Repository
	replier      Replier
	publisher    SyncPublisher // nil disables the backup pipeline
	chartBaseURL string        // empty disables chart links
	now          func() time.Time

	// summaries caches assembled monthly reports per user+month.
	// Registration invalidates the entry, so served text is never stale.
	summaries *cache.LRUCache[string]
	cleanup   *cache.Manager
}

func NewMessageService(repo Repository, replier Replier, publisher SyncPublisher, chartBaseURL string) *MessageService {
	summaries := cache.NewLRUCache[string](100, 5*time.Minute)
	cleanup := cache.NewManager()
	cleanup.Register(summaries)
	cleanup.StartCleanup(10 * time.Minute)

	return &MessageService{
		repo:         repo,
		replier:      replier,
		publisher:    publisher,
		chartBaseURL: chartBaseURL,
		now:          time.Now,
		summaries:    summaries,
		cleanup:      cleanup,
	}
}

// Close stops background cache maintenance.
func (s *MessageService) Close() {
	s.cleanup.Stop()
}

func summaryKey(userID, month string) string {
	return userID + "|" + month
}

// HandleEvents processes a webhook batch. Events are independent, so
// they run concurrently; each gets its own reply and a failure in one
// does not stop the others.
func (s *MessageService) HandleEvents(ctx context.Context, events []line.Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ev := range events {
		if !ev.IsTextMessage() {
			continue
		}
		g.Go(func() error {
			if err := s.HandleTextMessage(ctx, ev); err != nil {
				slog.ErrorContext(ctx, "Event handling failed",
					"error", err,
					"user_id", ev.Source.UserID)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// HandleTextMessage routes one text message.
func (s *MessageService) HandleTextMessage(ctx context.Context, ev line.Event) error {
	text := ev.Message.Text
	userID := ev.Source.UserID
	replyToken := ev.ReplyToken

	if cmd, ok := parser.ParseCommand(text); ok {
		return s.handleCommand(ctx, cmd, userID, replyToken)
	}

	draft, ok := parser.ParseTransaction(text)
	if !ok {
		return s.replier.Reply(ctx, replyToken, usageText)
	}

	return s.registerTransaction(ctx, draft, userID, replyToken)
}

func (s *MessageService) handleCommand(ctx context.Context, cmd core.Command, userID, replyToken string) error {
	switch cmd {
	case core.CommandMonthlySummary:
		return s.replyMonthlySummary(ctx, userID, replyToken)
	case core.CommandFixedList:
		return s.replyFixedList(ctx, userID, replyToken)
	case core.CommandBalance:
		return s.replyBalance(ctx, userID, replyToken)
	}
	return fmt.Errorf("unhandled command %q", cmd)
}

func (s *MessageService) replyMonthlySummary(ctx context.Context, userID, replyToken string) error {
	month := parser.MonthOf(s.now())
	key := summaryKey(userID, month)
	if text, ok := s.summaries.Get(key); ok {
		return s.replier.Reply(ctx, replyToken, text)
	}

	txs, err := s.repo.ListByMonth(ctx, userID, month)
	if err != nil {
		slog.ErrorContext(ctx, "Monthly query failed", "error", err, "month", month)
		return s.replier.Reply(ctx, replyToken, fetchFailedText)
	}

	text, totals := report.MonthlySummary(txs, month)
	if s.chartBaseURL != "" && len(totals) > 0 {
		url := chart.URL(totals, month+" 支出内訳", s.chartBaseURL)
		text += "\n📊 グラフ: " + url
	}
	s.summaries.Set(key, text)
	return s.replier.Reply(ctx, replyToken, text)
}

func (s *MessageService) replyFixedList(ctx context.Context, userID, replyToken string) error {
	items, err := s.repo.ListFixed(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Fixed list query failed", "error", err)
		return s.replier.Reply(ctx, replyToken, fetchFailedText)
	}
	return s.replier.Reply(ctx, replyToken, report.FixedList(items))
}

func (s *MessageService) replyBalance(ctx context.Context, userID, replyToken string) error {
	all, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "History query failed", "error", err)
		return s.replier.Reply(ctx, replyToken, fetchFailedText)
	}

	text := report.BalanceSummary(all)

	if s.chartBaseURL != "" && len(all) > 0 {
		months, balances := report.MonthlyBalances(all)
		text += "\n\n📈 残高推移: " + chart.BalanceURL(months, balances, s.chartBaseURL)

		expenses, err := s.repo.ListExpenses(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "Expense history query failed, skipping analysis link", "error", err)
		} else if _, totals := report.ExpenseAnalysis(expenses); len(totals) > 0 {
			text += "\n📊 支出分析: " + chart.URL(totals, "支出分析", s.chartBaseURL)
		}
	}

	return s.replier.Reply(ctx, replyToken, text)
}

func (s *MessageService) registerTransaction(ctx context.Context, draft parser.Draft, userID, replyToken string) error {
	txType := classifier.TypeOf(draft.Description)

	// User-supplied category wins over the classifier.
	category := draft.Category
	if category == "" {
		category = classifier.Classify(draft.Description, txType)
	}

	tx := core.Transaction{
		UserID:      userID,
		Month:       parser.MonthOf(s.now()),
		Description: draft.Description,
		Amount:      draft.Amount,
		Type:        txType,
		Category:    category,
		IsFixed:     draft.IsFixed,
	}

	id, err := s.repo.Insert(ctx, tx)
	if err != nil {
		slog.ErrorContext(ctx, "Insert failed", "error", err, "month", tx.Month)
		return s.replier.Reply(ctx, replyToken, insertFailedText)
	}
	tx.ID = id
	s.summaries.Delete(summaryKey(userID, tx.Month))

	// Backup is best-effort: a broker outage must not fail the reply.
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
			slog.WarnContext(ctx, "Sync publish failed", "error", err, "id", id)
		}
	}

	return s.replier.Reply(ctx, replyToken, report.RegistrationMessage(tx))
}
