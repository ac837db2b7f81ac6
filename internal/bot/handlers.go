package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studybot/internal/quiz"
	"github.com/example/studybot/pkg/models"
)

// Callback data prefixes for quiz answers and review quality ratings
const (
	callbackAnswerPrefix   = "answer_"
	callbackRatePrefix     = "rate_"
	callbackQuizKindPrefix = "quiz_kind_"
)

// handleCommand dispatches bot commands
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStartCommand(message)
	case "menu":
		b.showMainMenu(message.Chat.ID)
	case "review":
		b.startReviewSession(message.Chat.ID)
	case "quiz":
		b.showQuizKindMenu(message.Chat.ID)
	case "due":
		b.handleDueCommand(message)
	case "stats":
		b.handleStatsCommand(message)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /menu to show the main menu.")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		b.api.Send(msg)
	}
}

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	welcomeText := `Welcome to the dialogue study bot! 🎓

Learn real expressions from the show with spaced repetition and quizzes.

Available commands:
/menu - Show main menu
/review - Review expressions that are due
/quiz - Take a quiz
/due - List due expressions
/stats - Show your statistics`

	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	b.api.Send(msg)
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	b.api.Send(msg)
}

// handleDueCommand lists due expressions, most overdue first
func (b *Bot) handleDueCommand(message *tgbotapi.Message) {
	due, err := b.reviews.DueToday()
	if err != nil {
		log.Printf("Error getting due expressions: %v", err)
		b.sendText(message.Chat.ID, "Could not load due expressions. Please try again.")
		return
	}
	if len(due) == 0 {
		b.sendText(message.Chat.ID, "Nothing is due today. Great job staying on top of your reviews! 🎉")
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "📚 %d expressions due:\n\n", len(due))
	limit := b.config.DueListLimit
	for i, rec := range due {
		if i >= limit {
			fmt.Fprintf(&text, "...and %d more\n", len(due)-limit)
			break
		}
		if rec.DaysOverdue > 0 {
			fmt.Fprintf(&text, "%d. %s (%d days overdue)\n", i+1, rec.Text, rec.DaysOverdue)
		} else {
			fmt.Fprintf(&text, "%d. %s\n", i+1, rec.Text)
		}
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text.String())
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🔄 Start Review", CallbackData: "start_review"}},
	})
	b.api.Send(msg)
}

// handleStatsCommand shows aggregate review statistics
func (b *Bot) handleStatsCommand(message *tgbotapi.Message) {
	stats, err := b.reviews.Statistics()
	if err != nil {
		log.Printf("Error getting statistics: %v", err)
		b.sendText(message.Chat.ID, "Statistics are not available yet.")
		return
	}

	statsText := "📊 *Your statistics*\n\n" +
		fmt.Sprintf("Expressions tracked: %d\n", stats.TotalExpressions) +
		fmt.Sprintf("Total reviews: %d\n", stats.TotalReviews) +
		fmt.Sprintf("Correct rate: %.0f%%\n", stats.CorrectRate*100)

	msg := tgbotapi.NewMessage(message.Chat.ID, statsText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	b.api.Send(msg)
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	// Acknowledge the tap so the client stops its spinner.
	b.api.Request(tgbotapi.NewCallback(callback.ID, ""))

	switch {
	case callback.Data == "main_menu":
		b.showMainMenu(chatID)
	case callback.Data == "start_review":
		b.startReviewSession(chatID)
	case callback.Data == "pick_quiz":
		b.showQuizKindMenu(chatID)
	case callback.Data == "show_stats":
		b.handleStatsCommand(callback.Message)
	case strings.HasPrefix(callback.Data, callbackQuizKindPrefix):
		kind := models.QuizKind(strings.TrimPrefix(callback.Data, callbackQuizKindPrefix))
		b.sendQuiz(chatID, kind)
	case strings.HasPrefix(callback.Data, callbackAnswerPrefix):
		b.handleQuizAnswer(chatID, strings.TrimPrefix(callback.Data, callbackAnswerPrefix))
	case strings.HasPrefix(callback.Data, callbackRatePrefix):
		b.handleReviewRating(chatID, strings.TrimPrefix(callback.Data, callbackRatePrefix))
	}
}

// --- review flow ---

// startReviewSession loads the due queue and shows the first item
func (b *Bot) startReviewSession(chatID int64) {
	due, err := b.reviews.DueToday()
	if err != nil {
		log.Printf("Error getting due expressions: %v", err)
		b.sendText(chatID, "Could not load due expressions. Please try again.")
		return
	}
	if len(due) == 0 {
		b.sendText(chatID, "Nothing is due today. Great job staying on top of your reviews! 🎉")
		return
	}

	b.reviewSessions[chatID] = &reviewSession{Queue: due}
	b.showCurrentReviewItem(chatID)
}

// showCurrentReviewItem presents one due expression with quality buttons
func (b *Bot) showCurrentReviewItem(chatID int64) {
	session, exists := b.reviewSessions[chatID]
	if !exists || session.CurrentIdx >= len(session.Queue) {
		delete(b.reviewSessions, chatID)
		msg := tgbotapi.NewMessage(chatID, "🎉 Review session complete!")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		b.api.Send(msg)
		return
	}

	rec := session.Queue[session.CurrentIdx]
	var text strings.Builder
	fmt.Fprintf(&text, "Review %d of %d\n\n", session.CurrentIdx+1, len(session.Queue))
	fmt.Fprintf(&text, "*%s*\n\n", rec.Text)
	text.WriteString("How well did you recall this expression?")

	// One button per quality rating: 0 = blackout, 5 = perfect.
	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "0 😶", CallbackData: callbackRatePrefix + "0"},
			{Text: "1 😓", CallbackData: callbackRatePrefix + "1"},
			{Text: "2 😕", CallbackData: callbackRatePrefix + "2"},
		},
		{
			{Text: "3 🙂", CallbackData: callbackRatePrefix + "3"},
			{Text: "4 😀", CallbackData: callbackRatePrefix + "4"},
			{Text: "5 🤩", CallbackData: callbackRatePrefix + "5"},
		},
	})
	b.api.Send(msg)
}

// handleReviewRating records a quality score and advances the queue
func (b *Bot) handleReviewRating(chatID int64, qualityStr string) {
	session, exists := b.reviewSessions[chatID]
	if !exists || session.CurrentIdx >= len(session.Queue) {
		b.sendText(chatID, "No active review session. Use /review to start one.")
		return
	}

	quality, err := strconv.Atoi(qualityStr)
	if err != nil {
		log.Printf("Error parsing quality rating %q: %v", qualityStr, err)
		return
	}

	rec := session.Queue[session.CurrentIdx]
	if err := b.reviews.RecordReview(rec.ExpressionID, quality); err != nil {
		log.Printf("Error recording review for %s: %v", rec.ExpressionID, err)
		b.sendText(chatID, "Could not record that review. Please try again.")
		return
	}

	if updated, err := b.reviews.Get(rec.ExpressionID); err == nil {
		b.sendText(chatID, fmt.Sprintf("Next review in %d day(s), on %s.", updated.Interval, updated.NextReviewDate))
	}

	session.CurrentIdx++
	b.showCurrentReviewItem(chatID)
}

// --- quiz flow ---

// showQuizKindMenu lets the learner pick a quiz shape
func (b *Bot) showQuizKindMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "🎯 Pick a quiz type:")
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "🗣 Recall the line", CallbackData: callbackQuizKindPrefix + string(models.TranslateToSource)},
			{Text: "📖 Meaning", CallbackData: callbackQuizKindPrefix + string(models.TranslateToTarget)},
		},
		{
			{Text: "✏️ Fill the blank", CallbackData: callbackQuizKindPrefix + string(models.FillBlank)},
			{Text: "📝 Fix the grammar", CallbackData: callbackQuizKindPrefix + string(models.GrammarCorrection)},
		},
		{
			{Text: "🎲 Surprise me", CallbackData: callbackQuizKindPrefix + string(models.RandomKind)},
		},
	})
	b.api.Send(msg)
}

// sendQuiz generates a quiz and presents it with one button per choice.
// Some expressions cannot carry some quiz kinds, so generation is retried
// with fresh random items before giving up.
func (b *Bot) sendQuiz(chatID int64, kind models.QuizKind) {
	var generated *models.Quiz
	for attempt := 0; attempt < b.config.MaxQuizRetries; attempt++ {
		q, err := b.engine.Generate(kind, nil)
		if err == nil {
			generated = q
			break
		}
		if !errors.Is(err, quiz.ErrNoQuiz) {
			log.Printf("Error generating quiz: %v", err)
			break
		}
	}
	if generated == nil {
		b.sendText(chatID, "Couldn't put together that quiz right now. Try another type!")
		return
	}

	b.quizSessions[chatID] = &quizSession{Quiz: generated}

	var text strings.Builder
	fmt.Fprintf(&text, "❓ %s\n", generated.Prompt)
	if generated.Hint != "" {
		fmt.Fprintf(&text, "💡 %s\n", generated.Hint)
	}

	var rows [][]MenuButton
	for i, choice := range generated.Choices {
		label := fmt.Sprintf("%d. %s", i+1, choice)
		rows = append(rows, []MenuButton{{Text: label, CallbackData: callbackAnswerPrefix + strconv.Itoa(i)}})
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard(rows)
	b.api.Send(msg)
}

// handleQuizAnswer checks the tapped choice and reveals the explanation
func (b *Bot) handleQuizAnswer(chatID int64, indexStr string) {
	session, exists := b.quizSessions[chatID]
	if !exists {
		b.sendText(chatID, "No active quiz. Use /quiz to start one.")
		return
	}
	delete(b.quizSessions, chatID)

	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 || index >= len(session.Quiz.Choices) {
		log.Printf("Invalid quiz answer index %q", indexStr)
		return
	}

	var text strings.Builder
	if index == session.Quiz.CorrectIndex {
		text.WriteString("✅ Correct!\n\n")
	} else {
		fmt.Fprintf(&text, "❌ Not quite. The answer was: %s\n\n", session.Quiz.CorrectAnswer)
	}
	text.WriteString(session.Quiz.Explanation)

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "🎯 Another Quiz", CallbackData: "pick_quiz"},
			{Text: "« Menu", CallbackData: "main_menu"},
		},
	})
	b.api.Send(msg)
}

// sendText sends a plain text message
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.api.Send(msg)
}
