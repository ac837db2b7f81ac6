package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/quiz"
	"github.com/example/studybot/internal/scheduler"
	"github.com/example/studybot/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// quizSession holds the quiz a chat is currently answering
type quizSession struct {
	Quiz *models.Quiz
}

// reviewSession walks a chat through its due expressions, most overdue first
type reviewSession struct {
	Queue      []models.DueRecord
	CurrentIdx int
}

// Bot is the Telegram presentation layer over the review store and quiz engine
type Bot struct {
	api              *tgbotapi.BotAPI
	token            string
	reviews          *database.ReviewRepository
	engine           *quiz.Engine
	scheduler        *scheduler.Scheduler
	schedulerEnabled bool
	config           *BotConfig
	chatID           int64 // fixed learner chat for reminders; 0 until known
	quizSessions     map[int64]*quizSession
	reviewSessions   map[int64]*reviewSession
}

// New creates a new bot instance
func New(reviews *database.ReviewRepository, engine *quiz.Engine) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	b := &Bot{
		token:            token,
		reviews:          reviews,
		engine:           engine,
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		config:           DefaultConfig(),
		quizSessions:     make(map[int64]*quizSession),
		reviewSessions:   make(map[int64]*reviewSession),
	}

	if chatIDStr := os.Getenv("CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_ID: %v", chatIDStr)
		}
		b.chatID = chatID
	}

	return b, nil
}

// Start initializes the Telegram connection and processes updates until the
// context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b.reviews, b)
		b.scheduler.Start()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case update := <-updates:
			b.handleUpdate(update)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// SendDueReminder implements the scheduler.Notifier interface
func (b *Bot) SendDueReminder(count int) error {
	if b.chatID == 0 {
		// Nobody has talked to the bot yet.
		return nil
	}

	text := fmt.Sprintf("You have %d expressions due for review! 📚", count)
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🔄 Start Review", CallbackData: "start_review"}},
	})
	_, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
	return err
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.rememberChat(update.Message.Chat.ID)
		if update.Message.IsCommand() {
			b.handleCommand(update.Message)
		} else {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Use /menu to show the main menu.")
			msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
			b.api.Send(msg)
		}
	} else if update.CallbackQuery != nil {
		b.rememberChat(update.CallbackQuery.Message.Chat.ID)
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// rememberChat notes the learner's chat for scheduled reminders
func (b *Bot) rememberChat(chatID int64) {
	if b.chatID == 0 {
		b.chatID = chatID
	}
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🔄 Review Due", CallbackData: "start_review"},
			{Text: "🎯 Take Quiz", CallbackData: "pick_quiz"},
		},
		{
			{Text: "📊 Statistics", CallbackData: "show_stats"},
		},
	}
}
