package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/studybot/internal/bot"
	"github.com/example/studybot/internal/corpus"
	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/quiz"
)

func main() {
	// .env is optional, real deployments use the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	corpusFile := os.Getenv("CORPUS_FILE")
	if corpusFile == "" {
		log.Fatal("CORPUS_FILE environment variable is not set")
	}

	expressions, err := corpus.Load(corpusFile)
	if err != nil {
		log.Fatalf("Failed to load corpus from %s: %v", corpusFile, err)
	}
	log.Printf("Loaded %d expressions from %s", len(expressions), corpusFile)

	reviews := database.NewReviewRepository()
	for _, expr := range expressions {
		if err := reviews.Add(expr.ID, expr.Text, expr.Metadata); err != nil {
			log.Fatalf("Failed to register expression %s: %v", expr.ID, err)
		}
	}

	engine := quiz.NewEngine(expressions, nil, nil)

	b, err := bot.New(reviews, engine)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}

	b.Stop()
	log.Println("Bot stopped successfully")
}
