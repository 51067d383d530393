// Tails builder events off the NATS bus. Handy for watching runs complete
// from a second terminal while exercising the API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"ai-botbuilder-be/pkg/events"
	pktNats "ai-botbuilder-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	handler := func(_ context.Context, event events.Event) error {
		payload := event.Payload()
		switch {
		case payload["status"] == "valid":
			color.Green("%s %v", event.EventType(), payload)
		case payload["status"] == "broken" || payload["status"] == "failed":
			color.Red("%s %v", event.EventType(), payload)
		default:
			color.Yellow("%s %v", event.EventType(), payload)
		}
		return nil
	}

	if err := sub.Subscribe("events.>", "events-tail", handler); err != nil {
		color.Red("Subscribe failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("📡 Tailing builder events on %s (Ctrl+C to stop)", natsURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
}
