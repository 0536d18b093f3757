package main

import (
	"flag"
	"fmt"
	"livehub/domain"
	"livehub/internal"
	"livehub/repositories"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	inspect := flag.Bool("inspect", false, "Pause et sert l'inspecteur une fois les données générées")
	flag.Parse()

	// 1. Configuration partagée avec le hub
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatalf("Impossible d'ouvrir la base: %v", err)
	}
	defer db.Close()

	fmt.Println("🚀 LiveHub : Génération des données de démo...")

	users := repositories.NewUserRepository(db)
	streams := repositories.NewStreamRepository(db, logger)
	messages := repositories.NewMessageRepository(db, logger, nil)

	// 2. Comptes de démo (demo-host correspond au HOST_USER_ID du testeur)
	accounts := []domain.User{
		{ID: "demo-host", Username: "julie", CreatedAt: time.Now().UTC()},
		{ID: "demo-viewer", Username: "marc", CreatedAt: time.Now().UTC()},
		{ID: "demo-admin", Username: "sam", Admin: true, CreatedAt: time.Now().UTC()},
		{ID: "demo-banned", Username: "troll42", Banned: true, CreatedAt: time.Now().UTC()},
	}
	for _, account := range accounts {
		if err := users.SaveUser(account); err != nil {
			log.Fatalf("Compte %s: %v", account.ID, err)
		}
		fmt.Printf("👤 Compte créé : %s (%s)\n", account.Username, account.ID)
	}

	// 3. Un stream archivé avec son historique, pour nourrir le viewer
	host := domain.Identity{UserID: "demo-host", Username: "julie"}
	past := domain.NewStream(host, "Rediffusion : atelier cuisine", "Première session d'essai")
	past.Live = false
	if err := streams.SaveStream(past); err != nil {
		log.Fatalf("Stream de démo: %v", err)
	}
	fmt.Printf("📺 Stream archivé : %q (canal %s)\n", past.Title, past.ChannelID)

	lines := []struct {
		sender  domain.Identity
		content string
	}{
		{host, "Bienvenue à tous !"},
		{domain.Identity{UserID: "demo-viewer", Username: "marc"}, "Salut Julie 👋"},
		{host, "On commence dans une minute"},
	}
	for i, line := range lines {
		message := domain.NewChatMessage(past.ChannelID, line.sender, line.content)
		// Messages antidatés pour garder un ordre chronologique réaliste
		message.CreatedAt = time.Now().UTC().Add(time.Duration(i-len(lines)) * time.Minute)
		if err := messages.AppendChatMessage(message); err != nil {
			log.Fatalf("Message de démo: %v", err)
		}
	}
	fmt.Printf("💬 %d messages archivés sur le canal %s\n", len(lines), past.ChannelID)

	fmt.Println("\n✅ Prêt ! Tu peux maintenant lancer le hub puis cmd/tester")

	// 4. Inspection optionnelle avant de rendre la main
	if *inspect {
		internal.Inspect(db, config.DebugPort, "/inspect", nil, nil, "user:", nil)
	}
}
