package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"anonchat/backend/internal/config"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"
)

func main() {
	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: expire-pending [minutes], delete-chat <chat_id>, stats")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "expire-pending":
		minutes := int(config.PendingEntryTTL.Minutes())
		if len(os.Args) > 2 {
			minutes, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer number of minutes.")
				os.Exit(1)
			}
		}
		cutoff := time.Now().Add(-time.Duration(minutes) * time.Minute)
		n, err := storageSvc.DeleteStalePendingEntries(cutoff)
		if err != nil {
			log.Fatalf("Error expiring pending entries: %v", err)
		}
		fmt.Printf("Expired %d pending entries older than %d minutes.\n", n, minutes)
	case "delete-chat":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin delete-chat <chat_id>")
			os.Exit(1)
		}
		chatID := os.Args[2]
		if err := storageSvc.DeleteChat(chatID); err != nil {
			log.Fatalf("Error deleting chat: %v", err)
		}
		fmt.Printf("Chat %s and its participants and messages have been deleted.\n", chatID)
	case "stats":
		if err := printStats(db); err != nil {
			log.Fatalf("Error collecting stats: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func printStats(db *gorm.DB) error {
	var users, chats, messages, pending, matched int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Chat{}).Count(&chats).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Message{}).Count(&messages).Error; err != nil {
		return err
	}
	if err := db.Model(&models.PendingEntry{}).Count(&pending).Error; err != nil {
		return err
	}
	if err := db.Model(&models.PendingEntry{}).Where("matched_chat_id IS NOT NULL").Count(&matched).Error; err != nil {
		return err
	}
	fmt.Printf("users: %d\nchats: %d\nmessages: %d\npending entries: %d (matched, awaiting poll: %d)\n",
		users, chats, messages, pending, matched)
	return nil
}
