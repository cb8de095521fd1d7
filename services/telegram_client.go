package services

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend_mycharlie/models"
)

// TelegramClient encapsule le bot Telegram d'alertes internes d'une entreprise
type TelegramClient struct {
	bot          *tgbotapi.BotAPI
	db           *gorm.DB
	entrepriseID uuid.UUID
	parametres   *models.ParametresNotification
}

// NewTelegramClient crée un client Telegram pour une entreprise
func NewTelegramClient(db *gorm.DB, entrepriseID uuid.UUID) (*TelegramClient, error) {
	// Paramètres de notification de l'entreprise
	var parametres models.ParametresNotification
	err := db.Where("entreprise_id = ?", entrepriseID).First(&parametres).Error
	if err != nil {
		return nil, fmt.Errorf("paramètres de notification introuvables pour l'entreprise %s: %w", entrepriseID, err)
	}

	if !parametres.TelegramEnabled || parametres.TelegramBotToken == "" {
		return nil, fmt.Errorf("Telegram non configuré pour l'entreprise %s", entrepriseID)
	}

	// Crée le client Bot API
	bot, err := tgbotapi.NewBotAPI(parametres.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("erreur de création du bot Telegram: %w", err)
	}

	// Debug désactivé en production
	bot.Debug = false

	log.Printf("✅ Bot Telegram autorisé: %s", bot.Self.UserName)

	return &TelegramClient{
		bot:          bot,
		db:           db,
		entrepriseID: entrepriseID,
		parametres:   &parametres,
	}, nil
}

// SendMessage envoie un message à un chat Telegram
func (tc *TelegramClient) SendMessage(chatID string, message string) (*tgbotapi.Message, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("chat ID invalide: %s", chatID)
	}

	msg := tgbotapi.NewMessage(chatIDInt, message)
	msg.ParseMode = tgbotapi.ModeHTML

	sentMsg, err := tc.bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("erreur d'envoi du message: %w", err)
	}

	return &sentMsg, nil
}

// GetBotInfo retourne les informations du bot
func (tc *TelegramClient) GetBotInfo() (*tgbotapi.User, error) {
	return &tc.bot.Self, nil
}

// IsHealthy vérifie que le bot répond
func (tc *TelegramClient) IsHealthy() bool {
	_, err := tc.bot.GetMe()
	return err == nil
}
