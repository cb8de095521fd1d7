package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"backend_mycharlie/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService envoie les emails et alertes Telegram des artisans
type NotificationService struct {
	DB              *gorm.DB
	telegramClients map[uuid.UUID]*TelegramClient // Clients Telegram par entreprise
}

// NewNotificationService crée une nouvelle instance de NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		DB:              db,
		telegramClients: make(map[uuid.UUID]*TelegramClient),
	}
}

// getTelegramClient récupère ou crée le client Telegram d'une entreprise
func (s *NotificationService) getTelegramClient(entrepriseID uuid.UUID) (*TelegramClient, error) {
	if client, exists := s.telegramClients[entrepriseID]; exists {
		if client.IsHealthy() {
			return client, nil
		}
		// Client hors service : on le retire du cache
		delete(s.telegramClients, entrepriseID)
	}

	client, err := NewTelegramClient(s.DB, entrepriseID)
	if err != nil {
		return nil, err
	}

	s.telegramClients[entrepriseID] = client
	return client, nil
}

// EnvoyerEmail envoie un email à un destinataire et journalise la tentative
func (s *NotificationService) EnvoyerEmail(entrepriseID uuid.UUID, destinataire, objet, message string, relatedID *uint, relatedType string) error {
	return s.envoyerEtJournaliser(entrepriseID, "email", destinataire, objet, message, relatedID, relatedType)
}

// EnvoyerAlerteTelegram envoie une alerte Telegram à l'artisan et journalise
// la tentative. Le chat ID est celui configuré pour l'entreprise.
func (s *NotificationService) EnvoyerAlerteTelegram(entrepriseID uuid.UUID, message string, relatedID *uint, relatedType string) error {
	var parametres models.ParametresNotification
	if err := s.DB.Where("entreprise_id = ?", entrepriseID).First(&parametres).Error; err != nil {
		return fmt.Errorf("paramètres de notification introuvables: %w", err)
	}
	return s.envoyerEtJournaliser(entrepriseID, "telegram", parametres.TelegramChatID, "", message, relatedID, relatedType)
}

// envoyerEtJournaliser expédie la notification puis écrit le journal d'envoi
func (s *NotificationService) envoyerEtJournaliser(entrepriseID uuid.UUID, canal, destinataire, objet, message string, relatedID *uint, relatedType string) error {
	journal := models.LogNotification{
		Canal:        canal,
		Destinataire: destinataire,
		Objet:        objet,
		Message:      message,
		Statut:       "pending",
		RelatedID:    relatedID,
		RelatedType:  relatedType,
		EntrepriseID: entrepriseID,
	}

	var err error
	switch canal {
	case "email":
		err = s.envoyerEmailSMTP(entrepriseID, destinataire, objet, message)
	case "telegram":
		err = s.envoyerTelegram(entrepriseID, destinataire, message)
	default:
		err = fmt.Errorf("canal de notification non supporté: %s", canal)
	}

	if err != nil {
		journal.Statut = "failed"
		journal.Erreur = err.Error()
	} else {
		journal.Statut = "sent"
		maintenant := time.Now()
		journal.DateEnvoi = &maintenant
	}

	s.DB.Create(&journal)

	return err
}

// envoyerTelegram envoie un message via le bot Telegram de l'entreprise
func (s *NotificationService) envoyerTelegram(entrepriseID uuid.UUID, chatID, message string) error {
	client, err := s.getTelegramClient(entrepriseID)
	if err != nil {
		return fmt.Errorf("erreur de récupération du client Telegram: %w", err)
	}

	_, err = client.SendMessage(chatID, message)
	return err
}

// envoyerEmailSMTP envoie un email via le serveur SMTP de l'entreprise
func (s *NotificationService) envoyerEmailSMTP(entrepriseID uuid.UUID, destinataire, objet, message string) error {
	// Paramètres email de l'entreprise
	var parametres models.ParametresNotification
	err := s.DB.Where("entreprise_id = ?", entrepriseID).First(&parametres).Error
	if err != nil {
		return fmt.Errorf("paramètres email introuvables: %w", err)
	}

	if !parametres.EmailEnabled {
		return fmt.Errorf("les notifications email sont désactivées pour l'entreprise %s", entrepriseID)
	}

	// Configuration SMTP
	auth := smtp.PlainAuth("", parametres.SMTPUsername, parametres.SMTPPassword, parametres.SMTPHost)

	// Construction du message
	msg := fmt.Sprintf("From: %s <%s>\r\n", parametres.SMTPFromName, parametres.SMTPFromEmail)
	msg += fmt.Sprintf("To: %s\r\n", destinataire)
	msg += fmt.Sprintf("Subject: %s\r\n", objet)
	msg += "Content-Type: text/plain; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += message

	addr := fmt.Sprintf("%s:%d", parametres.SMTPHost, parametres.SMTPPort)

	if parametres.SMTPUseTLS {
		// Connexion TLS
		tlsConfig := &tls.Config{
			InsecureSkipVerify: false,
			ServerName:         parametres.SMTPHost,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("erreur de connexion TLS: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, parametres.SMTPHost)
		if err != nil {
			return fmt.Errorf("erreur de création du client SMTP: %w", err)
		}
		defer client.Quit()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("erreur d'authentification SMTP: %w", err)
		}

		if err = client.Mail(parametres.SMTPFromEmail); err != nil {
			return fmt.Errorf("erreur de définition de l'expéditeur: %w", err)
		}

		if err = client.Rcpt(destinataire); err != nil {
			return fmt.Errorf("erreur de définition du destinataire: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("erreur d'ouverture du flux SMTP: %w", err)
		}

		_, err = w.Write([]byte(msg))
		if err != nil {
			return fmt.Errorf("erreur d'écriture du message: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("erreur de clôture du flux SMTP: %w", err)
		}
	} else {
		// SMTP simple sans TLS
		err = smtp.SendMail(addr, auth, parametres.SMTPFromEmail, []string{destinataire}, []byte(msg))
		if err != nil {
			return fmt.Errorf("erreur d'envoi de l'email: %w", err)
		}
	}

	return nil
}

// NotifierFactureEnRetard alerte l'artisan sur Telegram qu'une facture est en retard
func (s *NotificationService) NotifierFactureEnRetard(facture *models.Facture) error {
	message := fmt.Sprintf(
		"⚠️ <b>Facture en retard</b>\n\nFacture: %s\nMontant: %s EUR\nÉchéance dépassée: %s",
		facture.Numero, facture.MontantTTC.StringFixed(2), facture.DateEcheance.Format("02/01/2006"))
	return s.EnvoyerAlerteTelegram(facture.EntrepriseID, message, &facture.ID, "facture")
}

// NotifierPaiementRecu alerte l'artisan sur Telegram qu'un paiement est encaissé
func (s *NotificationService) NotifierPaiementRecu(facture *models.Facture) error {
	message := fmt.Sprintf(
		"💰 <b>Paiement reçu</b>\n\nFacture: %s\nMontant: %s EUR",
		facture.Numero, facture.MontantTTC.StringFixed(2))
	return s.EnvoyerAlerteTelegram(facture.EntrepriseID, message, &facture.ID, "facture")
}
