package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParametresNotification représente les paramètres d'envoi d'une entreprise
type ParametresNotification struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Paramètres email
	SMTPHost      string `json:"smtp_host"`
	SMTPPort      int    `json:"smtp_port" gorm:"default:587"`
	SMTPUsername  string `json:"smtp_username"`
	SMTPPassword  string `json:"-" gorm:"type:varchar(200)"`
	SMTPFromEmail string `json:"smtp_from_email"`
	SMTPFromName  string `json:"smtp_from_name"`
	SMTPUseTLS    bool   `json:"smtp_use_tls" gorm:"default:true"`
	EmailEnabled  bool   `json:"email_enabled" gorm:"default:false"`

	// Paramètres Telegram (alertes internes de l'artisan)
	TelegramBotToken string `json:"-" gorm:"type:varchar(500)"`
	TelegramChatID   string `json:"telegram_chat_id" gorm:"type:varchar(50)"`
	TelegramEnabled  bool   `json:"telegram_enabled" gorm:"default:false"`

	// Multitenant
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;uniqueIndex"`
}

// TableName fixe le nom de la table pour le modèle ParametresNotification
func (ParametresNotification) TableName() string {
	return "parametres_notification"
}

// LogNotification représente le journal des notifications envoyées
type LogNotification struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Contenu
	Canal        string     `json:"canal" gorm:"not null;type:varchar(20)"` // email, telegram
	Destinataire string     `json:"destinataire" gorm:"not null;type:varchar(200)"`
	Objet        string     `json:"objet" gorm:"type:varchar(200)"`
	Message      string     `json:"message" gorm:"type:text;not null"`
	Statut       string     `json:"statut" gorm:"default:'pending';type:varchar(20)"` // pending, sent, failed
	Erreur       string     `json:"erreur" gorm:"type:text"`
	DateEnvoi    *time.Time `json:"date_envoi"`

	// Entité liée (facture, relance, devis...)
	RelatedID   *uint  `json:"related_id"`
	RelatedType string `json:"related_type" gorm:"type:varchar(50)"`

	// Multitenant
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;index"`
}

// TableName fixe le nom de la table pour le modèle LogNotification
func (LogNotification) TableName() string {
	return "logs_notification"
}
