package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RapportVisite représente un compte-rendu de visite de chantier
type RapportVisite struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Relations
	EntrepriseID uuid.UUID   `json:"entreprise_id" gorm:"type:uuid;not null;index"`
	ClientID     uint        `json:"client_id" gorm:"not null;index"`
	Client       *Client     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	RendezVousID *uint       `json:"rendez_vous_id" gorm:"index"`
	RendezVous   *RendezVous `json:"rendez_vous,omitempty" gorm:"foreignKey:RendezVousID"`

	// Contenu du rapport
	DateVisite   time.Time `json:"date_visite" gorm:"not null"`
	Titre        string    `json:"titre" gorm:"not null;type:varchar(200)"`
	Contenu      string    `json:"contenu" gorm:"type:text"`
	Observations string    `json:"observations" gorm:"type:text"`

	// URLs des photos prises sur place (tableau JSON)
	Photos string `json:"photos" gorm:"type:jsonb"`

	// Signature du client recueillie sur place
	SignatureClient bool `json:"signature_client" gorm:"default:false"`
}

// TableName fixe le nom de la table pour le modèle RapportVisite
func (RapportVisite) TableName() string {
	return "rapports_visite"
}
