package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Statuts possibles d'une relance
const (
	RelancePlanifiee = "planifie"
	RelanceEnvoyee   = "envoye"
	RelanceAnnulee   = "annule"
)

// Relance représente un rappel de paiement programmé pour une facture.
// Exactement trois relances sont planifiées par facture éligible, à échéance
// +3, +10 et +21 jours, avec un ton de plus en plus ferme.
type Relance struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Rattachement
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`
	FactureID    uint      `json:"facture_id" gorm:"not null;index"`
	Facture      *Facture  `json:"facture,omitempty" gorm:"foreignKey:FactureID"`

	// Contenu
	Canal   string `json:"type" gorm:"column:type;default:'email';type:varchar(20)"`
	Niveau  int    `json:"niveau" gorm:"not null"` // 1 rappel courtois, 2 rappel ferme, 3 mise en demeure
	Objet   string `json:"objet" gorm:"type:varchar(200)"`
	Message string `json:"message" gorm:"type:text"`

	// Planification
	DatePrevue time.Time  `json:"date_prevue" gorm:"not null;index"`
	DateEnvoi  *time.Time `json:"date_envoi"`

	// Statut : planifie, envoye, annule (jamais supprimée, seulement annulée)
	Statut string `json:"statut" gorm:"default:'planifie';type:varchar(20)"`
}

// TableName fixe le nom de la table pour le modèle Relance
func (Relance) TableName() string {
	return "relances"
}

// EstEnvoyable vérifie qu'une relance est due et encore à envoyer
func (r *Relance) EstEnvoyable() bool {
	return r.Statut == RelancePlanifiee && !r.DatePrevue.After(time.Now())
}
