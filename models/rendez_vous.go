package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Statuts possibles d'un rendez-vous
const (
	RendezVousPlanifie = "planifie"
	RendezVousConfirme = "confirme"
	RendezVousTermine  = "termine"
	RendezVousAnnule   = "annule"
)

// RendezVous représente un rendez-vous de chantier ou de visite avec un client
type RendezVous struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Contenu
	Titre       string `json:"titre" gorm:"not null;type:varchar(200)"`
	Description string `json:"description" gorm:"type:text"`
	Lieu        string `json:"lieu" gorm:"type:text"`

	// Créneau
	DateDebut time.Time `json:"date_debut" gorm:"not null;index"`
	DateFin   time.Time `json:"date_fin" gorm:"not null"`

	// Relations
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`
	ClientID     uint      `json:"client_id" gorm:"not null;index"`
	Client       *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`

	// Statut : planifie, confirme, termine, annule
	Statut string `json:"statut" gorm:"default:'planifie';type:varchar(20)"`

	Notes string `json:"notes" gorm:"type:text"`
}

// TableName fixe le nom de la table pour le modèle RendezVous
func (RendezVous) TableName() string {
	return "rendez_vous"
}

// EstAVenir vérifie si le rendez-vous est encore à venir
func (r *RendezVous) EstAVenir() bool {
	return r.Statut != RendezVousAnnule && r.DateDebut.After(time.Now())
}

// Chevauche vérifie si deux créneaux se recouvrent
func (r *RendezVous) Chevauche(debut, fin time.Time) bool {
	return r.DateDebut.Before(fin) && debut.Before(r.DateFin)
}
