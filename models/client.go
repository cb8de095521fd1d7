package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Types de client
const (
	ClientParticulier   = "particulier"
	ClientProfessionnel = "professionnel"
)

// Client représente un client d'un artisan (particulier ou professionnel)
type Client struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Identité
	Nom           string `json:"nom" gorm:"not null;type:varchar(150)"`
	Prenom        string `json:"prenom" gorm:"type:varchar(100)"`
	RaisonSociale string `json:"raison_sociale" gorm:"type:varchar(200)"` // Pour les professionnels
	Type          string `json:"type" gorm:"default:'particulier';type:varchar(20)"` // particulier, professionnel

	// Contact
	Email     string `json:"email" gorm:"type:varchar(100)"`
	Telephone string `json:"telephone" gorm:"type:varchar(20)"`

	// Adresse du chantier / de facturation
	Adresse    string `json:"adresse" gorm:"type:text"`
	Ville      string `json:"ville" gorm:"type:varchar(100)"`
	CodePostal string `json:"code_postal" gorm:"type:varchar(10)"`

	// Divers
	Notes string `json:"notes" gorm:"type:text"`

	// Multitenant
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`

	// Relations
	Devis    []Devis   `json:"devis,omitempty" gorm:"foreignKey:ClientID"`
	Factures []Facture `json:"factures,omitempty" gorm:"foreignKey:ClientID"`
}

// TableName fixe le nom de la table pour le modèle Client
func (Client) TableName() string {
	return "clients"
}

// NomAffichage retourne le nom à afficher sur les documents
func (c *Client) NomAffichage() string {
	if c.Type == ClientProfessionnel && c.RaisonSociale != "" {
		return c.RaisonSociale
	}
	if c.Prenom != "" {
		return c.Prenom + " " + c.Nom
	}
	return c.Nom
}
