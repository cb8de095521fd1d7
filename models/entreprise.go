package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entreprise représente un compte artisan (tenant) dans le système multi-tenant
type Entreprise struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Identité de l'entreprise
	Nom            string `json:"nom" gorm:"not null;type:varchar(150)"`
	SchemaBD       string `json:"schema_bd" gorm:"uniqueIndex;not null;type:varchar(100)"` // Nom du schéma PostgreSQL
	Siret          string `json:"siret" gorm:"type:varchar(14)"`
	NumeroTVA      string `json:"numero_tva" gorm:"type:varchar(20)"`
	CodeNAF        string `json:"code_naf" gorm:"type:varchar(10)"`
	FormeJuridique string `json:"forme_juridique" gorm:"type:varchar(50)"` // EI, EURL, SARL, SAS...

	// Contact
	Email      string `json:"email" gorm:"type:varchar(100)"`
	Telephone  string `json:"telephone" gorm:"type:varchar(20)"`
	Adresse    string `json:"adresse" gorm:"type:text"`
	Ville      string `json:"ville" gorm:"type:varchar(100)"`
	CodePostal string `json:"code_postal" gorm:"type:varchar(10)"`

	// Statut et limites
	IsActive   bool `json:"is_active" gorm:"default:true"`
	MaxClients int  `json:"max_clients" gorm:"default:500"`
	MaxDevis   int  `json:"max_devis" gorm:"default:1000"`

	// Localisation
	Langue string `json:"langue" gorm:"default:'fr';type:varchar(5)"`
	Fuseau string `json:"fuseau" gorm:"default:'Europe/Paris';type:varchar(50)"`
	Devise string `json:"devise" gorm:"default:'EUR';type:varchar(3)"`
}

// TableName fixe le nom de la table, qui reste dans le schéma public hors schémas tenant
func (Entreprise) TableName() string {
	return "entreprises"
}

// BeforeCreate est appelé avant la création de l'enregistrement. L'identifiant
// est attribué ici plutôt que par un défaut SQL, pour rester portable entre
// PostgreSQL et SQLite.
func (e *Entreprise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SchemaBD == "" {
		e.SchemaBD = "tenant_default"
	}
	return nil
}

// GetSchemaName retourne le nom du schéma BD de l'entreprise
func (e *Entreprise) GetSchemaName() string {
	return e.SchemaBD
}

// IsValidForTenant vérifie que l'entreprise peut être utilisée comme tenant
func (e *Entreprise) IsValidForTenant() bool {
	return e.IsActive && e.SchemaBD != ""
}
