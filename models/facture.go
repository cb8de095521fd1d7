package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuts possibles d'une facture
const (
	FactureBrouillon = "brouillon"
	FactureEnvoyee   = "envoyee"
	FacturePayee     = "payee"
	FactureEnRetard  = "en_retard"
	FactureAnnulee   = "annulee"
)

// Types de facture. Le type est une colonne de première classe : le suffixe
// du numéro (-A, -I, -S) en est dérivé, jamais l'inverse.
const (
	FactureAcompte       = "acompte"
	FactureIntermediaire = "intermediaire"
	FactureSolde         = "solde"
	FactureStandalone    = "standalone"
)

// SuffixeNumero retourne le suffixe de numéro associé à un type de facture
func SuffixeNumero(typeFacture string) string {
	switch typeFacture {
	case FactureAcompte:
		return "-A"
	case FactureIntermediaire:
		return "-I"
	case FactureSolde:
		return "-S"
	default:
		return ""
	}
}

// Facture représente un document de facturation, issu d'un devis accepté
// (acompte, intermédiaire, solde) ou émis de manière autonome
type Facture struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Identification du document
	Numero      string `json:"numero" gorm:"uniqueIndex;not null;type:varchar(50)"` // FAC-AAAA-NNN + suffixe
	Titre       string `json:"titre" gorm:"not null;type:varchar(200)"`
	Description string `json:"description" gorm:"type:text"`

	// Type d'échéance. L'index unique (devis_id, type_facture) est la garde
	// d'unicité faisant foi : au plus une facture d'un type donné par devis.
	TypeFacture string `json:"type_facture" gorm:"not null;default:'standalone';type:varchar(20);uniqueIndex:idx_factures_devis_type"`

	// Relations
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`
	ClientID     uint      `json:"client_id" gorm:"not null;index"`
	Client       *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	DevisID      *uint     `json:"devis_id" gorm:"uniqueIndex:idx_factures_devis_type"` // NULL pour les factures autonomes
	Devis        *Devis    `json:"devis,omitempty" gorm:"foreignKey:DevisID"`

	// Montants
	MontantHT  decimal.Decimal `json:"montant_ht" gorm:"type:decimal(15,2);not null"`
	MontantTVA decimal.Decimal `json:"montant_tva" gorm:"type:decimal(15,2);default:0"`
	MontantTTC decimal.Decimal `json:"montant_ttc" gorm:"type:decimal(15,2);not null"`

	// Dates
	DateEmission time.Time  `json:"date_emission" gorm:"not null"`
	DateEcheance time.Time  `json:"date_echeance" gorm:"not null"`
	DatePaiement *time.Time `json:"date_paiement"`

	// Statut : brouillon, envoyee, payee, en_retard, annulee
	Statut string `json:"statut" gorm:"default:'brouillon';type:varchar(20)"`

	// Lignes de la facture
	Lignes []LigneFacture `json:"lignes,omitempty" gorm:"foreignKey:FactureID"`

	// Relances programmées
	Relances []Relance `json:"relances,omitempty" gorm:"foreignKey:FactureID"`
}

// TableName fixe le nom de la table pour le modèle Facture
func (Facture) TableName() string {
	return "factures"
}

// EstEnRetard vérifie si la facture est en retard de paiement
func (f *Facture) EstEnRetard() bool {
	return f.Statut != FacturePayee && f.Statut != FactureAnnulee && time.Now().After(f.DateEcheance)
}

// EstReglable vérifie que la facture peut encore être encaissée
func (f *Facture) EstReglable() bool {
	return f.Statut != FacturePayee && f.Statut != FactureAnnulee
}

// LigneFacture représente une position d'une facture. Pour une facture
// d'échéance, la quantité et le taux de TVA sont copiés tels quels depuis la
// ligne de devis d'origine ; seul le prix unitaire est proratisé.
type LigneFacture struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Rattachement à la facture
	FactureID uint `json:"facture_id" gorm:"not null;index"`

	// Contenu de la ligne
	Ordre          int             `json:"ordre" gorm:"default:0"`
	Designation    string          `json:"designation" gorm:"not null;type:varchar(300)"`
	Description    string          `json:"description" gorm:"type:text"`
	Quantite       decimal.Decimal `json:"quantite" gorm:"type:decimal(10,3);not null"`
	Unite          string          `json:"unite" gorm:"type:varchar(20)"`
	PrixUnitaireHT decimal.Decimal `json:"prix_unitaire_ht" gorm:"type:decimal(15,2);not null"`
	TauxTVA        decimal.Decimal `json:"taux_tva" gorm:"type:decimal(5,2);default:20"`
}

// TableName fixe le nom de la table pour le modèle LigneFacture
func (LigneFacture) TableName() string {
	return "lignes_factures"
}

// MontantHT retourne le montant hors taxe de la ligne
func (l *LigneFacture) MontantHT() decimal.Decimal {
	return l.PrixUnitaireHT.Mul(l.Quantite).Round(2)
}

// CompteurFacture porte la numérotation des factures : un compteur par
// entreprise et par année civile, incrémenté atomiquement en base
type CompteurFacture struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EntrepriseID  uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;uniqueIndex:idx_compteur_entreprise_annee"`
	Annee         int       `json:"annee" gorm:"not null;uniqueIndex:idx_compteur_entreprise_annee"`
	DernierNumero int       `json:"dernier_numero" gorm:"default:0"`
}

// TableName fixe le nom de la table pour le modèle CompteurFacture
func (CompteurFacture) TableName() string {
	return "compteurs_factures"
}

// FormaterNumeroFacture construit le numéro au format FAC-AAAA-NNN plus le
// suffixe dérivé du type (bit-exact : "", "-A", "-I" ou "-S")
func FormaterNumeroFacture(annee, sequence int, typeFacture string) string {
	return fmt.Sprintf("FAC-%04d-%03d%s", annee, sequence, SuffixeNumero(typeFacture))
}
