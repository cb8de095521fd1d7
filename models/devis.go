package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuts possibles d'un devis
const (
	DevisBrouillon = "brouillon"
	DevisEnvoye    = "envoye"
	DevisAccepte   = "accepte"
	DevisRefuse    = "refuse"
	DevisPaye      = "paye"
)

// Devis représente une proposition chiffrée en attente d'acceptation client
type Devis struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Identification du document
	Numero      string `json:"numero" gorm:"uniqueIndex;not null;type:varchar(50)"` // DEV-AAAA-NNN
	Titre       string `json:"titre" gorm:"not null;type:varchar(200)"`
	Description string `json:"description" gorm:"type:text"`

	// Relations
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`
	ClientID     uint      `json:"client_id" gorm:"not null;index"`
	Client       *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`

	// Plan de paiement sélectionné (référencé, jamais possédé)
	TemplateConditionPaiementID *uint                       `json:"template_condition_paiement_id" gorm:"index"`
	TemplateConditionPaiement   *TemplateConditionsPaiement `json:"template_condition_paiement,omitempty" gorm:"foreignKey:TemplateConditionPaiementID"`

	// Totaux dérivés des lignes
	MontantHT  decimal.Decimal `json:"montant_ht" gorm:"type:decimal(15,2);default:0"`
	MontantTVA decimal.Decimal `json:"montant_tva" gorm:"type:decimal(15,2);default:0"`
	MontantTTC decimal.Decimal `json:"montant_ttc" gorm:"type:decimal(15,2);default:0"`

	// Dates
	DateEmission time.Time  `json:"date_emission" gorm:"not null"`
	DateValidite *time.Time `json:"date_validite"`

	// Cycle de vie : brouillon -> envoye -> accepte/refuse -> paye
	Statut string `json:"statut" gorm:"default:'brouillon';type:varchar(20)"`

	// Lignes du devis, remplacées intégralement à chaque édition
	Lignes []LigneDevis `json:"lignes,omitempty" gorm:"foreignKey:DevisID"`
}

// TableName fixe le nom de la table pour le modèle Devis
func (Devis) TableName() string {
	return "devis"
}

// RecalculerTotaux recalcule les montants HT/TVA/TTC à partir des lignes
func (d *Devis) RecalculerTotaux() {
	totalHT := decimal.Zero
	totalTVA := decimal.Zero

	for _, ligne := range d.Lignes {
		ht := ligne.MontantHT()
		totalHT = totalHT.Add(ht)
		totalTVA = totalTVA.Add(ht.Mul(ligne.TauxTVA).Div(decimal.NewFromInt(100)))
	}

	d.MontantHT = totalHT.Round(2)
	d.MontantTVA = totalTVA.Round(2)
	d.MontantTTC = d.MontantHT.Add(d.MontantTVA)
}

// EstFinalisable vérifie qu'un devis peut quitter l'état brouillon :
// au moins une ligne valide et un total strictement positif
func (d *Devis) EstFinalisable() bool {
	if len(d.Lignes) == 0 {
		return false
	}
	for _, ligne := range d.Lignes {
		if ligne.EstValide() {
			return d.MontantTTC.GreaterThan(decimal.Zero)
		}
	}
	return false
}

// EstModifiable vérifie que le devis peut encore être édité
func (d *Devis) EstModifiable() bool {
	return d.Statut == DevisBrouillon || d.Statut == DevisEnvoye
}

// LigneDevis représente une ligne chiffrée d'un devis
type LigneDevis struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Rattachement au devis
	DevisID uint `json:"devis_id" gorm:"not null;index"`

	// Contenu de la ligne
	Ordre          int             `json:"ordre" gorm:"default:0"`
	Designation    string          `json:"designation" gorm:"not null;type:varchar(300)"`
	Description    string          `json:"description" gorm:"type:text"`
	Quantite       decimal.Decimal `json:"quantite" gorm:"type:decimal(10,3);not null"`
	Unite          string          `json:"unite" gorm:"type:varchar(20)"` // m2, ml, h, forfait...
	PrixUnitaireHT decimal.Decimal `json:"prix_unitaire_ht" gorm:"type:decimal(15,2);not null"`
	TauxTVA        decimal.Decimal `json:"taux_tva" gorm:"type:decimal(5,2);default:20"`
}

// TableName fixe le nom de la table pour le modèle LigneDevis
func (LigneDevis) TableName() string {
	return "lignes_devis"
}

// MontantHT retourne le montant hors taxe de la ligne
func (l *LigneDevis) MontantHT() decimal.Decimal {
	return l.PrixUnitaireHT.Mul(l.Quantite).Round(2)
}

// EstValide vérifie que la ligne est exploitable pour le chiffrage
func (l *LigneDevis) EstValide() bool {
	return l.Designation != "" && l.Quantite.GreaterThan(decimal.Zero)
}

// CompteurDevis porte la numérotation des devis : un compteur par entreprise
// et par année civile, incrémenté atomiquement en base
type CompteurDevis struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EntrepriseID  uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;uniqueIndex:idx_compteur_devis_entreprise_annee"`
	Annee         int       `json:"annee" gorm:"not null;uniqueIndex:idx_compteur_devis_entreprise_annee"`
	DernierNumero int       `json:"dernier_numero" gorm:"default:0"`
}

// TableName fixe le nom de la table pour le modèle CompteurDevis
func (CompteurDevis) TableName() string {
	return "compteurs_devis"
}
