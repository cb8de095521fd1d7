package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Types d'échéance d'un plan de paiement
const (
	EcheanceAcompte       = "acompte"
	EcheanceIntermediaire = "intermediaire"
	EcheanceSolde         = "solde"
)

// toleranceSommePourcentages tolérance admise sur la somme des pourcentages (en points)
var toleranceSommePourcentages = decimal.NewFromFloat(0.01)

// TemplateConditionsPaiement représente un plan de paiement réutilisable :
// jusqu'à trois échéances nommées (acompte, intermédiaire, solde), chacune avec
// un pourcentage du devis et un délai en jours par rapport à l'émission
type TemplateConditionsPaiement struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Description du plan
	Nom         string `json:"nom" gorm:"not null;type:varchar(150)"`
	Description string `json:"description" gorm:"type:text"`

	// Plage de montants de devis à laquelle le plan s'applique
	MontantMin decimal.Decimal  `json:"montant_min" gorm:"type:decimal(15,2);default:0"`
	MontantMax *decimal.Decimal `json:"montant_max" gorm:"type:decimal(15,2)"` // NULL = non borné

	// Échéances : pourcentage (0-100) et délai en jours depuis l'émission.
	// Un pourcentage à zéro désactive l'échéance correspondante.
	PourcentageAcompte       decimal.Decimal `json:"pourcentage_acompte" gorm:"type:decimal(5,2);default:0"`
	DelaiAcompte             int             `json:"delai_acompte" gorm:"default:0"`
	PourcentageIntermediaire decimal.Decimal `json:"pourcentage_intermediaire" gorm:"type:decimal(5,2);default:0"`
	DelaiIntermediaire       int             `json:"delai_intermediaire" gorm:"default:0"`
	PourcentageSolde         decimal.Decimal `json:"pourcentage_solde" gorm:"type:decimal(5,2);default:0"`
	DelaiSolde               int             `json:"delai_solde" gorm:"default:30"`

	IsDefault bool `json:"is_default" gorm:"default:false"`

	// Multitenant
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`
}

// TableName fixe le nom de la table pour le modèle TemplateConditionsPaiement
func (TemplateConditionsPaiement) TableName() string {
	return "templates_conditions_paiement"
}

// SommePourcentages retourne la somme des pourcentages des trois échéances
func (t *TemplateConditionsPaiement) SommePourcentages() decimal.Decimal {
	return t.PourcentageAcompte.Add(t.PourcentageIntermediaire).Add(t.PourcentageSolde)
}

// Valider vérifie les invariants du plan : chaque pourcentage dans [0,100],
// délais positifs, et somme des pourcentages égale à 100 (tolérance 0,01)
func (t *TemplateConditionsPaiement) Valider() error {
	cent := decimal.NewFromInt(100)

	pourcentages := []struct {
		nom    string
		valeur decimal.Decimal
		delai  int
	}{
		{EcheanceAcompte, t.PourcentageAcompte, t.DelaiAcompte},
		{EcheanceIntermediaire, t.PourcentageIntermediaire, t.DelaiIntermediaire},
		{EcheanceSolde, t.PourcentageSolde, t.DelaiSolde},
	}

	for _, p := range pourcentages {
		if p.valeur.IsNegative() || p.valeur.GreaterThan(cent) {
			return fmt.Errorf("pourcentage %s invalide: %s (attendu entre 0 et 100)", p.nom, p.valeur.String())
		}
		if p.delai < 0 {
			return fmt.Errorf("délai %s invalide: %d jours (attendu positif)", p.nom, p.delai)
		}
	}

	somme := t.SommePourcentages()
	if somme.Sub(cent).Abs().GreaterThan(toleranceSommePourcentages) {
		return fmt.Errorf("la somme des pourcentages doit être égale à 100 (actuellement %s)", somme.String())
	}

	return nil
}

// BeforeSave valide le plan avant toute écriture en base
func (t *TemplateConditionsPaiement) BeforeSave(tx *gorm.DB) error {
	return t.Valider()
}

// EstApplicable vérifie qu'un montant TTC de devis entre dans la plage du plan
func (t *TemplateConditionsPaiement) EstApplicable(montantTTC decimal.Decimal) bool {
	if montantTTC.LessThan(t.MontantMin) {
		return false
	}
	if t.MontantMax != nil && montantTTC.GreaterThan(*t.MontantMax) {
		return false
	}
	return true
}

// EquilibrerPourcentages répartit 100 % uniformément sur n échéances ;
// le reste de la division entière est attribué à la dernière échéance.
// Exemple pour n=3 : 33, 33, 34.
func EquilibrerPourcentages(n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	cent := decimal.NewFromInt(100)
	base := decimal.NewFromInt(int64(100 / n))

	parts := make([]decimal.Decimal, n)
	somme := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = base
		somme = somme.Add(base)
	}
	parts[n-1] = cent.Sub(somme)

	return parts
}

// RedistribuerPourcentages réduit une liste d'échéances à n éléments : les
// points des échéances supprimées sont reportés sur la dernière restante
func RedistribuerPourcentages(pourcentages []decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 || n >= len(pourcentages) {
		return pourcentages
	}

	supprime := decimal.Zero
	for _, p := range pourcentages[n:] {
		supprime = supprime.Add(p)
	}

	restants := make([]decimal.Decimal, n)
	copy(restants, pourcentages[:n])
	restants[n-1] = restants[n-1].Add(supprime)

	return restants
}

// Equilibrer répartit 100 % uniformément sur les échéances actives du plan
// (1 à 3) dans l'ordre acompte, intermédiaire, solde
func (t *TemplateConditionsPaiement) Equilibrer(nbEcheances int) error {
	if nbEcheances < 1 || nbEcheances > 3 {
		return fmt.Errorf("nombre d'échéances invalide: %d (attendu entre 1 et 3)", nbEcheances)
	}

	parts := EquilibrerPourcentages(nbEcheances)

	t.PourcentageAcompte = decimal.Zero
	t.PourcentageIntermediaire = decimal.Zero
	t.PourcentageSolde = decimal.Zero

	switch nbEcheances {
	case 1:
		// Une seule échéance : tout sur le solde
		t.PourcentageSolde = parts[0]
	case 2:
		t.PourcentageAcompte = parts[0]
		t.PourcentageSolde = parts[1]
	case 3:
		t.PourcentageAcompte = parts[0]
		t.PourcentageIntermediaire = parts[1]
		t.PourcentageSolde = parts[2]
	}

	return nil
}
