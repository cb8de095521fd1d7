package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend_mycharlie/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Erreurs métier de la facturation
var (
	ErrDevisIntrouvable = errors.New("devis introuvable")
	ErrDevisInvalide    = errors.New("le devis n'est pas facturable (non accepté ou total nul)")
	ErrTemplateManquant = errors.New("aucun plan de paiement associé au devis")
	ErrNonApplicable    = errors.New("échéance non applicable à ce devis")
	ErrDoublon          = errors.New("une facture de ce type existe déjà pour ce devis")
)

// FacturationService fournit les opérations de création et de suivi des factures
type FacturationService struct {
	db             *gorm.DB
	relanceService *RelanceService
}

// NewFacturationService crée une nouvelle instance de FacturationService
func NewFacturationService(db *gorm.DB) *FacturationService {
	return &FacturationService{
		db:             db,
		relanceService: NewRelanceService(db),
	}
}

// CalculerProrata retourne la part d'un montant correspondant à un pourcentage,
// arrondie à 2 décimales. Chaque échéance est arrondie indépendamment : un
// écart d'un centime entre la somme des échéances et le total est assumé.
func CalculerProrata(montant, pourcentage decimal.Decimal) decimal.Decimal {
	return montant.Mul(pourcentage).Div(decimal.NewFromInt(100)).Round(2)
}

// GenererNumeroFacture attribue le prochain numéro FAC-AAAA-NNN (plus le
// suffixe du type) pour une entreprise. Le compteur est incrémenté en base par
// un UPDATE relatif, atomique face aux créations concurrentes.
func (fs *FacturationService) GenererNumeroFacture(tx *gorm.DB, entrepriseID uuid.UUID, annee int, typeFacture string) (string, error) {
	result := tx.Model(&models.CompteurFacture{}).
		Where("entreprise_id = ? AND annee = ?", entrepriseID, annee).
		Update("dernier_numero", gorm.Expr("dernier_numero + 1"))
	if result.Error != nil {
		return "", fmt.Errorf("erreur d'incrément du compteur de factures: %w", result.Error)
	}

	// Première facture de l'année : le compteur n'existe pas encore
	if result.RowsAffected == 0 {
		compteur := models.CompteurFacture{
			EntrepriseID:  entrepriseID,
			Annee:         annee,
			DernierNumero: 1,
		}
		if err := tx.Create(&compteur).Error; err != nil {
			return "", fmt.Errorf("erreur de création du compteur de factures: %w", err)
		}
		return models.FormaterNumeroFacture(annee, 1, typeFacture), nil
	}

	var compteur models.CompteurFacture
	if err := tx.Where("entreprise_id = ? AND annee = ?", entrepriseID, annee).
		First(&compteur).Error; err != nil {
		return "", fmt.Errorf("erreur de lecture du compteur de factures: %w", err)
	}

	return models.FormaterNumeroFacture(annee, compteur.DernierNumero, typeFacture), nil
}

// CreerFactureAcompte crée la facture d'acompte d'un devis accepté
func (fs *FacturationService) CreerFactureAcompte(devisID uint) (*models.Facture, error) {
	return fs.creerFactureEcheance(devisID, models.FactureAcompte)
}

// CreerFactureIntermediaire crée la facture intermédiaire d'un devis accepté
func (fs *FacturationService) CreerFactureIntermediaire(devisID uint) (*models.Facture, error) {
	return fs.creerFactureEcheance(devisID, models.FactureIntermediaire)
}

// CreerFactureSolde crée la facture de solde d'un devis accepté
func (fs *FacturationService) CreerFactureSolde(devisID uint) (*models.Facture, error) {
	return fs.creerFactureEcheance(devisID, models.FactureSolde)
}

// creerFactureEcheance crée la facture d'une échéance donnée. Les préconditions
// sont vérifiées dans l'ordre : devis existant, devis accepté, total strictement
// positif, plan de paiement présent, échéance active, plan applicable au
// montant, pas de doublon.
func (fs *FacturationService) creerFactureEcheance(devisID uint, typeFacture string) (*models.Facture, error) {
	var devis models.Devis
	err := fs.db.Preload("TemplateConditionPaiement").
		Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("ordre ASC") }).
		First(&devis, devisID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDevisIntrouvable
		}
		return nil, fmt.Errorf("erreur de lecture du devis: %w", err)
	}

	if devis.Statut != models.DevisAccepte {
		return nil, ErrDevisInvalide
	}

	// Un devis à total nul ne produit pas de facture, même accepté : il a pu
	// être créé directement accepté ou vidé de ses lignes après envoi
	if !devis.MontantTTC.GreaterThan(decimal.Zero) {
		return nil, ErrDevisInvalide
	}

	template := devis.TemplateConditionPaiement
	if template == nil {
		return nil, ErrTemplateManquant
	}

	pourcentage, delai := echeanceDuTemplate(template, typeFacture)
	if !pourcentage.GreaterThan(decimal.Zero) {
		return nil, ErrNonApplicable
	}
	if !template.EstApplicable(devis.MontantTTC) {
		return nil, ErrNonApplicable
	}

	// Vérification amiable du doublon ; l'index unique (devis_id, type_facture)
	// reste la garde faisant foi en cas de course.
	var existante int64
	if err := fs.db.Model(&models.Facture{}).
		Where("devis_id = ? AND type_facture = ?", devisID, typeFacture).
		Count(&existante).Error; err != nil {
		return nil, fmt.Errorf("erreur de vérification de doublon: %w", err)
	}
	if existante > 0 {
		return nil, ErrDoublon
	}

	maintenant := time.Now()

	facture := &models.Facture{
		Titre:        devis.Titre,
		Description:  devis.Description,
		TypeFacture:  typeFacture,
		EntrepriseID: devis.EntrepriseID,
		ClientID:     devis.ClientID,
		DevisID:      &devis.ID,
		MontantHT:    CalculerProrata(devis.MontantHT, pourcentage),
		MontantTVA:   CalculerProrata(devis.MontantTVA, pourcentage),
		MontantTTC:   CalculerProrata(devis.MontantTTC, pourcentage),
		DateEmission: maintenant,
		DateEcheance: maintenant.AddDate(0, 0, delai),
		Statut:       statutInitial(typeFacture),
	}

	// Lignes copiées du devis : quantité et TVA inchangées, prix proratisé
	facture.Lignes = make([]models.LigneFacture, 0, len(devis.Lignes))
	for _, ligne := range devis.Lignes {
		facture.Lignes = append(facture.Lignes, models.LigneFacture{
			Ordre:          ligne.Ordre,
			Designation:    ligne.Designation,
			Description:    ligne.Description,
			Quantite:       ligne.Quantite,
			Unite:          ligne.Unite,
			PrixUnitaireHT: CalculerProrata(ligne.PrixUnitaireHT, pourcentage),
			TauxTVA:        ligne.TauxTVA,
		})
	}

	// La numérotation et l'écriture de la facture partagent la même
	// transaction : pas de trou de séquence si la création échoue.
	err = fs.db.Transaction(func(tx *gorm.DB) error {
		numero, err := fs.GenererNumeroFacture(tx, devis.EntrepriseID, maintenant.Year(), typeFacture)
		if err != nil {
			return err
		}
		facture.Numero = numero

		if err := tx.Create(facture).Error; err != nil {
			if estViolationUnicite(err) {
				return ErrDoublon
			}
			return fmt.Errorf("erreur de création de la facture: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Relances programmées pour l'acompte et le solde uniquement, en
	// meilleur effort : un échec de planification ne bloque pas la facture.
	if typeFacture == models.FactureAcompte || typeFacture == models.FactureSolde {
		if err := fs.relanceService.PlanifierRelances(facture); err != nil {
			log.Printf("⚠️ Impossible de planifier les relances de la facture %s: %v", facture.Numero, err)
		}
	}

	return facture, nil
}

// CreerFactureStandalone crée une facture autonome, sans devis d'origine
func (fs *FacturationService) CreerFactureStandalone(facture *models.Facture) error {
	if facture.ClientID == 0 {
		return fmt.Errorf("une facture doit être rattachée à un client")
	}

	facture.TypeFacture = models.FactureStandalone
	facture.DevisID = nil

	if facture.DateEmission.IsZero() {
		facture.DateEmission = time.Now()
	}
	if facture.DateEcheance.IsZero() {
		facture.DateEcheance = facture.DateEmission.AddDate(0, 0, 30)
	}
	if facture.Statut == "" {
		facture.Statut = models.FactureBrouillon
	}

	// Totaux recalculés depuis les lignes quand elles sont fournies
	if len(facture.Lignes) > 0 {
		totalHT := decimal.Zero
		totalTVA := decimal.Zero
		for i := range facture.Lignes {
			facture.Lignes[i].Ordre = i + 1
			ht := facture.Lignes[i].MontantHT()
			totalHT = totalHT.Add(ht)
			totalTVA = totalTVA.Add(ht.Mul(facture.Lignes[i].TauxTVA).Div(decimal.NewFromInt(100)))
		}
		facture.MontantHT = totalHT.Round(2)
		facture.MontantTVA = totalTVA.Round(2)
		facture.MontantTTC = facture.MontantHT.Add(facture.MontantTVA)
	}

	return fs.db.Transaction(func(tx *gorm.DB) error {
		numero, err := fs.GenererNumeroFacture(tx, facture.EntrepriseID, facture.DateEmission.Year(), models.FactureStandalone)
		if err != nil {
			return err
		}
		facture.Numero = numero

		if err := tx.Create(facture).Error; err != nil {
			return fmt.Errorf("erreur de création de la facture: %w", err)
		}
		return nil
	})
}

// MarquerPayee enregistre le paiement d'une facture : date de paiement posée,
// relances restantes annulées, et statut du devis réconcilié si toutes ses
// échéances sont réglées.
func (fs *FacturationService) MarquerPayee(factureID uint, datePaiement time.Time) (*models.Facture, error) {
	var facture models.Facture
	if err := fs.db.First(&facture, factureID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("facture introuvable")
		}
		return nil, fmt.Errorf("erreur de lecture de la facture: %w", err)
	}

	if !facture.EstReglable() {
		return nil, fmt.Errorf("la facture %s n'est pas encaissable (statut %s)", facture.Numero, facture.Statut)
	}

	err := fs.db.Transaction(func(tx *gorm.DB) error {
		facture.Statut = models.FacturePayee
		facture.DatePaiement = &datePaiement
		if err := tx.Save(&facture).Error; err != nil {
			return fmt.Errorf("erreur d'enregistrement du paiement: %w", err)
		}

		// Les relances encore planifiées n'ont plus lieu d'être
		if err := tx.Model(&models.Relance{}).
			Where("facture_id = ? AND statut = ?", facture.ID, models.RelancePlanifiee).
			Update("statut", models.RelanceAnnulee).Error; err != nil {
			return fmt.Errorf("erreur d'annulation des relances: %w", err)
		}

		// Réconciliation du devis : payé quand toutes ses échéances le sont
		if facture.DevisID != nil {
			var restantes int64
			if err := tx.Model(&models.Facture{}).
				Where("devis_id = ? AND statut NOT IN ?", *facture.DevisID,
					[]string{models.FacturePayee, models.FactureAnnulee}).
				Count(&restantes).Error; err != nil {
				return fmt.Errorf("erreur de comptage des factures du devis: %w", err)
			}
			if restantes == 0 {
				if err := tx.Model(&models.Devis{}).
					Where("id = ?", *facture.DevisID).
					Update("statut", models.DevisPaye).Error; err != nil {
					return fmt.Errorf("erreur de réconciliation du devis: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &facture, nil
}

// MarquerFacturesEnRetard passe en retard toutes les factures envoyées dont
// l'échéance est dépassée. Retourne le nombre de factures mises à jour.
func (fs *FacturationService) MarquerFacturesEnRetard(entrepriseID uuid.UUID) (int64, error) {
	result := fs.db.Model(&models.Facture{}).
		Where("entreprise_id = ? AND statut = ? AND date_echeance < ?",
			entrepriseID, models.FactureEnvoyee, time.Now()).
		Update("statut", models.FactureEnRetard)
	if result.Error != nil {
		return 0, fmt.Errorf("erreur de passage en retard: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetFacture récupère une facture avec son client, ses lignes et ses relances
func (fs *FacturationService) GetFacture(factureID uint) (*models.Facture, error) {
	var facture models.Facture
	err := fs.db.Preload("Client").
		Preload("Devis").
		Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("ordre ASC") }).
		Preload("Relances", func(db *gorm.DB) *gorm.DB { return db.Order("niveau ASC") }).
		First(&facture, factureID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("facture introuvable")
		}
		return nil, fmt.Errorf("erreur de lecture de la facture: %w", err)
	}
	return &facture, nil
}

// ListerFactures retourne les factures d'une entreprise, filtrables par
// statut, type et client
func (fs *FacturationService) ListerFactures(entrepriseID uuid.UUID, statut, typeFacture string, clientID uint) ([]models.Facture, error) {
	query := fs.db.Preload("Client").Where("entreprise_id = ?", entrepriseID)

	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if typeFacture != "" {
		query = query.Where("type_facture = ?", typeFacture)
	}
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	var factures []models.Facture
	if err := query.Order("date_emission DESC").Find(&factures).Error; err != nil {
		return nil, fmt.Errorf("erreur de listage des factures: %w", err)
	}
	return factures, nil
}

// echeanceDuTemplate retourne le pourcentage et le délai d'une échéance du plan
func echeanceDuTemplate(t *models.TemplateConditionsPaiement, typeFacture string) (decimal.Decimal, int) {
	switch typeFacture {
	case models.FactureAcompte:
		return t.PourcentageAcompte, t.DelaiAcompte
	case models.FactureIntermediaire:
		return t.PourcentageIntermediaire, t.DelaiIntermediaire
	case models.FactureSolde:
		return t.PourcentageSolde, t.DelaiSolde
	default:
		return decimal.Zero, 0
	}
}

// statutInitial retourne le statut de départ d'une facture d'échéance :
// l'acompte et le solde partent directement envoyés, l'intermédiaire reste en
// brouillon pour relecture avant envoi.
func statutInitial(typeFacture string) string {
	if typeFacture == models.FactureIntermediaire {
		return models.FactureBrouillon
	}
	return models.FactureEnvoyee
}

// estViolationUnicite détecte une violation de contrainte d'unicité, quel que
// soit le moteur (PostgreSQL ou SQLite en tests)
func estViolationUnicite(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}
