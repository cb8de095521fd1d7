package services

import (
	"fmt"
	"log"
	"time"

	"backend_mycharlie/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Paliers de relance : jours après l'échéance de la facture
var paliersRelance = []int{3, 10, 21}

// RelanceService gère la planification et l'envoi des rappels de paiement
type RelanceService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

// NewRelanceService crée une nouvelle instance de RelanceService
func NewRelanceService(db *gorm.DB) *RelanceService {
	return &RelanceService{
		db:                  db,
		notificationService: NewNotificationService(db),
	}
}

// PlanifierRelances programme les trois relances d'une facture : échéance +3,
// +10 et +21 jours, avec un niveau de fermeté croissant
func (rs *RelanceService) PlanifierRelances(facture *models.Facture) error {
	relances := make([]models.Relance, 0, len(paliersRelance))

	for niveau, jours := range paliersRelance {
		relances = append(relances, models.Relance{
			EntrepriseID: facture.EntrepriseID,
			FactureID:    facture.ID,
			Canal:        "email",
			Niveau:       niveau + 1,
			Objet:        objetRelance(niveau+1, facture.Numero),
			Message:      messageRelance(niveau+1, facture),
			DatePrevue:   facture.DateEcheance.AddDate(0, 0, jours),
			Statut:       models.RelancePlanifiee,
		})
	}

	if err := rs.db.Create(&relances).Error; err != nil {
		return fmt.Errorf("erreur de planification des relances: %w", err)
	}

	return nil
}

// AnnulerRelances annule toutes les relances encore planifiées d'une facture
func (rs *RelanceService) AnnulerRelances(factureID uint) error {
	err := rs.db.Model(&models.Relance{}).
		Where("facture_id = ? AND statut = ?", factureID, models.RelancePlanifiee).
		Update("statut", models.RelanceAnnulee).Error
	if err != nil {
		return fmt.Errorf("erreur d'annulation des relances: %w", err)
	}
	return nil
}

// ListerRelances retourne les relances d'une entreprise, filtrables par
// statut et par facture
func (rs *RelanceService) ListerRelances(entrepriseID uuid.UUID, statut string, factureID uint) ([]models.Relance, error) {
	query := rs.db.Preload("Facture").Where("entreprise_id = ?", entrepriseID)
	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if factureID != 0 {
		query = query.Where("facture_id = ?", factureID)
	}

	var relances []models.Relance
	if err := query.Order("date_prevue ASC").Find(&relances).Error; err != nil {
		return nil, fmt.Errorf("erreur de listage des relances: %w", err)
	}
	return relances, nil
}

// EnvoyerRelancesDues envoie toutes les relances planifiées dont la date est
// atteinte et dont la facture reste impayée. Retourne le nombre d'envois.
func (rs *RelanceService) EnvoyerRelancesDues(entrepriseID uuid.UUID) (int, error) {
	var relances []models.Relance
	err := rs.db.Preload("Facture").Preload("Facture.Client").
		Where("entreprise_id = ? AND statut = ? AND date_prevue <= ?",
			entrepriseID, models.RelancePlanifiee, time.Now()).
		Order("date_prevue ASC").
		Find(&relances).Error
	if err != nil {
		return 0, fmt.Errorf("erreur de lecture des relances dues: %w", err)
	}

	envoyees := 0
	for i := range relances {
		relance := &relances[i]

		// La facture a pu être réglée ou annulée entre-temps
		if relance.Facture == nil || !relance.Facture.EstReglable() {
			relance.Statut = models.RelanceAnnulee
			rs.db.Save(relance)
			continue
		}

		if err := rs.envoyerRelance(relance); err != nil {
			log.Printf("⚠️ Échec d'envoi de la relance %d (facture %s): %v",
				relance.ID, relance.Facture.Numero, err)
			continue
		}

		maintenant := time.Now()
		relance.Statut = models.RelanceEnvoyee
		relance.DateEnvoi = &maintenant
		if err := rs.db.Save(relance).Error; err != nil {
			log.Printf("⚠️ Échec d'enregistrement de la relance %d: %v", relance.ID, err)
			continue
		}
		envoyees++
	}

	return envoyees, nil
}

// envoyerRelance expédie une relance par le canal configuré
func (rs *RelanceService) envoyerRelance(relance *models.Relance) error {
	destinataire := ""
	if relance.Facture != nil && relance.Facture.Client != nil {
		destinataire = relance.Facture.Client.Email
	}
	if destinataire == "" {
		return fmt.Errorf("le client de la facture n'a pas d'adresse email")
	}

	return rs.notificationService.EnvoyerEmail(relance.EntrepriseID, destinataire,
		relance.Objet, relance.Message, &relance.ID, "relance")
}

// objetRelance retourne l'objet du message selon le niveau de fermeté
func objetRelance(niveau int, numeroFacture string) string {
	switch niveau {
	case 1:
		return fmt.Sprintf("Rappel : facture %s en attente de règlement", numeroFacture)
	case 2:
		return fmt.Sprintf("Relance : facture %s impayée", numeroFacture)
	default:
		return fmt.Sprintf("Mise en demeure : facture %s", numeroFacture)
	}
}

// messageRelance construit le corps du message selon le niveau de fermeté
func messageRelance(niveau int, facture *models.Facture) string {
	montant := facture.MontantTTC.StringFixed(2)
	echeance := facture.DateEcheance.Format("02/01/2006")

	switch niveau {
	case 1:
		return fmt.Sprintf(
			"Bonjour,\n\nSauf erreur de notre part, la facture %s d'un montant de %s EUR, "+
				"arrivée à échéance le %s, reste en attente de règlement.\n\n"+
				"Si votre paiement est déjà parti, merci de ne pas tenir compte de ce message.\n\n"+
				"Cordialement",
			facture.Numero, montant, echeance)
	case 2:
		return fmt.Sprintf(
			"Bonjour,\n\nMalgré notre précédent rappel, la facture %s d'un montant de %s EUR, "+
				"échue le %s, demeure impayée.\n\n"+
				"Nous vous remercions de procéder à son règlement sous huitaine.\n\n"+
				"Cordialement",
			facture.Numero, montant, echeance)
	default:
		return fmt.Sprintf(
			"Bonjour,\n\nLa facture %s d'un montant de %s EUR, échue le %s, reste impayée "+
				"malgré nos relances.\n\n"+
				"Sans règlement sous 8 jours, nous nous réservons le droit d'engager "+
				"une procédure de recouvrement. Des pénalités de retard sont applicables "+
				"conformément à l'article L441-10 du Code de commerce.\n\n"+
				"Cordialement",
			facture.Numero, montant, echeance)
	}
}
