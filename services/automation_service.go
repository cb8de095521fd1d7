package services

import (
	"fmt"
	"log"

	"backend_mycharlie/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AutomationService exécute les tâches quotidiennes de facturation pour
// toutes les entreprises : passage en retard des factures échues et envoi
// des relances dues
type AutomationService struct {
	db   *gorm.DB
	cron *cron.Cron
}

// NewAutomationService crée une nouvelle instance d'AutomationService
func NewAutomationService(db *gorm.DB) *AutomationService {
	return &AutomationService{
		db:   db,
		cron: cron.New(),
	}
}

// Start programme et démarre les tâches planifiées :
// 02:00 passage en retard, 08:00 envoi des relances
func (as *AutomationService) Start() error {
	if _, err := as.cron.AddFunc("0 2 * * *", func() {
		if err := as.TraiterFacturesEnRetard(); err != nil {
			log.Printf("⚠️ Erreur du traitement des factures en retard: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("erreur de planification du traitement des retards: %w", err)
	}

	if _, err := as.cron.AddFunc("0 8 * * *", func() {
		if err := as.TraiterRelancesDues(); err != nil {
			log.Printf("⚠️ Erreur du traitement des relances dues: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("erreur de planification des relances: %w", err)
	}

	as.cron.Start()
	log.Println("✅ Automatisation de la facturation démarrée")
	return nil
}

// Stop arrête le planificateur
func (as *AutomationService) Stop() {
	as.cron.Stop()
	log.Println("Automatisation de la facturation arrêtée")
}

// TraiterFacturesEnRetard passe en retard les factures échues de toutes les
// entreprises actives
func (as *AutomationService) TraiterFacturesEnRetard() error {
	return as.pourChaqueEntreprise(func(entreprise *models.Entreprise, tenantDB *gorm.DB) {
		facturationService := NewFacturationService(tenantDB)
		n, err := facturationService.MarquerFacturesEnRetard(entreprise.ID)
		if err != nil {
			log.Printf("⚠️ Entreprise %s: erreur de passage en retard: %v", entreprise.Nom, err)
			return
		}
		if n > 0 {
			log.Printf("Entreprise %s: %d facture(s) passée(s) en retard", entreprise.Nom, n)

			// Alerte Telegram de l'artisan, en meilleur effort
			notificationService := NewNotificationService(tenantDB)
			message := fmt.Sprintf("⚠️ <b>%d facture(s) en retard de paiement</b>\n\nConsultez votre tableau de bord pour le détail.", n)
			if err := notificationService.EnvoyerAlerteTelegram(entreprise.ID, message, nil, "facture"); err != nil {
				log.Printf("⚠️ Entreprise %s: alerte Telegram non envoyée: %v", entreprise.Nom, err)
			}
		}
	})
}

// TraiterRelancesDues envoie les relances arrivées à échéance pour toutes les
// entreprises actives
func (as *AutomationService) TraiterRelancesDues() error {
	return as.pourChaqueEntreprise(func(entreprise *models.Entreprise, tenantDB *gorm.DB) {
		relanceService := NewRelanceService(tenantDB)
		n, err := relanceService.EnvoyerRelancesDues(entreprise.ID)
		if err != nil {
			log.Printf("⚠️ Entreprise %s: erreur d'envoi des relances: %v", entreprise.Nom, err)
			return
		}
		if n > 0 {
			log.Printf("Entreprise %s: %d relance(s) envoyée(s)", entreprise.Nom, n)
		}
	})
}

// pourChaqueEntreprise itère sur les entreprises actives en basculant la
// connexion sur le schéma de chacune
func (as *AutomationService) pourChaqueEntreprise(traitement func(*models.Entreprise, *gorm.DB)) error {
	var entreprises []models.Entreprise

	mainDB := as.db.Session(&gorm.Session{})
	if err := mainDB.Exec("SET search_path TO public").Error; err != nil {
		return fmt.Errorf("erreur de bascule sur le schéma principal: %w", err)
	}
	if err := mainDB.Where("is_active = ?", true).Find(&entreprises).Error; err != nil {
		return fmt.Errorf("erreur de listage des entreprises: %w", err)
	}

	for i := range entreprises {
		entreprise := &entreprises[i]

		tenantDB := as.db.Session(&gorm.Session{})
		if err := tenantDB.Exec(fmt.Sprintf("SET search_path TO %s", entreprise.GetSchemaName())).Error; err != nil {
			log.Printf("⚠️ Entreprise %s: erreur de bascule sur le schéma %s: %v",
				entreprise.Nom, entreprise.GetSchemaName(), err)
			continue
		}

		traitement(entreprise, tenantDB)
	}

	return nil
}
