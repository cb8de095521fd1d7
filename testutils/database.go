package testutils

import (
	"log"
	"time"

	"backend_mycharlie/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB crée et configure une base de données de test en mémoire.
// Cette fonction doit être utilisée dans tous les tests pour rester cohérent.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Migrations dans le bon ordre : d'abord les modèles sans dépendances
	err = db.AutoMigrate(
		// Modèles de base
		&models.Entreprise{},
		&models.Utilisateur{},
		&models.Client{},

		// Facturation
		&models.TemplateConditionsPaiement{},
		&models.Devis{},
		&models.LigneDevis{},
		&models.CompteurDevis{},
		&models.Facture{},
		&models.LigneFacture{},
		&models.CompteurFacture{},
		&models.Relance{},

		// Planning et terrain
		&models.RendezVous{},
		&models.RapportVisite{},

		// Notifications
		&models.ParametresNotification{},
		&models.LogNotification{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB ferme la base de données de test
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// CreateTestEntreprise crée une entreprise de test. Le nom de schéma est
// dérivé de l'identifiant pour rester unique quand un test crée plusieurs
// entreprises dans la même base.
func CreateTestEntreprise(db *gorm.DB) *models.Entreprise {
	id := uuid.New()
	suffixe := id.String()[:8]

	entreprise := &models.Entreprise{
		ID:       id,
		Nom:      "Entreprise Test",
		SchemaBD: "tenant_" + suffixe,
		Email:    "test-" + suffixe + "@example.com",
		IsActive: true,
	}

	if err := db.Create(entreprise).Error; err != nil {
		log.Printf("Échec de création de l'entreprise de test: %v", err)
		return nil
	}

	return entreprise
}

// CreateTestClient crée un client de test
func CreateTestClient(db *gorm.DB, entrepriseID uuid.UUID) *models.Client {
	client := &models.Client{
		Nom:          "Dupont",
		Prenom:       "Jean",
		Type:         models.ClientParticulier,
		Email:        "jean.dupont@example.com",
		Telephone:    "0612345678",
		EntrepriseID: entrepriseID,
	}

	if err := db.Create(client).Error; err != nil {
		log.Printf("Échec de création du client de test: %v", err)
		return nil
	}

	return client
}

// CreateTestTemplate crée un template de conditions de paiement 30/0/70
func CreateTestTemplate(db *gorm.DB, entrepriseID uuid.UUID) *models.TemplateConditionsPaiement {
	template := &models.TemplateConditionsPaiement{
		Nom:                      "Acompte 30 %",
		MontantMin:               decimal.Zero,
		PourcentageAcompte:       decimal.NewFromInt(30),
		DelaiAcompte:             0,
		PourcentageIntermediaire: decimal.Zero,
		DelaiIntermediaire:       0,
		PourcentageSolde:         decimal.NewFromInt(70),
		DelaiSolde:               30,
		EntrepriseID:             entrepriseID,
	}

	if err := db.Create(template).Error; err != nil {
		log.Printf("Échec de création du template de test: %v", err)
		return nil
	}

	return template
}

// CreateTestDevis crée un devis accepté de 1200 EUR TTC avec une ligne
func CreateTestDevis(db *gorm.DB, entrepriseID uuid.UUID, clientID uint, templateID *uint) *models.Devis {
	devis := &models.Devis{
		Numero:                      "DEV-2026-001",
		Titre:                       "Rénovation salle de bain",
		EntrepriseID:                entrepriseID,
		ClientID:                    clientID,
		TemplateConditionPaiementID: templateID,
		MontantHT:                   decimal.NewFromInt(1000),
		MontantTVA:                  decimal.NewFromInt(200),
		MontantTTC:                  decimal.NewFromInt(1200),
		DateEmission:                time.Now(),
		Statut:                      models.DevisAccepte,
	}

	if err := db.Create(devis).Error; err != nil {
		log.Printf("Échec de création du devis de test: %v", err)
		return nil
	}

	ligne := &models.LigneDevis{
		DevisID:        devis.ID,
		Ordre:          1,
		Designation:    "Pose carrelage",
		Quantite:       decimal.NewFromInt(20),
		Unite:          "m2",
		PrixUnitaireHT: decimal.NewFromInt(50),
		TauxTVA:        decimal.NewFromInt(20),
	}
	if err := db.Create(ligne).Error; err != nil {
		log.Printf("Échec de création de la ligne de devis de test: %v", err)
	}
	devis.Lignes = []models.LigneDevis{*ligne}

	return devis
}
