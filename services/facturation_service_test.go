package services

import (
	"fmt"
	"testing"
	"time"

	"backend_mycharlie/models"
	"backend_mycharlie/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCalculerProrata(t *testing.T) {
	montant := decimal.NewFromInt(1200)

	acompte := CalculerProrata(montant, decimal.NewFromInt(30))
	solde := CalculerProrata(montant, decimal.NewFromInt(70))

	assert.Equal(t, "360.00", acompte.StringFixed(2))
	assert.Equal(t, "840.00", solde.StringFixed(2))

	// Chaque échéance est arrondie indépendamment : sur 100,01 EUR en
	// trois tiers, la somme des parts perd un centime et c'est assumé
	tiers := decimal.NewFromFloat(33.33)
	part := CalculerProrata(decimal.NewFromFloat(100.01), tiers)
	assert.Equal(t, "33.33", part.StringFixed(2))
}

func TestCreerFactureAcompte(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	template := testutils.CreateTestTemplate(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	service := NewFacturationService(db)
	facture, err := service.CreerFactureAcompte(devis.ID)
	require.NoError(t, err)

	annee := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("FAC-%04d-001-A", annee), facture.Numero)
	assert.Equal(t, models.FactureAcompte, facture.TypeFacture)
	assert.Equal(t, models.FactureEnvoyee, facture.Statut)

	// 30 % du devis de 1200 EUR TTC
	assert.Equal(t, "300.00", facture.MontantHT.StringFixed(2))
	assert.Equal(t, "60.00", facture.MontantTVA.StringFixed(2))
	assert.Equal(t, "360.00", facture.MontantTTC.StringFixed(2))

	// Délai acompte à zéro : échéance le jour de l'émission
	assert.WithinDuration(t, facture.DateEmission, facture.DateEcheance, time.Second)

	// Les lignes sont copiées avec le prix unitaire proratisé, quantité
	// et taux de TVA inchangés
	require.Len(t, facture.Lignes, 1)
	assert.Equal(t, "Pose carrelage", facture.Lignes[0].Designation)
	assert.Equal(t, "20", facture.Lignes[0].Quantite.String())
	assert.Equal(t, "15.00", facture.Lignes[0].PrixUnitaireHT.StringFixed(2))
	assert.Equal(t, "20", facture.Lignes[0].TauxTVA.String())

	// Trois relances planifiées à échéance +3, +10 et +21 jours
	var relances []models.Relance
	require.NoError(t, db.Where("facture_id = ?", facture.ID).Order("niveau ASC").Find(&relances).Error)
	require.Len(t, relances, 3)
	for i, jours := range []int{3, 10, 21} {
		assert.Equal(t, i+1, relances[i].Niveau)
		assert.Equal(t, models.RelancePlanifiee, relances[i].Statut)
		assert.WithinDuration(t, facture.DateEcheance.AddDate(0, 0, jours), relances[i].DatePrevue, time.Second)
	}
}

func TestCreerFactureSoldeNumerotation(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	template := testutils.CreateTestTemplate(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	service := NewFacturationService(db)

	acompte, err := service.CreerFactureAcompte(devis.ID)
	require.NoError(t, err)
	solde, err := service.CreerFactureSolde(devis.ID)
	require.NoError(t, err)

	// La séquence est partagée entre les types : le suffixe seul change
	annee := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("FAC-%04d-001-A", annee), acompte.Numero)
	assert.Equal(t, fmt.Sprintf("FAC-%04d-002-S", annee), solde.Numero)

	// 70 % du devis, échéance à émission +30 jours
	assert.Equal(t, "840.00", solde.MontantTTC.StringFixed(2))
	assert.WithinDuration(t, solde.DateEmission.AddDate(0, 0, 30), solde.DateEcheance, time.Second)
}

func TestCreerFactureIntermediaire(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	// Plan à trois échéances 30/20/50
	template := &models.TemplateConditionsPaiement{
		Nom:                      "Trois échéances",
		PourcentageAcompte:       decimal.NewFromInt(30),
		PourcentageIntermediaire: decimal.NewFromInt(20),
		DelaiIntermediaire:       15,
		PourcentageSolde:         decimal.NewFromInt(50),
		DelaiSolde:               30,
		EntrepriseID:             entreprise.ID,
	}
	require.NoError(t, db.Create(template).Error)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	service := NewFacturationService(db)
	facture, err := service.CreerFactureIntermediaire(devis.ID)
	require.NoError(t, err)

	// L'intermédiaire part en brouillon pour relecture avant envoi
	assert.Equal(t, models.FactureBrouillon, facture.Statut)
	assert.Equal(t, "240.00", facture.MontantTTC.StringFixed(2))

	// Pas de relance pour une facture intermédiaire
	var relances int64
	db.Model(&models.Relance{}).Where("facture_id = ?", facture.ID).Count(&relances)
	assert.Zero(t, relances)
}

func TestCreerFactureEcheanceErreurs(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	template := testutils.CreateTestTemplate(db, entreprise.ID)

	service := NewFacturationService(db)

	t.Run("DevisIntrouvable", func(t *testing.T) {
		_, err := service.CreerFactureAcompte(9999)
		assert.ErrorIs(t, err, ErrDevisIntrouvable)
	})

	t.Run("DevisNonAccepte", func(t *testing.T) {
		devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)
		require.NoError(t, db.Model(devis).Update("statut", models.DevisBrouillon).Error)

		_, err := service.CreerFactureAcompte(devis.ID)
		assert.ErrorIs(t, err, ErrDevisInvalide)
	})

	t.Run("TotalNul", func(t *testing.T) {
		// Un devis accepté mais à total nul (créé directement accepté, ou
		// vidé de ses lignes après envoi) ne se facture pas
		devis := &models.Devis{
			Numero:                      "DEV-2026-089",
			Titre:                       "Devis à total nul",
			EntrepriseID:                entreprise.ID,
			ClientID:                    client.ID,
			TemplateConditionPaiementID: &template.ID,
			MontantTTC:                  decimal.Zero,
			DateEmission:                time.Now(),
			Statut:                      models.DevisAccepte,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.CreerFactureAcompte(devis.ID)
		assert.ErrorIs(t, err, ErrDevisInvalide)

		var factures int64
		db.Model(&models.Facture{}).Where("devis_id = ?", devis.ID).Count(&factures)
		assert.Zero(t, factures)
	})

	t.Run("TemplateManquant", func(t *testing.T) {
		devis := &models.Devis{
			Numero:       "DEV-2026-090",
			Titre:        "Sans plan de paiement",
			EntrepriseID: entreprise.ID,
			ClientID:     client.ID,
			MontantTTC:   decimal.NewFromInt(1200),
			DateEmission: time.Now(),
			Statut:       models.DevisAccepte,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.CreerFactureAcompte(devis.ID)
		assert.ErrorIs(t, err, ErrTemplateManquant)
	})

	t.Run("EcheanceInactive", func(t *testing.T) {
		// Le plan 30/0/70 n'a pas d'échéance intermédiaire
		devis := &models.Devis{
			Numero:                      "DEV-2026-091",
			Titre:                       "Sans échéance intermédiaire",
			EntrepriseID:                entreprise.ID,
			ClientID:                    client.ID,
			TemplateConditionPaiementID: &template.ID,
			MontantTTC:                  decimal.NewFromInt(1200),
			DateEmission:                time.Now(),
			Statut:                      models.DevisAccepte,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.CreerFactureIntermediaire(devis.ID)
		assert.ErrorIs(t, err, ErrNonApplicable)
	})

	t.Run("MontantHorsPlage", func(t *testing.T) {
		horsPlage := &models.TemplateConditionsPaiement{
			Nom:                "Gros chantiers",
			MontantMin:         decimal.NewFromInt(5000),
			PourcentageAcompte: decimal.NewFromInt(30),
			PourcentageSolde:   decimal.NewFromInt(70),
			DelaiSolde:         30,
			EntrepriseID:       entreprise.ID,
		}
		require.NoError(t, db.Create(horsPlage).Error)

		devis := &models.Devis{
			Numero:                      "DEV-2026-092",
			Titre:                       "Petit chantier",
			EntrepriseID:                entreprise.ID,
			ClientID:                    client.ID,
			TemplateConditionPaiementID: &horsPlage.ID,
			MontantTTC:                  decimal.NewFromInt(1200),
			DateEmission:                time.Now(),
			Statut:                      models.DevisAccepte,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.CreerFactureAcompte(devis.ID)
		assert.ErrorIs(t, err, ErrNonApplicable)
	})
}

func TestCreerFactureDoublon(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	template := testutils.CreateTestTemplate(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	service := NewFacturationService(db)

	_, err = service.CreerFactureAcompte(devis.ID)
	require.NoError(t, err)

	// Un seul acompte par devis
	_, err = service.CreerFactureAcompte(devis.ID)
	assert.ErrorIs(t, err, ErrDoublon)

	// Mais le solde du même devis reste possible
	_, err = service.CreerFactureSolde(devis.ID)
	assert.NoError(t, err)
}

func TestCreerFactureStandalone(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	service := NewFacturationService(db)

	facture := &models.Facture{
		Titre:        "Dépannage plomberie",
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		Lignes: []models.LigneFacture{
			{
				Designation:    "Intervention d'urgence",
				Quantite:       decimal.NewFromInt(2),
				Unite:          "h",
				PrixUnitaireHT: decimal.NewFromInt(80),
				TauxTVA:        decimal.NewFromInt(20),
			},
		},
	}
	require.NoError(t, service.CreerFactureStandalone(facture))

	// Numéro sans suffixe, totaux recalculés depuis les lignes
	annee := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("FAC-%04d-001", annee), facture.Numero)
	assert.Equal(t, models.FactureStandalone, facture.TypeFacture)
	assert.Nil(t, facture.DevisID)
	assert.Equal(t, "160.00", facture.MontantHT.StringFixed(2))
	assert.Equal(t, "32.00", facture.MontantTVA.StringFixed(2))
	assert.Equal(t, "192.00", facture.MontantTTC.StringFixed(2))

	// Échéance par défaut à émission +30 jours
	assert.WithinDuration(t, facture.DateEmission.AddDate(0, 0, 30), facture.DateEcheance, time.Second)
}

func TestMarquerPayee(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	template := testutils.CreateTestTemplate(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	service := NewFacturationService(db)

	acompte, err := service.CreerFactureAcompte(devis.ID)
	require.NoError(t, err)
	solde, err := service.CreerFactureSolde(devis.ID)
	require.NoError(t, err)

	// Paiement de l'acompte : relances annulées, devis toujours en attente
	paiement := time.Now()
	payee, err := service.MarquerPayee(acompte.ID, paiement)
	require.NoError(t, err)
	assert.Equal(t, models.FacturePayee, payee.Statut)
	require.NotNil(t, payee.DatePaiement)

	var planifiees int64
	db.Model(&models.Relance{}).
		Where("facture_id = ? AND statut = ?", acompte.ID, models.RelancePlanifiee).
		Count(&planifiees)
	assert.Zero(t, planifiees)

	var devisMaj models.Devis
	require.NoError(t, db.First(&devisMaj, devis.ID).Error)
	assert.Equal(t, models.DevisAccepte, devisMaj.Statut)

	// Paiement du solde : toutes les échéances sont réglées, le devis bascule
	_, err = service.MarquerPayee(solde.ID, paiement)
	require.NoError(t, err)

	require.NoError(t, db.First(&devisMaj, devis.ID).Error)
	assert.Equal(t, models.DevisPaye, devisMaj.Statut)

	// Une facture déjà payée ne s'encaisse pas deux fois
	_, err = service.MarquerPayee(acompte.ID, paiement)
	assert.Error(t, err)
}

func TestMarquerFacturesEnRetard(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	echue := &models.Facture{
		Numero:       "FAC-2026-001",
		Titre:        "Facture échue",
		TypeFacture:  models.FactureStandalone,
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		MontantHT:    decimal.NewFromInt(100),
		MontantTTC:   decimal.NewFromInt(120),
		DateEmission: time.Now().AddDate(0, 0, -45),
		DateEcheance: time.Now().AddDate(0, 0, -15),
		Statut:       models.FactureEnvoyee,
	}
	require.NoError(t, db.Create(echue).Error)

	aVenir := &models.Facture{
		Numero:       "FAC-2026-002",
		Titre:        "Facture à venir",
		TypeFacture:  models.FactureStandalone,
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		MontantHT:    decimal.NewFromInt(100),
		MontantTTC:   decimal.NewFromInt(120),
		DateEmission: time.Now(),
		DateEcheance: time.Now().AddDate(0, 0, 30),
		Statut:       models.FactureEnvoyee,
	}
	require.NoError(t, db.Create(aVenir).Error)

	service := NewFacturationService(db)
	nombre, err := service.MarquerFacturesEnRetard(entreprise.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), nombre)

	var majEchue models.Facture
	require.NoError(t, db.First(&majEchue, echue.ID).Error)
	assert.Equal(t, models.FactureEnRetard, majEchue.Statut)

	var majAVenir models.Facture
	require.NoError(t, db.First(&majAVenir, aVenir.ID).Error)
	assert.Equal(t, models.FactureEnvoyee, majAVenir.Statut)
}

func TestEstViolationUnicite(t *testing.T) {
	assert.False(t, estViolationUnicite(nil))
	assert.False(t, estViolationUnicite(gorm.ErrRecordNotFound))
	assert.True(t, estViolationUnicite(fmt.Errorf("UNIQUE constraint failed: factures.numero")))
	assert.True(t, estViolationUnicite(fmt.Errorf(`pq: duplicate key value violates unique constraint "idx_factures_devis_type"`)))
}
