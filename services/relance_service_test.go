package services

import (
	"testing"
	"time"

	"backend_mycharlie/models"
	"backend_mycharlie/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanifierRelances(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	facture := &models.Facture{
		Numero:       "FAC-2026-001-A",
		Titre:        "Acompte rénovation",
		TypeFacture:  models.FactureAcompte,
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		MontantHT:    decimal.NewFromInt(300),
		MontantTTC:   decimal.NewFromInt(360),
		DateEmission: time.Now(),
		DateEcheance: time.Now().AddDate(0, 0, 30),
		Statut:       models.FactureEnvoyee,
	}
	require.NoError(t, db.Create(facture).Error)

	service := NewRelanceService(db)
	require.NoError(t, service.PlanifierRelances(facture))

	var relances []models.Relance
	require.NoError(t, db.Where("facture_id = ?", facture.ID).Order("niveau ASC").Find(&relances).Error)
	require.Len(t, relances, 3)

	for i, jours := range []int{3, 10, 21} {
		assert.Equal(t, i+1, relances[i].Niveau)
		assert.Equal(t, "email", relances[i].Canal)
		assert.Equal(t, models.RelancePlanifiee, relances[i].Statut)
		assert.WithinDuration(t, facture.DateEcheance.AddDate(0, 0, jours), relances[i].DatePrevue, time.Second)
		assert.Contains(t, relances[i].Objet, facture.Numero)
	}

	// Le ton monte avec le niveau : la troisième est une mise en demeure
	assert.Contains(t, relances[0].Objet, "Rappel")
	assert.Contains(t, relances[1].Objet, "Relance")
	assert.Contains(t, relances[2].Objet, "Mise en demeure")
	assert.Contains(t, relances[2].Message, "L441-10")
}

func TestAnnulerRelances(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	facture := &models.Facture{
		Numero:       "FAC-2026-001-S",
		Titre:        "Solde rénovation",
		TypeFacture:  models.FactureSolde,
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		MontantHT:    decimal.NewFromInt(700),
		MontantTTC:   decimal.NewFromInt(840),
		DateEmission: time.Now(),
		DateEcheance: time.Now().AddDate(0, 0, 30),
		Statut:       models.FactureEnvoyee,
	}
	require.NoError(t, db.Create(facture).Error)

	service := NewRelanceService(db)
	require.NoError(t, service.PlanifierRelances(facture))

	// Une relance déjà envoyée ne doit pas être annulée
	envoi := time.Now()
	require.NoError(t, db.Model(&models.Relance{}).
		Where("facture_id = ? AND niveau = ?", facture.ID, 1).
		Updates(map[string]interface{}{"statut": models.RelanceEnvoyee, "date_envoi": envoi}).Error)

	require.NoError(t, service.AnnulerRelances(facture.ID))

	var relances []models.Relance
	require.NoError(t, db.Where("facture_id = ?", facture.ID).Order("niveau ASC").Find(&relances).Error)
	require.Len(t, relances, 3)
	assert.Equal(t, models.RelanceEnvoyee, relances[0].Statut)
	assert.Equal(t, models.RelanceAnnulee, relances[1].Statut)
	assert.Equal(t, models.RelanceAnnulee, relances[2].Statut)
}

func TestEnvoyerRelancesDuesFacturePayee(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	paiement := time.Now()
	facture := &models.Facture{
		Numero:       "FAC-2026-001",
		Titre:        "Facture réglée",
		TypeFacture:  models.FactureStandalone,
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		MontantHT:    decimal.NewFromInt(100),
		MontantTTC:   decimal.NewFromInt(120),
		DateEmission: time.Now().AddDate(0, 0, -40),
		DateEcheance: time.Now().AddDate(0, 0, -10),
		DatePaiement: &paiement,
		Statut:       models.FacturePayee,
	}
	require.NoError(t, db.Create(facture).Error)

	relance := &models.Relance{
		EntrepriseID: entreprise.ID,
		FactureID:    facture.ID,
		Canal:        "email",
		Niveau:       1,
		Objet:        "Rappel : facture FAC-2026-001 en attente de règlement",
		DatePrevue:   time.Now().AddDate(0, 0, -7),
		Statut:       models.RelancePlanifiee,
	}
	require.NoError(t, db.Create(relance).Error)

	service := NewRelanceService(db)
	envoyees, err := service.EnvoyerRelancesDues(entreprise.ID)
	require.NoError(t, err)

	// La facture étant réglée, la relance est annulée au lieu d'être envoyée
	assert.Zero(t, envoyees)

	var maj models.Relance
	require.NoError(t, db.First(&maj, relance.ID).Error)
	assert.Equal(t, models.RelanceAnnulee, maj.Statut)
}
