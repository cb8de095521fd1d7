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
)

func TestGenererNumeroDevis(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	autre := testutils.CreateTestEntreprise(db)
	require.NotNil(t, autre)

	service := NewDevisService(db)
	annee := time.Now().Year()

	// La séquence démarre à 1 et s'incrémente par entreprise
	for i := 1; i <= 3; i++ {
		numero, err := service.GenererNumeroDevis(entreprise.ID, annee)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DEV-%04d-%03d", annee, i), numero)
	}

	// Chaque entreprise a son propre compteur
	numero, err := service.GenererNumeroDevis(autre.ID, annee)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("DEV-%04d-001", annee), numero)

	// Le compteur repart à 1 au changement d'année
	numero, err = service.GenererNumeroDevis(entreprise.ID, annee+1)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("DEV-%04d-001", annee+1), numero)
}

func TestCreerDevis(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	service := NewDevisService(db)

	devis := &models.Devis{
		Titre:        "Réfection toiture",
		EntrepriseID: entreprise.ID,
		ClientID:     client.ID,
		Lignes: []models.LigneDevis{
			{
				Designation:    "Dépose couverture",
				Quantite:       decimal.NewFromInt(40),
				Unite:          "m2",
				PrixUnitaireHT: decimal.NewFromInt(25),
				TauxTVA:        decimal.NewFromInt(10),
			},
			{
				Designation:    "Pose tuiles",
				Quantite:       decimal.NewFromInt(40),
				Unite:          "m2",
				PrixUnitaireHT: decimal.NewFromInt(60),
				TauxTVA:        decimal.NewFromInt(10),
			},
		},
	}
	require.NoError(t, service.CreerDevis(devis))

	annee := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("DEV-%04d-001", annee), devis.Numero)
	assert.Equal(t, models.DevisBrouillon, devis.Statut)

	// Totaux recalculés depuis les lignes : 1000 + 2400 HT, TVA 10 %
	assert.Equal(t, "3400.00", devis.MontantHT.StringFixed(2))
	assert.Equal(t, "340.00", devis.MontantTVA.StringFixed(2))
	assert.Equal(t, "3740.00", devis.MontantTTC.StringFixed(2))

	// L'ordre des lignes est renuméroté à la création
	assert.Equal(t, 1, devis.Lignes[0].Ordre)
	assert.Equal(t, 2, devis.Lignes[1].Ordre)

	t.Run("SansClient", func(t *testing.T) {
		err := service.CreerDevis(&models.Devis{Titre: "Orphelin", EntrepriseID: entreprise.ID})
		assert.Error(t, err)
	})
}

func TestMettreAJourDevis(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, nil)
	require.NoError(t, db.Model(devis).Update("statut", models.DevisBrouillon).Error)

	service := NewDevisService(db)

	maj := &models.Devis{
		Titre: "Rénovation salle de bain complète",
		Lignes: []models.LigneDevis{
			{
				Designation:    "Pose carrelage",
				Quantite:       decimal.NewFromInt(20),
				Unite:          "m2",
				PrixUnitaireHT: decimal.NewFromInt(50),
				TauxTVA:        decimal.NewFromInt(20),
			},
			{
				Designation:    "Plomberie",
				Quantite:       decimal.NewFromInt(1),
				Unite:          "forfait",
				PrixUnitaireHT: decimal.NewFromInt(800),
				TauxTVA:        decimal.NewFromInt(20),
			},
		},
	}

	resultat, err := service.MettreAJourDevis(devis.ID, maj)
	require.NoError(t, err)

	assert.Equal(t, "Rénovation salle de bain complète", resultat.Titre)
	assert.Equal(t, "1800.00", resultat.MontantHT.StringFixed(2))
	assert.Equal(t, "2160.00", resultat.MontantTTC.StringFixed(2))

	// Les anciennes lignes sont remplacées, pas accumulées
	var lignes int64
	db.Model(&models.LigneDevis{}).Where("devis_id = ?", devis.ID).Count(&lignes)
	assert.Equal(t, int64(2), lignes)

	t.Run("DevisNonModifiable", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Devis{}).Where("id = ?", devis.ID).
			Update("statut", models.DevisAccepte).Error)

		_, err := service.MettreAJourDevis(devis.ID, maj)
		assert.Error(t, err)
	})
}

func TestChangerStatutDevis(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)

	service := NewDevisService(db)

	t.Run("BrouillonVideNonFinalisable", func(t *testing.T) {
		devis := &models.Devis{
			Numero:       "DEV-2026-050",
			Titre:        "Brouillon vide",
			EntrepriseID: entreprise.ID,
			ClientID:     client.ID,
			DateEmission: time.Now(),
			Statut:       models.DevisBrouillon,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.ChangerStatut(devis.ID, models.DevisEnvoye)
		assert.ErrorIs(t, err, ErrDevisInvalide)
	})

	t.Run("CycleDeVieComplet", func(t *testing.T) {
		devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, nil)
		require.NoError(t, db.Model(devis).Update("statut", models.DevisBrouillon).Error)

		for _, statut := range []string{models.DevisEnvoye, models.DevisAccepte} {
			maj, err := service.ChangerStatut(devis.ID, statut)
			require.NoError(t, err)
			assert.Equal(t, statut, maj.Statut)
		}
	})

	t.Run("StatutInconnu", func(t *testing.T) {
		devis := &models.Devis{
			Numero:       "DEV-2026-051",
			Titre:        "Statut inconnu",
			EntrepriseID: entreprise.ID,
			ClientID:     client.ID,
			DateEmission: time.Now(),
			Statut:       models.DevisBrouillon,
		}
		require.NoError(t, db.Create(devis).Error)

		_, err := service.ChangerStatut(devis.ID, "archive")
		assert.Error(t, err)
	})

	t.Run("DevisIntrouvable", func(t *testing.T) {
		_, err := service.ChangerStatut(9999, models.DevisEnvoye)
		assert.ErrorIs(t, err, ErrDevisIntrouvable)
	})
}

func TestSupprimerDevis(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	entreprise := testutils.CreateTestEntreprise(db)
	client := testutils.CreateTestClient(db, entreprise.ID)
	devis := testutils.CreateTestDevis(db, entreprise.ID, client.ID, nil)

	service := NewDevisService(db)

	// Un devis accepté ne se supprime pas
	require.Error(t, service.SupprimerDevis(devis.ID))

	require.NoError(t, db.Model(devis).Update("statut", models.DevisBrouillon).Error)
	require.NoError(t, service.SupprimerDevis(devis.ID))

	_, err = service.GetDevis(devis.ID)
	assert.ErrorIs(t, err, ErrDevisIntrouvable)
}
