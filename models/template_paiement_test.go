package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateValider(t *testing.T) {
	t.Run("PlanValide", func(t *testing.T) {
		template := &TemplateConditionsPaiement{
			Nom:                "Acompte 30 %",
			PourcentageAcompte: decimal.NewFromInt(30),
			PourcentageSolde:   decimal.NewFromInt(70),
			DelaiSolde:         30,
		}

		assert.NoError(t, template.Valider())
	})

	t.Run("SommeDifferenteDeCent", func(t *testing.T) {
		template := &TemplateConditionsPaiement{
			Nom:                "Plan incomplet",
			PourcentageAcompte: decimal.NewFromInt(30),
			PourcentageSolde:   decimal.NewFromInt(60),
		}

		err := template.Valider()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "somme des pourcentages")
	})

	t.Run("ToleranceSurLaSomme", func(t *testing.T) {
		// 33,33 + 33,33 + 33,34 = 100,00 : dans la tolérance
		template := &TemplateConditionsPaiement{
			Nom:                      "Trois tiers",
			PourcentageAcompte:       decimal.NewFromFloat(33.33),
			PourcentageIntermediaire: decimal.NewFromFloat(33.33),
			PourcentageSolde:         decimal.NewFromFloat(33.34),
		}

		assert.NoError(t, template.Valider())
	})

	t.Run("PourcentageHorsBornes", func(t *testing.T) {
		template := &TemplateConditionsPaiement{
			Nom:                "Plan invalide",
			PourcentageAcompte: decimal.NewFromInt(120),
			PourcentageSolde:   decimal.NewFromInt(-20),
		}

		err := template.Valider()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pourcentage acompte invalide")
	})

	t.Run("DelaiNegatif", func(t *testing.T) {
		template := &TemplateConditionsPaiement{
			Nom:              "Plan invalide",
			PourcentageSolde: decimal.NewFromInt(100),
			DelaiSolde:       -5,
		}

		err := template.Valider()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "délai solde invalide")
	})
}

func TestTemplateEstApplicable(t *testing.T) {
	max := decimal.NewFromInt(10000)
	template := &TemplateConditionsPaiement{
		MontantMin: decimal.NewFromInt(1000),
		MontantMax: &max,
	}

	assert.False(t, template.EstApplicable(decimal.NewFromInt(999)))
	assert.True(t, template.EstApplicable(decimal.NewFromInt(1000)))
	assert.True(t, template.EstApplicable(decimal.NewFromInt(5000)))
	assert.True(t, template.EstApplicable(decimal.NewFromInt(10000)))
	assert.False(t, template.EstApplicable(decimal.NewFromInt(10001)))
}

func TestTemplateEstApplicableSansBorneSuperieure(t *testing.T) {
	template := &TemplateConditionsPaiement{
		MontantMin: decimal.NewFromInt(500),
	}

	assert.True(t, template.EstApplicable(decimal.NewFromInt(1000000)))
	assert.False(t, template.EstApplicable(decimal.NewFromInt(499)))
}

func TestEquilibrerPourcentages(t *testing.T) {
	t.Run("TroisEcheances", func(t *testing.T) {
		parts := EquilibrerPourcentages(3)
		require.Len(t, parts, 3)

		// Le reste de la division entière va à la dernière échéance
		assert.True(t, parts[0].Equal(decimal.NewFromInt(33)))
		assert.True(t, parts[1].Equal(decimal.NewFromInt(33)))
		assert.True(t, parts[2].Equal(decimal.NewFromInt(34)))
	})

	t.Run("DeuxEcheances", func(t *testing.T) {
		parts := EquilibrerPourcentages(2)
		require.Len(t, parts, 2)
		assert.True(t, parts[0].Equal(decimal.NewFromInt(50)))
		assert.True(t, parts[1].Equal(decimal.NewFromInt(50)))
	})

	t.Run("UneEcheance", func(t *testing.T) {
		parts := EquilibrerPourcentages(1)
		require.Len(t, parts, 1)
		assert.True(t, parts[0].Equal(decimal.NewFromInt(100)))
	})

	t.Run("NombreInvalide", func(t *testing.T) {
		assert.Nil(t, EquilibrerPourcentages(0))
		assert.Nil(t, EquilibrerPourcentages(-1))
	})
}

func TestRedistribuerPourcentages(t *testing.T) {
	pourcentages := []decimal.Decimal{
		decimal.NewFromInt(30),
		decimal.NewFromInt(30),
		decimal.NewFromInt(40),
	}

	// Passage de 3 à 2 échéances : les 40 points du solde supprimé
	// sont reportés sur la dernière échéance restante
	restants := RedistribuerPourcentages(pourcentages, 2)
	require.Len(t, restants, 2)
	assert.True(t, restants[0].Equal(decimal.NewFromInt(30)))
	assert.True(t, restants[1].Equal(decimal.NewFromInt(70)))

	// n hors bornes : la liste est retournée telle quelle
	assert.Len(t, RedistribuerPourcentages(pourcentages, 3), 3)
	assert.Len(t, RedistribuerPourcentages(pourcentages, 0), 3)
}

func TestTemplateEquilibrer(t *testing.T) {
	t.Run("TroisEcheances", func(t *testing.T) {
		template := &TemplateConditionsPaiement{Nom: "Trois tiers"}

		require.NoError(t, template.Equilibrer(3))
		assert.True(t, template.PourcentageAcompte.Equal(decimal.NewFromInt(33)))
		assert.True(t, template.PourcentageIntermediaire.Equal(decimal.NewFromInt(33)))
		assert.True(t, template.PourcentageSolde.Equal(decimal.NewFromInt(34)))
		assert.NoError(t, template.Valider())
	})

	t.Run("DeuxEcheances", func(t *testing.T) {
		template := &TemplateConditionsPaiement{Nom: "Moitié-moitié"}

		require.NoError(t, template.Equilibrer(2))
		assert.True(t, template.PourcentageAcompte.Equal(decimal.NewFromInt(50)))
		assert.True(t, template.PourcentageIntermediaire.IsZero())
		assert.True(t, template.PourcentageSolde.Equal(decimal.NewFromInt(50)))
	})

	t.Run("UneEcheance", func(t *testing.T) {
		template := &TemplateConditionsPaiement{Nom: "Comptant"}

		require.NoError(t, template.Equilibrer(1))
		assert.True(t, template.PourcentageAcompte.IsZero())
		assert.True(t, template.PourcentageSolde.Equal(decimal.NewFromInt(100)))
	})

	t.Run("NombreInvalide", func(t *testing.T) {
		template := &TemplateConditionsPaiement{Nom: "Invalide"}

		assert.Error(t, template.Equilibrer(0))
		assert.Error(t, template.Equilibrer(4))
	})
}

func TestSuffixeNumero(t *testing.T) {
	assert.Equal(t, "-A", SuffixeNumero(FactureAcompte))
	assert.Equal(t, "-I", SuffixeNumero(FactureIntermediaire))
	assert.Equal(t, "-S", SuffixeNumero(FactureSolde))
	assert.Equal(t, "", SuffixeNumero(FactureStandalone))
}

func TestFormaterNumeroFacture(t *testing.T) {
	assert.Equal(t, "FAC-2026-001-A", FormaterNumeroFacture(2026, 1, FactureAcompte))
	assert.Equal(t, "FAC-2026-012-S", FormaterNumeroFacture(2026, 12, FactureSolde))
	assert.Equal(t, "FAC-2026-003", FormaterNumeroFacture(2026, 3, FactureStandalone))
}
