package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEntrepriseCreation(t *testing.T) {
	// Le modèle doit migrer et se créer sur SQLite comme sur PostgreSQL :
	// l'identifiant est attribué par le hook, pas par un défaut SQL
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entreprise{}))

	t.Run("IdentifiantAttribueParLeHook", func(t *testing.T) {
		entreprise := &Entreprise{
			Nom:      "Artisan Durand",
			SchemaBD: "tenant_durand",
		}
		require.NoError(t, db.Create(entreprise).Error)
		assert.NotEqual(t, uuid.Nil, entreprise.ID)
	})

	t.Run("IdentifiantFourniConserve", func(t *testing.T) {
		id := uuid.New()
		entreprise := &Entreprise{
			ID:       id,
			Nom:      "Artisan Martin",
			SchemaBD: "tenant_martin",
		}
		require.NoError(t, db.Create(entreprise).Error)
		assert.Equal(t, id, entreprise.ID)
	})

	t.Run("SchemaParDefaut", func(t *testing.T) {
		entreprise := &Entreprise{Nom: "Sans schéma"}
		require.NoError(t, db.Create(entreprise).Error)
		assert.Equal(t, "tenant_default", entreprise.SchemaBD)
	})
}
