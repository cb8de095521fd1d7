package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend_mycharlie/models"
	"backend_mycharlie/testutils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestRouter monte les routes des plans de paiement avec une base en
// mémoire injectée dans le contexte, comme le ferait le middleware tenant
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.Entreprise) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	entreprise := testutils.CreateTestEntreprise(db)
	require.NotNil(t, entreprise)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("tenant_db", db)
		c.Set("entreprise", entreprise)
		c.Next()
	})

	r.GET("/api/templates-paiement", GetTemplatesPaiement)
	r.GET("/api/templates-paiement/:id", GetTemplatePaiement)
	r.POST("/api/templates-paiement", CreateTemplatePaiement)
	r.PUT("/api/templates-paiement/:id", UpdateTemplatePaiement)
	r.DELETE("/api/templates-paiement/:id", DeleteTemplatePaiement)
	r.POST("/api/templates-paiement/:id/equilibrer", EquilibrerTemplatePaiement)

	return r, db, entreprise
}

func TestCreateTemplatePaiementAPI(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	t.Run("PlanValide", func(t *testing.T) {
		corps, _ := json.Marshal(gin.H{
			"nom":                 "Acompte 40 %",
			"pourcentage_acompte": "40",
			"pourcentage_solde":   "60",
			"delai_solde":         30,
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/templates-paiement", bytes.NewBuffer(corps))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, 201, w.Code)

		var reponse map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reponse))
		assert.Equal(t, "success", reponse["status"])
	})

	t.Run("SommeInvalide", func(t *testing.T) {
		corps, _ := json.Marshal(gin.H{
			"nom":                 "Plan bancal",
			"pourcentage_acompte": "40",
			"pourcentage_solde":   "40",
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/templates-paiement", bytes.NewBuffer(corps))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, 422, w.Code)
	})
}

func TestGetTemplatesPaiementAPI(t *testing.T) {
	r, db, entreprise := setupTestRouter(t)
	testutils.CreateTestTemplate(db, entreprise.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/templates-paiement", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var reponse struct {
		Status string                              `json:"status"`
		Data   []models.TemplateConditionsPaiement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reponse))
	require.Len(t, reponse.Data, 1)
	assert.Equal(t, "Acompte 30 %", reponse.Data[0].Nom)
}

func TestEquilibrerTemplatePaiementAPI(t *testing.T) {
	r, db, entreprise := setupTestRouter(t)
	template := testutils.CreateTestTemplate(db, entreprise.ID)

	corps, _ := json.Marshal(gin.H{"nb_echeances": 3})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/templates-paiement/1/equilibrer", bytes.NewBuffer(corps))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var maj models.TemplateConditionsPaiement
	require.NoError(t, db.First(&maj, template.ID).Error)
	assert.True(t, maj.PourcentageAcompte.Equal(decimal.NewFromInt(33)))
	assert.True(t, maj.PourcentageIntermediaire.Equal(decimal.NewFromInt(33)))
	assert.True(t, maj.PourcentageSolde.Equal(decimal.NewFromInt(34)))

	t.Run("NombreInvalide", func(t *testing.T) {
		corps, _ := json.Marshal(gin.H{"nb_echeances": 4})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/templates-paiement/1/equilibrer", bytes.NewBuffer(corps))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, 422, w.Code)
	})

	t.Run("PlanIntrouvable", func(t *testing.T) {
		corps, _ := json.Marshal(gin.H{"nb_echeances": 2})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/templates-paiement/999/equilibrer", bytes.NewBuffer(corps))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, 404, w.Code)
	})
}

func TestDeleteTemplatePaiementAPI(t *testing.T) {
	r, db, entreprise := setupTestRouter(t)
	template := testutils.CreateTestTemplate(db, entreprise.ID)
	client := testutils.CreateTestClient(db, entreprise.ID)

	// Un plan référencé par un devis ne se supprime pas
	testutils.CreateTestDevis(db, entreprise.ID, client.ID, &template.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/templates-paiement/1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 409, w.Code)

	// Une fois le devis détaché, la suppression passe
	require.NoError(t, db.Model(&models.Devis{}).
		Where("template_condition_paiement_id = ?", template.ID).
		Update("template_condition_paiement_id", nil).Error)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/templates-paiement/1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}
