package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend_mycharlie/database"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantMiddleware gère la multitenance par schéma PostgreSQL
type TenantMiddleware struct {
	DB *gorm.DB
}

// NewTenantMiddleware crée une nouvelle instance de TenantMiddleware
func NewTenantMiddleware(db *gorm.DB) *TenantMiddleware {
	return &TenantMiddleware{DB: db}
}

// SetTenant identifie l'entreprise courante et bascule le schéma BD
func (tm *TenantMiddleware) SetTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Ignore les routes publiques
		if isPublicRoute(c.Request.URL.Path) {
			c.Next()
			return
		}

		// Identifie l'entreprise depuis la requête
		entreprise, err := tm.extractEntreprise(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Impossible d'identifier l'entreprise: " + err.Error(),
			})
			c.Abort()
			return
		}

		if entreprise == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Entreprise introuvable",
			})
			c.Abort()
			return
		}

		// Vérifie que l'entreprise est active
		if !entreprise.IsActive {
			c.JSON(http.StatusForbidden, gin.H{
				"status": "error",
				"error":  "Entreprise désactivée",
			})
			c.Abort()
			return
		}

		// Bascule sur le schéma de l'entreprise
		tenantDB := tm.switchToTenantSchema(entreprise.GetSchemaName())
		if tenantDB == nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "error",
				"error":  "Erreur de connexion au schéma de l'entreprise",
			})
			c.Abort()
			return
		}

		// Conserve l'entreprise courante et sa BD dans le contexte
		c.Set("entreprise", entreprise)
		c.Set("tenant_db", tenantDB)
		c.Set("entreprise_id", entreprise.ID.String())
		c.Set("schema_name", entreprise.GetSchemaName())

		c.Next()
	}
}

// extractEntreprise identifie l'entreprise depuis la requête
func (tm *TenantMiddleware) extractEntreprise(c *gin.Context) (*models.Entreprise, error) {
	// 1. En-tête X-Tenant-ID
	if tenantID := c.GetHeader("X-Tenant-ID"); tenantID != "" {
		return tm.getEntrepriseByID(tenantID)
	}

	// 2. Claims du jeton JWT posés par AuthMiddleware
	if claims := GetCurrentClaims(c); claims != nil && claims.EntrepriseID != "" {
		return tm.getEntrepriseByID(claims.EntrepriseID)
	}

	return nil, fmt.Errorf("aucun identifiant d'entreprise dans la requête")
}

// getEntrepriseByID récupère une entreprise par ID avec mise en cache
func (tm *TenantMiddleware) getEntrepriseByID(tenantID string) (*models.Entreprise, error) {
	// Tente le cache d'abord
	cacheKey := fmt.Sprintf("entreprise:id:%s", tenantID)
	var entreprise models.Entreprise

	if err := database.CacheGetJSON(cacheKey, &entreprise); err == nil {
		return &entreprise, nil
	}

	// Sinon, lit la BD sur le schéma principal
	mainDB := tm.DB.Session(&gorm.Session{})
	if err := mainDB.Exec("SET search_path TO public").Error; err != nil {
		return nil, fmt.Errorf("erreur de bascule sur le schéma principal: %v", err)
	}

	entrepriseUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("format d'identifiant d'entreprise invalide: %v", err)
	}

	if err := mainDB.Where("id = ? AND is_active = ?", entrepriseUUID, true).First(&entreprise).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("entreprise %s introuvable", tenantID)
		}
		return nil, fmt.Errorf("erreur de recherche de l'entreprise: %v", err)
	}

	// Cache pendant 15 minutes
	database.CacheSetJSON(cacheKey, &entreprise, 15*time.Minute)

	return &entreprise, nil
}

// SwitchToTenantSchema bascule sur le schéma BD d'une entreprise (exporté pour les tests)
func (tm *TenantMiddleware) SwitchToTenantSchema(schemaName string) *gorm.DB {
	return tm.switchToTenantSchema(schemaName)
}

// switchToTenantSchema bascule sur le schéma BD d'une entreprise
func (tm *TenantMiddleware) switchToTenantSchema(schemaName string) *gorm.DB {
	// Clone la connexion BD
	tenantDB := database.DB.Session(&gorm.Session{})

	// Bascule sur le schéma de l'entreprise
	if err := tenantDB.Exec(fmt.Sprintf("SET search_path TO %s", schemaName)).Error; err != nil {
		fmt.Printf("Erreur de bascule sur le schéma %s: %v\n", schemaName, err)
		return nil
	}

	return tenantDB
}

// CreateTenantSchema crée un nouveau schéma BD pour une entreprise (exporté pour les tests)
func (tm *TenantMiddleware) CreateTenantSchema(schemaName string) error {
	return tm.createTenantSchema(schemaName)
}

// createTenantSchema crée un nouveau schéma BD pour une entreprise
func (tm *TenantMiddleware) createTenantSchema(schemaName string) error {
	// Crée le schéma
	if err := tm.DB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName)).Error; err != nil {
		return fmt.Errorf("erreur de création du schéma %s: %v", schemaName, err)
	}

	// Bascule sur le nouveau schéma
	tenantDB := tm.switchToTenantSchema(schemaName)
	if tenantDB == nil {
		return fmt.Errorf("erreur de bascule sur le schéma %s", schemaName)
	}

	// Exécute les migrations du nouveau schéma
	if err := tm.runTenantMigrations(tenantDB); err != nil {
		return fmt.Errorf("erreur de migration du schéma %s: %v", schemaName, err)
	}

	return nil
}

// runTenantMigrations exécute les migrations du schéma d'une entreprise
func (tm *TenantMiddleware) runTenantMigrations(tenantDB *gorm.DB) error {
	// Modèles migrés dans le schéma de chaque entreprise
	tenantModels := []interface{}{
		// Utilisateurs et clients
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
	}

	for _, model := range tenantModels {
		if err := tenantDB.AutoMigrate(model); err != nil {
			return fmt.Errorf("erreur de migration du modèle %T: %v", model, err)
		}
	}

	return nil
}

// isPublicRoute vérifie si une route est publique
func isPublicRoute(path string) bool {
	publicRoutes := []string{
		"/ping",
		"/api/auth/login",
		"/api/auth/register",
		"/health",
	}

	for _, route := range publicRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

// GetTenantDB retourne la connexion BD de l'entreprise courante depuis le contexte
func GetTenantDB(c *gin.Context) *gorm.DB {
	if db, exists := c.Get("tenant_db"); exists {
		if tenantDB, ok := db.(*gorm.DB); ok {
			return tenantDB
		}
	}
	return nil
}

// GetCurrentEntreprise retourne l'entreprise courante depuis le contexte
func GetCurrentEntreprise(c *gin.Context) *models.Entreprise {
	if entreprise, exists := c.Get("entreprise"); exists {
		if e, ok := entreprise.(*models.Entreprise); ok {
			return e
		}
	}
	return nil
}

// GetEntrepriseID retourne l'ID de l'entreprise courante depuis le contexte
func GetEntrepriseID(c *gin.Context) uuid.UUID {
	if entreprise := GetCurrentEntreprise(c); entreprise != nil {
		return entreprise.ID
	}
	if entrepriseID, exists := c.Get("entreprise_id"); exists {
		if id, ok := entrepriseID.(string); ok {
			if parsed, err := uuid.Parse(id); err == nil {
				return parsed
			}
		}
	}
	return uuid.Nil
}
