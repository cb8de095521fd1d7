package api

import (
	"time"

	"backend_mycharlie/database"
	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LoginRequest représente le corps de la requête de connexion
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	MotDePasse string `json:"mot_de_passe" binding:"required"`
}

// Login authentifie un utilisateur et émet un jeton JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Email et mot de passe requis"})
		return
	}

	// L'utilisateur est cherché dans chaque schéma d'entreprise active
	var entreprises []models.Entreprise
	mainDB := database.DB.Session(&gorm.Session{})
	if err := mainDB.Exec("SET search_path TO public").Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données"})
		return
	}
	if err := mainDB.Where("is_active = ?", true).Find(&entreprises).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de recherche des entreprises"})
		return
	}

	for _, entreprise := range entreprises {
		tenantDB := database.DB.Session(&gorm.Session{})
		if err := tenantDB.Exec("SET search_path TO " + entreprise.GetSchemaName()).Error; err != nil {
			continue
		}

		var utilisateur models.Utilisateur
		if err := tenantDB.Where("email = ? AND is_active = ?", req.Email, true).
			First(&utilisateur).Error; err != nil {
			continue
		}

		if !utilisateur.VerifierMotDePasse(req.MotDePasse) {
			c.JSON(401, gin.H{"status": "error", "error": "Identifiants invalides"})
			return
		}

		token, err := middleware.GenerateToken(utilisateur.ID, entreprise.ID, utilisateur.Email, utilisateur.Role)
		if err != nil {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de génération du jeton: " + err.Error()})
			return
		}

		// Horodatage de la dernière connexion, en meilleur effort
		maintenant := time.Now()
		tenantDB.Model(&utilisateur).Update("derniere_connexion", &maintenant)

		c.JSON(200, gin.H{
			"status": "success",
			"data": gin.H{
				"token":       token,
				"utilisateur": utilisateur,
				"entreprise":  entreprise,
			},
		})
		return
	}

	c.JSON(401, gin.H{"status": "error", "error": "Identifiants invalides"})
}

// GetCurrentUtilisateur retourne le profil de l'utilisateur connecté
func GetCurrentUtilisateur(c *gin.Context) {
	claims := middleware.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(401, gin.H{"status": "error", "error": "Non authentifié"})
		return
	}

	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var utilisateur models.Utilisateur
	if err := tenantDB.First(&utilisateur, claims.UtilisateurID).Error; err != nil {
		c.JSON(404, gin.H{"status": "error", "error": "Utilisateur introuvable"})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": utilisateur})
}
