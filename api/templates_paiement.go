package api

import (
	"strconv"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetTemplatesPaiement retourne les plans de paiement de l'entreprise courante
func GetTemplatesPaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var templates []models.TemplateConditionsPaiement
	err := tenantDB.Where("entreprise_id = ?", middleware.GetEntrepriseID(c)).
		Order("montant_min ASC").Find(&templates).Error
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des plans de paiement: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": templates})
}

// GetTemplatePaiement retourne un plan de paiement
func GetTemplatePaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de plan invalide"})
		return
	}

	var template models.TemplateConditionsPaiement
	if err := tenantDB.First(&template, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Plan de paiement introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du plan: " + err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": template})
}

// CreateTemplatePaiement crée un plan de paiement après validation
func CreateTemplatePaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var template models.TemplateConditionsPaiement
	if err := c.ShouldBindJSON(&template); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de plan invalides: " + err.Error()})
		return
	}

	template.EntrepriseID = middleware.GetEntrepriseID(c)

	if err := template.Valider(); err != nil {
		c.JSON(422, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := tenantDB.Create(&template).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création du plan: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": template})
}

// UpdateTemplatePaiement met à jour un plan de paiement après validation
func UpdateTemplatePaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de plan invalide"})
		return
	}

	var template models.TemplateConditionsPaiement
	if err := tenantDB.First(&template, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Plan de paiement introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du plan: " + err.Error()})
		}
		return
	}

	var maj models.TemplateConditionsPaiement
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de plan invalides: " + err.Error()})
		return
	}

	maj.ID = template.ID
	maj.EntrepriseID = template.EntrepriseID
	maj.CreatedAt = template.CreatedAt

	if err := maj.Valider(); err != nil {
		c.JSON(422, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := tenantDB.Save(&maj).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de mise à jour du plan: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": maj})
}

// DeleteTemplatePaiement supprime un plan de paiement non utilisé
func DeleteTemplatePaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de plan invalide"})
		return
	}

	var template models.TemplateConditionsPaiement
	if err := tenantDB.First(&template, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Plan de paiement introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du plan: " + err.Error()})
		}
		return
	}

	// Un plan référencé par des devis n'est pas supprimable
	var nbDevis int64
	tenantDB.Model(&models.Devis{}).Where("template_condition_paiement_id = ?", template.ID).Count(&nbDevis)
	if nbDevis > 0 {
		c.JSON(409, gin.H{"status": "error", "error": "Le plan est utilisé par des devis et ne peut pas être supprimé"})
		return
	}

	if err := tenantDB.Delete(&template).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de suppression du plan: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Plan de paiement supprimé"})
}

// equilibrerRequest représente le corps d'une requête d'équilibrage
type equilibrerRequest struct {
	NbEcheances int `json:"nb_echeances" binding:"required"`
}

// EquilibrerTemplatePaiement répartit 100 % uniformément sur les échéances
// actives du plan et renvoie le plan mis à jour
func EquilibrerTemplatePaiement(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de plan invalide"})
		return
	}

	var req equilibrerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Nombre d'échéances requis"})
		return
	}

	var template models.TemplateConditionsPaiement
	if err := tenantDB.First(&template, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Plan de paiement introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du plan: " + err.Error()})
		}
		return
	}

	if err := template.Equilibrer(req.NbEcheances); err != nil {
		c.JSON(422, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := tenantDB.Save(&template).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur d'enregistrement du plan: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": template})
}
