package api

import (
	"strconv"
	"time"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetRendezVousList retourne les rendez-vous de l'entreprise courante
func GetRendezVousList(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	query := tenantDB.Preload("Client").Where("entreprise_id = ?", middleware.GetEntrepriseID(c))

	if statut := c.Query("statut"); statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if clientID, _ := strconv.Atoi(c.Query("client_id")); clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	// Filtre sur un intervalle de dates (agenda)
	if depuis := c.Query("depuis"); depuis != "" {
		if t, err := time.Parse("2006-01-02", depuis); err == nil {
			query = query.Where("date_debut >= ?", t)
		}
	}
	if jusqua := c.Query("jusqua"); jusqua != "" {
		if t, err := time.Parse("2006-01-02", jusqua); err == nil {
			query = query.Where("date_debut < ?", t.AddDate(0, 0, 1))
		}
	}

	var rendezVous []models.RendezVous
	if err := query.Order("date_debut ASC").Find(&rendezVous).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des rendez-vous: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": rendezVous})
}

// GetRendezVous retourne un rendez-vous
func GetRendezVous(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rendez-vous invalide"})
		return
	}

	var rendezVous models.RendezVous
	if err := tenantDB.Preload("Client").First(&rendezVous, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Rendez-vous introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du rendez-vous: " + err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": rendezVous})
}

// CreateRendezVous crée un rendez-vous après contrôle du créneau
func CreateRendezVous(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var rendezVous models.RendezVous
	if err := c.ShouldBindJSON(&rendezVous); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de rendez-vous invalides: " + err.Error()})
		return
	}

	if !rendezVous.DateFin.After(rendezVous.DateDebut) {
		c.JSON(422, gin.H{"status": "error", "error": "La date de fin doit être postérieure à la date de début"})
		return
	}

	rendezVous.EntrepriseID = middleware.GetEntrepriseID(c)
	if rendezVous.Statut == "" {
		rendezVous.Statut = models.RendezVousPlanifie
	}

	// Signale les chevauchements avec un rendez-vous existant non annulé
	var chevauchements int64
	tenantDB.Model(&models.RendezVous{}).
		Where("entreprise_id = ? AND statut <> ? AND date_debut < ? AND date_fin > ?",
			rendezVous.EntrepriseID, models.RendezVousAnnule, rendezVous.DateFin, rendezVous.DateDebut).
		Count(&chevauchements)
	if chevauchements > 0 {
		c.JSON(409, gin.H{"status": "error", "error": "Le créneau chevauche un rendez-vous existant"})
		return
	}

	if err := tenantDB.Create(&rendezVous).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création du rendez-vous: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": rendezVous})
}

// UpdateRendezVous met à jour un rendez-vous
func UpdateRendezVous(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rendez-vous invalide"})
		return
	}

	var rendezVous models.RendezVous
	if err := tenantDB.First(&rendezVous, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Rendez-vous introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du rendez-vous: " + err.Error()})
		}
		return
	}

	var maj models.RendezVous
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de rendez-vous invalides: " + err.Error()})
		return
	}

	if !maj.DateFin.After(maj.DateDebut) {
		c.JSON(422, gin.H{"status": "error", "error": "La date de fin doit être postérieure à la date de début"})
		return
	}

	maj.ID = rendezVous.ID
	maj.EntrepriseID = rendezVous.EntrepriseID
	maj.CreatedAt = rendezVous.CreatedAt

	if err := tenantDB.Save(&maj).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de mise à jour du rendez-vous: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": maj})
}

// DeleteRendezVous annule un rendez-vous (jamais supprimé physiquement)
func DeleteRendezVous(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rendez-vous invalide"})
		return
	}

	var rendezVous models.RendezVous
	if err := tenantDB.First(&rendezVous, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Rendez-vous introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du rendez-vous: " + err.Error()})
		}
		return
	}

	rendezVous.Statut = models.RendezVousAnnule
	if err := tenantDB.Save(&rendezVous).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur d'annulation du rendez-vous: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Rendez-vous annulé"})
}
