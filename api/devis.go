package api

import (
	"fmt"
	"strconv"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"
	"backend_mycharlie/services"

	"github.com/gin-gonic/gin"
)

// GetDevisList retourne les devis de l'entreprise courante
func GetDevisList(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	statut := c.Query("statut")
	clientID, _ := strconv.Atoi(c.Query("client_id"))

	devisService := services.NewDevisService(tenantDB)
	devis, err := devisService.ListerDevis(middleware.GetEntrepriseID(c), statut, uint(clientID))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": devis})
}

// GetDevis retourne un devis avec ses lignes et son plan de paiement
func GetDevis(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	devisService := services.NewDevisService(tenantDB)
	devis, err := devisService.GetDevis(uint(id))
	if err != nil {
		if err == services.ErrDevisIntrouvable {
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": devis})
}

// CreateDevis crée un devis avec ses lignes
func CreateDevis(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var devis models.Devis
	if err := c.ShouldBindJSON(&devis); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de devis invalides: " + err.Error()})
		return
	}

	devis.EntrepriseID = middleware.GetEntrepriseID(c)

	devisService := services.NewDevisService(tenantDB)
	if err := devisService.CreerDevis(&devis); err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création du devis: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": devis})
}

// UpdateDevis remplace les lignes d'un devis et recalcule ses totaux
func UpdateDevis(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	var maj models.Devis
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de devis invalides: " + err.Error()})
		return
	}

	devisService := services.NewDevisService(tenantDB)
	devis, err := devisService.MettreAJourDevis(uint(id), &maj)
	if err != nil {
		if err == services.ErrDevisIntrouvable {
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		} else {
			c.JSON(400, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": devis})
}

// statutRequest représente le corps d'une requête de changement de statut
type statutRequest struct {
	Statut string `json:"statut" binding:"required"`
}

// ChangerStatutDevis fait évoluer le cycle de vie d'un devis
func ChangerStatutDevis(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	var req statutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Statut requis"})
		return
	}

	devisService := services.NewDevisService(tenantDB)
	devis, err := devisService.ChangerStatut(uint(id), req.Statut)
	if err != nil {
		switch err {
		case services.ErrDevisIntrouvable:
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		case services.ErrDevisInvalide:
			c.JSON(422, gin.H{"status": "error", "error": "Le devis doit avoir au moins une ligne valide et un total positif"})
		default:
			c.JSON(400, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": devis})
}

// DeleteDevis supprime un devis brouillon
func DeleteDevis(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	devisService := services.NewDevisService(tenantDB)
	if err := devisService.SupprimerDevis(uint(id)); err != nil {
		if err == services.ErrDevisIntrouvable {
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		} else {
			c.JSON(409, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Devis supprimé"})
}

// GetDevisPDF génère et renvoie le document PDF d'un devis
func GetDevisPDF(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	devisService := services.NewDevisService(tenantDB)
	devis, err := devisService.GetDevis(uint(id))
	if err != nil {
		if err == services.ErrDevisIntrouvable {
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	pdfService := services.NewPDFService()
	contenu, err := pdfService.GenererDevisPDF(devis, middleware.GetCurrentEntreprise(c))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de génération du PDF: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", devis.Numero))
	c.Data(200, "application/pdf", contenu)
}
