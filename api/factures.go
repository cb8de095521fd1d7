package api

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"
	"backend_mycharlie/services"

	"github.com/gin-gonic/gin"
)

// GetFactures retourne les factures de l'entreprise courante
func GetFactures(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	statut := c.Query("statut")
	typeFacture := c.Query("type_facture")
	clientID, _ := strconv.Atoi(c.Query("client_id"))

	facturationService := services.NewFacturationService(tenantDB)
	factures, err := facturationService.ListerFactures(middleware.GetEntrepriseID(c), statut, typeFacture, uint(clientID))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": factures})
}

// GetFacture retourne une facture avec ses lignes et ses relances
func GetFacture(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de facture invalide"})
		return
	}

	facturationService := services.NewFacturationService(tenantDB)
	facture, err := facturationService.GetFacture(uint(id))
	if err != nil {
		c.JSON(404, gin.H{"status": "error", "error": "Facture introuvable"})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": facture})
}

// CreateFactureStandalone crée une facture autonome, sans devis d'origine
func CreateFactureStandalone(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var facture models.Facture
	if err := c.ShouldBindJSON(&facture); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de facture invalides: " + err.Error()})
		return
	}

	facture.EntrepriseID = middleware.GetEntrepriseID(c)

	facturationService := services.NewFacturationService(tenantDB)
	if err := facturationService.CreerFactureStandalone(&facture); err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création de la facture: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": facture})
}

// CreateFactureAcompte crée la facture d'acompte d'un devis
func CreateFactureAcompte(c *gin.Context) {
	creerFactureEcheance(c, models.FactureAcompte)
}

// CreateFactureIntermediaire crée la facture intermédiaire d'un devis
func CreateFactureIntermediaire(c *gin.Context) {
	creerFactureEcheance(c, models.FactureIntermediaire)
}

// CreateFactureSolde crée la facture de solde d'un devis
func CreateFactureSolde(c *gin.Context) {
	creerFactureEcheance(c, models.FactureSolde)
}

// creerFactureEcheance factorise les trois créations de facture d'échéance
func creerFactureEcheance(c *gin.Context, typeFacture string) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	devisID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de devis invalide"})
		return
	}

	facturationService := services.NewFacturationService(tenantDB)

	var facture *models.Facture
	switch typeFacture {
	case models.FactureAcompte:
		facture, err = facturationService.CreerFactureAcompte(uint(devisID))
	case models.FactureIntermediaire:
		facture, err = facturationService.CreerFactureIntermediaire(uint(devisID))
	case models.FactureSolde:
		facture, err = facturationService.CreerFactureSolde(uint(devisID))
	}

	if err != nil {
		switch err {
		case services.ErrDevisIntrouvable:
			c.JSON(404, gin.H{"status": "error", "error": "Devis introuvable"})
		case services.ErrDevisInvalide:
			c.JSON(422, gin.H{"status": "error", "error": "Le devis n'est pas facturable (non accepté ou total nul)"})
		case services.ErrTemplateManquant:
			c.JSON(422, gin.H{"status": "error", "error": "Aucun plan de paiement associé au devis"})
		case services.ErrNonApplicable:
			c.JSON(422, gin.H{"status": "error", "error": "Cette échéance n'est pas applicable au devis"})
		case services.ErrDoublon:
			c.JSON(409, gin.H{"status": "error", "error": "Une facture de ce type existe déjà pour ce devis"})
		default:
			c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		}
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": facture})
}

// payerRequest représente le corps d'une requête d'encaissement
type payerRequest struct {
	DatePaiement *time.Time `json:"date_paiement"`
}

// PayerFacture enregistre le paiement d'une facture
func PayerFacture(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de facture invalide"})
		return
	}

	var req payerRequest
	// Corps optionnel : la date de paiement par défaut est maintenant
	_ = c.ShouldBindJSON(&req)
	datePaiement := time.Now()
	if req.DatePaiement != nil {
		datePaiement = *req.DatePaiement
	}

	facturationService := services.NewFacturationService(tenantDB)
	facture, err := facturationService.MarquerPayee(uint(id), datePaiement)
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": err.Error()})
		return
	}

	// Alerte Telegram de l'artisan, en meilleur effort
	notificationService := services.NewNotificationService(tenantDB)
	if err := notificationService.NotifierPaiementRecu(facture); err != nil {
		log.Printf("⚠️ Alerte de paiement non envoyée pour la facture %s: %v", facture.Numero, err)
	}

	c.JSON(200, gin.H{"status": "success", "data": facture})
}

// GetFacturePDF génère et renvoie le document PDF d'une facture
func GetFacturePDF(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de facture invalide"})
		return
	}

	facturationService := services.NewFacturationService(tenantDB)
	facture, err := facturationService.GetFacture(uint(id))
	if err != nil {
		c.JSON(404, gin.H{"status": "error", "error": "Facture introuvable"})
		return
	}

	pdfService := services.NewPDFService()
	contenu, err := pdfService.GenererFacturePDF(facture, middleware.GetCurrentEntreprise(c))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de génération du PDF: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", facture.Numero))
	c.Data(200, "application/pdf", contenu)
}
