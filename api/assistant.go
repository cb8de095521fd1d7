package api

import (
	"backend_mycharlie/middleware"
	"backend_mycharlie/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// assistantMessageRequest représente le corps d'un message à l'assistant
type assistantMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// EnvoyerMessageAssistant transmet un message utilisateur à l'assistant IA et
// renvoie sa réponse. L'appel est synchrone : le moteur de workflows peut
// mettre plus d'une minute à répondre.
func EnvoyerMessageAssistant(c *gin.Context) {
	var req assistantMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Message requis"})
		return
	}

	claims := middleware.GetCurrentClaims(c)
	if claims == nil {
		c.JSON(401, gin.H{"status": "error", "error": "Non authentifié"})
		return
	}

	// Une session par défaut est dérivée de l'utilisateur
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := services.NewAssistantClient()
	if !client.IsConfigured() {
		c.JSON(503, gin.H{"status": "error", "error": "L'assistant n'est pas configuré"})
		return
	}

	reponse, err := client.Envoyer(c.Request.Context(), &services.AssistantRequest{
		SessionID:    sessionID,
		EntrepriseID: claims.EntrepriseID,
		Utilisateur:  claims.Email,
		Message:      req.Message,
	})
	if err != nil {
		c.JSON(502, gin.H{"status": "error", "error": "L'assistant n'a pas répondu: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"status": "success",
		"data": gin.H{
			"session_id": sessionID,
			"reponse":    reponse.Reponse,
		},
	})
}

// PingAssistant vérifie la disponibilité du moteur de workflows
func PingAssistant(c *gin.Context) {
	client := services.NewAssistantClient()
	if !client.IsConfigured() {
		c.JSON(503, gin.H{"status": "error", "error": "L'assistant n'est pas configuré"})
		return
	}

	if err := client.Ping(c.Request.Context()); err != nil {
		c.JSON(502, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "assistant disponible"})
}
