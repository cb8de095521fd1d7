package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"backend_mycharlie/config"
)

// AssistantClient fait le pont vers le moteur de workflows de l'assistant IA.
// Chaque message utilisateur part en un seul POST HTTP ; la réponse complète
// de l'assistant revient dans le corps de la réponse.
type AssistantClient struct {
	webhookURL string
	apiKey     string
	httpClient *http.Client
}

// AssistantRequest représente le message transmis à l'assistant
type AssistantRequest struct {
	SessionID    string `json:"session_id"`
	EntrepriseID string `json:"entreprise_id"`
	Utilisateur  string `json:"utilisateur"`
	Message      string `json:"message"`
}

// AssistantResponse représente la réponse de l'assistant
type AssistantResponse struct {
	Reponse string `json:"reponse"`
	Statut  string `json:"statut"`
}

// NewAssistantClient crée un client pour l'assistant IA depuis la configuration
func NewAssistantClient() *AssistantClient {
	cfg := config.GetConfig()
	return &AssistantClient{
		webhookURL: cfg.Assistant.WebhookURL,
		apiKey:     cfg.Assistant.APIKey,
		httpClient: &http.Client{
			// Les réponses de l'assistant peuvent prendre plus d'une minute
			Timeout: cfg.Assistant.Timeout,
		},
	}
}

// IsConfigured vérifie que le pont vers l'assistant est configuré
func (ac *AssistantClient) IsConfigured() bool {
	return ac.webhookURL != ""
}

// Envoyer transmet un message à l'assistant et retourne sa réponse
func (ac *AssistantClient) Envoyer(ctx context.Context, req *AssistantRequest) (*AssistantResponse, error) {
	if !ac.IsConfigured() {
		return nil, fmt.Errorf("le pont vers l'assistant n'est pas configuré")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("erreur de sérialisation de la requête: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ac.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erreur de création de la requête: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if ac.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+ac.apiKey)
	}

	resp, err := ac.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("erreur d'appel de l'assistant: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erreur de lecture de la réponse: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("l'assistant a répondu avec le statut %d: %s", resp.StatusCode, string(body))
	}

	var assistantResp AssistantResponse
	if err := json.Unmarshal(body, &assistantResp); err != nil {
		// Certains moteurs renvoient du texte brut : on le prend tel quel
		return &AssistantResponse{Reponse: string(body), Statut: "success"}, nil
	}

	return &assistantResp, nil
}

// Ping vérifie que le moteur de workflows répond
func (ac *AssistantClient) Ping(ctx context.Context) error {
	if !ac.IsConfigured() {
		return fmt.Errorf("le pont vers l'assistant n'est pas configuré")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(pingCtx, http.MethodGet, ac.webhookURL, nil)
	if err != nil {
		return err
	}

	resp, err := ac.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("le moteur de workflows ne répond pas: %w", err)
	}
	defer resp.Body.Close()

	return nil
}
