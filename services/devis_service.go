package services

import (
	"fmt"
	"time"

	"backend_mycharlie/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DevisService fournit les opérations métier sur les devis
type DevisService struct {
	db *gorm.DB
}

// NewDevisService crée une nouvelle instance de DevisService
func NewDevisService(db *gorm.DB) *DevisService {
	return &DevisService{db: db}
}

// GenererNumeroDevis attribue le prochain numéro DEV-AAAA-NNN pour une
// entreprise. Le compteur est incrémenté en base dans une transaction, par un
// UPDATE relatif, pour rester atomique face aux créations concurrentes.
func (ds *DevisService) GenererNumeroDevis(entrepriseID uuid.UUID, annee int) (string, error) {
	var numero string

	err := ds.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CompteurDevis{}).
			Where("entreprise_id = ? AND annee = ?", entrepriseID, annee).
			Update("dernier_numero", gorm.Expr("dernier_numero + 1"))
		if result.Error != nil {
			return fmt.Errorf("erreur d'incrément du compteur de devis: %w", result.Error)
		}

		// Premier devis de l'année : le compteur n'existe pas encore
		if result.RowsAffected == 0 {
			compteur := models.CompteurDevis{
				EntrepriseID:  entrepriseID,
				Annee:         annee,
				DernierNumero: 1,
			}
			if err := tx.Create(&compteur).Error; err != nil {
				return fmt.Errorf("erreur de création du compteur de devis: %w", err)
			}
			numero = fmt.Sprintf("DEV-%04d-%03d", annee, 1)
			return nil
		}

		var compteur models.CompteurDevis
		if err := tx.Where("entreprise_id = ? AND annee = ?", entrepriseID, annee).
			First(&compteur).Error; err != nil {
			return fmt.Errorf("erreur de lecture du compteur de devis: %w", err)
		}

		numero = fmt.Sprintf("DEV-%04d-%03d", annee, compteur.DernierNumero)
		return nil
	})

	if err != nil {
		return "", err
	}
	return numero, nil
}

// CreerDevis crée un devis avec ses lignes, recalcule les totaux et lui
// attribue son numéro. L'ensemble est écrit dans une transaction.
func (ds *DevisService) CreerDevis(devis *models.Devis) error {
	if devis.ClientID == 0 {
		return fmt.Errorf("un devis doit être rattaché à un client")
	}

	if devis.DateEmission.IsZero() {
		devis.DateEmission = time.Now()
	}
	if devis.Statut == "" {
		devis.Statut = models.DevisBrouillon
	}

	numero, err := ds.GenererNumeroDevis(devis.EntrepriseID, devis.DateEmission.Year())
	if err != nil {
		return err
	}
	devis.Numero = numero

	for i := range devis.Lignes {
		devis.Lignes[i].Ordre = i + 1
	}
	devis.RecalculerTotaux()

	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(devis).Error; err != nil {
			return fmt.Errorf("erreur de création du devis: %w", err)
		}
		return nil
	})
}

// MettreAJourDevis remplace intégralement les lignes d'un devis et
// recalcule ses totaux. Seuls les devis brouillon ou envoyés sont éditables.
func (ds *DevisService) MettreAJourDevis(devisID uint, maj *models.Devis) (*models.Devis, error) {
	var devis models.Devis
	if err := ds.db.Preload("Lignes").First(&devis, devisID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDevisIntrouvable
		}
		return nil, fmt.Errorf("erreur de lecture du devis: %w", err)
	}

	if !devis.EstModifiable() {
		return nil, fmt.Errorf("le devis %s n'est plus modifiable (statut %s)", devis.Numero, devis.Statut)
	}

	err := ds.db.Transaction(func(tx *gorm.DB) error {
		// Remplacement intégral des lignes
		if err := tx.Where("devis_id = ?", devis.ID).Delete(&models.LigneDevis{}).Error; err != nil {
			return fmt.Errorf("erreur de suppression des anciennes lignes: %w", err)
		}

		devis.Titre = maj.Titre
		devis.Description = maj.Description
		devis.DateValidite = maj.DateValidite
		devis.TemplateConditionPaiementID = maj.TemplateConditionPaiementID

		devis.Lignes = make([]models.LigneDevis, len(maj.Lignes))
		for i, ligne := range maj.Lignes {
			ligne.ID = 0
			ligne.DevisID = devis.ID
			ligne.Ordre = i + 1
			devis.Lignes[i] = ligne
		}
		devis.RecalculerTotaux()

		if err := tx.Save(&devis).Error; err != nil {
			return fmt.Errorf("erreur de mise à jour du devis: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &devis, nil
}

// ChangerStatut fait évoluer le cycle de vie d'un devis. Le passage hors
// brouillon exige un devis finalisable (au moins une ligne valide, total > 0).
func (ds *DevisService) ChangerStatut(devisID uint, nouveauStatut string) (*models.Devis, error) {
	statutsValides := map[string]bool{
		models.DevisBrouillon: true,
		models.DevisEnvoye:    true,
		models.DevisAccepte:   true,
		models.DevisRefuse:    true,
		models.DevisPaye:      true,
	}
	if !statutsValides[nouveauStatut] {
		return nil, fmt.Errorf("statut de devis inconnu: %s", nouveauStatut)
	}

	var devis models.Devis
	if err := ds.db.Preload("Lignes").First(&devis, devisID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDevisIntrouvable
		}
		return nil, fmt.Errorf("erreur de lecture du devis: %w", err)
	}

	if devis.Statut == models.DevisBrouillon && nouveauStatut != models.DevisBrouillon {
		if !devis.EstFinalisable() {
			return nil, ErrDevisInvalide
		}
	}

	devis.Statut = nouveauStatut
	if err := ds.db.Save(&devis).Error; err != nil {
		return nil, fmt.Errorf("erreur de changement de statut: %w", err)
	}

	return &devis, nil
}

// GetDevis récupère un devis avec son client, son plan de paiement et ses lignes
func (ds *DevisService) GetDevis(devisID uint) (*models.Devis, error) {
	var devis models.Devis
	err := ds.db.Preload("Client").
		Preload("TemplateConditionPaiement").
		Preload("Lignes", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordre ASC")
		}).
		First(&devis, devisID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDevisIntrouvable
		}
		return nil, fmt.Errorf("erreur de lecture du devis: %w", err)
	}
	return &devis, nil
}

// ListerDevis retourne les devis d'une entreprise, filtrables par statut et client
func (ds *DevisService) ListerDevis(entrepriseID uuid.UUID, statut string, clientID uint) ([]models.Devis, error) {
	query := ds.db.Preload("Client").Where("entreprise_id = ?", entrepriseID)

	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	var devis []models.Devis
	if err := query.Order("date_emission DESC").Find(&devis).Error; err != nil {
		return nil, fmt.Errorf("erreur de listage des devis: %w", err)
	}
	return devis, nil
}

// SupprimerDevis supprime un devis brouillon (suppression logique GORM)
func (ds *DevisService) SupprimerDevis(devisID uint) error {
	var devis models.Devis
	if err := ds.db.First(&devis, devisID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrDevisIntrouvable
		}
		return fmt.Errorf("erreur de lecture du devis: %w", err)
	}

	if devis.Statut != models.DevisBrouillon {
		return fmt.Errorf("seul un devis brouillon peut être supprimé (statut %s)", devis.Statut)
	}

	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("devis_id = ?", devis.ID).Delete(&models.LigneDevis{}).Error; err != nil {
			return fmt.Errorf("erreur de suppression des lignes: %w", err)
		}
		if err := tx.Delete(&devis).Error; err != nil {
			return fmt.Errorf("erreur de suppression du devis: %w", err)
		}
		return nil
	})
}
