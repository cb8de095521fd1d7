package services

import (
	"bytes"
	"fmt"

	"backend_mycharlie/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PDFService génère les documents PDF des devis et factures
type PDFService struct{}

// NewPDFService crée une nouvelle instance de PDFService
func NewPDFService() *PDFService {
	return &PDFService{}
}

// GenererDevisPDF génère le PDF d'un devis et retourne son contenu
func (ps *PDFService) GenererDevisPDF(devis *models.Devis, entreprise *models.Entreprise) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	ps.enTeteDocument(pdf, tr, entreprise, "DEVIS", devis.Numero)
	ps.blocClient(pdf, tr, devis.Client)

	// Titre et dates
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr(devis.Titre))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Date d'émission : %s", devis.DateEmission.Format("02/01/2006"))))
	pdf.Ln(5)
	if devis.DateValidite != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Valable jusqu'au : %s", devis.DateValidite.Format("02/01/2006"))))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	lignes := make([]lignePDF, 0, len(devis.Lignes))
	for _, l := range devis.Lignes {
		lignes = append(lignes, lignePDF{
			Designation:    l.Designation,
			Quantite:       l.Quantite,
			Unite:          l.Unite,
			PrixUnitaireHT: l.PrixUnitaireHT,
			TauxTVA:        l.TauxTVA,
			MontantHT:      l.MontantHT(),
		})
	}
	ps.tableauLignes(pdf, tr, lignes)
	ps.blocTotaux(pdf, tr, devis.MontantHT, devis.MontantTVA, devis.MontantTTC)

	// Mention du plan de paiement retenu
	if devis.TemplateConditionPaiement != nil {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(0, 5, tr(fmt.Sprintf("Conditions de paiement : %s", devis.TemplateConditionPaiement.Nom)))
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erreur de génération du PDF du devis: %w", err)
	}
	return buf.Bytes(), nil
}

// GenererFacturePDF génère le PDF d'une facture et retourne son contenu
func (ps *PDFService) GenererFacturePDF(facture *models.Facture, entreprise *models.Entreprise) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	ps.enTeteDocument(pdf, tr, entreprise, libelleFacture(facture.TypeFacture), facture.Numero)
	ps.blocClient(pdf, tr, facture.Client)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr(facture.Titre))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Date d'émission : %s", facture.DateEmission.Format("02/01/2006"))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Date d'échéance : %s", facture.DateEcheance.Format("02/01/2006"))))
	pdf.Ln(5)
	if facture.Devis != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Devis d'origine : %s", facture.Devis.Numero)))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	lignes := make([]lignePDF, 0, len(facture.Lignes))
	for _, l := range facture.Lignes {
		lignes = append(lignes, lignePDF{
			Designation:    l.Designation,
			Quantite:       l.Quantite,
			Unite:          l.Unite,
			PrixUnitaireHT: l.PrixUnitaireHT,
			TauxTVA:        l.TauxTVA,
			MontantHT:      l.MontantHT(),
		})
	}
	ps.tableauLignes(pdf, tr, lignes)
	ps.blocTotaux(pdf, tr, facture.MontantHT, facture.MontantTVA, facture.MontantTTC)

	// Mentions légales françaises
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 7)
	pdf.MultiCell(0, 4, tr("En cas de retard de paiement, des pénalités calculées au taux légal ainsi "+
		"qu'une indemnité forfaitaire de recouvrement de 40 EUR sont exigibles "+
		"(articles L441-10 et D441-5 du Code de commerce)."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erreur de génération du PDF de la facture: %w", err)
	}
	return buf.Bytes(), nil
}

// lignePDF porte les colonnes affichées dans le tableau du document
type lignePDF struct {
	Designation    string
	Quantite       decimal.Decimal
	Unite          string
	PrixUnitaireHT decimal.Decimal
	TauxTVA        decimal.Decimal
	MontantHT      decimal.Decimal
}

// enTeteDocument écrit l'en-tête commun : coordonnées de l'entreprise et titre
func (ps *PDFService) enTeteDocument(pdf *gofpdf.Fpdf, tr func(string) string, entreprise *models.Entreprise, titre, numero string) {
	pdf.SetFont("Arial", "B", 14)
	if entreprise != nil {
		pdf.Cell(120, 8, tr(entreprise.Nom))
	} else {
		pdf.Cell(120, 8, "")
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s %s", titre, numero)), "", 1, "R", false, 0, "")

	if entreprise != nil {
		pdf.SetFont("Arial", "", 8)
		pdf.Cell(0, 4, tr(entreprise.Adresse))
		pdf.Ln(4)
		pdf.Cell(0, 4, tr(fmt.Sprintf("%s %s", entreprise.CodePostal, entreprise.Ville)))
		pdf.Ln(4)
		if entreprise.Siret != "" {
			pdf.Cell(0, 4, tr(fmt.Sprintf("SIRET : %s", entreprise.Siret)))
			pdf.Ln(4)
		}
		if entreprise.NumeroTVA != "" {
			pdf.Cell(0, 4, tr(fmt.Sprintf("TVA intracommunautaire : %s", entreprise.NumeroTVA)))
			pdf.Ln(4)
		}
	}
	pdf.Ln(6)
}

// blocClient écrit le cartouche du client destinataire
func (ps *PDFService) blocClient(pdf *gofpdf.Fpdf, tr func(string) string, client *models.Client) {
	if client == nil {
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 5, tr(client.NomAffichage()), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if client.Adresse != "" {
		pdf.CellFormat(0, 5, tr(client.Adresse), "", 1, "R", false, 0, "")
	}
	if client.CodePostal != "" || client.Ville != "" {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s %s", client.CodePostal, client.Ville)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}

// tableauLignes écrit le tableau des lignes chiffrées
func (ps *PDFService) tableauLignes(pdf *gofpdf.Fpdf, tr func(string) string, lignes []lignePDF) {
	// En-têtes de colonnes
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(80, 7, tr("Désignation"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, tr("Qté"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 7, tr("Unité"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, tr("PU HT"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(15, 7, tr("TVA %"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, tr("Total HT"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, ligne := range lignes {
		pdf.CellFormat(80, 6, tr(ligne.Designation), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, ligne.Quantite.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 6, tr(ligne.Unite), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, ligne.PrixUnitaireHT.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 6, ligne.TauxTVA.StringFixed(1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, ligne.MontantHT.StringFixed(2), "1", 1, "R", false, 0, "")
	}
}

// blocTotaux écrit le récapitulatif HT / TVA / TTC
func (ps *PDFService) blocTotaux(pdf *gofpdf.Fpdf, tr func(string) string, ht, tva, ttc decimal.Decimal) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(130, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(25, 6, tr("Total HT"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, ht.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(130, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(25, 6, tr("Total TVA"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, tva.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(130, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(25, 6, tr("Total TTC"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, ttc.StringFixed(2), "1", 1, "R", false, 0, "")
}

// libelleFacture retourne le titre du document selon le type de facture
func libelleFacture(typeFacture string) string {
	switch typeFacture {
	case models.FactureAcompte:
		return "FACTURE D'ACOMPTE"
	case models.FactureIntermediaire:
		return "FACTURE INTERMÉDIAIRE"
	case models.FactureSolde:
		return "FACTURE DE SOLDE"
	default:
		return "FACTURE"
	}
}
