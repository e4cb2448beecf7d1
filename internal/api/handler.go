package api

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rquispe/eecc-extractor/internal/extractor"
	"github.com/rquispe/eecc-extractor/internal/models"
	"github.com/rquispe/eecc-extractor/internal/parser"
	"github.com/rquispe/eecc-extractor/internal/writer"
)

const apiVersion = "1.0.0"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Profile      string               `json:"profile,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	CSV          string               `json:"csv,omitempty"`
	TotalCargo   float64              `json:"totalCargo"`
	TotalAbono   float64              `json:"totalAbono"`
	Count        int                  `json:"count"`
	Warnings     []string             `json:"warnings,omitempty"`
	Version      string               `json:"version,omitempty"`
}

// Register sets up the HTTP routes.
func Register(app *fiber.App) {
	app.Get("/api/health", HandleHealth)
	app.Post("/api/convert", HandleConvert)
}

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": apiVersion,
	})
}

// HandleConvert accepts a statement upload (PDF or image) and returns
// the extracted transactions plus the rendered CSV.
func HandleConvert(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".pdf", ".jpg", ".jpeg", ".png":
	default:
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unsupported file type %q. Use a PDF or a statement image.", ext))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Failed to read upload.")
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "statement-*"+ext)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, src); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}
	tmpFile.Close()

	var pages []string
	if ext == ".pdf" {
		pages, err = extractor.ExtractText(tmpFile.Name())
	} else {
		var text string
		text, err = extractor.ExtractImageText(tmpFile.Name())
		pages = []string{text}
	}
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Text extraction failed: %v", err))
	}

	docs := []models.Document{parser.NewDocument(c.FormValue("account"), pages)}

	var profile models.Profile
	if profileParam := c.FormValue("profile"); profileParam != "" {
		switch strings.ToLower(profileParam) {
		case "ahorro":
			profile = models.ProfileAhorro
		case "sueldo":
			profile = models.ProfileSueldo
		case "consolidado":
			profile = models.ProfileConsolidado
		default:
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown profile: %q. Use ahorro, sueldo or consolidado.", profileParam))
		}
	} else {
		profile, err = parser.AutoDetect(docs)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
	}

	p, err := parser.New(profile, nil)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	info, err := p.Parse(docs)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if info.Profile == models.ProfileConsolidado {
		err = csvWriter.WriteConsolidated(&csvBuf, info)
	} else {
		err = csvWriter.Write(&csvBuf, info)
	}
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	var totalCargo, totalAbono float64
	for _, txn := range info.Transactions {
		if txn.Cargo != nil {
			totalCargo += *txn.Cargo
		}
		if txn.Abono != nil {
			totalAbono += *txn.Abono
		}
	}

	// nil marshals to JSON null, not []
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	return c.JSON(ConvertResponse{
		Success:      true,
		Profile:      string(info.Profile),
		Transactions: txns,
		CSV:          csvBuf.String(),
		TotalCargo:   totalCargo,
		TotalAbono:   totalAbono,
		Count:        len(txns),
		Warnings:     info.Warnings,
		Version:      apiVersion,
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
