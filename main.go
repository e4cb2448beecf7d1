package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/rquispe/eecc-extractor/internal/api"
	"github.com/rquispe/eecc-extractor/internal/extractor"
	"github.com/rquispe/eecc-extractor/internal/models"
	"github.com/rquispe/eecc-extractor/internal/parser"
	"github.com/rquispe/eecc-extractor/internal/writer"
)

const version = "1.0.0"

var (
	profileFlag string
	outputFlag  string
	headerFlag  bool
	addrFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "eecc-extractor",
	Short: "Convierte estados de cuenta (EECC) en CSV estructurado",
	Long: `Extrae movimientos de estados de cuenta bancarios (imágenes OCR de la
cuenta de ahorro, el PDF de la cuenta sueldo o el consolidado multi-cuenta)
y los exporta como Fecha | Descripción | Cargo | Abono | Comentario.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input> [input2 ...]",
	Short: "Convert statement PDFs or an image folder to CSV",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion API",
	RunE: func(_ *cobra.Command, _ []string) error {
		app := fiber.New(fiber.Config{BodyLimit: 32 << 20})
		api.Register(app)
		newLogger().Info("listening", "addr", addrFlag)
		return app.Listen(addrFlag)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("eecc-extractor v%s\n", version)
	},
}

func main() {
	convertCmd.Flags().StringVar(&profileFlag, "profile", "", "Statement profile: ahorro, sueldo, consolidado (auto-detected if omitted)")
	convertCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output CSV file path")
	convertCmd.Flags().BoolVar(&headerFlag, "header", true, "Include metadata header rows in CSV")
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address")

	rootCmd.AddCommand(convertCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "eecc",
	})
}

func runConvert(_ *cobra.Command, args []string) error {
	logger := newLogger()

	var profile models.Profile
	if profileFlag != "" {
		switch strings.ToLower(profileFlag) {
		case "ahorro":
			profile = models.ProfileAhorro
		case "sueldo":
			profile = models.ProfileSueldo
		case "consolidado":
			profile = models.ProfileConsolidado
		default:
			return fmt.Errorf("unknown profile %q; supported: ahorro, sueldo, consolidado", profileFlag)
		}
	}

	docs := loadDocuments(args, logger)
	if len(docs) == 0 {
		return fmt.Errorf("no readable input documents")
	}

	if profile == "" {
		detected, err := parser.AutoDetect(docs)
		if err != nil {
			return err
		}
		profile = detected
		logger.Info("auto-detected profile", "profile", profile)
	}

	p, err := parser.New(profile, logger)
	if err != nil {
		return err
	}
	logger.Info("parsing", "profile", p.ProfileName(), "documents", len(docs))

	info, err := p.Parse(docs)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	for _, w := range info.Warnings {
		logger.Warn(w)
	}
	logger.Info("extracted", "transactions", len(info.Transactions))

	outPath := outputFlag
	if outPath == "" {
		outPath = defaultOutputPath(args[0], profile)
	}

	w := &writer.CSVWriter{
		IncludeHeader:  headerFlag,
		IncludeAccount: includeAccountColumn(profile, len(docs)),
	}
	if err := w.WriteToFile(outPath, info); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	logger.Info("done", "output", outPath)
	return nil
}

// loadDocuments turns each input argument into a Document. A directory
// is treated as a folder of statement images (the savings-account input);
// a file is a PDF. A source that cannot be read is logged and skipped so
// one bad document never aborts the batch.
func loadDocuments(inputs []string, logger *log.Logger) []models.Document {
	var docs []models.Document
	for _, input := range inputs {
		fi, err := os.Stat(input)
		if err != nil {
			logger.Warn("missing statement source", "path", input, "error", err)
			continue
		}

		if fi.IsDir() {
			docs = append(docs, loadImageFolder(input, logger)...)
			continue
		}

		ext := strings.ToLower(filepath.Ext(input))
		switch ext {
		case ".pdf":
			pages, err := extractor.ExtractText(input)
			if err != nil && extractor.IsOCRAvailable() {
				logger.Warn("text layer unreadable, retrying with OCR", "path", input)
				pages, err = extractor.ExtractTextOCR(input)
			}
			if err != nil {
				logger.Warn("could not extract statement text", "path", input, "error", err)
				continue
			}
			docs = append(docs, parser.NewDocument(accountLabel(input), pages))
		case ".jpg", ".jpeg", ".png":
			text, err := extractor.ExtractImageText(input)
			if err != nil {
				logger.Warn("could not OCR statement image", "path", input, "error", err)
				continue
			}
			docs = append(docs, parser.NewDocument(accountLabel(input), []string{text}))
		default:
			logger.Warn("unsupported input type", "path", input)
		}
	}
	return docs
}

// loadImageFolder OCRs every jpg/jpeg/png in the folder, in name order,
// as one document per image.
func loadImageFolder(dir string, logger *log.Logger) []models.Document {
	var paths []string
	for _, pattern := range []string{"*.jpg", "*.jpeg", "*.png"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	var docs []models.Document
	for _, path := range paths {
		text, err := extractor.ExtractImageText(path)
		if err != nil {
			logger.Warn("could not OCR statement image", "path", path, "error", err)
			continue
		}
		docs = append(docs, parser.NewDocument(accountLabel(path), []string{text}))
	}
	return docs
}

// includeAccountColumn decides whether the movement layout keeps the
// Cuenta column: only when several sources are merged, so rows can be
// traced back. The consolidated layout carries the account in
// CuentaOrigen already.
func includeAccountColumn(profile models.Profile, docCount int) bool {
	return profile != models.ProfileConsolidado && docCount > 1
}

// accountLabel derives the account label from the statement filename,
// matching the EECC-<account> naming the bank uses for downloads.
func accountLabel(path string) string {
	upper := strings.ToUpper(filepath.Base(path))
	switch {
	case strings.Contains(upper, "AHORRO"):
		return "Ahorro"
	case strings.Contains(upper, "SUELDO"):
		return "Sueldo"
	case strings.Contains(upper, "CREDITO"), strings.Contains(upper, "CRÉDITO"):
		return "Crédito"
	default:
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
}

func defaultOutputPath(firstInput string, profile models.Profile) string {
	if profile == models.ProfileConsolidado {
		return fmt.Sprintf("resultado_%s.csv", time.Now().Format("2006.01.02 15.04"))
	}
	fi, err := os.Stat(firstInput)
	if err == nil && fi.IsDir() {
		return filepath.Join(firstInput, "movimientos.csv")
	}
	return strings.TrimSuffix(firstInput, filepath.Ext(firstInput)) + ".csv"
}
