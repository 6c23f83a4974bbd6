package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/verdantlabs/ndvi-report/internal/delivery"
	"github.com/verdantlabs/ndvi-report/internal/history"
	"github.com/verdantlabs/ndvi-report/internal/notification"
	"github.com/verdantlabs/ndvi-report/internal/properties"
	"github.com/verdantlabs/ndvi-report/internal/report"
)

func printBanner() {
	figure1 := figure.NewFigure("NDVI", "isometric1", true)
	figure2 := figure.NewFigure("Report", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  ndvi-report process <raster.tif>   process one raster into a report")
	fmt.Println("  ndvi-report batch <directory>      process every GeoTIFF in a directory")
	fmt.Println("  ndvi-report history                list processed runs")
	fmt.Println("  ndvi-report export <out.csv>       export run history to CSV")
}

func newStore(outputDir string) history.Store {
	switch properties.HistoryBackend() {
	case "memory":
		return history.NewMemoryStore()
	case "index":
		return history.NewIndexStore(filepath.Join(outputDir, "history.json"))
	default:
		return history.NewFSStore(outputDir)
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Debug("no .env file found, relying on environment")
	}

	printBanner()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	outputDir := properties.ReportsDir()
	opts := delivery.Options{
		OutputDir:   outputDir,
		ClampBounds: properties.ClampBounds(),
		Store:       newStore(outputDir),
	}

	switch os.Args[1] {
	case "process":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		res, err := delivery.ProcessRasterFile(os.Args[2], opts)
		if err != nil {
			bannercolor.Red("Error processing raster: %s", err.Error())
			notification.SendDiscordErrorNotification(fmt.Sprintf("NDVI Report\n\nError processing %s: %s", os.Args[2], err.Error()))
			os.Exit(1)
		}
		bannercolor.Green("Successful analysis!")
		bannercolor.Green("Report located at: %s", res.ReportPath)
		bannercolor.Green("Preview located at: %s", res.PreviewPath)
		fmt.Println()
		fmt.Println(report.MetadataText(res.Stats, res.Meta))
		notification.SendDiscordSuccessNotification(fmt.Sprintf("NDVI Report\n\nSuccessful analysis!\nReport located at: %s", res.ReportPath))
	case "batch":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		batch, err := delivery.Batch(os.Args[2], opts)
		if err != nil {
			bannercolor.Red("Error running batch: %s", err.Error())
			os.Exit(1)
		}
		bannercolor.Green("Processed %d rasters", len(batch.Results))
		for name, ferr := range batch.Errors {
			bannercolor.Red("- %s: %s", name, ferr.Error())
		}
		if len(batch.Errors) > 0 {
			os.Exit(1)
		}
	case "history":
		records, err := opts.Store.List()
		if err != nil {
			bannercolor.Red("Error listing history: %s", err.Error())
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("No processed runs yet.")
			return
		}
		for _, rec := range records {
			mean := report.NoValidData
			if rec.MeanNDVI != nil {
				mean = fmt.Sprintf("%.4f", *rec.MeanNDVI)
			}
			fmt.Printf("- %s  %s  mean NDVI %s  %.2f ha\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.ID, mean, rec.AreaHa)
		}
	case "export":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		file, err := os.Create(os.Args[2])
		if err != nil {
			bannercolor.Red("Error creating CSV file: %s", err.Error())
			os.Exit(1)
		}
		defer file.Close()
		if err := history.ExportCSV(opts.Store, file); err != nil {
			bannercolor.Red("Error exporting history: %s", err.Error())
			os.Exit(1)
		}
		bannercolor.Green("History exported to %s", os.Args[2])
	default:
		usage()
		os.Exit(1)
	}
}
