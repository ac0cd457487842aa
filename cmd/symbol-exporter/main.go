package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	symbolexporter "github.com/kataras/symbol-exporter"
	"github.com/kataras/symbol-exporter/pkg/catalog"
	"github.com/kataras/symbol-exporter/pkg/config"
	"github.com/kataras/symbol-exporter/pkg/figma"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = figma.Version

var (
	figmaURL    string
	accessToken string
	pluginDir   string
	outputDir   string
	listenAddr  string
	reportFile  string
	openBrowser bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "symbol-exporter",
		Short: "Export the symbols of a Figma file as PNG images",
		Long: "Collects the components (symbol masters) of a Figma file, writes them to app/webview/symbolData.js, " +
			"serves the web view and exports every symbol as <symbolId>.png when the view asks for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&figmaURL, "url", "u", "", "Figma file URL (required unless set in symbol-exporter.yml)")
	flags.StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (default $FIGMA_TOKEN)")
	flags.StringVarP(&pluginDir, "plugin-dir", "d", ".", "Plugin directory holding app/webview")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "Output directory for exported images (default <plugin-dir>/export)")
	flags.StringVar(&listenAddr, "listen", symbolexporter.DefaultListen, "Address of the web view server")
	flags.StringVar(&reportFile, "report", "", "Write a markdown symbol report to this file after export")

	rootCmd.Flags().BoolVar(&openBrowser, "open", true, "Open the web view in the default browser")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Write symbolData.js without opening the web view",
		RunE:  runCatalog,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all symbols without opening the web view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true)
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [symbolData.js]",
		Short: "Print the symbols stored in a generated symbolData.js",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("symbol-exporter version %s\n", version)
		},
	}

	rootCmd.AddCommand(catalogCmd, exportCmd, inspectCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// options merges flags, symbol-exporter.yml and the environment. Flags win.
func options(cmd *cobra.Command) (symbolexporter.Options, error) {
	cfg, err := config.Load(pluginDir)
	if err != nil {
		return symbolexporter.Options{}, err
	}

	opts := symbolexporter.Options{
		AccessToken: accessToken,
		FileURL:     figmaURL,
		PluginDir:   pluginDir,
		OutputDir:   outputDir,
		Listen:      listenAddr,
		ReportFile:  reportFile,
		Logger:      &cliLogger{},
		Notifier:    &cliNotifier{},
	}

	flags := cmd.Flags()
	if !flags.Changed("url") && cfg.FileURL != "" {
		opts.FileURL = cfg.FileURL
	}
	if !flags.Changed("output-dir") && cfg.OutputDir != "" {
		opts.OutputDir = cfg.OutputDir
	}
	if !flags.Changed("listen") && cfg.Listen != "" {
		opts.Listen = cfg.Listen
	}
	if !flags.Changed("report") && cfg.Report != "" {
		opts.ReportFile = cfg.Report
	}
	if opts.AccessToken == "" {
		opts.AccessToken = os.Getenv("FIGMA_TOKEN")
	}

	if opts.FileURL == "" {
		return opts, errors.New("a Figma file URL is required (--url)")
	}
	if opts.AccessToken == "" {
		return opts, errors.New("a Figma access token is required (--token or FIGMA_TOKEN)")
	}
	return opts, nil
}

func banner() {
	cyan := color.New(color.FgCyan)
	cyan.Println("\n🧩 Symbol Exporter")
	cyan.Println("==================")
	cyan.Println()
}

func run(cmd *cobra.Command, headless bool) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	opts.Headless = headless
	opts.OpenBrowser = openBrowser && !headless

	banner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := symbolexporter.Run(ctx, opts)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("\n📊 Export Summary:")
	fmt.Printf("  • File: %s\n", result.FileName)
	fmt.Printf("  • Symbols: %d\n", len(result.Records))
	fmt.Printf("  • Exported Images: %d\n", len(result.Assets))
	fmt.Printf("  • Symbol Data: %s\n", result.DataFile)
	fmt.Println()
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}

	banner()

	p, err := symbolexporter.New(cmd.Context(), opts)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("\n✨ Cataloged %d symbol(s) of %s into %s\n\n", len(p.Catalog()), p.FileName(), opts.DataFile())
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := (&symbolexporter.Options{PluginDir: pluginDir}).DataFile()
	if len(args) == 1 {
		path = args[0]
	}

	records, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("\n%d symbol(s) in %s\n\n", len(records), path)
	for _, r := range records {
		fmt.Printf("  %4d  %-24s %s\n", r.SymbolIndex, r.SymbolID, r.Name)
	}
	fmt.Println()
	return nil
}

// cliLogger implements symbolexporter.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}

// cliNotifier prints the completion message.
type cliNotifier struct{}

func (n *cliNotifier) Notify(message string) {
	color.New(color.FgGreen).Printf("\n✨ %s\n", message)
}
