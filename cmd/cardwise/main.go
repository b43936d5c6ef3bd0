package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"cardwise/internal/config"
	"cardwise/internal/format"
	"cardwise/internal/logging"
	"cardwise/internal/matcher"
	"cardwise/internal/models"
	"cardwise/internal/parser"
	"cardwise/internal/repository"
	"cardwise/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// jsonStdout is the sentinel NoOptDefVal for --json without a filename.
const jsonStdout = "-"

var (
	flagJSON       string
	flagHTMLDir    string
	flagRefresh    bool
	flagNoDB       bool
	flagCategorize bool
	flagHeadless   bool
	flagVerbosity  int
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "cardwise SHOP [SHOP...]",
	Short:         "Find card-linked offers for one or more shops",
	Long:          "cardwise fuzzy-searches scraped bank offers by shop name and prints the matches.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Scrape offers from the configured bank URLs and store them",
	Long:  "fetch downloads each configured bank's offer page, extracts the offers and upserts them into the database.",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	rootCmd.Flags().StringVar(&flagJSON, "json", "", "output results as JSON, optionally to the given file")
	rootCmd.Flags().Lookup("json").NoOptDefVal = jsonStdout
	rootCmd.Flags().StringVar(&flagHTMLDir, "html-dir", "", "directory containing bank offer HTML files (overrides config)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "clear stored offers and recompute from HTML files")
	rootCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "skip the database and work from HTML files only")
	rootCmd.Flags().BoolVar(&flagCategorize, "categorize", false, "group matched shops into spending categories (needs an AI API key)")
	rootCmd.PersistentFlags().CountVarP(&flagVerbosity, "verbose", "v", "increase log verbosity (-vv for debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "set the log level explicitly")

	fetchCmd.Flags().BoolVar(&flagHeadless, "headless", false, "render pages in a headless browser before extraction")
	rootCmd.AddCommand(fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, models.ErrOfferProcessing) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func run(cmd *cobra.Command, shops []string) error {
	logger, err := logging.New(flagVerbosity, flagLogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	conf, err := config.Init(logger)
	if err != nil {
		return err
	}
	htmlDir := conf.HTMLDir
	if flagHTMLDir != "" {
		htmlDir = flagHTMLDir
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := openRepository(ctx, conf, logger)
	if err != nil {
		return err
	}

	parsers := parser.Discover(logger)
	ingestor := service.NewIngestor(parsers, repository.NewDirSource(htmlDir), logger)

	if flagRefresh {
		if err := refreshOffers(ctx, repo, ingestor); err != nil {
			return err
		}
		fmt.Println("Offers database cleared and recomputed from HTML")
	}

	finder := service.NewFinder(repo, ingestor, matcher.New(conf.MatchThreshold), logger)
	if err := finder.PrecomputeOffers(ctx); err != nil {
		return err
	}

	offers, err := finder.FindOffers(ctx, shops)
	if err != nil {
		return err
	}
	logger.Info("search complete", zap.Strings("queries", shops), zap.Int("matches", len(offers)))

	if err := writeOutput(offers); err != nil {
		return err
	}
	if flagCategorize {
		return categorize(ctx, conf, offers, logger)
	}
	return nil
}

// runFetch scrapes the configured bank URLs and persists the results. The
// offers land in the database, so a database is required here.
func runFetch(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(flagVerbosity, flagLogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	conf, err := config.Init(logger)
	if err != nil {
		return err
	}
	if conf.DBConn == "" {
		return fmt.Errorf("fetch needs a database, set CARDWISE_DB_HOST/DB_USER/DB_NAME")
	}
	urls := conf.SourceURLs()
	if len(urls) == 0 {
		return fmt.Errorf("no bank sources configured, add a banks list to config.yaml")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := openRepository(ctx, conf, logger)
	if err != nil {
		return err
	}

	var source repository.DocumentSource = repository.NewHTTPSource(urls)
	if flagHeadless {
		source = repository.NewHeadlessSource(urls, conf.SourceSelectors(), logger)
	}
	ingestor := service.NewIngestor(parser.Discover(logger), source, logger)

	offers, err := ingestor.IngestAll(ctx)
	if err != nil {
		return err
	}
	inserted, err := repo.SaveAll(ctx, offers)
	if err != nil {
		return err
	}
	logger.Info("fetch complete", zap.Int("scraped", len(offers)), zap.Int("inserted", inserted))
	fmt.Printf("Fetched %d offers, %d new\n", len(offers), inserted)
	return nil
}

// openRepository picks the backing store: Postgres when configured,
// otherwise the in-memory repository fed from HTML files.
func openRepository(ctx context.Context, conf *config.Config, logger *zap.Logger) (repository.OfferRepository, error) {
	if flagNoDB || conf.DBConn == "" {
		logger.Debug("no database configured, using in-memory repository")
		return repository.NewMemoryOfferRepository(), nil
	}
	db, err := gorm.Open(postgres.Open(conf.DBConn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := repository.NewPostgresOfferRepository(db)
	if err := repo.Init(ctx); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return repo, nil
}

func refreshOffers(ctx context.Context, repo repository.OfferRepository, ingestor *service.Ingestor) error {
	if err := repo.Refresh(ctx); err != nil {
		return err
	}
	offers, err := ingestor.IngestAll(ctx)
	if err != nil {
		return err
	}
	_, err = repo.SaveAll(ctx, offers)
	return err
}

func writeOutput(offers []models.Offer) error {
	var formatter format.OfferFormatter = format.NewTextFormatter()
	if flagJSON != "" {
		formatter = format.NewJSONFormatter()
	}
	output, err := formatter.Format(offers)
	if err != nil {
		return err
	}

	if flagJSON != "" && flagJSON != jsonStdout {
		if err := os.WriteFile(flagJSON, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Output saved to %s\n", flagJSON)
		return nil
	}
	fmt.Println(output)
	return nil
}

// categorize prints spending categories for the matched shops.
func categorize(ctx context.Context, conf *config.Config, offers []models.Offer, logger *zap.Logger) error {
	if conf.AIAPIKey == "" {
		return fmt.Errorf("--categorize needs %s to be configured", config.AIAPIKeyName)
	}
	cat, err := service.NewAICategorizer(ctx, conf.AIAPIKey, logger)
	if err != nil {
		return err
	}
	defer cat.Close()

	seen := make(map[string]struct{})
	var names []string
	for _, o := range offers {
		if _, dup := seen[o.Shop.Name]; dup {
			continue
		}
		seen[o.Shop.Name] = struct{}{}
		names = append(names, o.Shop.Name)
	}
	categories, err := cat.Categorize(ctx, names)
	if err != nil {
		return err
	}

	sorted := make([]string, 0, len(categories))
	for shop := range categories {
		sorted = append(sorted, shop)
	}
	sort.Strings(sorted)
	fmt.Println("\nCategories:")
	for _, shop := range sorted {
		fmt.Printf("  %s: %v\n", shop, categories[shop])
	}
	return nil
}
