package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/jira-effort-metrics/internal/config"
	"github.com/kurihiro0119/jira-effort-metrics/internal/dataset"
	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/fetcher"
	"github.com/kurihiro0119/jira-effort-metrics/internal/janitor"
	"github.com/kurihiro0119/jira-effort-metrics/internal/logger"
	"github.com/kurihiro0119/jira-effort-metrics/internal/parser"
	"github.com/kurihiro0119/jira-effort-metrics/internal/report"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/csvfile"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage/sqlite"
	"github.com/kurihiro0119/jira-effort-metrics/internal/trainer"
)

var (
	startIssue    int
	endIssue      int
	updateAll     bool
	appendNew     bool
	cleanedPath   string
	dropEstimates bool
	neighbors     int
	updateModel   bool
)

var rootCmd = &cobra.Command{
	Use:   "jira-metrics",
	Short: "Jira effort metrics tool",
	Long: `A CLI tool for harvesting Jira issues into a local dataset and
predicting effort (time spent) for new issues.

Issues are pulled one key at a time, flattened into a flat table,
cleaned into a numeric feature matrix and fed to a nearest-neighbour
model.`,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch issue data from Jira",
	Long:  `Walk the project's issue numbers sequentially and accumulate every existing issue into the dataset.`,
	RunE:  runFetch,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the dataset into a feature matrix",
	Long:  `Run the cleaning pipeline over the accumulated dataset and write the numeric feature matrix.`,
	RunE:  runClean,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the effort model",
	Long:  `Clean the dataset, fit the time-spent model on rows with observed effort and persist it.`,
	RunE:  runTrain,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict effort for unestimated issues",
	Long:  `Predict time spent for rows where it was never recorded and show the review table.`,
	RunE:  runPredict,
}

var sprintsCmd = &cobra.Command{
	Use:   "sprints",
	Short: "Show per-sprint bug counts",
	RunE:  runSprints,
}

var estimatesCmd = &cobra.Command{
	Use:   "estimates",
	Short: "Show estimate accuracy",
	Long:  `Display original estimates against recorded time spent for every issue that has both.`,
	RunE:  runEstimates,
}

func init() {
	fetchCmd.Flags().IntVarP(&startIssue, "start", "s", 0, "first issue number to pull")
	fetchCmd.Flags().IntVarP(&endIssue, "end", "e", 0, "last issue number to pull")
	fetchCmd.Flags().BoolVarP(&updateAll, "all", "U", false, "recreate the issue dataset")
	fetchCmd.Flags().BoolVarP(&appendNew, "append", "u", false, "append new issues to the dataset")

	cleanCmd.Flags().StringVarP(&cleanedPath, "output", "o", "cleaned.csv", "path for the cleaned matrix")
	cleanCmd.Flags().BoolVar(&dropEstimates, "drop-estimates", false, "exclude original_estimate (estimate-accuracy target)")

	trainCmd.Flags().IntVarP(&neighbors, "neighbors", "k", trainer.DefaultNeighbors, "number of neighbours")
	trainCmd.Flags().BoolVar(&dropEstimates, "drop-estimates", false, "exclude original_estimate (estimate-accuracy target)")

	predictCmd.Flags().BoolVarP(&updateModel, "update-model", "m", false, "refit the model before predicting")
	predictCmd.Flags().IntVarP(&neighbors, "neighbors", "k", trainer.DefaultNeighbors, "number of neighbours")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(sprintsCmd)
	rootCmd.AddCommand(estimatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

func getStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.New(cfg.PostgresURL)
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	default:
		return csvfile.New(cfg.DatasetPath), nil
	}
}

// loadDataset reads the stored dataset. When required is false a missing
// store yields an empty table with the canonical header.
func loadDataset(ctx context.Context, store storage.Store, required bool) (*dataset.Table, error) {
	t, err := store.LoadDataset(ctx)
	if err != nil {
		if apperrors.IsNotFound(err) && !required {
			return dataset.NewCanonical(), nil
		}
		return nil, err
	}
	return t, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	if appendNew {
		return fmt.Errorf("append not implemented; use --all to recreate the dataset")
	}
	if !updateAll {
		return fmt.Errorf("nothing to do; pass --all to recreate the dataset")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if startIssue > 0 {
		cfg.StartIssue = startIssue
	}
	if endIssue > 0 {
		cfg.EndIssue = endIssue
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	t, err := loadDataset(ctx, store, false)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Printf("Updating all issue data for %s\n", cfg.JiraProject)
	if cfg.EndIssue > 0 {
		fmt.Printf("Issue range: %d to %d\n", cfg.StartIssue, cfg.EndIssue)
	} else {
		fmt.Printf("Issue range: %d until the project runs out\n", cfg.StartIssue)
	}

	state := storage.NewStateFile(cfg.StatePath)
	jira := fetcher.NewJiraFetcher(cfg.JiraURL, cfg.JiraUsername, cfg.JiraAPIToken)
	it := fetcher.NewIterator(jira, cfg.JiraProject, cfg.StartIssue, cfg.EndIssue, state)

	if err := t.Collect(ctx, it, parser.New(), dataset.DefaultExcludedIssueTypes); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := store.SaveDataset(ctx, t); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	fmt.Printf("Dataset now has %d issues\n", t.Len())

	if last, err := state.LastRetrieved(); err == nil && last != "" {
		fmt.Printf("Range exhausted at %s; pass --start to resume beyond it next time\n", last)
	}
	return nil
}

func cleanConfig() janitor.Config {
	cfg := janitor.DefaultConfig()
	if dropEstimates {
		cfg.ExtraPrune = append(cfg.ExtraPrune, "original_estimate")
	}
	return cfg
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	t, err := loadDataset(ctx, store, true)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := janitor.New(cleanConfig()).Clean(t); err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	out := csvfile.New(cleanedPath)
	if err := out.SaveDataset(ctx, t); err != nil {
		return fmt.Errorf("failed to save cleaned matrix: %w", err)
	}

	fmt.Printf("Cleaned matrix: %d rows x %d columns -> %s\n", t.Len(), len(t.Columns()), cleanedPath)
	return nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	t, err := loadDataset(ctx, store, true)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := janitor.New(cleanConfig()).Clean(t); err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	model, err := trainer.Train(t, "time_spent", neighbors)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	score, err := model.Score(t)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if err := model.Save(cfg.ModelPath); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Training rows", strconv.Itoa(len(model.Y))})
	table.Append([]string{"Features", strconv.Itoa(len(model.Features))})
	table.Append([]string{"Neighbours", strconv.Itoa(model.K)})
	table.Append([]string{"Score", fmt.Sprintf("%.3f", score)})
	table.Render()

	fmt.Printf("Model saved to %s\n", cfg.ModelPath)
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	t, err := loadDataset(ctx, store, true)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := janitor.New(cleanConfig()).Clean(t); err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	var model *trainer.Model
	if updateModel {
		model, err = trainer.Train(t, "time_spent", neighbors)
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		if err := model.Save(cfg.ModelPath); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
	} else {
		model, err = trainer.Load(cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("failed to load model (train first, or pass -m): %w", err)
		}
	}

	predictions, err := model.PredictTable(t)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fmt.Println("Issues with no recorded time spent:")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Issue", "Predicted Time Spent (s)"})
	observed := "time_spent" + janitor.ObservedSuffix
	for i, num := range t.Indexes() {
		if !t.HasColumn(observed) || t.Value(num, observed).Num() != 0 {
			continue
		}
		if predictions[i] == janitor.SentinelValue {
			continue
		}
		table.Append([]string{strconv.Itoa(num), fmt.Sprintf("%.0f", predictions[i])})
	}
	table.Render()
	return nil
}

func runSprints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	t, err := loadDataset(context.Background(), store, true)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	tally := report.TallyBugsBySprint(t)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sprint", "Bugs"})
	for _, sprint := range tally.Sprints {
		table.Append([]string{sprint, strconv.Itoa(tally.Counts[sprint])})
	}
	table.Render()
	return nil
}

func runEstimates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	t, err := loadDataset(context.Background(), store, true)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Issue", "Time Spent (s)", "Original Estimate (s)", "Difference (s)"})
	for _, row := range report.EstimateAccuracy(t) {
		table.Append([]string{
			strconv.Itoa(row.Issue),
			fmt.Sprintf("%.0f", row.TimeSpent),
			fmt.Sprintf("%.0f", row.OriginalEstimate),
			fmt.Sprintf("%.0f", row.Difference),
		})
	}
	table.Render()
	return nil
}
