package main

import (
	"context"
	"fmt"
	"ftareview/internal/catalogfile"
	"ftareview/internal/engine"
	"ftareview/internal/model"
	"ftareview/internal/repository"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func loadCatalog(path string) (*engine.Catalog, *catalogfile.File, error) {
	f, err := catalogfile.Read(path)
	if err != nil {
		return nil, nil, codeError(3, "loading catalog: %s", err)
	}
	c, err := engine.NewCatalog(f.Data())
	if err != nil {
		return nil, nil, codeError(2, "invalid catalog: %s", err)
	}
	return c, f, nil
}

type validateReport struct {
	Stats           engine.Stats       `json:"stats"`
	SubAreasNoRules []string           `json:"sub_areas_without_rules"`
	Unresolved      []model.LegacyRule `json:"unresolved_legacy_rules,omitempty"`
	Warning         string             `json:"warning,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var (
		catalogPath string
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog file and report its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, f, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			report := validateReport{
				Stats:           c.Stats(),
				SubAreasNoRules: c.SubAreasWithoutRules(),
				Unresolved:      f.UnresolvedLegacyRules(),
			}
			if report.SubAreasNoRules == nil {
				report.SubAreasNoRules = []string{}
			}
			if n := len(report.SubAreasNoRules); n > 0 {
				report.Warning = fmt.Sprintf("%d sub-areas can never apply", n)
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if strict && len(report.SubAreasNoRules) > 0 {
				return codeError(2, "%s", report.Warning)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a sub-area has no rules")
	cmd.MarkFlagRequired("catalog")
	return cmd
}

type evaluateOutput struct {
	engine.Assessment
	MatchedRules engine.Trace `json:"matched_rules,omitempty"`
}

func newEvaluateCmd() *cobra.Command {
	var (
		catalogPath string
		answersPath string
		order       string
		trace       bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate an answer set against a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sectionOrder, err := engine.ParseSectionOrder(order)
			if err != nil {
				return codeError(3, "invalid --order: %s", err)
			}
			c, _, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			answers, err := catalogfile.ReadAnswers(answersPath)
			if err != nil {
				return codeError(3, "%s", err)
			}

			out := evaluateOutput{Assessment: engine.Assess(c, answers, sectionOrder)}
			if trace {
				out.MatchedRules = out.Trace
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "Catalog YAML file")
	f.StringVar(&answersPath, "answers", "", "Answer file (YAML or JSON)")
	f.StringVar(&order, "order", string(engine.OrderByHoursDesc), "Section order: hours or chapter")
	f.BoolVar(&trace, "trace", false, "Include the rule that matched each sub-area")
	cmd.MarkFlagRequired("catalog")
	cmd.MarkFlagRequired("answers")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var (
		catalogPath string
		mongoURI    string
		database    string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog stored in MongoDB with a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			data := f.Data()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
			if err != nil {
				return codeError(4, "failed to connect to MongoDB: %s", err)
			}
			defer client.Disconnect(context.Background())

			if err := repository.NewCatalogRepo(client.Database(database)).Replace(ctx, data); err != nil {
				return codeError(4, "%s", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d questions, %d sections, %d sub-areas, %d rules into %s\n",
				len(data.Questions), len(data.Sections), len(data.SubAreas), len(data.Rules), database)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "Catalog YAML file")
	f.StringVar(&mongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	f.StringVar(&database, "db", envOr("MONGO_DB", "ftareview"), "MongoDB database")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "Seed timeout")
	cmd.MarkFlagRequired("catalog")
	return cmd
}

func envOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
