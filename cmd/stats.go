package cmd

import (
	"encoding/json"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robotfashion/dataset-loader/robotfashion"
)

func initStats() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.PersistentFlags().StringVarP(&globalConfig.Root,
		"root", "r", ".", "Working directory that holds the dataset folder")
	statsCmd.PersistentFlags().StringVarP(&globalConfig.Split,
		"split", "s", "train", "Dataset split, one of [train, validation, test]")
	statsCmd.PersistentFlags().Float64Var(&globalConfig.SubsetRatio,
		"subset", 1, "Fraction of the split to scan, in (0, 1]")
	statsCmd.PersistentFlags().BoolVarP(&globalConfig.Download,
		"download", "d", false, "Download the dataset if the local copy is missing or invalid")
	statsCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat,
		"format", "f", "text", "Output format, one of [text, json]")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-category example counts for a split",
	Long:  `Parse every annotation in a split and report how many examples each garment category holds`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globalConfig
		cfg.Mode = "stats"

		if err := cfg.Validate(); err != nil {
			fatal(err)
		}

		opts := robotfashion.NewOptions(cfg.Root, robotfashion.Split(cfg.Split))
		opts.SubsetRatio = cfg.SubsetRatio
		opts.Download = cfg.Download

		ds, err := robotfashion.New(opts)
		if err != nil {
			fatal(err)
		}

		counts := make(map[string]int)
		for i := 0; i < ds.Len(); i++ {
			target, err := ds.Annotation(i)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{"index": i}).Error("Skipping unparsable annotation")
				continue
			}
			counts[robotfashion.Category(target.Labels[0]).String()]++
		}

		if cfg.OutputFormat == "json" {
			data, err := json.MarshalIndent(counts, "", "    ")
			if err != nil {
				fatal(err)
			}
			os.Stdout.Write(append(data, '\n'))
			return
		}

		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			infof("%-22s %d", name, counts[name])
		}
		infof("%-22s %d", "total", ds.Len())
	},
}
