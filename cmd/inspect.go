package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/robotfashion/dataset-loader/robotfashion"
)

func initInspect() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.PersistentFlags().StringVarP(&globalConfig.Root,
		"root", "r", ".", "Working directory that holds the dataset folder")
	inspectCmd.PersistentFlags().StringVarP(&globalConfig.Split,
		"split", "s", "train", "Dataset split, one of [train, validation, test]")
	inspectCmd.PersistentFlags().Float64Var(&globalConfig.SubsetRatio,
		"subset", 1, "Fraction of the split to expose, in (0, 1]")
	inspectCmd.PersistentFlags().BoolVarP(&globalConfig.Download,
		"download", "d", false, "Download the dataset if the local copy is missing or invalid")
	inspectCmd.PersistentFlags().IntVarP(&globalConfig.Index,
		"index", "i", -1, "Example index to inspect; omit to report the split length only")
	inspectCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat,
		"format", "f", "text", "Output format, one of [text, json]")
}

type exampleReport struct {
	Index    int        `json:"index"`
	Category string     `json:"category"`
	Code     int64      `json:"code"`
	Box      [4]float64 `json:"box"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report a split's length or one example's annotation",
	Long:  `Open a dataset split and report its example count, or decode one example and print its category, bounding box and image size`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globalConfig
		cfg.Mode = "inspect"

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

		if cfg.Index < 0 {
			infof("%s split holds %d examples", cfg.Split, ds.Len())
			return
		}

		img, target, err := ds.Get(cfg.Index)
		if err != nil {
			fatal(err)
		}

		bounds := img.Bounds()
		report := exampleReport{
			Index:    cfg.Index,
			Category: robotfashion.Category(target.Labels[0]).String(),
			Code:     target.Labels[0],
			Box:      target.Boxes[0],
			Width:    bounds.Dx(),
			Height:   bounds.Dy(),
		}

		if cfg.OutputFormat == "json" {
			data, err := json.MarshalIndent(report, "", "    ")
			if err != nil {
				fatal(err)
			}
			os.Stdout.Write(append(data, '\n'))
		} else {
			infof("example %d: %s (code %d), box [xmin=%v xmax=%v ymin=%v ymax=%v], image %dx%d",
				report.Index, report.Category, report.Code,
				report.Box[0], report.Box[1], report.Box[2], report.Box[3],
				report.Width, report.Height)
		}
	},
}
