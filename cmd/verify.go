package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robotfashion/dataset-loader/robotfashion"
)

func initVerify() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.PersistentFlags().StringVarP(&globalConfig.Root,
		"root", "r", ".", "Working directory that holds the dataset folder")
	verifyCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat,
		"format", "f", "text", "Output format, one of [text, json]")
	verifyCmd.PersistentFlags().StringVarP(&globalConfig.OutputFile,
		"output", "o", "", "Filename for an output file. If none provided, output to stdout only")
}

type folderReport struct {
	Folder   string `json:"folder"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Valid    bool   `json:"valid"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the local dataset folder structure",
	Long:  `Fingerprint every expected split folder and compare against the shipped digests`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globalConfig
		cfg.Mode = "verify"

		if err := cfg.Validate(); err != nil {
			fatal(err)
		}

		dataRoot := filepath.Join(cfg.Root, robotfashion.DataFolderName())

		valid := true
		var reports []folderReport
		for _, folder := range robotfashion.DefaultFolders() {
			report := folderReport{Folder: folder.Name, Expected: folder.SHA256}

			fingerprint, err := robotfashion.FolderFingerprint(filepath.Join(dataRoot, folder.Name))
			if err == nil {
				report.Actual = fingerprint
				report.Valid = strings.EqualFold(fingerprint, folder.SHA256)
			}

			valid = valid && report.Valid
			reports = append(reports, report)
		}

		if cfg.OutputFormat == "json" {
			data, err := json.MarshalIndent(reports, "", "    ")
			if err != nil {
				fatal(err)
			}
			if cfg.OutputFile != "" {
				if err := os.WriteFile(cfg.OutputFile, data, 0o644); err != nil {
					fatal(err)
				}
			} else {
				os.Stdout.Write(append(data, '\n'))
			}
		} else {
			for _, report := range reports {
				state := "ok"
				if !report.Valid {
					state = "INVALID"
				}
				infof("%-12s %s", report.Folder, state)
			}
		}

		if !valid {
			os.Exit(1)
		}
	},
}
