package cmd

import (
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robotfashion/dataset-loader/robotfashion"
)

func initProvision() {
	rootCmd.AddCommand(provisionCmd)
	provisionCmd.PersistentFlags().StringVarP(&globalConfig.Root,
		"root", "r", ".", "Working directory that holds or receives the dataset folder")
	provisionCmd.PersistentFlags().StringVar(&globalConfig.ArchiveURL,
		"archive-url", "", "Override the archive download URL")
	provisionCmd.PersistentFlags().BoolVar(&globalConfig.PrometheusConfig.Enabled,
		"pm", false, "Push provisioning metrics to a Prometheus pushgateway")
	provisionCmd.PersistentFlags().StringVar(&globalConfig.PrometheusConfig.PushURL,
		"pm-url", "", "Prometheus pushgateway URL")
	provisionCmd.PersistentFlags().StringVar(&globalConfig.PrometheusConfig.JobName,
		"pm-job", "robotfashion-provision", "Prometheus job name for pushed metrics")
	provisionCmd.PersistentFlags().StringVar(&globalConfig.Labels,
		"labels", "", "Labels of format key1=value1,key2=value2,... to attach to pushed metrics")
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Download and extract the RobotFashion dataset",
	Long:  `Fetch the dataset archive, verify its digest, extract it and check the resulting folder structure`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globalConfig
		cfg.Mode = "provision"

		if err := cfg.Validate(); err != nil {
			fatal(err)
		}

		cfg.parseLabels()

		links := robotfashion.DefaultDownloadLinks()
		if cfg.ArchiveURL != "" {
			for i := range links {
				links[i].URL = cfg.ArchiveURL
			}
		}

		dataRoot := filepath.Join(cfg.Root, robotfashion.DataFolderName())

		start := time.Now()
		if err := robotfashion.Ensure(dataRoot, links, robotfashion.DefaultFolders()); err != nil {
			fatal(err)
		}
		took := time.Since(start)

		log.WithFields(log.Fields{"root": dataRoot, "took": took}).Info("Dataset provisioned")

		var archiveBytes int64
		for _, link := range links {
			archiveBytes += link.Bytes
		}
		PushProvisionMetrics(&cfg, took.Seconds(), archiveBytes, len(links))
	},
}
