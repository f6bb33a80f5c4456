package engine

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenwatch/zenwatch/cmd"
	"github.com/zenwatch/zenwatch/decoder"
	"github.com/zenwatch/zenwatch/mqtt"
)

var (
	Port         string
	reloadPeriod time.Duration
	topicTTL     time.Duration
	cacheFile    string
	decoderPath  string
	broker       string
	topicFilter  string
)

var CMD = &cobra.Command{
	Use:   "node",
	RunE:  RunMonitor,
	Short: "run a zenwatch monitor node",
}

func init() {
	CMD.Flags().StringVarP(&Port, "port", "p", cmd.DefaultPort, "port to listen on")
	CMD.Flags().DurationVar(&reloadPeriod, "reload-period", time.Second, "diff/push tick interval")
	CMD.Flags().DurationVar(&topicTTL, "topic-ttl", 0, "evict topics idle longer than this (0 disables)")
	CMD.Flags().StringVar(&cacheFile, "cache-file", "", "persist latest topic state to this yaml file")
	CMD.Flags().StringVar(&decoderPath, "decoder", "", "path to a javascript decoder script")
	CMD.Flags().StringVar(&broker, "broker", "tcp://127.0.0.1:1883", "mqtt broker to subscribe to")
	CMD.Flags().StringVar(&topicFilter, "topic-filter", "#", "mqtt subscription filter")

	cmd.CMD.PersistentFlags().StringVarP(&Port, "port", "p", cmd.DefaultPort, "port to listen on")
	cmd.CMD.AddCommand(CMD)
}

func RunMonitor(cobraCmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var decode DecodeFunc
	if decoderPath != "" {
		script, err := decoder.Load(decoderPath)
		if err != nil {
			return err
		}
		defer script.Close()
		decode = script.Decode
	}

	server, _, err := Start(ctx, Config{
		Port:         Port,
		ReloadPeriod: reloadPeriod,
		TopicTTL:     topicTTL,
		CacheFile:    cacheFile,
		Decode:       decode,
	})
	if err != nil {
		return err
	}

	ingest := server.Ingest()
	if err := mqtt.Start(ctx, mqtt.Config{
		Broker: broker,
		Filter: topicFilter,
	}, ingest.OnEvent); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
