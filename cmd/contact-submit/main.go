// Command contact-submit sends a contact form to the notification service
// the same way the website does.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/onegateway/site-notify/internal/collector"
	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/pkg/logger"
	"github.com/onegateway/site-notify/internal/tracking"
)

var (
	configPath string
	endpoint   string
	userAgent  string
	form       collector.Form
)

var rootCmd = &cobra.Command{
	Use:   "contact-submit",
	Short: "Submit a contact form to the notification service",
	Long: `Collects the form fields, the device type and (with tracking consent)
the caller's approximate location, then makes one POST to the service.`,
	SilenceUsage: true,
	RunE:         runSubmit,
}

var consentCmd = &cobra.Command{
	Use:       "consent [grant|revoke]",
	Short:     "Record the tracking consent preference",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"grant", "revoke"},
	RunE:      runConsent,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML config file")

	f := rootCmd.Flags()
	f.StringVar(&form.Name, "name", "", "sender name (required)")
	f.StringVar(&form.Email, "email", "", "sender email (required)")
	f.StringVar(&form.Phone, "phone", "", "sender phone (required)")
	f.StringVar(&form.Company, "company", "", "company")
	f.StringVar(&form.Message, "message", "", "message body")
	f.StringVar(&endpoint, "endpoint", "", "notification service URL (overrides config)")
	f.StringVar(&userAgent, "user-agent", "", "user agent to report")
	rootCmd.MarkFlagRequired("name")
	rootCmd.MarkFlagRequired("email")
	rootCmd.MarkFlagRequired("phone")

	rootCmd.AddCommand(consentCmd)
}

func loadCollectorConfig() (config.CollectorConfig, error) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return config.CollectorConfig{}, err
	}
	logger.Configure(logger.ParseLevel(cfg.Log.Level), cfg.Log.Redact())
	if endpoint != "" {
		cfg.Collector.Endpoint = endpoint
	}
	return cfg.Collector, nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadCollectorConfig()
	if err != nil {
		return err
	}

	var opts []collector.Option
	if userAgent != "" {
		opts = append(opts, collector.WithUserAgent(userAgent))
	}
	c, err := collector.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout()+5*time.Second)
	defer cancel()

	resp, err := c.Submit(ctx, form)
	if resp != nil {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	if errors.Is(err, collector.ErrRejected) {
		return fmt.Errorf("service returned %d", resp.StatusCode)
	}
	return err
}

func runConsent(cmd *cobra.Command, args []string) error {
	cfg, err := loadCollectorConfig()
	if err != nil {
		return err
	}
	if cfg.ConsentFile == "" {
		return errors.New("collector.consent_file is not configured")
	}
	granted := args[0] == "grant"
	if err := tracking.SaveConsent(cfg.ConsentFile, granted); err != nil {
		return err
	}
	state := "revoked"
	if granted {
		state = "granted"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tracking consent %s\n", state)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
