package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage taskvoice configuration files.`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the current configuration values from all sources.`,
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create example configuration file",
		Long: `Create an example configuration file at ~/.config/taskvoice/config.yaml.

The generated file contains all available options with their default values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Long:  `Display the paths where configuration files are searched.`,
		RunE:  runConfigPath,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Server:")
	fmt.Fprintf(out, "    addr:            %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "    allowed_origins: %s\n", valueOrDefault(strings.Join(cfg.Server.AllowedOrigins, ", "), "(any)"))
	fmt.Fprintf(out, "    read_timeout:    %s\n", cfg.Server.ReadTimeout)
	fmt.Fprintf(out, "    write_timeout:   %s\n", cfg.Server.WriteTimeout)
	fmt.Fprintf(out, "  redis_url:         %s\n", valueOrDefault(cfg.RedisURL, "(memory)"))
	fmt.Fprintf(out, "  session_ttl:       %s\n", cfg.SessionTTL)
	fmt.Fprintf(out, "  timezone:          %s\n", valueOrDefault(cfg.Timezone, "(local)"))
	fmt.Fprintln(out, "  Sources:")
	for _, s := range cfg.Sources {
		fmt.Fprintf(out, "    - %s\n", maskSourceSecrets(s))
	}
	fmt.Fprintln(out, "  Auth:")
	fmt.Fprintf(out, "    jwt_secret:      %s\n", maskSecret(cfg.Auth.JWTSecret))
	fmt.Fprintf(out, "    issuer:          %s\n", cfg.Auth.Issuer)
	fmt.Fprintf(out, "    token_ttl:       %s\n", cfg.Auth.TokenTTL)
	fmt.Fprintln(out, "  Logging:")
	fmt.Fprintf(out, "    level:           %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "    file:            %s\n", valueOrDefault(cfg.Logging.File, "(not set)"))
	fmt.Fprintf(out, "    json:            %t\n", cfg.Logging.JSON)

	return nil
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "taskvoice", "config.yaml")

	// Check if file exists
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := config.WriteExample(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at: %s\n", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit this file to customize your settings.")
	fmt.Fprintln(out, "Run 'taskvoice config show' to see current values.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration file search paths (in priority order):")
	fmt.Fprintln(out)

	paths := config.ConfigPaths()
	for i, p := range paths {
		exists := "not found"
		if _, err := os.Stat(p); err == nil {
			exists = "found"
		}
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, p, exists)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables can override file settings.")
	fmt.Fprintln(out, "Supported env vars:")
	for _, env := range []string{
		"TASKVOICE_ADDR",
		"TASKVOICE_ALLOWED_ORIGINS (comma-separated)",
		"TASKVOICE_READ_TIMEOUT",
		"TASKVOICE_WRITE_TIMEOUT",
		"TASKVOICE_REDIS_URL (or REDIS_URL)",
		"TASKVOICE_SESSION_TTL",
		"TASKVOICE_JWT_SECRET",
		"TASKVOICE_AUTH_ISSUER",
		"TASKVOICE_TOKEN_TTL",
		"TASKVOICE_SOURCES (semicolon-separated)",
		"TASKVOICE_TIMEZONE",
		"TASKVOICE_LOG_LEVEL",
		"TASKVOICE_LOG_FILE",
		"TASKVOICE_LOG_JSON",
	} {
		fmt.Fprintf(out, "  %s\n", env)
	}

	return nil
}

func valueOrDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

func maskSecret(val string) string {
	if val == "" {
		return "(not set)"
	}
	if len(val) <= 8 {
		return "***"
	}
	return val[:4] + "..." + val[len(val)-4:]
}

// maskSourceSecrets hides token and password values in a source spec.
func maskSourceSecrets(spec string) string {
	typ, rest, ok := strings.Cut(spec, ":")
	if !ok || rest == "" {
		return spec
	}
	parts := strings.Split(rest, ",")
	for i, part := range parts {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "token", "password":
			parts[i] = key + "=" + maskSecret(val)
		}
	}
	return typ + ":" + strings.Join(parts, ",")
}
