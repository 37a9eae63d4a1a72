package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
)

const (
	// DataDirName is the directory holding persisted state, relative to the project root
	DataDirName = ".trebgov"
	// GovernanceFile is the project configuration file that marks a project root
	GovernanceFile = "governance.toml"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dataDir = filepath.Join(projectRoot, DataDirName)
	} else if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(projectRoot, dataDir)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        dataDir,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		From:           v.GetString("from"),
		ListenAddr:     v.GetString("listen"),
		ConfigSource:   "defaults",
	}

	govFile, err := loadGovernanceFile(projectRoot)
	if err != nil {
		return nil, err
	}
	if govFile != nil {
		cfg.ConfigSource = GovernanceFile
	} else {
		govFile = &config.GovernanceFileConfig{}
	}
	cfg.Governance = govFile

	clk, err := resolveClock(govFile.Governor)
	if err != nil {
		return nil, err
	}
	cfg.Clock = clk

	return cfg, nil
}

// FindProjectRoot walks up from the current directory looking for
// governance.toml. Outside a project the current directory is the root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, GovernanceFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	loadDotEnv(projectRoot)

	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	v.SetEnvPrefix("TREBGOV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("listen", "127.0.0.1:8645")
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				panic(err)
			}
		})
	}

	return v
}
