package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/data-eco/eco-go/internal/logger"
	"github.com/data-eco/eco-go/pkg/store"
)

const (
	defaultLogLevel     = "info"
	defaultManifestName = "datapackage.json"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use: "eco",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Short: "Provenance-aware data packages",
	Long: `eco tracks the provenance of datasets as they flow through a processing
pipeline, by embedding a DAG of processing stages inside each data package manifest

Run eco --help for more information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig, initLogLevel)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.config/.eco.yaml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel,
		`Log level. Can be any standard log-level ("info", "debug", etc...)`)
	rootCmd.PersistentFlags().String("s3-bucket", "",
		"S3 bucket holding package manifests. When set, manifest references are treated as object keys "+
			"instead of local file paths.")

	err := viper.BindPFlags(rootCmd.PersistentFlags())
	if err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(extendCommand())
	rootCmd.AddCommand(infoCommand())
	rootCmd.AddCommand(validateCommand())
	rootCmd.AddCommand(graphCommand())
}

func initConfig() {
	viper.SetConfigType("yaml")

	if cfgFile != "" {
		// Use config file from the flag.
		setConfigFile(cfgFile)
	} else if val := os.Getenv("ECO_CONFIG"); val != "" {
		// Use config file from the env variable.
		setConfigFile(val)
	} else {
		workingDir, err := os.Getwd()
		cobra.CheckErr(err)

		// Add $HOME/.config and current directory as paths for Viper to search for the config file in.
		homeDir, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(path.Join(homeDir, ".config"))
		viper.AddConfigPath(workingDir)

		// Search config file with name ".eco.yaml" or ".eco.yml".
		viper.SetConfigName(".eco")
	}

	// Env vars starting with the ECO_ prefix can override any configuration.
	// e.g. ECO_LOG_LEVEL, ECO_S3_BUCKET, etc...
	viper.SetEnvPrefix("eco")
	// Allows to override any sub-level in file config.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Read in environment variables that match.
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	err := viper.ReadInConfig()
	if err != nil {
		// Non-blocking, most commands work without a config file.
		logger.Debugf("%s", err)
	} else {
		logger.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

func initLogLevel() {
	logLevel := viper.GetString("log_level")
	logger.SetLevel(&logLevel)
}

func setConfigFile(name string) {
	_, err := os.Stat(name)
	if err != nil {
		cobra.CheckErr(fmt.Errorf("config file %q not found", name))
	}

	viper.SetConfigFile(name)
}

// hydrateOptsFromViper copies all the viper values into our config struct.
// The mapping between viper identifiers and struct field names
// is ensured by `mapstructure` struct tags.
func hydrateOptsFromViper(opts any) {
	_ = viper.Unmarshal(opts)
}

// bindPFlagsSnakeCase binds the flags with viper values. The identifier of the viper value
// is the name of the flag with dashes replaced by underscores. This is required so we can
// retrieve values from viper with the same behaviour with config coming from files
// (my_config: "value") or from flags (--my-config=value).
func bindPFlagsSnakeCase(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		_ = viper.BindPFlag(strings.ReplaceAll(flag.Name, "-", "_"), flag)
	})
}

// newStore builds the manifest store from the root options: S3 when a bucket
// is configured, local filesystem otherwise.
func newStore(ctx context.Context, s3Bucket string) (store.Store, error) {
	if s3Bucket == "" {
		return store.Local{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	return store.NewS3(cfg, s3Bucket), nil
}
