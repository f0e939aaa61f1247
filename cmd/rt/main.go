package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rt "github.com/rt-tools/rt-go"
	"github.com/rt-tools/rt-go/rest2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rt",
	Short: "Command line client for Request Tracker",
	Long: `rt talks to a Request Tracker instance over its REST 2.0 API.

Connection settings come from flags, RT_* environment variables or
~/.rt.yaml, in that order of precedence.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	urlFlag      string
	tokenFlag    string
	userFlag     string
	passwordFlag string
	outputFlag   string
	debugFlag    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "RT base URL, e.g. https://tracker.example.com/REST/2.0/")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "RT auth token")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "RT username for basic auth")
	rootCmd.PersistentFlags().StringVar(&passwordFlag, "password", "", "RT password for basic auth")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	for _, name := range []string{"url", "token", "user", "password"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(untakeCmd)
	rootCmd.AddCommand(stealCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(linkCmd)
}

func initConfig() {
	viper.SetConfigName(".rt")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("RT")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "rt: reading config: %v\n", err)
		}
	}
}

// newClient builds the REST 2.0 client from the resolved configuration.
func newClient() (*rest2.Client, error) {
	baseURL := viper.GetString("url")
	if baseURL == "" {
		return nil, fmt.Errorf("no RT URL configured, pass --url or set RT_URL")
	}

	cfg := &rt.REST2Config{
		BaseURL: baseURL,
		Logger:  zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
		Debug:   debugFlag,
	}
	switch {
	case viper.GetString("token") != "":
		cfg.Auth = rt.NewToken(viper.GetString("token"))
	case viper.GetString("user") != "":
		cfg.Auth = rt.NewBasic(viper.GetString("user"), viper.GetString("password"))
	default:
		return nil, fmt.Errorf("no credentials configured, pass --token or --user/--password")
	}
	return rt.NewREST2(cfg)
}

func parseTicketID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid ticket id %q", arg)
	}
	return id, nil
}

// parseFieldArgs turns Name=Value arguments into a field map for
// create and edit calls.
func parseFieldArgs(args []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid field %q, expected Name=Value", arg)
		}
		fields[name] = value
	}
	return fields, nil
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rt: %v\n", err)
		os.Exit(1)
	}
}
