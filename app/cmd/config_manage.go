package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/annchain/settler/common/files"
	"github.com/annchain/settler/common/utilfuncs"
	"github.com/annchain/settler/ledger"
	"github.com/annchain/settler/ledgerdb"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("ledger.name", "default")
	viper.SetDefault("ledger.cache_size", ledgerdb.DefaultStateCacheSize)
	viper.SetDefault("ledger.leveldb_cache", 16)
	viper.SetDefault("ledger.leveldb_handles", 16)
	viper.SetDefault("settle.interval", ledger.DefaultSettleInterval)
	viper.SetDefault("rpc.enabled", true)
	viper.SetDefault("rpc.port", 8000)
	viper.SetDefault("rpc.rate_limit", 0)
	viper.SetDefault("rpc.rate_burst", 20)
}

// readConfig merges {dir.config}/config.toml if it exists and lets env
// variables override everything.
// Importance order:
// 1, flags given on the command line
// 2, ENV (SETTLER_ prefix, dots replaced by underscores)
// 3, config.toml
// 4, defaults
func readConfig() {
	setDefaults()

	configPath := path.Join(configFolder(), "config.toml")
	if files.FileExists(configPath) {
		mergeLocalConfig(configPath)
	} else {
		log.WithField("path", configPath).Info("no config file, using flags and defaults")
	}
	mergeEnvConfig()

	// print running config in console.
	b, err := json.MarshalIndent(viper.AllSettings(), "", "    ")
	utilfuncs.PanicIfError(err, "dump json")
	log.Debug(string(b))
}

func mergeEnvConfig() {
	// env override
	viper.SetEnvPrefix("settler")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func writeConfig() {
	configPath := path.Join(configFolder(), "config_dump.toml")
	err := viper.WriteConfigAs(configPath)
	utilfuncs.PanicIfError(err, "dump config")
}

func mergeLocalConfig(configPath string) {
	absPath, err := filepath.Abs(configPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing config file path: %s", absPath))

	file, err := os.Open(absPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on opening config file: %s", absPath))
	defer file.Close()

	viper.SetConfigType("toml")
	err = viper.MergeConfig(file)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on reading config file: %s", absPath))
}
