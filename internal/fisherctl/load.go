package fisherctl

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/fisherproject/fisher/pkg/market"
)

// LoadMarket reads a market definition from a config file. The format is
// inferred from the file extension (YAML, JSON and TOML are supported), with
// keys label, valuations, supply and budgets; supply and budgets may be
// omitted.
func LoadMarket(path string) (market.Market, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return market.Market{}, errors.Wrapf(err, "reading market definition from %s", path)
	}
	var m market.Market
	if err := v.Unmarshal(&m); err != nil {
		return market.Market{}, errors.Wrapf(err, "parsing market definition from %s", path)
	}
	return m, nil
}
