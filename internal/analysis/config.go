package analysis

import (
	"encoding/json"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-frvp/internal/profile"
	"github.com/rxtech-lab/argo-frvp/internal/signal"
	"github.com/rxtech-lab/argo-frvp/internal/types"
	"github.com/rxtech-lab/argo-frvp/internal/version"
	"github.com/rxtech-lab/argo-frvp/internal/window"
	"github.com/rxtech-lab/argo-frvp/pkg/errors"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

const DefaultFetchTimeout = 30 * time.Second

// Display selects the indicator series shown by presentation sinks.
type Display struct {
	MAShort   bool `yaml:"ma_short" json:"ma_short" jsonschema:"title=Display short moving average,default=false"`
	MALong    bool `yaml:"ma_long" json:"ma_long" jsonschema:"title=Display long moving average,default=false"`
	Bollinger bool `yaml:"bollinger" json:"bollinger" jsonschema:"title=Display Bollinger Bands,default=false"`
	MACD      bool `yaml:"macd" json:"macd" jsonschema:"title=Display MACD,default=false"`
	RSI       bool `yaml:"rsi" json:"rsi" jsonschema:"title=Display RSI,default=false"`
	OBV       bool `yaml:"obv" json:"obv" jsonschema:"title=Display OBV,default=false"`
	ADX       bool `yaml:"adx" json:"adx" jsonschema:"title=Display ADX,default=false"`
}

// Series returns the names of the displayed indicator series in panel order.
func (d Display) Series() []string {
	names := make([]string, 0)

	if d.MAShort {
		names = append(names, types.SeriesMAShort)
	}

	if d.MALong {
		names = append(names, types.SeriesMALong)
	}

	if d.Bollinger {
		names = append(names, types.SeriesBBUpper, types.SeriesBBMiddle, types.SeriesBBLower)
	}

	if d.MACD {
		names = append(names, types.SeriesMACD, types.SeriesMACDSignal, types.SeriesMACDHistogram)
	}

	if d.RSI {
		names = append(names, types.SeriesRSI)
	}

	if d.OBV {
		names = append(names, types.SeriesOBV, types.SeriesOBVMean)
	}

	if d.ADX {
		names = append(names, types.SeriesADX)
	}

	return names
}

// All returns a Display with every indicator shown.
func All() Display {
	return Display{MAShort: true, MALong: true, Bollinger: true, MACD: true, RSI: true, OBV: true, ADX: true}
}

// Config is the configuration of one analysis run.
type Config struct {
	// Version is the frvp version the file was written for.
	Version string `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=frvp version the file was written for"`
	Interval      types.Interval             `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar interval,enum=1m,enum=2m,enum=5m,enum=30m,enum=1h,enum=1d,enum=1wk,default=1d" validate:"required"`
	Range         marketdata.Range           `yaml:"range" json:"range" jsonschema:"title=Range,description=Lookback ending now. Ignored when start is set,enum=1d,enum=5d,enum=1mo,enum=3mo,enum=6mo,enum=ytd,enum=1y,enum=5y,enum=max,default=1y" validate:"required_without=Start"`
	Start         optional.Option[time.Time] `yaml:"-" json:"start,omitempty" jsonschema:"title=Start Time,description=Optional start of the analysis period"`
	End           optional.Option[time.Time] `yaml:"-" json:"end,omitempty" jsonschema:"title=End Time,description=Optional end of the analysis period"`
	Display       Display                    `yaml:"display" json:"display" jsonschema:"title=Display"`
	Windows       window.Params              `yaml:"windows" json:"windows" jsonschema:"title=Indicator lookbacks in days"`
	Thresholds    signal.Thresholds          `yaml:"thresholds" json:"thresholds" jsonschema:"title=Signal thresholds"`
	ValueAreaBars int                        `yaml:"value_area_bars" json:"value_area_bars" jsonschema:"title=Value area bars,description=Number of highest-volume bars spanning the value area,minimum=1,default=10" validate:"gt=0"`
	BucketWidth   float64                    `yaml:"bucket_width" json:"bucket_width" jsonschema:"title=Price bucket width,description=0 groups the volume profile by exact close,minimum=0,default=0" validate:"gte=0"`
	OBVMean       int                        `yaml:"obv_mean" json:"obv_mean" jsonschema:"title=OBV mean window (bars),minimum=1,default=20" validate:"gt=0"`
	FetchTimeout  time.Duration              `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"title=Fetch timeout,description=Go duration string e.g. 30s,default=30s" validate:"gt=0"`
	// Provider is optional in the file; the CLI can supply it with flags.
	Provider *marketdata.ProviderConfig `yaml:"provider,omitempty" json:"provider,omitempty" jsonschema:"title=Bar source" validate:"omitempty"`
	LogLevel string                     `yaml:"log_level" json:"log_level" jsonschema:"title=Log level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Interval:      types.Interval1d,
		Range:         marketdata.Range1Y,
		Start:         optional.None[time.Time](),
		End:           optional.None[time.Time](),
		Display:       Display{},
		Windows:       window.DefaultParams(),
		Thresholds:    signal.DefaultThresholds(),
		ValueAreaBars: profile.DefaultValueAreaBars,
		BucketWidth:   0,
		OBVMean:       window.DefaultOBVMean,
		FetchTimeout:  DefaultFetchTimeout,
		LogLevel:      "info",
	}
}

// UnmarshalYAML decodes over the current values so omitted keys keep their
// defaults. start and end are read as optional timestamps.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config

	aux := struct {
		plain `yaml:",inline"`
		Start *time.Time `yaml:"start"`
		End   *time.Time `yaml:"end"`
	}{plain: plain(*c)}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	*c = Config(aux.plain)

	if aux.Start != nil {
		c.Start = optional.Some(*aux.Start)
	}

	if aux.End != nil {
		c.End = optional.Some(*aux.End)
	}

	return nil
}

// MarshalYAML writes start and end back as plain timestamps.
func (c Config) MarshalYAML() (any, error) {
	type plain Config

	aux := struct {
		plain `yaml:",inline"`
		Start *time.Time `yaml:"start,omitempty"`
		End   *time.Time `yaml:"end,omitempty"`
	}{plain: plain(c)}

	if c.Start.IsSome() {
		start := c.Start.Unwrap()
		aux.Start = &start
	}

	if c.End.IsSome() {
		end := c.End.Unwrap()
		aux.End = &end
	}

	return aux, nil
}

// Validate checks the struct tags and the cross-field rules.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid analysis config", err)
	}

	if c.Version != "" {
		if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible config version", err)
		}
	}

	if err := c.Interval.Validate(); err != nil {
		return err
	}

	if c.Start.IsNone() {
		if _, err := c.Range.Start(time.Now()); err != nil {
			return err
		}
	}

	if c.Start.IsSome() && c.End.IsSome() && !c.Start.Unwrap().Before(c.End.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidRange, "start must be before end")
	}

	return nil
}

// ProfileOptions returns the volume profile options of c.
func (c Config) ProfileOptions() profile.Options {
	opts := profile.DefaultOptions()
	opts.ValueAreaBars = c.ValueAreaBars

	if c.BucketWidth > 0 {
		opts.Mode = profile.ModeBucketed
		opts.BucketWidth = c.BucketWidth
	}

	return opts
}

// FetchRequest returns the bar request for symbol.
func (c Config) FetchRequest(symbol string) marketdata.FetchRequest {
	return marketdata.FetchRequest{
		Symbol:   symbol,
		Interval: c.Interval,
		Range:    c.Range,
		Start:    c.Start,
		End:      c.End,
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(optional.Option[time.Time]{}):
				return &jsonschema.Schema{Type: "string", Format: "date-time"}
			case reflect.TypeOf(time.Duration(0)):
				return &jsonschema.Schema{Type: "string"}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "frvp-analysis-config"
	schema.Description = "Configuration schema for one volume profile analysis run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
