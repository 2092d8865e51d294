package config

import (
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs" mapstructure:"inputs"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputsConfig names the prepared input datasets. Vector layers are
// shapefiles, rasters are ESRI ASCII grids, and the OSDS inventory is a CSV;
// all coordinates are in the working projected CRS.
type InputsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`

	Parcels    string `yaml:"parcels" mapstructure:"parcels"`
	OSDS       string `yaml:"osds" mapstructure:"osds"`
	Buildings  string `yaml:"buildings" mapstructure:"buildings"`
	Coastline  string `yaml:"coastline" mapstructure:"coastline"`
	Streams    string `yaml:"streams" mapstructure:"streams"`
	DomWells   string `yaml:"dom_wells" mapstructure:"dom_wells"`
	MunWells   string `yaml:"mun_wells" mapstructure:"mun_wells"`
	SMA        string `yaml:"sma" mapstructure:"sma"`
	FloodZones string `yaml:"flood_zones" mapstructure:"flood_zones"`
	Soils      string `yaml:"soils" mapstructure:"soils"`

	DEM        string `yaml:"dem" mapstructure:"dem"`
	WaterTable string `yaml:"water_table" mapstructure:"water_table"`
	Slope      string `yaml:"slope" mapstructure:"slope"`
	Rainfall   string `yaml:"rainfall" mapstructure:"rainfall"`

	// TMKField is the parcel attribute carrying the Tax Map Key.
	TMKField string `yaml:"tmk_field" mapstructure:"tmk_field"`
	// SoilCondField is the soils attribute carrying saturated hydraulic
	// conductivity in inches per hour.
	SoilCondField string `yaml:"soil_cond_field" mapstructure:"soil_cond_field"`
}

// OutputConfig configures artifact generation.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig tunes the derivation.
type PipelineConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	UTMZone           int     `yaml:"utm_zone" mapstructure:"utm_zone"`
	CoastThresholdFt  float64 `yaml:"coast_threshold_ft" mapstructure:"coast_threshold_ft"`
	StreamThresholdFt float64 `yaml:"stream_threshold_ft" mapstructure:"stream_threshold_ft"`
	DepthFloorFt      float64 `yaml:"depth_floor_ft" mapstructure:"depth_floor_ft"`
	NoDataThreshold   float64 `yaml:"nodata_threshold" mapstructure:"nodata_threshold"`
}

// ClassifyConfig points at an optional YAML file overriding the built-in
// classification tables.
type ClassifyConfig struct {
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// StoreConfig configures the build ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MPAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.dir", "data")
	v.SetDefault("inputs.parcels", "parcels.shp")
	v.SetDefault("inputs.osds", "osds.csv")
	v.SetDefault("inputs.buildings", "buildings_fps.shp")
	v.SetDefault("inputs.coastline", "coastline.shp")
	v.SetDefault("inputs.streams", "streams.shp")
	v.SetDefault("inputs.dom_wells", "wells_dom.shp")
	v.SetDefault("inputs.mun_wells", "wells_mun.shp")
	v.SetDefault("inputs.sma", "sma.shp")
	v.SetDefault("inputs.flood_zones", "flood_zones.shp")
	v.SetDefault("inputs.soils", "soils.shp")
	v.SetDefault("inputs.dem", "dem.asc")
	v.SetDefault("inputs.water_table", "watertable.asc")
	v.SetDefault("inputs.slope", "slope.asc")
	v.SetDefault("inputs.rainfall", "rainfall.asc")
	v.SetDefault("inputs.tmk_field", "tmk")
	v.SetDefault("inputs.soil_cond_field", "ksat")
	v.SetDefault("output.dir", "out")
	v.SetDefault("pipeline.workers", runtime.NumCPU())
	v.SetDefault("pipeline.utm_zone", 4)
	v.SetDefault("pipeline.coast_threshold_ft", 100)
	v.SetDefault("pipeline.stream_threshold_ft", 50)
	v.SetDefault("pipeline.depth_floor_ft", 3.3)
	v.SetDefault("pipeline.nodata_threshold", -100)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "mpat.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
