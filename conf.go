package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

// 输出格式
const (
	FormatSMP     string = "smp"     // styled map package (zip)
	FormatMBTiles        = "mbtiles" // mbtiles 1.3 database
	FormatFiles          = "files"   // plain {z}/{x}/{y}.png tree
)

// PNG 瓦片图片格式
const PNG = "png"

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Output struct {
		Path           string `toml:"path"`
		Format         string `toml:"format"`
		LogDir         string `toml:"logDir"`
		OutputTerminal bool   `toml:"outputTerminal"`
		KeepStaging    bool   `toml:"keepStaging"`
	} `toml:"output"`
	Extent struct {
		West  float64 `toml:"west"`
		South float64 `toml:"south"`
		East  float64 `toml:"east"`
		North float64 `toml:"north"`
		CRS   string  `toml:"crs"`
	} `toml:"extent"`
	Zoom struct {
		Min int `toml:"min"`
		Max int `toml:"max"`
	} `toml:"zoom"`
	Style struct {
		Name           string `toml:"name"`
		SourceID       string `toml:"sourceId"`
		DefaultZoomCap int    `toml:"defaultZoomCap"`
	} `toml:"style"`
	Renderer struct {
		Type   string   `toml:"type"`
		URL    string   `toml:"url"`
		Color  string   `toml:"color"`
		Layers []string `toml:"layers"`
	} `toml:"renderer"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	err := viper.ReadInConfig()
	if err != nil {
		log.Warnf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
	}
	// 设置默认值
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "SMP Tiler")
	viper.SetDefault("output.path", "output/map.smp")
	viper.SetDefault("output.format", FormatSMP)
	viper.SetDefault("extent.west", -180.0)
	viper.SetDefault("extent.south", -WebMercatorLatMax)
	viper.SetDefault("extent.east", 180.0)
	viper.SetDefault("extent.north", WebMercatorLatMax)
	viper.SetDefault("extent.crs", string(CRSWGS84))
	viper.SetDefault("zoom.min", 0)
	viper.SetDefault("zoom.max", 8)
	viper.SetDefault("style.name", "QGIS Map")
	viper.SetDefault("style.sourceId", "mbtiles-source")
	viper.SetDefault("style.defaultZoomCap", DefaultZoomCap)
	viper.SetDefault("renderer.type", "flat")
	viper.SetDefault("renderer.color", "#ffffff")

	err = viper.Unmarshal(&conf)
	if err != nil {
		panic("unable to parse config file")
	}
}
