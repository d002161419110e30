package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bedlam-render/sequencer/internal/rig"
)

// RootsConfig holds the host asset roots the assembler composes
// references from. Directory roots keep their trailing slash so the
// composed paths match the asset registry exactly.
type RootsConfig struct {
	DataRoot             string `json:"dataRoot" mapstructure:"dataRoot"`
	BodySkeletalRoot     string `json:"bodySkeletalRoot" mapstructure:"bodySkeletalRoot"`
	GeometryCacheRoot    string `json:"geometryCacheRoot" mapstructure:"geometryCacheRoot"`
	ClothingCacheRoot    string `json:"clothingCacheRoot" mapstructure:"clothingCacheRoot"`
	HairRoot             string `json:"hairRoot" mapstructure:"hairRoot"`
	AnimationRoot        string `json:"animationRoot" mapstructure:"animationRoot"`
	HDRIRoot             string `json:"hdriRoot" mapstructure:"hdriRoot"`
	HDRISuffix           string `json:"hdriSuffix" mapstructure:"hdriSuffix"`
	MaterialBodyRoot     string `json:"materialBodyRoot" mapstructure:"materialBodyRoot"`
	MaterialClothingRoot string `json:"materialClothingRoot" mapstructure:"materialClothingRoot"`
	TextureBodyRoot      string `json:"textureBodyRoot" mapstructure:"textureBodyRoot"`
	TextureOverlayRoot   string `json:"textureOverlayRoot" mapstructure:"textureOverlayRoot"`
	HiddenMaterial       string `json:"hiddenMaterial" mapstructure:"hiddenMaterial"`
	OverlayActorClass    string `json:"overlayActorClass" mapstructure:"overlayActorClass"`
	SequencesRoot        string `json:"sequencesRoot" mapstructure:"sequencesRoot"`
	CameraMovementRoot   string `json:"cameraMovementRoot" mapstructure:"cameraMovementRoot"`
	HDRITemplate         string `json:"hdriTemplate" mapstructure:"hdriTemplate"`
}

// CalibrationConfig holds frame timing and POV camera calibration.
// SensorWidth is the level camera's filmback width in millimeters.
type CalibrationConfig struct {
	WarmupFrames   int           `json:"warmupFrames" mapstructure:"warmupFrames"`
	FrameRate      int           `json:"frameRate" mapstructure:"frameRate"`
	SensorWidth    float64       `json:"sensorWidth" mapstructure:"sensorWidth"`
	POVSensorWidth float64       `json:"povSensorWidth" mapstructure:"povSensorWidth"`
	POVCameraHFOV  float64       `json:"povCameraHfov" mapstructure:"povCameraHfov"`
	POVOffsetX     float64       `json:"povOffsetX" mapstructure:"povOffsetX"`
	POVOffsetY     float64       `json:"povOffsetY" mapstructure:"povOffsetY"`
	POVOffsetZ     float64       `json:"povOffsetZ" mapstructure:"povOffsetZ"`
	POVAttachScale float64       `json:"povAttachScale" mapstructure:"povAttachScale"`
	ViewTable      rig.ViewTable `json:"viewTable" mapstructure:"viewTable"`
}

// HostConfig selects and parameterizes the scene host backend.
type HostConfig struct {
	Type             string `json:"type" mapstructure:"type"`
	OutputDir        string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput   bool   `json:"compressOutput" mapstructure:"compressOutput"`
	AssumeAssets     bool   `json:"assumeAssets" mapstructure:"assumeAssets"`
	SeedTemplates    bool   `json:"seedTemplates" mapstructure:"seedTemplates"`
	ServerURL        string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey           string `json:"apiKey" mapstructure:"apiKey"`
	CameraActorClass string `json:"cameraActorClass" mapstructure:"cameraActorClass"`
	LoggerActorClass string `json:"loggerActorClass" mapstructure:"loggerActorClass"`
	POVCameraName    string `json:"povCameraName" mapstructure:"povCameraName"`
}

// ManifestConfig holds the run catalog database settings.
type ManifestConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Type     string `json:"type" mapstructure:"type"`
	Path     string `json:"path" mapstructure:"path"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds build metric export settings. Bucket names are
// fixed by the influx package.
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// GraylogConfig holds GELF log shipping settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// MonitorConfig holds status file settings.
type MonitorConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	StatusFile string `json:"statusFile" mapstructure:"statusFile"`
}

// OTelConfig holds OpenTelemetry export settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SeqmodConfig points the descriptor rewrite verbs at their wardrobe
// data files and bounds batch concurrency.
type SeqmodConfig struct {
	GenderPath  string `json:"genderPath" mapstructure:"genderPath"`
	OverlayPath string `json:"overlayPath" mapstructure:"overlayPath"`
	HairPath    string `json:"hairPath" mapstructure:"hairPath"`
	Workers     int    `json:"workers" mapstructure:"workers"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName("sequencer.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// LoadDefaults installs the default values without requiring a config
// file on disk, for runs driven entirely by flags.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./sequencerlogs")

	dataRoot := "/Engine/PS/Bedlam/"
	projectRoot := "/Game/Bedlam/"
	viper.SetDefault("roots.dataRoot", dataRoot)
	viper.SetDefault("roots.bodySkeletalRoot", dataRoot+"SMPLX_Skeletal/")
	viper.SetDefault("roots.geometryCacheRoot", dataRoot+"SMPLX/")
	viper.SetDefault("roots.clothingCacheRoot", dataRoot+"Clothing/")
	viper.SetDefault("roots.hairRoot", dataRoot+"Hair/CC/Meshes/")
	viper.SetDefault("roots.animationRoot", dataRoot+"SMPLX_batch01_hand_animations/")
	viper.SetDefault("roots.hdriRoot", dataRoot+"HDRI/4k/")
	viper.SetDefault("roots.hdriSuffix", "")
	viper.SetDefault("roots.materialBodyRoot", "/Engine/PS/Meshcapade/SMPL/Materials")
	viper.SetDefault("roots.materialClothingRoot", dataRoot+"Clothing/Materials")
	viper.SetDefault("roots.textureBodyRoot", "/Engine/PS/Meshcapade/SMPL/MC_texture_skintones")
	viper.SetDefault("roots.textureOverlayRoot", dataRoot+"Clothing/MaterialsSMPLX/Textures")
	viper.SetDefault("roots.hiddenMaterial", dataRoot+"Core/Materials/M_SMPLX_Hidden")
	viper.SetDefault("roots.overlayActorClass", dataRoot+"Core/Materials/BE_ClothingOverlayActor.BE_ClothingOverlayActor_C")
	viper.SetDefault("roots.sequencesRoot", projectRoot+"LevelSequences/")
	viper.SetDefault("roots.cameraMovementRoot", projectRoot+"CameraMovement/")
	viper.SetDefault("roots.hdriTemplate", projectRoot+"LS_Template_HDRI")

	viper.SetDefault("calibration.warmupFrames", 10)
	viper.SetDefault("calibration.frameRate", 30)
	viper.SetDefault("calibration.sensorWidth", 23.76)
	viper.SetDefault("calibration.povSensorWidth", 24.0)
	viper.SetDefault("calibration.povCameraHfov", 90.0)
	viper.SetDefault("calibration.povOffsetX", 15.0)
	viper.SetDefault("calibration.povOffsetY", 0.0)
	viper.SetDefault("calibration.povOffsetZ", 10.0)
	viper.SetDefault("calibration.povAttachScale", 0.01)

	viper.SetDefault("host.type", "script")
	viper.SetDefault("host.outputDir", "./timelines")
	viper.SetDefault("host.compressOutput", false)
	viper.SetDefault("host.assumeAssets", true)
	viper.SetDefault("host.seedTemplates", true)
	viper.SetDefault("host.serverUrl", "http://localhost:30010")
	viper.SetDefault("host.apiKey", "")
	viper.SetDefault("host.cameraActorClass", "CineCameraActor")
	viper.SetDefault("host.loggerActorClass", "BE_GroundTruthLogger_C")
	viper.SetDefault("host.povCameraName", "POVCineCamera")

	viper.SetDefault("manifest.enabled", true)
	viper.SetDefault("manifest.type", "sqlite")
	viper.SetDefault("manifest.path", "./sequencer.db")
	viper.SetDefault("manifest.host", "localhost")
	viper.SetDefault("manifest.port", "5432")
	viper.SetDefault("manifest.username", "postgres")
	viper.SetDefault("manifest.password", "postgres")
	viper.SetDefault("manifest.database", "sequencer")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "bedlam-metrics")
	viper.SetDefault("influx.backupPath", "./influx_backup.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.statusFile", "./sequencer_status.txt")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "bedlam-sequencer")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("seqmod.genderPath", "./config/gender.csv")
	viper.SetDefault("seqmod.overlayPath", "./config/textures_clothing_overlay.json")
	viper.SetDefault("seqmod.hairPath", "./config/whitelist_hair.json")
	viper.SetDefault("seqmod.workers", 4)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetRoots returns the asset root configuration.
func GetRoots() RootsConfig {
	var c RootsConfig
	_ = viper.UnmarshalKey("roots", &c)
	return c
}

// GetCalibration returns the timing and POV calibration. The view table
// falls back to the built-in six-direction table when not configured.
func GetCalibration() CalibrationConfig {
	var c CalibrationConfig
	_ = viper.UnmarshalKey("calibration", &c)
	if len(c.ViewTable) == 0 {
		c.ViewTable = rig.DefaultViewTable()
	}
	return c
}

// GetHostConfig returns the scene host configuration.
func GetHostConfig() HostConfig {
	var c HostConfig
	_ = viper.UnmarshalKey("host", &c)
	return c
}

// GetManifestConfig returns the run catalog configuration.
func GetManifestConfig() ManifestConfig {
	var c ManifestConfig
	_ = viper.UnmarshalKey("manifest", &c)
	return c
}

// GetInfluxConfig returns the build metric export configuration.
func GetInfluxConfig() InfluxConfig {
	var c InfluxConfig
	_ = viper.UnmarshalKey("influx", &c)
	return c
}

// GetGraylogConfig returns the GELF shipping configuration.
func GetGraylogConfig() GraylogConfig {
	var c GraylogConfig
	_ = viper.UnmarshalKey("graylog", &c)
	return c
}

// GetMonitorConfig returns the status file configuration.
func GetMonitorConfig() MonitorConfig {
	var c MonitorConfig
	_ = viper.UnmarshalKey("monitor", &c)
	return c
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetSeqmodConfig returns the descriptor rewrite configuration.
func GetSeqmodConfig() SeqmodConfig {
	var c SeqmodConfig
	_ = viper.UnmarshalKey("seqmod", &c)
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}
