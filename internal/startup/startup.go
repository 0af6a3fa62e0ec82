package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-catalog/internal/importer"
	"media-catalog/internal/logging"
	"media-catalog/internal/transcode"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Default command templates, aliased from the transcode package so the
// configuration defaults cannot drift from the pipeline's.
const (
	DefaultAudioTemplate  = transcode.DefaultAudioTemplate
	DefaultVideoTemplate  = transcode.DefaultVideoTemplate
	DefaultSampleTemplate = transcode.DefaultSampleTemplate
)

// Config holds all application configuration
type Config struct {
	LibraryDir      string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	// External tool binaries
	EncoderPath string
	ProbePath   string

	// Transcoding policy per media kind
	AudioTranscodeEnabled bool
	VideoTranscodeEnabled bool
	AudioTemplate         string
	VideoTemplate         string
	SampleTemplate        string
	VolNormClause         string

	// Derived asset sizing
	ThumbWidth  int
	ThumbHeight int
	JPEGQuality int
}

// ImporterConfig maps the loaded configuration onto the import pipeline
// settings.
func (c *Config) ImporterConfig() importer.Config {
	return importer.Config{
		Audio: importer.KindOptions{
			TranscodeEnabled:  c.AudioTranscodeEnabled,
			TranscodeTemplate: c.AudioTemplate,
			TargetExtension:   "mp3",
		},
		Video: importer.KindOptions{
			TranscodeEnabled:  c.VideoTranscodeEnabled,
			TranscodeTemplate: c.VideoTemplate,
			TargetExtension:   "mp4",
		},
		ThumbWidth:  c.ThumbWidth,
		ThumbHeight: c.ThumbHeight,
		JPEGQuality: c.JPEGQuality,
	}
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	libraryDir := getEnv("LIBRARY_DIR", "/library")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	encoderPath := getEnv("FFMPEG_PATH", "ffmpeg")
	probePath := getEnv("FFPROBE_PATH", "ffprobe")
	audioTranscode := getEnvBool("TRANSCODE_AUDIO", true)
	videoTranscode := getEnvBool("TRANSCODE_VIDEO", false)
	volNorm := getEnv("VOLNORM_CLAUSE", "")

	thumbWidth := getEnvInt("THUMB_WIDTH", 100)
	thumbHeight := getEnvInt("THUMB_HEIGHT", 100)
	jpegQuality := getEnvInt("JPEG_QUALITY", 85)

	logging.Info("  LIBRARY_DIR:       %s", libraryDir)
	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  FFMPEG_PATH:       %s", encoderPath)
	logging.Info("  FFPROBE_PATH:      %s", probePath)
	logging.Info("  TRANSCODE_AUDIO:   %v", audioTranscode)
	logging.Info("  TRANSCODE_VIDEO:   %v", videoTranscode)
	logging.Info("  THUMB_WIDTH:       %d", thumbWidth)
	logging.Info("  THUMB_HEIGHT:      %d", thumbHeight)
	logging.Info("  JPEG_QUALITY:      %d", jpegQuality)
	logging.Info("  LOG_HEALTH_CHECKS: %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	libraryDir, err := filepath.Abs(libraryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library directory path: %w", err)
	}
	logging.Info("  Library directory (absolute): %s", libraryDir)

	if err := ensureDirectory(libraryDir, "library"); err != nil {
		return nil, fmt.Errorf("library directory error: %w", err)
	}

	// The library must be writable: imports, sidecars and derived assets
	// all land under it.
	logging.Debug("  Testing library directory write access...")
	if err := testWriteAccess(libraryDir); err != nil {
		return nil, fmt.Errorf("library directory is not writable: %w", err)
	}
	logging.Info("  [OK] Library directory is writable")

	config := &Config{
		LibraryDir:            libraryDir,
		Port:                  port,
		MetricsPort:           metricsPort,
		MetricsEnabled:        metricsEnabled,
		LogHealthChecks:       logHealthChecks,
		EncoderPath:           encoderPath,
		ProbePath:             probePath,
		AudioTranscodeEnabled: audioTranscode,
		VideoTranscodeEnabled: videoTranscode,
		AudioTemplate:         getEnv("AUDIO_TRANSCODE_TEMPLATE", DefaultAudioTemplate),
		VideoTemplate:         getEnv("VIDEO_TRANSCODE_TEMPLATE", DefaultVideoTemplate),
		SampleTemplate:        getEnv("FRAME_SAMPLE_TEMPLATE", DefaultSampleTemplate),
		VolNormClause:         volNorm,
		ThumbWidth:            thumbWidth,
		ThumbHeight:           thumbHeight,
		JPEGQuality:           jpegQuality,
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Audio transcoding: %s", enabledString(config.AudioTranscodeEnabled))
	logging.Info("    Video transcoding: %s", enabledString(config.VideoTranscodeEnabled))
	logging.Info("    Metrics:           %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogToolsInit logs external tool availability checks.
func LogToolsInit(encoderPath, probePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTERNAL TOOLS")
	logging.Info("------------------------------------------------------------")

	for _, tool := range []string{encoderPath, probePath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", tool, err)
			logging.Warn("  Imports depending on %s will fail", tool)
		} else {
			logging.Info("  [OK] %s is available", tool)
		}
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
		for _, route := range routes {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___        ___         ______      __        __
   /  |/  /__ ____/ (_)__ _   / ____/___ _/ /_____ _/ /___  ____ _
  / /|_/ / _ '/ __  / / __ '/ / /   / __ '/ __/ __ '/ / __ \/ __ '/
 / /  / / __/ /_/ / / /_/ / / /___/ /_/ / /_/ /_/ / / /_/ / /_/ /
/_/  /_/\___|\__,_/_/\__,_/  \____/\__,_/\__/\__,_/_/\____/\__, /
                                                          /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless
	}
	return nil
}

func checkTool(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  Tool path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", binary, err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  Version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
