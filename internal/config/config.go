package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultDataRoot        = "downloads"
	DefaultTempDir         = "temp/telegram"
	DefaultHistoryPath     = "data/history.db"
	DefaultDebounceSeconds = 3
	DefaultPollTimeout     = 30
	DefaultFetchBinary     = "yt-dlp"
	DefaultFetchFormat     = "best"
)

// Layout selects how placed media is arranged on the content store.
type Layout string

const (
	// LayoutTitleDir files video and photo under videos/<title>/.
	LayoutTitleDir Layout = "title_dir"
	// LayoutFlat files every category into its own flat directory.
	LayoutFlat Layout = "flat"
)

type Config struct {
	Log               LogConfig          `toml:"log"`
	Server            ServerConfig       `toml:"server"`
	Telegram          TelegramConfig     `toml:"telegram"`
	Storage           StorageConfig      `toml:"storage"`
	Fetch             FetchConfig        `toml:"fetch"`
	History           HistoryConfig      `toml:"history"`
	ScheduledMessages []ScheduledMessage `toml:"scheduled_messages"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TelegramConfig struct {
	BotToken           string `toml:"bot_token"`
	PollTimeoutSeconds int    `toml:"poll_timeout_seconds"`
}

type StorageConfig struct {
	DataRoot        string `toml:"data_root"`
	TempDir         string `toml:"temp_dir"`
	Layout          Layout `toml:"layout"`
	DebounceSeconds int    `toml:"album_debounce_seconds"`
}

// VideosDir is the base directory for video titles; in the title_dir
// layout photo albums live under it as well.
func (c StorageConfig) VideosDir() string {
	return filepath.Join(c.DataRoot, "telegram", "videos")
}

func (c StorageConfig) AudiosDir() string {
	return filepath.Join(c.DataRoot, "telegram", "audios")
}

func (c StorageConfig) PhotosDir() string {
	return filepath.Join(c.DataRoot, "telegram", "photos")
}

func (c StorageConfig) OthersDir() string {
	return filepath.Join(c.DataRoot, "telegram", "others")
}

// FetchDir receives videos pulled from external platforms.
func (c StorageConfig) FetchDir() string {
	return filepath.Join(c.DataRoot, "youtube")
}

// Debounce is the album quiet period counted from a group's first member.
func (c StorageConfig) Debounce() time.Duration {
	if c.DebounceSeconds <= 0 {
		return DefaultDebounceSeconds * time.Second
	}
	return time.Duration(c.DebounceSeconds) * time.Second
}

type FetchConfig struct {
	Binary  string `toml:"binary"`
	Format  string `toml:"format"`
	Cookies string `toml:"cookies"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

// ScheduledMessage is one cron-driven outbound message.
type ScheduledMessage struct {
	Cron   string `toml:"cron"`
	ChatID int64  `toml:"chat_id"`
	Text   string `toml:"text"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Telegram: TelegramConfig{
			PollTimeoutSeconds: DefaultPollTimeout,
		},
		Storage: StorageConfig{
			DataRoot:        DefaultDataRoot,
			TempDir:         DefaultTempDir,
			Layout:          LayoutTitleDir,
			DebounceSeconds: DefaultDebounceSeconds,
		},
		Fetch: FetchConfig{
			Binary: DefaultFetchBinary,
			Format: DefaultFetchFormat,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
