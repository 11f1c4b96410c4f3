package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"app"`

	Target struct {
		URL            string `yaml:"url"`
		SiteName       string `yaml:"site_name"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"target"`

	CheckKeywords []string `yaml:"check_keywords"`

	Email struct {
		To       string `yaml:"to"`
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
		SMTPUser string `yaml:"smtp_user"`
		SMTPFrom string `yaml:"smtp_from"`
	} `yaml:"email"`

	State struct {
		SeenFile  string `yaml:"seen_file"`
		ArchiveDB string `yaml:"archive_db"`
	} `yaml:"state"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
