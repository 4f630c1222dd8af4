package cmd

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Log.Level)))
	if err != nil {
		return err
	}

	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	logrus.AddHook(&serviceFieldHook{service: cfg.App.ServiceName})

	return nil
}

type serviceFieldHook struct {
	service string
}

func (h *serviceFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceFieldHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
