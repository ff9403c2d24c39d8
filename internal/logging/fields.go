package logging

import "github.com/sirupsen/logrus"

// BaseFields builds the action + config path fields shared by entry points.
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ResourceFields describes the resource a log line is about.
func ResourceFields(name string, sources []string, cachePath string) logrus.Fields {
	return logrus.Fields{
		"resource":   name,
		"source":     sources,
		"cache_path": cachePath,
	}
}
