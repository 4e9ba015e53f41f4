package config

import (
	"os"
	"strings"
)

const envPrefix = "PROPSHIP_"

var clientKeys = []string{
	"directory", "logLevel", "metricsAddress",
	"serverAddress", "serverPort", "filterPattern", "connectionDelay", "extension", "gracePeriod",
}

var serverKeys = []string{
	"directory", "logLevel", "metricsAddress",
	"port", "retryPeriod", "bindAddress", "failureThreshold", "failureDelay",
}

// EnvName returns the environment variable that overrides key,
// e.g. "client.serverPort" -> "PROPSHIP_CLIENT_SERVERPORT".
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyEnvConfig overrides values for app with any PROPSHIP_* variables
// found through lookup. A nil lookup uses os.LookupEnv.
func ApplyEnvConfig(values Values, app string, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	keys := clientKeys
	if app == AppServer {
		keys = serverKeys
	}
	for _, name := range keys {
		key := app + "." + name
		if v, ok := lookup(EnvName(key)); ok {
			values[key] = v
		}
	}
}
