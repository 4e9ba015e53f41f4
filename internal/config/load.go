package config

// LoadClient reads the client configuration from path, applies environment
// and explicit overrides, and validates the result.
func LoadClient(path string, overrides Values) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	values, err := load(path, AppClient, overrides)
	if err != nil {
		return cfg, err
	}

	s := newConfigSetter(values, AppClient)
	applyCommon(s, &cfg.Common)
	s.setString("serverAddress", &cfg.ServerAddress, true)
	s.setInt("serverPort", &cfg.ServerPort, true)
	s.setString("filterPattern", &cfg.FilterPattern, true)
	s.setMillis("connectionDelay", &cfg.ConnectionDelay, true)
	s.setString("extension", &cfg.Extension, false)
	s.setMillis("gracePeriod", &cfg.GracePeriod, false)
	if s.err != nil {
		return cfg, s.err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadServer reads the server configuration from path, applies environment
// and explicit overrides, and validates the result.
func LoadServer(path string, overrides Values) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	values, err := load(path, AppServer, overrides)
	if err != nil {
		return cfg, err
	}

	s := newConfigSetter(values, AppServer)
	applyCommon(s, &cfg.Common)
	s.setInt("port", &cfg.Port, true)
	s.setMillis("retryPeriod", &cfg.RetryPeriod, true)
	s.setString("bindAddress", &cfg.BindAddress, false)
	s.setInt("failureThreshold", &cfg.FailureThreshold, false)
	s.setMillis("failureDelay", &cfg.FailureDelay, false)
	if s.err != nil {
		return cfg, s.err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func load(path, app string, overrides Values) (Values, error) {
	values, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	ApplyEnvConfig(values, app, nil)
	values.Merge(overrides)
	return values, nil
}

func applyCommon(s *configSetter, c *Common) {
	s.setString("directory", &c.Directory, true)
	s.setString("logLevel", &c.LogLevel, false)
	s.setString("metricsAddress", &c.MetricsAddress, false)
}
