// Package config configures the Application using .env file, environment variables
// and other necessary configs
package config

// TestConfig configures the application to run in TEST mode
var TestConfig = &Config{
	GinPort:                "5000",
	LogLevel:               "DEBUG",
	PVEHost:                "localhost",
	PVEPort:                8006,
	PVEVerifyTLS:           false,
	PVETimeoutSeconds:      5,
	DBDriver:               "sqlite",
	DBPath:                 "file::memory:?cache=shared",
	LegacyFoldersFile:      "",
	MQTTTopic:              "pvelist/test",
	RefreshIntervalSeconds: 5,
}
