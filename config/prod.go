// Package config configures the Application using .env file, environment variables
// and other necessary configs
package config

// ProdConfig configures the application to run in PRODUCTION mode
var ProdConfig = &Config{
	GinPort:                "5000",
	LogLevel:               "INFO",
	PVEPort:                8006,
	PVEVerifyTLS:           false,
	PVETimeoutSeconds:      10,
	DBDriver:               "sqlite",
	DBPath:                 "pvelist.db",
	LegacyFoldersFile:      "vm_folders.json",
	MQTTTopic:              "pvelist",
	RefreshIntervalSeconds: 60,
}
