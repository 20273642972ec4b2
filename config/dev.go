// Package config configures the Application using .env file, environment variables
// and other necessary configs
package config

// DevConfig configures the application to run in DEVELOPMENT mode
var DevConfig = &Config{
	GinPort:                "5000",
	LogLevel:               "DEBUG",
	PVEHost:                "localhost",
	PVEPort:                8006,
	PVEVerifyTLS:           false,
	PVETimeoutSeconds:      10,
	DBDriver:               "sqlite",
	DBPath:                 "pvelist_dev.db",
	DBName:                 "pvelist",
	DBHost:                 "localhost",
	DBPort:                 "5432",
	DBUser:                 "pvelist",
	DBPassword:             "pvelist",
	LegacyFoldersFile:      "vm_folders.json",
	MQTTBroker:             "mqtt://localhost:1883",
	MQTTTopic:              "pvelist/dev",
	RefreshIntervalSeconds: 30,
}
