// Package config provides application configuration management from environment variables.
//
// # Overview
//
// Configuration is parsed with caarlos0/env from struct tags and validated
// once at startup. Every setting except the production secrets has a
// default.
//
// # Configuration Structure
//
// Server settings:
//
//	ROAMJS_HOST="0.0.0.0"
//	ROAMJS_PORT="8080"
//	ROAMJS_ALLOWED_ORIGIN="https://roamresearch.com"
//	ROAMJS_READ_TIMEOUT="15s"
//	ROAMJS_WRITE_TIMEOUT="30s"
//
// Secrets (development variants may be left empty):
//
//	STRIPE_SECRET_KEY / STRIPE_DEV_SECRET_KEY
//	CLERK_API_KEY / CLERK_DEV_API_KEY
//	ENCRYPTION_SECRET / ENCRYPTION_SECRET_DEV
//
// Storage and mail:
//
//	AWS_REGION="us-east-1"
//	ROAMJS_EXTENSIONS_TABLE="RoamJSExtensions"
//	ROAMJS_EXTENSIONS_DEV_TABLE="RoamJSExtensionsDev"
//	ROAMJS_OWNER_INDEX="user-index"
//	ROAMJS_ERROR_EMAIL_FROM="support@roamjs.com"
//	ROAMJS_ERROR_EMAIL_TO="support@roamjs.com"
//
// Observability:
//
//	ROAMJS_LOG_LEVEL="info"
//	ROAMJS_OTEL_ENABLED="false"
//	ROAMJS_OTEL_ENDPOINT="localhost:4317"
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatalf("Failed to load configuration: %v", err)
//	}
package config
