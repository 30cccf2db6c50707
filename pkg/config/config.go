package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var (
	// Fixed logical paths inside the content repository.
	ConfigDocumentPath = "content/site-config.json"
	ImageDir           = "images"

	// Collections registry file; compiled-in defaults apply when absent.
	CollectionsFile = "collections.yml"

	// Server settings
	ListenAddr    = ":8080"
	SessionSecret = "dev-secret-change-me"

	// Default branch offered on the login form.
	DefaultBranch = "main"
)

var OauthConf *oauth2.Config

func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found or error loading it.")
	}

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	appURL := getEnv("APP_URL", "http://localhost:8080")
	redirectURL := getEnv("GITHUB_REDIRECT_URL", appURL+"/auth/callback")

	ConfigDocumentPath = getEnv("CONFIG_DOCUMENT_PATH", "content/site-config.json")
	ImageDir = getEnv("IMAGE_DIR", "images")
	CollectionsFile = getEnv("COLLECTIONS_FILE", "collections.yml")

	ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	SessionSecret = getEnv("SESSION_SECRET", SessionSecret)
	DefaultBranch = getEnv("DEFAULT_BRANCH", "main")

	OauthConf = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		Scopes:       []string{"repo"},
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
	}
}

func GetAppURL() string {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}
	return appURL
}
